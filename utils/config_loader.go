package utils

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ─── Pipeline-level config ──────────────────────────────────────────────

// ProportionsConfig holds the train/validation/test target fractions.
// They must sum to 1.0 within a small tolerance.
type ProportionsConfig struct {
	Train      float64 `yaml:"train"`
	Validation float64 `yaml:"validation"`
	Test       float64 `yaml:"test"`
}

// Balance policy names accepted by pipeline.min_class_policy.
const (
	PolicyClass     = "class"
	PolicyClassUser = "class_user"
	PolicyNone      = "none"
)

type PipelineSection struct {
	Seed                int64             `yaml:"seed"`
	ReferenceModality   string            `yaml:"reference_modality"`
	MinClassPolicy      string            `yaml:"min_class_policy"`
	UserExclusiveSplits bool              `yaml:"user_exclusive_splits"`
	Proportions         ProportionsConfig `yaml:"proportions"`
}

// ─── Dataset layout config ──────────────────────────────────────────────

// ModalityConfig describes one per-session sensor stream: its canonical
// name (column prefix), the raw file prefix it is read from, and its
// channel count.
type ModalityConfig struct {
	Name       string `yaml:"name"`
	FilePrefix string `yaml:"file_prefix"`
	Channels   int    `yaml:"channels"`
}

type DatasetSection struct {
	Root        string           `yaml:"root"`
	Modalities  []ModalityConfig `yaml:"modalities"`
	Placements  []string         `yaml:"placements"` // empty = all
	TrialLength int              `yaml:"trial_length"`
}

// ─── Quality gate config ────────────────────────────────────────────────

type QualitySection struct {
	Enabled         bool    `yaml:"enabled"`
	ReferenceRateHz float64 `yaml:"reference_rate_hz"`
	MaxAmplitude    float64 `yaml:"max_amplitude"`
}

// ─── Label map config ───────────────────────────────────────────────────

// LabelsSection optionally pins the label→code mapping. When Codes is
// empty the mapping is derived deterministically from the observed label
// vocabulary at aggregation time.
type LabelsSection struct {
	Version string            `yaml:"version"`
	Codes   map[string]int    `yaml:"codes"`
	Aliases map[string]string `yaml:"aliases"`
}

// ─── Storage config ─────────────────────────────────────────────────────

type CSVStorageConfig struct {
	BufferSizeKB int  `yaml:"buffer_size_kb"`
	WriteHeader  bool `yaml:"write_header"`
}

type StorageSection struct {
	BaseDir       string           `yaml:"base_dir"`
	SessionPrefix string           `yaml:"session_prefix"`
	Overwrite     bool             `yaml:"overwrite"`
	CSV           CSVStorageConfig `yaml:"csv"`
}

// PipelineConfig is the top-level structure for pipeline.yaml.
type PipelineConfig struct {
	Pipeline PipelineSection `yaml:"pipeline"`
	Dataset  DatasetSection  `yaml:"dataset"`
	Quality  QualitySection  `yaml:"quality"`
	Labels   LabelsSection   `yaml:"labels"`
	Storage  StorageSection  `yaml:"storage"`
}

// proportionsTolerance bounds the accepted deviation of the fraction sum
// from 1.0.
const proportionsTolerance = 1e-6

// LoadPipelineConfig reads, parses and validates pipeline.yaml.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	var cfg PipelineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration surface invariants.
func (c *PipelineConfig) Validate() error {
	p := c.Pipeline.Proportions
	sum := p.Train + p.Validation + p.Test
	if math.Abs(sum-1.0) > proportionsTolerance {
		return fmt.Errorf("pipeline config: proportions sum to %g, want 1.0", sum)
	}
	if p.Train <= 0 || p.Validation <= 0 || p.Test <= 0 {
		return fmt.Errorf("pipeline config: proportions must all be positive")
	}

	switch c.Pipeline.MinClassPolicy {
	case PolicyClass, PolicyClassUser, PolicyNone, "":
	default:
		return fmt.Errorf("pipeline config: unknown min_class_policy %q", c.Pipeline.MinClassPolicy)
	}

	if len(c.Dataset.Modalities) < 2 {
		return fmt.Errorf("pipeline config: need at least two modalities, got %d", len(c.Dataset.Modalities))
	}
	refOK := false
	for _, m := range c.Dataset.Modalities {
		if m.Name == "" || m.FilePrefix == "" {
			return fmt.Errorf("pipeline config: modality name and file_prefix are required")
		}
		if m.Channels <= 0 {
			return fmt.Errorf("pipeline config: modality %s: channels must be positive", m.Name)
		}
		if m.Name == c.Pipeline.ReferenceModality {
			refOK = true
		}
	}
	if c.Pipeline.ReferenceModality != "" && !refOK {
		return fmt.Errorf("pipeline config: reference_modality %q is not a configured modality",
			c.Pipeline.ReferenceModality)
	}
	if c.Dataset.TrialLength <= 0 {
		return fmt.Errorf("pipeline config: dataset.trial_length must be positive")
	}
	return nil
}
