package views

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// RunManifest records everything needed to reproduce or audit one dataset
// release: the run identity, the seed and policy that drove subsampling,
// and the resulting row counts. Persisted as manifest.yaml next to the
// dataset.
type RunManifest struct {
	RunID             string             `yaml:"run_id"`
	CreatedAt         time.Time          `yaml:"created_at"`
	DatasetRoot       string             `yaml:"dataset_root"`
	Seed              int64              `yaml:"seed"`
	ReferenceModality string             `yaml:"reference_modality"`
	MinClassPolicy    string             `yaml:"min_class_policy"`
	Proportions       map[string]float64 `yaml:"proportions"`
	LabelMapVersion   string             `yaml:"label_map_version"`
	SessionsAligned   int                `yaml:"sessions_aligned"`
	SessionsDropped   int                `yaml:"sessions_dropped"`
	DatasetRows       int                `yaml:"dataset_rows"`
	SplitRows         map[string]int     `yaml:"split_rows"`
}

// NewRunManifest stamps a fresh manifest with a run id and creation time.
func NewRunManifest() *RunManifest {
	return &RunManifest{
		RunID:       uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Proportions: make(map[string]float64),
		SplitRows:   make(map[string]int),
	}
}

// Save writes the manifest into dir.
func (m *RunManifest) Save(dir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileManifest), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
