package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"har-prep/utils"
)

const validConfig = `
pipeline:
  seed: 42
  reference_modality: accel
  min_class_policy: class_user
  user_exclusive_splits: true
  proportions:
    train: 0.7
    validation: 0.15
    test: 0.15
dataset:
  root: data/original/HIAAC
  modalities:
    - name: accel
      file_prefix: accelerometer
      channels: 3
    - name: gyro
      file_prefix: gyroscope
      channels: 3
  trial_length: 300
quality:
  enabled: true
  reference_rate_hz: 95
  max_amplitude: 50
storage:
  base_dir: data/processed
  session_prefix: har
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// TestLoadPipelineConfig_Valid parses and validates the reference config.
func TestLoadPipelineConfig_Valid(t *testing.T) {
	cfg, err := utils.LoadPipelineConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Pipeline.Seed)
	assert.Equal(t, "accel", cfg.Pipeline.ReferenceModality)
	assert.Equal(t, utils.PolicyClassUser, cfg.Pipeline.MinClassPolicy)
	assert.True(t, cfg.Pipeline.UserExclusiveSplits)
	assert.Len(t, cfg.Dataset.Modalities, 2)
	assert.Equal(t, 300, cfg.Dataset.TrialLength)
	assert.Equal(t, 95.0, cfg.Quality.ReferenceRateHz)
}

// TestLoadPipelineConfig_Invalid covers the validation surface.
func TestLoadPipelineConfig_Invalid(t *testing.T) {
	cases := []struct {
		name, from, to string
	}{
		{"proportions must sum to 1", "train: 0.7", "train: 0.8"},
		{"unknown balance policy", "min_class_policy: class_user", "min_class_policy: downsample"},
		{"reference must be a modality", "reference_modality: accel", "reference_modality: magneto"},
		{"trial length must be positive", "trial_length: 300", "trial_length: 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := strings.Replace(validConfig, tc.from, tc.to, 1)
			_, err := utils.LoadPipelineConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
