package views

import "har-prep/models"

// Output file names inside one run's output directory.
// This file serves as the single source of truth for the persisted layout.
const (
	FileDataset    = "dataset.csv"
	FileTrain      = "train.csv"
	FileValidation = "validation.csv"
	FileTest       = "test.csv"
	FileLabelMap   = "label_map.yaml"
	FileManifest   = "manifest.yaml"
)

// MetadataColumns are the fixed trailing columns of every persisted table,
// after the merge timestamp, per-modality timestamps, and channel columns.
var MetadataColumns = []string{"user", "pos", "trial", "activity code"}

// DatasetColumns returns the full column list for a dataset's schema.
// The actual header writing is handled by Dataset.CSVHeader(); this is
// kept as a human-readable reference and for validation in tests.
func DatasetColumns(modalities []models.Modality, channelCounts []int) []string {
	cols := []string{"timestamp"}
	for _, m := range modalities {
		cols = append(cols, string(m)+"-timestamp")
	}
	for i, m := range modalities {
		for c := 0; c < channelCounts[i]; c++ {
			cols = append(cols, string(m)+"-"+models.AxisName(c))
		}
	}
	return append(cols, MetadataColumns...)
}
