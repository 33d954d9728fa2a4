package dataset_test

import (
	"har-prep/models"
)

// row builds one aligned record with a unique timestamp acting as its
// identity across partition checks.
func row(ts int64, user, code int) models.AlignedRecord {
	return models.AlignedRecord{
		TimestampMs: ts,
		Meta: models.SessionMetadata{
			User:         user,
			Placement:    "RightPocket",
			Trial:        int(ts) / 100,
			ActivityCode: code,
		},
		Samples: []models.SensorSample{
			{TimestampMs: ts, Values: []float64{0.1, 0.2, 9.8}},
			{TimestampMs: ts + 1, Values: []float64{0.01, 0.02, 0.03}},
		},
	}
}

func newTable(rows ...models.AlignedRecord) *models.Dataset {
	ds := models.NewDataset(
		[]models.Modality{models.ModalityAccel, models.ModalityGyro},
		[]int{3, 3},
	)
	ds.Append(rows...)
	return ds
}

// timestamps projects a table onto its row identities.
func timestamps(ds *models.Dataset) []int64 {
	ts := make([]int64, ds.Len())
	for i, r := range ds.Rows {
		ts[i] = r.TimestampMs
	}
	return ts
}

// classRows builds n rows of one class for one user, with timestamps
// starting at base.
func classRows(base int64, n, user, code int) []models.AlignedRecord {
	rows := make([]models.AlignedRecord, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, row(base+int64(i), user, code))
	}
	return rows
}
