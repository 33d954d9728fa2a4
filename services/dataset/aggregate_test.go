package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"har-prep/models"
	"har-prep/services/dataset"
)

// sessionTable builds one aligned session table carrying a raw label
// (codes are only assigned by aggregation).
func sessionTable(base int64, n, user int, placement, label string) *models.Dataset {
	ds := newTable()
	for i := 0; i < n; i++ {
		r := row(base+int64(i), user, 0)
		r.Meta.Label = label
		r.Meta.Placement = placement
		r.Meta.ActivityCode = 0
		ds.Append(r)
	}
	return ds
}

// TestAggregate_ConcatenatesInOrder verifies session order is preserved,
// codes are assigned from the label map, and the diagnostic counts are
// grouped by (user, code, placement).
func TestAggregate_ConcatenatesInOrder(t *testing.T) {
	sessions := []*models.Dataset{
		sessionTable(0, 3, 1, "RightPocket", "SIT"),
		sessionTable(100, 2, 2, "Backpack", "RUN"),
		sessionTable(200, 4, 1, "RightPocket", "RUN"),
		sessionTable(300, 2, 1, "RightPocket", "-1"),
	}
	lm := dataset.NewLabelMap("v1", dataset.Vocabulary(sessions), nil) // RUN→0, SIT→1

	full, counts, err := dataset.Aggregate(sessions, lm)
	require.NoError(t, err)
	require.Equal(t, 11, full.Len())

	assert.Equal(t, []int64{0, 1, 2, 100, 101, 200, 201, 202, 203, 300, 301},
		timestamps(full), "session order preserved")

	assert.Equal(t, 1, full.Rows[0].Meta.ActivityCode, "SIT mapped")
	assert.Equal(t, 0, full.Rows[3].Meta.ActivityCode, "RUN mapped")
	assert.Equal(t, models.UnlabeledCode, full.Rows[9].Meta.ActivityCode, "-1 stays unlabeled")

	assert.Equal(t, 3, counts[dataset.GroupKey{User: 1, Code: 1, Placement: "RightPocket"}])
	assert.Equal(t, 2, counts[dataset.GroupKey{User: 2, Code: 0, Placement: "Backpack"}])
	assert.Equal(t, 4, counts[dataset.GroupKey{User: 1, Code: 0, Placement: "RightPocket"}])
	assert.Equal(t, 2, counts[dataset.GroupKey{User: 1, Code: models.UnlabeledCode, Placement: "RightPocket"}])
}

// TestAggregate_CodeStability: reading sessions in a different order
// yields identical codes, because the mapping depends only on the label
// vocabulary.
func TestAggregate_CodeStability(t *testing.T) {
	forward := []*models.Dataset{
		sessionTable(0, 2, 1, "RightPocket", "WALK"),
		sessionTable(100, 2, 1, "RightPocket", "SIT"),
	}
	backward := []*models.Dataset{
		sessionTable(100, 2, 1, "RightPocket", "SIT"),
		sessionTable(0, 2, 1, "RightPocket", "WALK"),
	}

	lmF := dataset.NewLabelMap("v1", dataset.Vocabulary(forward), nil)
	lmB := dataset.NewLabelMap("v1", dataset.Vocabulary(backward), nil)
	assert.Equal(t, lmF.Codes, lmB.Codes)
}

// TestAggregate_SchemaMismatch rejects sessions whose modality
// configuration differs from the first session's.
func TestAggregate_SchemaMismatch(t *testing.T) {
	odd := models.NewDataset([]models.Modality{models.ModalityAccel}, []int{3})
	r := row(500, 3, 0)
	r.Meta.Label = "SIT"
	r.Samples = r.Samples[:1]
	odd.Append(r)

	sessions := []*models.Dataset{sessionTable(0, 2, 1, "RightPocket", "SIT"), odd}
	lm := dataset.NewLabelMap("v1", dataset.Vocabulary(sessions), nil)

	_, _, err := dataset.Aggregate(sessions, lm)
	assert.ErrorIs(t, err, dataset.ErrSchemaMismatch)
}

// TestAggregate_UnknownLabel surfaces labels missing from an explicit map.
func TestAggregate_UnknownLabel(t *testing.T) {
	sessions := []*models.Dataset{sessionTable(0, 2, 1, "RightPocket", "CARTWHEEL")}
	lm := dataset.NewLabelMap("v1", []string{"SIT"}, nil)

	_, _, err := dataset.Aggregate(sessions, lm)
	assert.ErrorIs(t, err, dataset.ErrUnknownLabel)
}
