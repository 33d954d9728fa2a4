package align_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"har-prep/models"
	"har-prep/services/align"
)

func meta() models.SessionMetadata {
	return models.SessionMetadata{User: 7, Placement: "RightPocket", Trial: 2, Label: "RUN"}
}

func series(mod models.Modality, m models.SessionMetadata, ts ...int64) models.Series {
	s := models.Series{Modality: mod, Meta: m}
	for i, t := range ts {
		s.Samples = append(s.Samples, models.SensorSample{
			TimestampMs: t,
			Values:      []float64{float64(i), float64(i) + 0.5, float64(i) - 0.5},
		})
	}
	return s
}

// TestAlign_NearestMatch verifies that every reference timestamp draws the
// closest secondary sample and that both timestamps are recorded per row.
func TestAlign_NearestMatch(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 10, 20, 30)
	gyro := series(models.ModalityGyro, meta(), 2, 11, 29)

	out, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	require.NoError(t, err)
	require.Equal(t, 4, out.Len(), "one row per reference sample")

	wantGyro := []int64{2, 11, 11, 29} // 20 is equidistant to 11 and 29 → earlier wins
	for i, row := range out.Rows {
		assert.Equal(t, accel.Samples[i].TimestampMs, row.TimestampMs, "row %d keyed on reference", i)
		assert.Len(t, row.Samples, 2, "row %d has exactly one sample per modality", i)
		assert.Equal(t, accel.Samples[i].TimestampMs, row.Samples[0].TimestampMs, "row %d reference sample", i)
		assert.Equal(t, wantGyro[i], row.Samples[1].TimestampMs, "row %d matched gyro timestamp", i)
	}
}

// TestAlign_DuplicateMatches checks that a coarse secondary modality may
// serve several reference rows: expected, not an error.
func TestAlign_DuplicateMatches(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 1, 2, 3, 4, 5)
	gyro := series(models.ModalityGyro, meta(), 0, 100)

	out, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	require.NoError(t, err)
	for i, row := range out.Rows {
		assert.Equal(t, int64(0), row.Samples[1].TimestampMs, "row %d reuses the only nearby gyro sample", i)
	}
}

// TestAlign_EmptySeries verifies the empty-modality sentinel, which makes
// the caller drop the session with a warning.
func TestAlign_EmptySeries(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 10)
	gyro := models.Series{Modality: models.ModalityGyro, Meta: meta()}

	_, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	assert.ErrorIs(t, err, align.ErrEmptySeries)
}

// TestAlign_SessionMismatch verifies that modalities carrying different
// session metadata are rejected with ErrSessionMismatch.
func TestAlign_SessionMismatch(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 10)
	other := meta()
	other.User = 8
	gyro := series(models.ModalityGyro, other, 1, 9)

	_, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	assert.ErrorIs(t, err, align.ErrSessionMismatch)
}

// TestAlign_UnsortedSeries verifies the ascending-timestamp precondition.
func TestAlign_UnsortedSeries(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 10)
	gyro := series(models.ModalityGyro, meta(), 9, 1)

	_, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	assert.ErrorIs(t, err, align.ErrUnsortedSeries)
}

// TestAlign_ConfiguredReference checks that Options.Reference overrides
// the first-series default.
func TestAlign_ConfiguredReference(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 10, 20, 30)
	gyro := series(models.ModalityGyro, meta(), 5, 25)

	out, err := align.Align([]models.Series{accel, gyro},
		align.Options{Reference: models.ModalityGyro})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len(), "gyro timestamps drive alignment")
	assert.Equal(t, int64(5), out.Rows[0].TimestampMs)
	assert.Equal(t, int64(25), out.Rows[1].TimestampMs)

	_, err = align.Align([]models.Series{accel, gyro},
		align.Options{Reference: models.ModalityMag})
	assert.Error(t, err, "unknown reference modality must error")
}

// TestAlign_MaxGapBound asserts the sanity bound on nearest-match
// distance: no matched sample is further from its reference timestamp
// than the largest gap between consecutive reference timestamps.
func TestAlign_MaxGapBound(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 7, 9, 30, 33, 41)
	gyro := series(models.ModalityGyro, meta(), 1, 8, 26, 35, 40)

	var maxGap int64
	for i := 1; i < len(accel.Samples); i++ {
		if g := accel.Samples[i].TimestampMs - accel.Samples[i-1].TimestampMs; g > maxGap {
			maxGap = g
		}
	}

	out, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	require.NoError(t, err)
	for i, row := range out.Rows {
		dist := row.Samples[1].TimestampMs - row.TimestampMs
		if dist < 0 {
			dist = -dist
		}
		assert.LessOrEqual(t, dist, maxGap, "row %d match distance within max reference gap", i)
	}
}

// TestAlign_InputUnchanged confirms the aligner never mutates its input
// series (tables are reusable for diagnostics).
func TestAlign_InputUnchanged(t *testing.T) {
	accel := series(models.ModalityAccel, meta(), 0, 10, 20)
	gyro := series(models.ModalityGyro, meta(), 4, 18)
	before := append([]models.SensorSample(nil), gyro.Samples...)

	_, err := align.Align([]models.Series{accel, gyro}, align.Options{})
	require.NoError(t, err)
	assert.Equal(t, before, gyro.Samples)
}
