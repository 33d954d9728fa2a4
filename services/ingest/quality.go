package ingest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"har-prep/models"
)

// ErrBadSignal marks a series that fails the quality gate. Sessions
// containing such a series are dropped with a warning, never aborting
// the run.
var ErrBadSignal = errors.New("ingest: signal failed quality check")

// QualityOptions bounds an acceptable series.
//
//   - ReferenceRateHz: the dataset's nominal sampling rate. A series whose
//     mean sampling period is coarser than the nominal period is rejected
//     (the recording lost samples).
//   - MaxAmplitude: absolute bound on any channel value (e.g. 50 m/s² for
//     a phone accelerometer).
type QualityOptions struct {
	ReferenceRateHz float64
	MaxAmplitude    float64
}

// CheckSeries validates one series against the quality gate: no NaN
// values, amplitude within bounds, mean sampling period no coarser than
// the reference rate's period. Returns an error wrapping ErrBadSignal
// naming the failing check.
func CheckSeries(s models.Series, opts QualityOptions) error {
	if s.Len() < 2 {
		return fmt.Errorf("%w: %s %s: too few samples (%d)", ErrBadSignal, s.Meta.ID(), s.Modality, s.Len())
	}

	for c := 0; ; c++ {
		vals := s.Channel(c)
		if vals == nil {
			break
		}
		if floats.HasNaN(vals) {
			return fmt.Errorf("%w: %s %s: NaN in channel %s", ErrBadSignal, s.Meta.ID(), s.Modality, models.AxisName(c))
		}
		if opts.MaxAmplitude > 0 {
			if hi, lo := floats.Max(vals), floats.Min(vals); hi > opts.MaxAmplitude || math.Abs(lo) > opts.MaxAmplitude {
				return fmt.Errorf("%w: %s %s: channel %s amplitude [%g, %g] exceeds %g",
					ErrBadSignal, s.Meta.ID(), s.Modality, models.AxisName(c), lo, hi, opts.MaxAmplitude)
			}
		}
	}

	if opts.ReferenceRateHz > 0 {
		ts := s.Timestamps()
		diffs := make([]float64, len(ts)-1)
		for i := 1; i < len(ts); i++ {
			diffs[i-1] = float64(ts[i] - ts[i-1])
		}
		meanPeriod := stat.Mean(diffs, nil)
		refPeriod := 1000.0 / opts.ReferenceRateHz // ms
		if meanPeriod >= refPeriod {
			return fmt.Errorf("%w: %s %s: mean period %.2fms vs reference %.2fms",
				ErrBadSignal, s.Meta.ID(), s.Modality, meanPeriod, refPeriod)
		}
	}
	return nil
}
