// Package align merges a session's per-modality time series into one
// aligned table by nearest-timestamp matching.
//
// Contract:
//   - Input series are sorted ascending by timestamp; each covers the same
//     session (identical user/placement/trial/label metadata).
//   - One modality is the reference (first series by default); its
//     timestamps key the output. For every reference sample, each other
//     modality contributes the sample closest in time, ties broken toward
//     the earlier sample. Samples are matched, never synthesized: when the
//     reference is sampled finer than a secondary modality, many rows may
//     share one secondary sample.
//   - Every output row carries exactly one sample per input modality,
//     each with its own original timestamp.
//
// Errors (matched with errors.Is):
//   - ErrEmptySeries     — a modality has no samples; callers drop the
//     session with a warning and continue.
//   - ErrSessionMismatch — metadata disagrees between modalities that are
//     supposedly from the same session.
//   - ErrUnsortedSeries  — a series violates the ascending-timestamp
//     precondition.
package align

import (
	"errors"
	"fmt"
	"sort"

	"har-prep/models"
)

var (
	// ErrEmptySeries indicates a modality with no samples.
	ErrEmptySeries = errors.New("align: modality series is empty")

	// ErrSessionMismatch indicates session metadata disagreement between
	// modalities of one session.
	ErrSessionMismatch = errors.New("align: session metadata mismatch between modalities")

	// ErrUnsortedSeries indicates a series whose timestamps are not
	// ascending.
	ErrUnsortedSeries = errors.New("align: series timestamps not sorted ascending")
)

// Options configures the merge.
//
// Reference names the modality whose timestamps drive alignment; empty
// selects the first series (the most granular stream should come first).
type Options struct {
	Reference models.Modality
}

// Align merges two or more per-modality series of one session into a
// per-session dataset. The output modality order is the input series
// order; the input series are not mutated.
func Align(series []models.Series, opts Options) (*models.Dataset, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("align: need at least two series, got %d", len(series))
	}

	refIdx := 0
	if opts.Reference != "" {
		refIdx = -1
		for i, s := range series {
			if s.Modality == opts.Reference {
				refIdx = i
				break
			}
		}
		if refIdx < 0 {
			return nil, fmt.Errorf("align: reference modality %q not among input series", opts.Reference)
		}
	}
	ref := series[refIdx]

	for _, s := range series {
		if s.Len() == 0 {
			return nil, fmt.Errorf("%w: %s %s", ErrEmptySeries, s.Meta.ID(), s.Modality)
		}
		if !s.Sorted() {
			return nil, fmt.Errorf("%w: %s %s", ErrUnsortedSeries, s.Meta.ID(), s.Modality)
		}
		if !s.Meta.Equal(ref.Meta) {
			return nil, fmt.Errorf("%w: %s (%s) vs %s (%s)",
				ErrSessionMismatch, ref.Meta.ID(), ref.Modality, s.Meta.ID(), s.Modality)
		}
	}

	modalities := make([]models.Modality, len(series))
	channels := make([]int, len(series))
	timestamps := make([][]int64, len(series))
	for i, s := range series {
		modalities[i] = s.Modality
		channels[i] = len(s.Samples[0].Values)
		timestamps[i] = s.Timestamps()
	}

	out := models.NewDataset(modalities, channels)
	out.Rows = make([]models.AlignedRecord, 0, ref.Len())
	for _, refSample := range ref.Samples {
		row := models.AlignedRecord{
			TimestampMs: refSample.TimestampMs,
			Meta:        ref.Meta,
			Samples:     make([]models.SensorSample, len(series)),
		}
		for i, s := range series {
			if i == refIdx {
				row.Samples[i] = refSample
				continue
			}
			row.Samples[i] = s.Samples[nearest(timestamps[i], refSample.TimestampMs)]
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// nearest returns the index of the timestamp closest to t in the sorted
// slice ts. Equidistant candidates resolve to the earlier one.
func nearest(ts []int64, t int64) int {
	j := sort.Search(len(ts), func(i int) bool { return ts[i] >= t })
	if j == 0 {
		return 0
	}
	if j == len(ts) {
		return len(ts) - 1
	}
	// ts[j-1] < t <= ts[j]; pick the later only when strictly closer.
	if ts[j]-t < t-ts[j-1] {
		return j
	}
	return j - 1
}
