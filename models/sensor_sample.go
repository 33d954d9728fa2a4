package models

// SensorSample holds one reading of a single sensor stream: the device
// timestamp in milliseconds (rebased to start at 0 per series) and the
// ordered channel values (x, y, z for a 3-axis sensor). Immutable once read.
type SensorSample struct {
	TimestampMs int64
	Values      []float64
}

// Series is one modality's time series for a single session, sorted
// ascending by timestamp. Meta is attached uniformly to every sample.
type Series struct {
	Modality Modality
	Meta     SessionMetadata
	Samples  []SensorSample
}

// Len returns the number of samples in the series.
func (s Series) Len() int { return len(s.Samples) }

// Timestamps returns the sample timestamps in series order.
func (s Series) Timestamps() []int64 {
	ts := make([]int64, len(s.Samples))
	for i, smp := range s.Samples {
		ts[i] = smp.TimestampMs
	}
	return ts
}

// Sorted reports whether the samples are in ascending timestamp order.
func (s Series) Sorted() bool {
	for i := 1; i < len(s.Samples); i++ {
		if s.Samples[i].TimestampMs < s.Samples[i-1].TimestampMs {
			return false
		}
	}
	return true
}

// Channel extracts one channel's values across the whole series.
// Returns nil if the channel index is out of range for any sample.
func (s Series) Channel(i int) []float64 {
	vals := make([]float64, len(s.Samples))
	for j, smp := range s.Samples {
		if i < 0 || i >= len(smp.Values) {
			return nil
		}
		vals[j] = smp.Values[i]
	}
	return vals
}
