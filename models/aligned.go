package models

// AlignedRecord is one time-aligned observation across all configured
// modalities: the reference timestamp that drove the merge, the session
// metadata, and exactly one sample per modality. Each sample keeps its own
// original timestamp for traceability; samples are never synthesized.
//
// Samples is ordered to match the owning Dataset's Modalities slice.
type AlignedRecord struct {
	TimestampMs int64
	Meta        SessionMetadata
	Samples     []SensorSample
}

// WithCode returns a copy of the record with its activity code set.
// Records are treated as immutable, so code assignment copies.
func (r AlignedRecord) WithCode(code int) AlignedRecord {
	r.Meta.ActivityCode = code
	return r
}
