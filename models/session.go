package models

import "fmt"

// UnlabeledCode marks rows whose trial had no annotation (or an explicit
// "-1" label in the raw data). Unlabeled rows are excluded from balancing
// minima and from the per-split class-coverage guarantee.
const UnlabeledCode = -1

// SessionMetadata tags every row produced for one recording session.
// A session is one labeled trial of one user at one device placement.
//
// Label is the raw annotation string from the recording; ActivityCode is
// assigned later by the aggregation stage from the run's label map, so
// readers and the aligner never depend on a global label registry.
type SessionMetadata struct {
	User         int
	Placement    string
	Trial        int
	Label        string
	ActivityCode int
}

// ID returns a compact session identity for log lines.
func (m SessionMetadata) ID() string {
	return fmt.Sprintf("user=%d pos=%s trial=%d", m.User, m.Placement, m.Trial)
}

// Equal compares the identity fields two modalities of the same session
// must agree on. ActivityCode is excluded: it is not set until aggregation.
func (m SessionMetadata) Equal(o SessionMetadata) bool {
	return m.User == o.User &&
		m.Placement == o.Placement &&
		m.Trial == o.Trial &&
		m.Label == o.Label
}
