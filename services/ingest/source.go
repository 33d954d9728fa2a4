package ingest

import "har-prep/models"

// SessionTables is one recording session's per-modality series, all
// carrying the same session metadata. The aligner consumes one of these
// per session.
type SessionTables struct {
	Series []models.Series
}

// ID returns the session identity for log lines, taken from the first
// series (the aligner verifies all series agree).
func (s SessionTables) ID() string {
	if len(s.Series) == 0 {
		return "empty session"
	}
	return s.Series[0].Meta.ID()
}

// SessionSource is the capability every raw-format adapter must provide:
// read a dataset root and return one SessionTables per recording session.
// Concrete adapters own file discovery and vendor-format parsing.
type SessionSource interface {
	Read(root string) ([]SessionTables, error)
}
