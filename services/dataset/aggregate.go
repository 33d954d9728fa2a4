package dataset

import (
	"fmt"
	"sort"

	"har-prep/models"
)

// GroupKey identifies one (user, activity code, placement) cell of the
// diagnostic count table emitted by aggregation.
type GroupKey struct {
	User      int
	Code      int
	Placement string
}

// Counts is the rows-per-group diagnostic used for balancing decisions.
type Counts map[GroupKey]int

// SortedKeys returns the count keys in (user, code, placement) order.
func (c Counts) SortedKeys() []GroupKey {
	keys := make([]GroupKey, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].User != keys[j].User {
			return keys[i].User < keys[j].User
		}
		if keys[i].Code != keys[j].Code {
			return keys[i].Code < keys[j].Code
		}
		return keys[i].Placement < keys[j].Placement
	})
	return keys
}

// Aggregate concatenates aligned per-session tables, preserving session
// order, and assigns every row its activity code from the label map.
// All sessions must share the first session's column schema.
//
// Returns the aggregated table and the per-(user, code, placement) row
// counts.
func Aggregate(sessions []*models.Dataset, lm *LabelMap) (*models.Dataset, Counts, error) {
	if len(sessions) == 0 {
		return nil, nil, fmt.Errorf("dataset: no sessions to aggregate")
	}

	out := models.NewDataset(sessions[0].Modalities, sessions[0].ChannelCounts)
	counts := make(Counts)

	for _, sess := range sessions {
		if !out.SameSchema(sess) {
			id := "empty session"
			if sess.Len() > 0 {
				id = sess.Rows[0].Meta.ID()
			}
			return nil, nil, fmt.Errorf("%w: %s has modalities %v", ErrSchemaMismatch, id, sess.Modalities)
		}
		for _, row := range sess.Rows {
			code, err := lm.Code(row.Meta.Label)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", row.Meta.ID(), err)
			}
			out.Append(row.WithCode(code))
			counts[GroupKey{User: row.Meta.User, Code: code, Placement: row.Meta.Placement}]++
		}
	}
	return out, counts, nil
}

// Vocabulary collects the distinct raw labels across sessions, for
// deriving a LabelMap when none is configured.
func Vocabulary(sessions []*models.Dataset) []string {
	seen := make(map[string]struct{})
	for _, sess := range sessions {
		for _, row := range sess.Rows {
			seen[row.Meta.Label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
