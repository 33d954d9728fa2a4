package models

import "sort"

// Dataset is an ordered sequence of AlignedRecords sharing one schema:
// the modality order and the channel count per modality are fixed at
// construction. Stages never mutate a Dataset they received; they build
// and return a new one (Subset shares the immutable row values).
type Dataset struct {
	Modalities    []Modality
	ChannelCounts []int
	Rows          []AlignedRecord
}

// NewDataset creates an empty dataset for the given modality configuration.
// channelCounts[i] is the number of channels of Modalities[i].
func NewDataset(modalities []Modality, channelCounts []int) *Dataset {
	return &Dataset{
		Modalities:    append([]Modality(nil), modalities...),
		ChannelCounts: append([]int(nil), channelCounts...),
	}
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Append adds rows to the dataset (append-only, never reorders).
func (d *Dataset) Append(rows ...AlignedRecord) {
	d.Rows = append(d.Rows, rows...)
}

// SameSchema reports whether two datasets share modality order and
// channel counts, i.e. whether their rows are concatenation-compatible.
func (d *Dataset) SameSchema(o *Dataset) bool {
	if len(d.Modalities) != len(o.Modalities) {
		return false
	}
	for i := range d.Modalities {
		if d.Modalities[i] != o.Modalities[i] || d.ChannelCounts[i] != o.ChannelCounts[i] {
			return false
		}
	}
	return true
}

// Subset returns a new dataset containing the rows at the given indices,
// in the given order. Row values are shared, not copied; rows are
// immutable once aligned so sharing is safe.
func (d *Dataset) Subset(indices []int) *Dataset {
	out := NewDataset(d.Modalities, d.ChannelCounts)
	out.Rows = make([]AlignedRecord, 0, len(indices))
	for _, i := range indices {
		out.Rows = append(out.Rows, d.Rows[i])
	}
	return out
}

// Users returns the sorted distinct user ids present in the dataset.
func (d *Dataset) Users() []int {
	seen := make(map[int]struct{})
	for _, r := range d.Rows {
		seen[r.Meta.User] = struct{}{}
	}
	users := make([]int, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Ints(users)
	return users
}

// Codes returns the sorted distinct activity codes present in the dataset,
// including UnlabeledCode if any row carries it.
func (d *Dataset) Codes() []int {
	seen := make(map[int]struct{})
	for _, r := range d.Rows {
		seen[r.Meta.ActivityCode] = struct{}{}
	}
	codes := make([]int, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// LabeledCodes returns Codes() without UnlabeledCode.
func (d *Dataset) LabeledCodes() []int {
	codes := d.Codes()
	out := codes[:0]
	for _, c := range codes {
		if c != UnlabeledCode {
			out = append(out, c)
		}
	}
	return out
}

// ─── CSV surface ────────────────────────────────────────────────────────

// CSVHeader returns the canonical column order:
//
//	timestamp, <mod>-timestamp…, <mod>-x/y/z…, user, pos, trial, activity code
func (d *Dataset) CSVHeader() []string {
	h := []string{"timestamp"}
	for _, m := range d.Modalities {
		h = append(h, string(m)+"-timestamp")
	}
	for i, m := range d.Modalities {
		for c := 0; c < d.ChannelCounts[i]; c++ {
			h = append(h, string(m)+"-"+AxisName(c))
		}
	}
	return append(h, "user", "pos", "trial", "activity code")
}

// CSVRow renders row i in CSVHeader order.
func (d *Dataset) CSVRow(i int) []string {
	r := d.Rows[i]
	row := []string{itoa64(r.TimestampMs)}
	for _, s := range r.Samples {
		row = append(row, itoa64(s.TimestampMs))
	}
	for mi, s := range r.Samples {
		for c := 0; c < d.ChannelCounts[mi]; c++ {
			row = append(row, ftoa(s.Values[c], 6))
		}
	}
	return append(row,
		itoa(r.Meta.User), r.Meta.Placement, itoa(r.Meta.Trial),
		itoa(r.Meta.ActivityCode))
}
