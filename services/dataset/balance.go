package dataset

import (
	"fmt"
	"math/rand"
	"sort"

	"har-prep/models"
)

// Balancing operates on grouped row indices, never on row content.
// Unlabeled rows (activity code -1) are excluded from the output: they
// carry no class and would distort the minima.
//
// Determinism: groups are walked in sorted key order and subsampled with
// the caller's explicit seeded generator, so identical input and seed
// select byte-identical row sets.

// BalanceToMinimumClass subsamples every activity class down to the
// smallest class's row count. The label map supplies the class domain:
// a class with zero rows is ErrInsufficientData, naming the class.
// Row order of the input is preserved in the output.
func BalanceToMinimumClass(ds *models.Dataset, lm *LabelMap, rng *rand.Rand) (*models.Dataset, error) {
	groups := make(map[int][]int)
	for i, row := range ds.Rows {
		if row.Meta.ActivityCode == models.UnlabeledCode {
			continue
		}
		groups[row.Meta.ActivityCode] = append(groups[row.Meta.ActivityCode], i)
	}

	codes := make([]int, 0, len(lm.Codes))
	for _, label := range lm.Labels() {
		code := lm.Codes[label]
		if len(groups[code]) == 0 {
			return nil, fmt.Errorf("%w: %q (code %d)", ErrInsufficientData, label, code)
		}
		codes = append(codes, code)
	}
	sort.Ints(codes)

	m := -1
	for _, code := range codes {
		if n := len(groups[code]); m < 0 || n < m {
			m = n
		}
	}

	var selected []int
	for _, code := range codes {
		selected = append(selected, subsample(groups[code], m, rng)...)
	}
	sort.Ints(selected)
	return ds.Subset(selected), nil
}

// BalanceToMinimumClassAndUser equalizes (activity code, user) groups
// downward to the smallest non-empty group's size. Groups already at or
// below the minimum are kept whole: under-represented users are
// tolerated, never upsampled or dropped. Row order is preserved.
func BalanceToMinimumClassAndUser(ds *models.Dataset, rng *rand.Rand) (*models.Dataset, error) {
	type codeUser struct {
		code, user int
	}
	groups := make(map[codeUser][]int)
	for i, row := range ds.Rows {
		if row.Meta.ActivityCode == models.UnlabeledCode {
			continue
		}
		k := codeUser{code: row.Meta.ActivityCode, user: row.Meta.User}
		groups[k] = append(groups[k], i)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no labeled rows", ErrInsufficientData)
	}

	keys := make([]codeUser, 0, len(groups))
	m := -1
	for k, idx := range groups {
		keys = append(keys, k)
		if m < 0 || len(idx) < m {
			m = len(idx)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].user < keys[j].user
	})

	var selected []int
	for _, k := range keys {
		selected = append(selected, subsample(groups[k], m, rng)...)
	}
	sort.Ints(selected)
	return ds.Subset(selected), nil
}

// subsample picks m of the given indices uniformly at random (all of them
// when the group is already at or below m). The picked indices come back
// sorted so the caller preserves input row order.
func subsample(indices []int, m int, rng *rand.Rand) []int {
	if len(indices) <= m {
		return indices
	}
	perm := rng.Perm(len(indices))
	picked := make([]int, m)
	for i := 0; i < m; i++ {
		picked[i] = indices[perm[i]]
	}
	sort.Ints(picked)
	return picked
}
