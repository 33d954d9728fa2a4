package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"har-prep/models"
)

const numSplits = 3

// SplitNames index the three partitions in canonical order.
var SplitNames = [numSplits]string{"train", "validation", "test"}

// Proportions holds the target train/validation/test fractions.
type Proportions struct {
	Train      float64
	Validation float64
	Test       float64
}

func (p Proportions) asArray() [numSplits]float64 {
	return [numSplits]float64{p.Train, p.Validation, p.Test}
}

// Validate checks the fractions are positive and sum to 1 within 1e-6.
func (p Proportions) Validate() error {
	sum := p.Train + p.Validation + p.Test
	if p.Train <= 0 || p.Validation <= 0 || p.Test <= 0 || math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: got %g/%g/%g", ErrBadProportions, p.Train, p.Validation, p.Test)
	}
	return nil
}

// SplitOptions configures Split.
//
//   - Proportions: target fractions; the class-coverage guarantee may
//     force small deviations.
//   - ByUser: when true (the default mode), whole users are assigned to
//     splits so no user's motion signature leaks across partitions. When
//     false the split is per-row, with the same coverage guarantee.
type SplitOptions struct {
	Proportions Proportions
	ByUser      bool
}

// SplitResult holds the three disjoint partitions. Their union is exactly
// the input table; no row appears twice.
type SplitResult struct {
	Train      *models.Dataset
	Validation *models.Dataset
	Test       *models.Dataset
}

// Datasets returns the partitions in SplitNames order.
func (r SplitResult) Datasets() [numSplits]*models.Dataset {
	return [numSplits]*models.Dataset{r.Train, r.Validation, r.Test}
}

// Split partitions the table into train/validation/test such that every
// labeled activity code present in the input appears in every partition.
// Unlabeled rows carry no coverage requirement.
//
// In ByUser mode the algorithm is greedy and deterministic: classes are
// walked in increasing order of carrier scarcity and each partition still
// missing a class receives the unassigned carrier with the most rows of
// that class; remaining users are then assigned largest-remainder style,
// each to the partition with the largest row deficit against its target
// (descending user row count, ties toward the earlier partition).
// ErrUnsatisfiableSplit is returned when a class has fewer distinct
// carriers than partitions, and also when the greedy coverage walk
// runs out of unassigned carriers for a class. The second case does
// not prove the input unsatisfiable, but scarcest-first makes false
// rejections rare in practice.
//
// In row mode rng shuffles each class's rows before the largest-remainder
// allocation; a class with fewer rows than partitions is likewise
// ErrUnsatisfiableSplit.
func Split(ds *models.Dataset, opts SplitOptions, rng *rand.Rand) (SplitResult, error) {
	if err := opts.Proportions.Validate(); err != nil {
		return SplitResult{}, err
	}
	if ds.Len() == 0 {
		return SplitResult{}, fmt.Errorf("dataset: cannot split an empty table")
	}

	var idx [numSplits][]int
	var err error
	if opts.ByUser {
		idx, err = splitByUser(ds, opts.Proportions)
	} else {
		idx, err = splitByRow(ds, opts.Proportions, rng)
	}
	if err != nil {
		return SplitResult{}, err
	}
	return SplitResult{
		Train:      ds.Subset(idx[0]),
		Validation: ds.Subset(idx[1]),
		Test:       ds.Subset(idx[2]),
	}, nil
}

func splitByUser(ds *models.Dataset, props Proportions) ([numSplits][]int, error) {
	var idx [numSplits][]int

	userRows := make(map[int][]int)
	userClassRows := make(map[int]map[int]int)
	classUsers := make(map[int][]int)
	for i, row := range ds.Rows {
		u := row.Meta.User
		userRows[u] = append(userRows[u], i)
		code := row.Meta.ActivityCode
		if code == models.UnlabeledCode {
			continue
		}
		if userClassRows[u] == nil {
			userClassRows[u] = make(map[int]int)
		}
		if userClassRows[u][code] == 0 {
			classUsers[code] = append(classUsers[code], u)
		}
		userClassRows[u][code]++
	}

	codes := make([]int, 0, len(classUsers))
	for code, users := range classUsers {
		if len(users) < numSplits {
			return idx, fmt.Errorf("%w: code %d has %d carrier user(s), need %d",
				ErrUnsatisfiableSplit, code, len(users), numSplits)
		}
		sort.Ints(users)
		codes = append(codes, code)
	}
	// Scarcest classes first; code ascending as tie-break.
	sort.Slice(codes, func(i, j int) bool {
		ni, nj := len(classUsers[codes[i]]), len(classUsers[codes[j]])
		if ni != nj {
			return ni < nj
		}
		return codes[i] < codes[j]
	})

	assignment := make(map[int]int) // user → split
	var splitRows [numSplits]int

	// Coverage pass: give every partition at least one carrier of every
	// class, scarcest class first.
	for _, code := range codes {
		var covered [numSplits]bool
		for u, s := range assignment {
			if userClassRows[u][code] > 0 {
				covered[s] = true
			}
		}
		for s := 0; s < numSplits; s++ {
			if covered[s] {
				continue
			}
			best := -1
			for _, u := range classUsers[code] {
				if _, done := assignment[u]; done {
					continue
				}
				if best < 0 || userClassRows[u][code] > userClassRows[best][code] ||
					(userClassRows[u][code] == userClassRows[best][code] && u < best) {
					best = u
				}
			}
			if best < 0 {
				// Every carrier was already consumed covering other
				// partitions or scarcer classes. The greedy walk
				// dead-ended; an exhaustive search over user subsets
				// could in principle still find an assignment.
				return idx, fmt.Errorf("%w: carrier assignment dead-ended: code %d has no unassigned carrier for %s",
					ErrUnsatisfiableSplit, code, SplitNames[s])
			}
			assignment[best] = s
			splitRows[s] += len(userRows[best])
			covered[s] = true
		}
	}

	// Fill pass: largest-remainder at user granularity. Each remaining
	// user goes to the partition with the largest deficit against its
	// target row count.
	var remaining []int
	for u := range userRows {
		if _, done := assignment[u]; !done {
			remaining = append(remaining, u)
		}
	}
	sort.Slice(remaining, func(i, j int) bool {
		ni, nj := len(userRows[remaining[i]]), len(userRows[remaining[j]])
		if ni != nj {
			return ni > nj
		}
		return remaining[i] < remaining[j]
	})

	total := float64(ds.Len())
	fractions := props.asArray()
	for _, u := range remaining {
		best := 0
		bestDeficit := math.Inf(-1)
		for s := 0; s < numSplits; s++ {
			deficit := fractions[s]*total - float64(splitRows[s])
			if deficit > bestDeficit {
				best, bestDeficit = s, deficit
			}
		}
		assignment[u] = best
		splitRows[best] += len(userRows[u])
	}

	// Emit row indices in input order: the partition is order-preserving.
	for i, row := range ds.Rows {
		s := assignment[row.Meta.User]
		idx[s] = append(idx[s], i)
	}
	return idx, nil
}

func splitByRow(ds *models.Dataset, props Proportions, rng *rand.Rand) ([numSplits][]int, error) {
	var idx [numSplits][]int

	groups := make(map[int][]int)
	for i, row := range ds.Rows {
		groups[row.Meta.ActivityCode] = append(groups[row.Meta.ActivityCode], i)
	}
	codes := make([]int, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	fractions := props.asArray()
	for _, code := range codes {
		rows := groups[code]
		labeled := code != models.UnlabeledCode
		if labeled && len(rows) < numSplits {
			return idx, fmt.Errorf("%w: code %d has %d row(s), need %d",
				ErrUnsatisfiableSplit, code, len(rows), numSplits)
		}
		counts := largestRemainder(len(rows), fractions)
		if labeled {
			ensureMinOne(&counts)
		}
		shuffled := append([]int(nil), rows...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		offset := 0
		for s := 0; s < numSplits; s++ {
			idx[s] = append(idx[s], shuffled[offset:offset+counts[s]]...)
			offset += counts[s]
		}
	}

	for s := 0; s < numSplits; s++ {
		sort.Ints(idx[s])
	}
	return idx, nil
}

// largestRemainder allocates n items across the fractions: floors first,
// then the leftover units by descending fractional part, ties toward the
// earlier partition.
func largestRemainder(n int, fractions [numSplits]float64) [numSplits]int {
	var counts [numSplits]int
	var rem [numSplits]float64
	used := 0
	for s := 0; s < numSplits; s++ {
		exact := fractions[s] * float64(n)
		counts[s] = int(math.Floor(exact))
		rem[s] = exact - math.Floor(exact)
		used += counts[s]
	}
	order := [numSplits]int{0, 1, 2}
	sort.SliceStable(order[:], func(i, j int) bool { return rem[order[i]] > rem[order[j]] })
	for k := 0; used < n; k++ {
		counts[order[k%numSplits]]++
		used++
	}
	return counts
}

// ensureMinOne moves rows from the largest allocation into any empty one
// so every partition receives at least one row of the class.
func ensureMinOne(counts *[numSplits]int) {
	for s := 0; s < numSplits; s++ {
		for counts[s] == 0 {
			donor, max := -1, 1
			for d := 0; d < numSplits; d++ {
				if counts[d] > max {
					donor, max = d, counts[d]
				}
			}
			if donor < 0 {
				return // fewer rows than partitions; caller already errored
			}
			counts[donor]--
			counts[s]++
		}
	}
}
