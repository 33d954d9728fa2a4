package dataset

import "har-prep/models"

// RowKey extracts the shared key FilterByCommonRows intersects on.
type RowKey func(models.AlignedRecord) int64

// KeyTimestamp keys rows on the merge timestamp — the usual choice when
// two modality tables of one session were processed independently.
func KeyTimestamp(r models.AlignedRecord) int64 { return r.TimestampMs }

// FilterByCommonRows restricts two related tables to the rows whose key
// occurs in both. Each output preserves its input's row order, so the
// operation is idempotent: applying it twice equals applying it once.
func FilterByCommonRows(a, b *models.Dataset, key RowKey) (*models.Dataset, *models.Dataset) {
	return filterByKeys(a, keySet(b, key), key), filterByKeys(b, keySet(a, key), key)
}

func keySet(ds *models.Dataset, key RowKey) map[int64]struct{} {
	set := make(map[int64]struct{}, ds.Len())
	for _, row := range ds.Rows {
		set[key(row)] = struct{}{}
	}
	return set
}

func filterByKeys(ds *models.Dataset, keep map[int64]struct{}, key RowKey) *models.Dataset {
	var indices []int
	for i, row := range ds.Rows {
		if _, ok := keep[key(row)]; ok {
			indices = append(indices, i)
		}
	}
	return ds.Subset(indices)
}
