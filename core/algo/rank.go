package algo

import (
	"cmp"
	"slices"
)

// Tail returns the last 'limit' rows in their original order. If limit is
// not positive or exceeds the number of rows, all rows are returned.
func Tail[T any](rows []T, limit int) []T {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[len(rows)-limit:]
}

// Busiest returns the indexes of the 'limit' largest values in descending
// order. Ties keep the earlier index first.
func Busiest(values []int, limit int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(values[b], values[a])
	})
	if limit > 0 && len(idx) > limit {
		return idx[:limit]
	}
	return idx
}
