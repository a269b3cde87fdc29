package timeline

import "github.com/huangsam/repopulse/schema"

// Sparsify converts rows to their emitted form. A count is nulled on a row
// when it is zero there and on both neighbouring rows; a missing neighbour
// counts as zero. Merged and the age and wait metrics are never nulled.
func Sparsify(rows []schema.Row) []schema.DailyRow {
	out := make([]schema.DailyRow, len(rows))
	for i, row := range rows {
		out[i] = schema.NewDailyRow(row)
	}

	for _, key := range schema.CountKeys {
		for i := range rows {
			if active(rows, i-1, key) || active(rows, i, key) || active(rows, i+1, key) {
				continue
			}
			out[i].Clear(key)
		}
	}
	return out
}

func active(rows []schema.Row, i int, key schema.CountKey) bool {
	return i >= 0 && i < len(rows) && rows[i].Count(key) > 0
}
