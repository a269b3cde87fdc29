package timeline

import (
	"slices"

	"github.com/huangsam/repopulse/schema"
)

// Sweep applies the events in date order and snapshots the state once per
// grid day. Every event strictly before a day is applied before that day's
// row is built, so events before the first day all land in the first row.
// Events with equal dates are applied in input order.
func Sweep(events []Event, grid Grid) ([]schema.Row, error) {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int {
		return a.At.Compare(b.At)
	})

	state := NewState()
	rows := make([]schema.Row, 0, grid.Len())
	cursor := 0
	for day := range grid.Days() {
		for cursor < len(sorted) && sorted[cursor].At.Before(day) {
			if err := state.Apply(sorted[cursor]); err != nil {
				return nil, err
			}
			cursor++
		}
		rows = append(rows, state.Snapshot(day))
	}
	return rows, nil
}

// Build extracts, sweeps and filters a record set into the daily table.
func Build(set *schema.RecordSet, grid Grid) ([]schema.DailyRow, error) {
	events, err := Extract(set)
	if err != nil {
		return nil, err
	}
	rows, err := Sweep(events, grid)
	if err != nil {
		return nil, err
	}
	return Sparsify(rows), nil
}
