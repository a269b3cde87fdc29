package timeline

import (
	"iter"
	"time"
)

// Grid is the sequence of calendar days from Begin while before End, one
// calendar day apart in Begin's location.
type Grid struct {
	Begin time.Time
	End   time.Time
}

// NewGrid returns the grid from begin to end in the given location.
func NewGrid(begin, end time.Time, loc *time.Location) Grid {
	return Grid{Begin: begin.In(loc), End: end.In(loc)}
}

// Days yields each day of the grid in order.
func (g Grid) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := g.Begin; d.Before(g.End); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Len returns the number of days in the grid.
func (g Grid) Len() int {
	n := 0
	for range g.Days() {
		n++
	}
	return n
}
