// Package algo has the numeric building blocks of the daily table.
package algo

import "time"

// WindowDays is the support of the merge weight. A merge stops counting
// WindowDays after it happened.
const WindowDays = 40

// plateauDays is how long a merge counts with full weight.
const plateauDays = WindowDays / 2

// Weight is the contribution of a merge that happened daysAgo days ago.
// It is 1 on [0,20), falls linearly to 0 on [20,40) and is 0 elsewhere,
// so its integral over [0,inf) is 30 and summing it over merges gives a
// continuous monthly merge rate.
func Weight(daysAgo float64) float64 {
	switch {
	case daysAgo < 0:
		return 0
	case daysAgo < plateauDays:
		return 1
	case daysAgo < WindowDays:
		return (WindowDays - daysAgo) / plateauDays
	default:
		return 0
	}
}

// DaysAgo returns the fractional days elapsed from then to when.
func DaysAgo(when, then time.Time) float64 {
	return when.Sub(then).Hours() / 24
}

// Window returns how long a merge stays in the recently-merged set.
func Window() time.Duration {
	return WindowDays * 24 * time.Hour
}
