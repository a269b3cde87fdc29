package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for absolute timestamps, tried in order. Layouts without
// a zone are read in the configured location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?\s+ago$`)

// lookbackDurationRe captures "N [units]".
var lookbackDurationRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day|hour|minute)s?$`)

// ParseTimestamp parses an absolute ISO8601 timestamp or a relative
// "N units ago" expression. Zone-less timestamps are read in loc.
func ParseTimestamp(s string, loc *time.Location, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected absolute ISO8601 or 'N [units] ago', got %q", s)
	}
	return t, nil
}

// ParseRelativeTime converts strings like "2 years ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid relative time value: %w", err)
	}

	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	case "day":
		return now.AddDate(0, 0, -value), nil
	case "hour":
		return now.Add(time.Duration(-value) * time.Hour), nil
	case "minute":
		return now.Add(time.Duration(-value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit: %s", matches[2])
	}
}

// ParseLookbackDuration converts strings like "7 days" or "168h" into a time.Duration.
// Go duration syntax is tried first. Months are 30 days and years 365 days.
func ParseLookbackDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if duration, err := time.ParseDuration(s); err == nil {
		if duration <= 0 {
			return 0, errors.New("duration must be positive")
		}
		return duration, nil
	}

	matches := lookbackDurationRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %w", err)
	}

	const day = 24 * time.Hour
	var total time.Duration
	switch matches[2] {
	case "year":
		total = time.Duration(value) * 365 * day
	case "month":
		total = time.Duration(value) * 30 * day
	case "week":
		total = time.Duration(value) * 7 * day
	case "day":
		total = time.Duration(value) * day
	case "hour":
		total = time.Duration(value) * time.Hour
	case "minute":
		total = time.Duration(value) * time.Minute
	}

	if total <= 0 {
		return 0, errors.New("duration must be positive")
	}
	return total, nil
}
