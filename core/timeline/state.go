package timeline

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/repopulse/core/algo"
	"github.com/huangsam/repopulse/schema"
)

var (
	// ErrCloseBeforeOpen is returned when a pull request closes without being open.
	ErrCloseBeforeOpen = errors.New("close applied before open")

	// ErrNegativeCounter is returned when a counter would drop below zero.
	ErrNegativeCounter = errors.New("counter would become negative")
)

const (
	msPerDay     = float64(24 * time.Hour / time.Millisecond)
	daysPerMonth = 30
)

type openPR struct {
	openedMs   int64
	feedbackMs int64
}

type mergedPR struct {
	id     int64
	merged time.Time
}

// State is the aggregate of all events applied so far. It is owned by a
// single sweep and is not safe for concurrent use.
type State struct {
	open          map[int64]openPR
	sumOpenedMs   int64
	sumFeedbackMs int64
	merged        []mergedPR // ordered by merge time
	buckets       [schema.NumBuckets]int
	defects       int
	videos        int
}

// NewState returns an empty state.
func NewState() *State {
	return &State{open: make(map[int64]openPR)}
}

// Apply folds one event into the state.
func (s *State) Apply(ev Event) error {
	switch ev.Kind {
	case PROpen:
		s.removeOpen(ev.ID)
		ms := ev.Stamp.UnixMilli()
		s.open[ev.ID] = openPR{openedMs: ms, feedbackMs: ms}
		s.sumOpenedMs += ms
		s.sumFeedbackMs += ms
	case PRClose:
		if !s.removeOpen(ev.ID) {
			return fmt.Errorf("pull request %d: %w", ev.ID, ErrCloseBeforeOpen)
		}
	case PRReview:
		pr, ok := s.open[ev.ID]
		if !ok {
			return nil
		}
		ms := ev.Stamp.UnixMilli()
		if ms > pr.feedbackMs {
			s.sumFeedbackMs += ms - pr.feedbackMs
			pr.feedbackMs = ms
			s.open[ev.ID] = pr
		}
	case MergeStart:
		s.merged = append(s.merged, mergedPR{id: ev.ID, merged: ev.Stamp})
	case MergeEnd:
		if i := slices.IndexFunc(s.merged, func(m mergedPR) bool { return m.id == ev.ID }); i >= 0 {
			s.merged = slices.Delete(s.merged, i, i+1)
		}
	case IssueDelta:
		if int(ev.Bucket) >= schema.NumBuckets {
			return fmt.Errorf("issue %d: unknown bucket %d", ev.ID, ev.Bucket)
		}
		if s.buckets[ev.Bucket]+ev.Delta < 0 || (ev.Defect && s.defects+ev.Delta < 0) {
			return fmt.Errorf("issue %d in %s: %w", ev.ID, ev.Bucket, ErrNegativeCounter)
		}
		s.buckets[ev.Bucket] += ev.Delta
		if ev.Defect {
			s.defects += ev.Delta
		}
	case VideoDelta:
		if s.videos+ev.Delta < 0 {
			return fmt.Errorf("video review %d: %w", ev.ID, ErrNegativeCounter)
		}
		s.videos += ev.Delta
	default:
		return fmt.Errorf("event for %d: unknown kind %d", ev.ID, ev.Kind)
	}
	return nil
}

func (s *State) removeOpen(id int64) bool {
	pr, ok := s.open[id]
	if !ok {
		return false
	}
	s.sumOpenedMs -= pr.openedMs
	s.sumFeedbackMs -= pr.feedbackMs
	delete(s.open, id)
	return true
}

// OpenCount returns the number of open pull requests.
func (s *State) OpenCount() int {
	return len(s.open)
}

// Snapshot builds the row for the given day without modifying the state.
func (s *State) Snapshot(when time.Time) schema.Row {
	row := schema.Row{
		Date:       when,
		PR:         len(s.open),
		FeatureA:   s.buckets[schema.FeatureABucket],
		FeatureB:   s.buckets[schema.FeatureBBucket],
		FeatureC:   s.buckets[schema.FeatureCBucket],
		Resolution: s.buckets[schema.ResolutionBucket],
		Issue:      s.buckets[schema.GenericBucket],
		Bug:        s.defects,
		Video:      s.videos,
	}

	for _, m := range s.merged {
		row.Merged += algo.Weight(algo.DaysAgo(when, m.merged))
	}

	if n := int64(len(s.open)); n > 0 {
		whenMs := when.UnixMilli()
		// The products and sums may wrap, but their differences are exact
		// as long as the total age fits in an int64.
		ageDays := float64(n*whenMs-s.sumOpenedMs) / msPerDay
		waitDays := float64(n*whenMs-s.sumFeedbackMs) / msPerDay
		row.AvgAge = ageDays / float64(n)
		row.AvgWait = waitDays / float64(n)
		row.SumAge = ageDays / daysPerMonth
		row.SumWait = waitDays / daysPerMonth
	}

	return row
}
