package timeline

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/huangsam/repopulse/core/algo"
	"github.com/huangsam/repopulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func rowOn(t *testing.T, rows []schema.Row, date string) schema.Row {
	t.Helper()
	for _, r := range rows {
		if r.Date.Format(schema.DateFormat) == date {
			return r
		}
	}
	require.Failf(t, "row not found", "no row for %s", date)
	return schema.Row{}
}

// TestMergedWeightScenario follows one merged pull request through the window.
// It is never closed, so it stays open after the merge.
func TestMergedWeightScenario(t *testing.T) {
	set := &schema.RecordSet{
		PullRequests: []schema.PullRequestRecord{
			{ID: 1, Opened: day(2024, 1, 1), Merged: ptr(day(2024, 1, 10))},
		},
	}
	events, err := Extract(set)
	require.NoError(t, err)

	rows, err := Sweep(events, NewGrid(day(2024, 1, 1), day(2024, 3, 1), time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 60)

	tests := []struct {
		date     string
		expected float64
	}{
		{date: "2024-01-10", expected: 0},
		{date: "2024-01-15", expected: 1},
		{date: "2024-01-25", expected: 1},
		{date: "2024-02-05", expected: 0.7},
		{date: "2024-02-19", expected: 0},
		{date: "2024-02-20", expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.InDelta(t, tt.expected, rowOn(t, rows, tt.date).Merged, 1e-9)
		})
	}

	for _, date := range []string{"2024-01-05", "2024-01-15", "2024-02-05", "2024-02-20"} {
		assert.Equal(t, 1, rowOn(t, rows, date).PR, date)
	}
}

func TestMergedAndClosedLeavesOpenCount(t *testing.T) {
	set := &schema.RecordSet{
		PullRequests: []schema.PullRequestRecord{
			{ID: 1, Opened: day(2024, 1, 1), Closed: ptr(day(2024, 1, 10)), Merged: ptr(day(2024, 1, 10))},
		},
	}
	events, err := Extract(set)
	require.NoError(t, err)

	rows, err := Sweep(events, NewGrid(day(2024, 1, 1), day(2024, 3, 1), time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, rowOn(t, rows, "2024-01-10").PR)
	assert.Equal(t, 0, rowOn(t, rows, "2024-01-15").PR)
	assert.InDelta(t, 1.0, rowOn(t, rows, "2024-01-15").Merged, 1e-9)
	assert.InDelta(t, 0.7, rowOn(t, rows, "2024-02-05").Merged, 1e-9)
}

// TestIssuePrecedenceScenario checks a doubly tagged issue counts only once.
func TestIssuePrecedenceScenario(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	set := &schema.RecordSet{
		Issues: []schema.IssueRecord{
			{ID: 7, Opened: time.Date(2024, 3, 1, 9, 0, 0, 0, loc), FeatureA: true, Resolution: true},
		},
	}
	grid := NewGrid(time.Date(2024, 2, 28, 23, 0, 0, 0, loc), time.Date(2024, 3, 5, 0, 0, 0, 0, loc), loc)
	daily, err := Build(set, grid)
	require.NoError(t, err)
	require.Len(t, daily, 6)

	var found bool
	for _, r := range daily {
		if r.Date != "2024-03-01" {
			continue
		}
		found = true
		require.NotNil(t, r.FeatureA)
		assert.Equal(t, 1, *r.FeatureA)
		assert.Nil(t, r.Resolution)
		assert.Nil(t, r.Issue)
	}
	assert.True(t, found)
}

func TestSweepEmptyInput(t *testing.T) {
	grid := NewGrid(day(2024, 1, 1), day(2024, 1, 11), time.UTC)
	rows, err := Sweep(nil, grid)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	for _, r := range rows {
		assert.Equal(t, schema.Row{Date: r.Date}, r)
	}
}

func TestSweepAppliesEventsBeforeEpochOnFirstDay(t *testing.T) {
	set := &schema.RecordSet{
		PullRequests: []schema.PullRequestRecord{{ID: 1, Opened: day(2023, 6, 1)}},
		Videos:       []schema.VideoReviewRecord{{ReviewDate: day(2023, 12, 1)}},
	}
	events, err := Extract(set)
	require.NoError(t, err)
	rows, err := Sweep(events, NewGrid(day(2024, 1, 1), day(2024, 1, 3), time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].PR)
	assert.Equal(t, 1, rows[0].Video)
	assert.InDelta(t, 214.0, rows[0].AvgAge, 1e-9)
}

func TestGridStopsBeforeNow(t *testing.T) {
	grid := NewGrid(day(2024, 1, 1), day(2024, 1, 3).Add(5*time.Hour), time.UTC)
	rows, err := Sweep(nil, grid)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-01-03", rows[2].Date.Format(schema.DateFormat))

	rows, err = Sweep(nil, NewGrid(day(2024, 1, 1), day(2024, 1, 3), time.UTC))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWaitUsesLatestReview(t *testing.T) {
	set := &schema.RecordSet{
		PullRequests: []schema.PullRequestRecord{
			{ID: 1, Opened: day(2024, 1, 1), Reviews: []time.Time{day(2024, 1, 5), day(2024, 1, 3)}},
			{ID: 2, Opened: day(2024, 1, 4)},
		},
	}
	events, err := Extract(set)
	require.NoError(t, err)
	rows, err := Sweep(events, NewGrid(day(2024, 1, 10), day(2024, 1, 11), time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 2, row.PR)
	assert.InDelta(t, (9.0+6.0)/2, row.AvgAge, 1e-9)
	assert.InDelta(t, (5.0+6.0)/2, row.AvgWait, 1e-9)
	assert.InDelta(t, 15.0/30, row.SumAge, 1e-9)
	assert.InDelta(t, 11.0/30, row.SumWait, 1e-9)
}

func TestExtractReviewWindow(t *testing.T) {
	pr := schema.PullRequestRecord{
		ID:      3,
		Opened:  day(2024, 1, 1),
		Closed:  ptr(day(2024, 1, 10)),
		Reviews: []time.Time{day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 10), day(2024, 1, 11)},
	}
	events, err := Extract(&schema.RecordSet{PullRequests: []schema.PullRequestRecord{pr}})
	require.NoError(t, err)

	var reviews []time.Time
	for _, ev := range events {
		if ev.Kind == PRReview {
			reviews = append(reviews, ev.At)
		}
	}
	assert.Equal(t, []time.Time{day(2024, 1, 2)}, reviews)
}

func TestExtractMergeWindow(t *testing.T) {
	pr := schema.PullRequestRecord{ID: 4, Opened: day(2024, 1, 1), Merged: ptr(day(2024, 1, 10))}
	events, err := Extract(&schema.RecordSet{PullRequests: []schema.PullRequestRecord{pr}})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, MergeStart, events[1].Kind)
	assert.Equal(t, MergeEnd, events[2].Kind)
	assert.Equal(t, day(2024, 2, 19), events[2].At)
	assert.Equal(t, day(2024, 1, 10), events[2].Stamp)
}

func TestExtractRejectsInvalidIntervals(t *testing.T) {
	tests := []struct {
		name string
		set  schema.RecordSet
	}{
		{
			name: "pull request closed before opened",
			set:  schema.RecordSet{PullRequests: []schema.PullRequestRecord{{ID: 1, Opened: day(2024, 1, 2), Closed: ptr(day(2024, 1, 1))}}},
		},
		{
			name: "pull request merged before opened",
			set:  schema.RecordSet{PullRequests: []schema.PullRequestRecord{{ID: 1, Opened: day(2024, 1, 2), Merged: ptr(day(2024, 1, 1))}}},
		},
		{
			name: "issue closed before opened",
			set:  schema.RecordSet{Issues: []schema.IssueRecord{{ID: 2, Opened: day(2024, 1, 2), Closed: ptr(day(2024, 1, 1))}}},
		},
		{
			name: "video uploaded before review",
			set:  schema.RecordSet{Videos: []schema.VideoReviewRecord{{ReviewDate: day(2024, 1, 2), UploadDate: ptr(day(2024, 1, 1))}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(&tt.set)
			assert.ErrorIs(t, err, ErrInvalidInterval)
		})
	}
}

func TestExtractNil(t *testing.T) {
	events, err := Extract(nil)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

// TestSweepMatchesBruteForce compares the sweep with a direct evaluation of
// every record on every day.
func TestSweepMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	begin := day(2024, 1, 1)
	randTime := func(spanDays int) time.Time {
		return begin.Add(time.Duration(rng.Int64N(int64(spanDays) * int64(24*time.Hour))))
	}

	set := &schema.RecordSet{}
	for i := range 200 {
		opened := randTime(120).Add(-30 * 24 * time.Hour)
		pr := schema.PullRequestRecord{ID: int64(i), Opened: opened}
		switch rng.IntN(4) {
		case 0:
			// open forever
		case 1:
			// merged but never closed
			pr.Merged = ptr(opened.Add(time.Duration(rng.Int64N(int64(60 * 24 * time.Hour)))))
		default:
			closed := opened.Add(time.Duration(rng.Int64N(int64(60 * 24 * time.Hour))))
			pr.Closed = &closed
			if rng.IntN(2) == 0 {
				pr.Merged = ptr(closed)
			}
		}
		for range rng.IntN(4) {
			pr.Reviews = append(pr.Reviews, opened.Add(time.Duration(rng.Int64N(int64(50*24*time.Hour)))))
		}
		set.PullRequests = append(set.PullRequests, pr)
	}
	for i := range 150 {
		opened := randTime(120)
		issue := schema.IssueRecord{
			ID:         int64(1000 + i),
			Opened:     opened,
			FeatureA:   rng.IntN(5) == 0,
			FeatureB:   rng.IntN(5) == 0,
			FeatureC:   rng.IntN(5) == 0,
			Resolution: rng.IntN(5) == 0,
			Defect:     rng.IntN(3) == 0,
		}
		if rng.IntN(2) == 0 {
			issue.Closed = ptr(opened.Add(time.Duration(rng.Int64N(int64(40 * 24 * time.Hour)))))
		}
		set.Issues = append(set.Issues, issue)
	}

	events, err := Extract(set)
	require.NoError(t, err)
	grid := NewGrid(begin, begin.AddDate(0, 0, 150), time.UTC)
	rows, err := Sweep(events, grid)
	require.NoError(t, err)
	require.Len(t, rows, 150)

	before := func(at *time.Time, d time.Time) bool { return at != nil && at.Before(d) }

	for _, row := range rows {
		d := row.Date
		var open int
		var ageDays, waitDays, merged float64
		for _, pr := range set.PullRequests {
			if before(pr.Merged, d) {
				merged += algo.Weight(algo.DaysAgo(d, *pr.Merged))
			}
			if !pr.Opened.Before(d) || before(pr.Closed, d) {
				continue
			}
			open++
			ageDays += algo.DaysAgo(d, pr.Opened)
			feedback := pr.Opened
			for _, r := range pr.Reviews {
				if r.After(pr.Opened) && (pr.Closed == nil || r.Before(*pr.Closed)) && r.Before(d) && r.After(feedback) {
					feedback = r
				}
			}
			waitDays += algo.DaysAgo(d, feedback)
		}

		var buckets [schema.NumBuckets]int
		var bugs int
		for _, issue := range set.Issues {
			if !issue.Opened.Before(d) || before(issue.Closed, d) {
				continue
			}
			b := ResolveBucket(issue)
			buckets[b]++
			if b == schema.GenericBucket && issue.Defect {
				bugs++
			}
		}

		label := d.Format(schema.DateFormat)
		assert.Equal(t, open, row.PR, label)
		assert.InDelta(t, merged, row.Merged, 1e-6, label)
		assert.InDelta(t, ageDays/30, row.SumAge, 1e-6, label)
		assert.InDelta(t, waitDays/30, row.SumWait, 1e-6, label)
		assert.Equal(t, buckets[schema.FeatureABucket], row.FeatureA, label)
		assert.Equal(t, buckets[schema.FeatureBBucket], row.FeatureB, label)
		assert.Equal(t, buckets[schema.FeatureCBucket], row.FeatureC, label)
		assert.Equal(t, buckets[schema.ResolutionBucket], row.Resolution, label)
		assert.Equal(t, buckets[schema.GenericBucket], row.Issue, label)
		assert.Equal(t, bugs, row.Bug, label)
	}
}
