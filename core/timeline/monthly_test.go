package timeline

import (
	"testing"
	"time"

	"github.com/huangsam/repopulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyMerges(t *testing.T) {
	prs := []schema.PullRequestRecord{
		{ID: 1, Opened: day(2024, 1, 1), Merged: ptr(day(2024, 2, 3))},
		{ID: 2, Opened: day(2024, 1, 1), Merged: ptr(day(2024, 2, 28))},
		{ID: 3, Opened: day(2024, 1, 1), Merged: ptr(day(2024, 4, 2))},
		{ID: 4, Opened: day(2024, 1, 1), Closed: ptr(day(2024, 3, 2))},
		{ID: 5, Opened: day(2023, 1, 1), Merged: ptr(day(2023, 12, 31))},
	}

	rows := MonthlyMerges(prs, day(2024, 1, 1), day(2024, 4, 10), time.UTC)
	assert.Equal(t, []schema.MonthlyRow{
		{Date: "2024-01-16", MergeBar: 0},
		{Date: "2024-02-16", MergeBar: 2},
		{Date: "2024-03-16", MergeBar: 0},
	}, rows)
}

func TestMonthlyMergesUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	merged := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
	prs := []schema.PullRequestRecord{{ID: 1, Opened: merged.AddDate(0, 0, -1), Merged: &merged}}

	rows := MonthlyMerges(prs, time.Date(2024, 2, 1, 0, 0, 0, 0, loc), time.Date(2024, 4, 1, 0, 0, 0, 0, loc), loc)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].MergeBar)
	assert.Equal(t, 0, rows[1].MergeBar)
}

func TestMonthlyMergesCurrentMonthExcluded(t *testing.T) {
	assert.Empty(t, MonthlyMerges(nil, day(2024, 4, 1), day(2024, 4, 30), time.UTC))
}
