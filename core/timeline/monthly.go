package timeline

import (
	"time"

	"github.com/huangsam/repopulse/schema"
)

// MonthlyMerges counts merged pull requests per complete calendar month,
// from the month of begin up to but excluding the month of now. Months are
// keyed by the merge time in loc.
func MonthlyMerges(prs []schema.PullRequestRecord, begin, now time.Time, loc *time.Location) []schema.MonthlyRow {
	counts := make(map[string]int)
	for _, pr := range prs {
		if pr.Merged == nil {
			continue
		}
		counts[pr.Merged.In(loc).Format("2006-01")]++
	}

	begin = startOfMonth(begin.In(loc))
	end := startOfMonth(now.In(loc))

	var rows []schema.MonthlyRow
	for when := begin; when.Before(end); when = when.AddDate(0, 1, 0) {
		month := when.Format("2006-01")
		rows = append(rows, schema.MonthlyRow{Date: month + "-16", MergeBar: counts[month]})
	}
	return rows
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
