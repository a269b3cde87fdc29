package schema

import "time"

// RunRecord represents a row from the repopulse_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRows     int32
	ConfigParams  *string
}

// DailyRowRecord represents a row from the repopulse_daily_rows table.
type DailyRowRecord struct {
	RunID int64
	DailyRow
}
