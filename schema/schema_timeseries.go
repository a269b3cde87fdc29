package schema

import "time"

// DateFormat is the calendar date layout used for table rows.
const DateFormat = "2006-01-02"

// Row is the snapshot of the aggregate state at the start of one grid day.
// Merged is the smoothed 30-day merge count. Issue counts generic issues and
// Bug the generic issues flagged as defects. Ages and waits are in days for
// the averages and in 30-day months for the sums.
type Row struct {
	Date       time.Time
	Merged     float64
	PR         int
	FeatureA   int
	FeatureB   int
	FeatureC   int
	Resolution int
	Issue      int
	Bug        int
	Video      int
	AvgAge     float64
	AvgWait    float64
	SumAge     float64
	SumWait    float64
}

// DailyRow is the emitted form of a Row. Counts are nil where the sparsity
// filter removed them.
type DailyRow struct {
	Date       string  `json:"date"`
	Merged     float64 `json:"merged"`
	PR         *int    `json:"pr"`
	FeatureA   *int    `json:"cxx20"`
	FeatureB   *int    `json:"cxx23"`
	FeatureC   *int    `json:"cxx26"`
	Resolution *int    `json:"lwg"`
	Issue      *int    `json:"issue"`
	Bug        *int    `json:"bug"`
	Video      *int    `json:"video"`
	AvgAge     float64 `json:"avg_age"`
	AvgWait    float64 `json:"avg_wait"`
	SumAge     float64 `json:"sum_age"`
	SumWait    float64 `json:"sum_wait"`
}

// MonthlyRow is the merge count of one complete calendar month.
// Date is positioned at the middle of the month.
type MonthlyRow struct {
	Date     string `json:"date"`
	MergeBar int    `json:"merge_bar"`
}

// TableResult holds both emitted tables of one run.
type TableResult struct {
	Begin   time.Time    `json:"begin"`
	Now     time.Time    `json:"now"`
	Daily   []DailyRow   `json:"daily"`
	Monthly []MonthlyRow `json:"monthly"`
}
