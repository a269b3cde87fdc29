// Package parquet provides data structures and functions for exporting
// repopulse tables and run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/repopulse/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single table computation with metadata.
// This struct maps to the repopulse_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRows is the number of daily rows emitted by this run
	TotalRows int32 `parquet:"total_rows,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// DailyRow is one emitted day of the daily table. Counts removed by the
// sparsity filter are stored as nulls. RunID is set only for rows read
// back from run history.
type DailyRow struct {
	RunID      *int64  `parquet:"run_id,optional,snappy"`
	Date       string  `parquet:"date,snappy"`
	Merged     float64 `parquet:"merged,snappy"`
	PR         *int32  `parquet:"pr,optional,snappy"`
	FeatureA   *int32  `parquet:"cxx20,optional,snappy"`
	FeatureB   *int32  `parquet:"cxx23,optional,snappy"`
	FeatureC   *int32  `parquet:"cxx26,optional,snappy"`
	Resolution *int32  `parquet:"lwg,optional,snappy"`
	Issue      *int32  `parquet:"issue,optional,snappy"`
	Bug        *int32  `parquet:"bug,optional,snappy"`
	Video      *int32  `parquet:"video,optional,snappy"`
	AvgAge     float64 `parquet:"avg_age,snappy"`
	AvgWait    float64 `parquet:"avg_wait,snappy"`
	SumAge     float64 `parquet:"sum_age,snappy"`
	SumWait    float64 `parquet:"sum_wait,snappy"`
}

// MonthlyRow is one complete month of the monthly merge table.
type MonthlyRow struct {
	Date     string `parquet:"date,snappy"`
	MergeBar int32  `parquet:"merge_bar,snappy"`
}

// writeParquet writes a slice of records to a Parquet file whose schema is
// inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDailyRowsParquet writes a slice of DailyRow structs to a Parquet file.
func WriteDailyRowsParquet(data []DailyRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMonthlyRowsParquet writes a slice of MonthlyRow structs to a Parquet file.
func WriteMonthlyRowsParquet(data []MonthlyRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRows:     record.TotalRows,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertDailyRows converts emitted daily rows for Parquet export.
func ConvertDailyRows(rows []schema.DailyRow) []DailyRow {
	result := make([]DailyRow, len(rows))
	for i, row := range rows {
		result[i] = convertDailyRow(row)
	}
	return result
}

// ConvertDailyRowRecords converts stored daily rows, keeping their run IDs.
func ConvertDailyRowRecords(records []schema.DailyRowRecord) []DailyRow {
	result := make([]DailyRow, len(records))
	for i, record := range records {
		result[i] = convertDailyRow(record.DailyRow)
		runID := record.RunID
		result[i].RunID = &runID
	}
	return result
}

// ConvertMonthlyRows converts monthly rows for Parquet export.
func ConvertMonthlyRows(rows []schema.MonthlyRow) []MonthlyRow {
	result := make([]MonthlyRow, len(rows))
	for i, row := range rows {
		result[i] = MonthlyRow{Date: row.Date, MergeBar: int32(row.MergeBar)}
	}
	return result
}

func convertDailyRow(row schema.DailyRow) DailyRow {
	return DailyRow{
		Date:       row.Date,
		Merged:     row.Merged,
		PR:         int32Ptr(row.PR),
		FeatureA:   int32Ptr(row.FeatureA),
		FeatureB:   int32Ptr(row.FeatureB),
		FeatureC:   int32Ptr(row.FeatureC),
		Resolution: int32Ptr(row.Resolution),
		Issue:      int32Ptr(row.Issue),
		Bug:        int32Ptr(row.Bug),
		Video:      int32Ptr(row.Video),
		AvgAge:     row.AvgAge,
		AvgWait:    row.AvgWait,
		SumAge:     row.SumAge,
		SumWait:    row.SumWait,
	}
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
