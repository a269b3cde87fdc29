package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repopulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	out := make([]T, reader.NumRows())
	n, err := reader.Read(out)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return out[:n]
}

func TestRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Run))
	require.NotNil(t, s)

	for _, colName := range []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_rows", "config_params"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestDailyRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(DailyRow))
	require.NotNil(t, s)

	expected := []string{"run_id", "date", "merged", "avg_age", "avg_wait", "sum_age", "sum_wait"}
	for _, key := range schema.CountKeys {
		expected = append(expected, string(key))
	}
	for _, colName := range expected {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	params := `{"timezone":"America/Los_Angeles"}`
	data := ConvertRunRecords([]schema.RunRecord{
		{RunID: 1, StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalRows: 120, ConfigParams: &params},
		{RunID: 2, StartTime: start.Add(time.Hour)},
	})

	require.NoError(t, WriteRunsParquet(data, outputPath))

	got := readAll[Run](t, outputPath)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, int32(120), got[0].TotalRows)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].RunDurationMs)
	assert.Equal(t, duration, *got[0].RunDurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteDailyRowsParquet_KeepsNulls(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "daily.parquet")

	rows := []schema.DailyRow{
		{Date: "2024-03-01", Merged: 0.7, PR: intPtr(3), FeatureA: intPtr(1), AvgAge: 2.5, AvgWait: 1.25, SumAge: 0.25, SumWait: 0.125},
		{Date: "2024-03-02", Merged: 0.65, PR: intPtr(0)},
	}
	require.NoError(t, WriteDailyRowsParquet(ConvertDailyRows(rows), outputPath))

	got := readAll[DailyRow](t, outputPath)
	require.Len(t, got, 2)

	assert.Nil(t, got[0].RunID)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.InDelta(t, 0.7, got[0].Merged, 1e-9)
	require.NotNil(t, got[0].PR)
	assert.Equal(t, int32(3), *got[0].PR)
	require.NotNil(t, got[0].FeatureA)
	assert.Equal(t, int32(1), *got[0].FeatureA)
	assert.Nil(t, got[0].FeatureB)
	assert.Nil(t, got[0].Video)
	assert.InDelta(t, 1.25, got[0].AvgWait, 1e-9)

	require.NotNil(t, got[1].PR)
	assert.Equal(t, int32(0), *got[1].PR)
}

func TestConvertDailyRowRecords_SetsRunID(t *testing.T) {
	records := []schema.DailyRowRecord{
		{RunID: 7, DailyRow: schema.DailyRow{Date: "2024-01-10", Bug: intPtr(2)}},
	}

	got := ConvertDailyRowRecords(records)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].RunID)
	assert.Equal(t, int64(7), *got[0].RunID)
	require.NotNil(t, got[0].Bug)
	assert.Equal(t, int32(2), *got[0].Bug)
	assert.Nil(t, got[0].Issue)
}

func TestWriteMonthlyRowsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "monthly.parquet")

	rows := []schema.MonthlyRow{{Date: "2019-10-16", MergeBar: 4}, {Date: "2019-11-16", MergeBar: 0}}
	require.NoError(t, WriteMonthlyRowsParquet(ConvertMonthlyRows(rows), outputPath))

	got := readAll[MonthlyRow](t, outputPath)
	assert.Equal(t, []MonthlyRow{{Date: "2019-10-16", MergeBar: 4}, {Date: "2019-11-16", MergeBar: 0}}, got)
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, WriteRunsParquet([]Run{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Parquet file should have header/footer even with no data")
}

func TestWriteRunsParquet_InvalidPath(t *testing.T) {
	err := WriteRunsParquet([]Run{}, filepath.Join(t.TempDir(), "missing", "runs.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
