package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/repopulse/internal/parquet"
)

// ExecuteRunsExport exports the run history to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is disabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total daily rows: %d\n", status.TotalDailyRows)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	dailyRows, err := store.GetAllDailyRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve daily rows: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetRows := parquet.ConvertDailyRowRecords(dailyRows)
	rowsFile := outputFile + ".daily_rows.parquet"
	if err := parquet.WriteDailyRowsParquet(parquetRows, rowsFile); err != nil {
		return fmt.Errorf("failed to write daily rows: %w", err)
	}
	fmt.Printf("Exported %d daily rows to: %s\n", len(parquetRows), rowsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
