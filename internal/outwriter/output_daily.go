package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repopulse/core/algo"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/internal/parquet"
	"github.com/huangsam/repopulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintDailyResults outputs the daily table, dispatching based on the output format configured.
func PrintDailyResults(result schema.TableResult, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result.Daily)
		}, "Wrote JSON daily table"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVDaily(w, result.Daily, fmtFloat, intFmt)
		}, "Wrote CSV daily table"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TSOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTSDaily(w, result.Daily)
		}, "Wrote daily table module"); err != nil {
			return fmt.Errorf("error writing TS output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartPage(w, result, cfg.Labels)
		}, "Wrote status chart"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteDailyRowsParquet(parquet.ConvertDailyRows(result.Daily), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet daily table to %s\n", cfg.OutputFile)
	default:
		// Default to human-readable table
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeDailyTable(w, result.Daily, cfg, fmtFloat, intFmt); err != nil {
				return err
			}
			printCompletion(w, duration, len(result.Daily), cfg)
			return nil
		}, "Wrote daily table"); err != nil {
			return fmt.Errorf("error writing daily table output: %w", err)
		}
		return nil
	}

	printCompletion(os.Stderr, duration, len(result.Daily), cfg)
	return nil
}

// dailyTableHeaders returns the column headers, named after the configured labels.
func dailyTableHeaders(cfg *contract.Config, wide bool) []string {
	headers := []string{
		"Date", "Merged", "PRs",
		cfg.Labels.FeatureA, cfg.Labels.FeatureB, cfg.Labels.FeatureC, cfg.Labels.Resolution,
		"Issues", "Bugs", "Videos",
		"Avg Age", "Avg Wait",
	}
	if wide {
		headers = append(headers, "Sum Age", "Sum Wait")
	}
	return append(headers, "Queue")
}

// writeDailyTable renders the most recent rows of the daily table.
func writeDailyTable(w io.Writer, rows []schema.DailyRow, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)

	// --- 1. Define Headers ---
	wide := showSumColumns(cfg)
	table.Header(dailyTableHeaders(cfg, wide))

	// 2. Configure Alignment
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	filtered := "-"
	if cfg.UseColors {
		filtered = contract.MutedColor.Sprint("-")
	}

	// --- 3. Prepare Data Rows ---
	shown := algo.Tail(rows, cfg.ResultLimit)
	data := make([][]string, 0, len(shown))
	for i := range shown {
		r := &shown[i]
		row := []string{r.Date, fmtFloat(r.Merged)}
		for _, key := range schema.CountKeys {
			row = append(row, formatCount(r.Count(key), intFmt, filtered))
		}
		row = append(row, fmtFloat(r.AvgAge), fmtFloat(r.AvgWait))
		if wide {
			row = append(row, fmtFloat(r.SumAge), fmtFloat(r.SumWait))
		}

		var label string
		if cfg.UseColors {
			label = contract.GetColorLabel(r.AvgWait)
		} else {
			label = contract.GetPlainLabel(r.AvgWait)
		}
		data = append(data, append(row, label))
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
