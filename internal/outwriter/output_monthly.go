package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/repopulse/core/algo"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/internal/parquet"
	"github.com/huangsam/repopulse/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// busiestMonths is how many months the text summary highlights.
const busiestMonths = 3

// PrintMonthlyResults outputs the monthly merge table, dispatching based on the output format configured.
func PrintMonthlyResults(result schema.TableResult, cfg *contract.Config, duration time.Duration) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result.Monthly)
		}, "Wrote JSON monthly table"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMonthly(w, result.Monthly, intFmt)
		}, "Wrote CSV monthly table"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.TSOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTSMonthly(w, result.Monthly)
		}, "Wrote monthly table module"); err != nil {
			return fmt.Errorf("error writing TS output: %w", err)
		}
	case schema.HTMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChartPage(w, result, cfg.Labels)
		}, "Wrote status chart"); err != nil {
			return fmt.Errorf("error writing HTML output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteMonthlyRowsParquet(parquet.ConvertMonthlyRows(result.Monthly), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet monthly table to %s\n", cfg.OutputFile)
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if err := writeMonthlyTable(w, result.Monthly, cfg, intFmt); err != nil {
				return err
			}
			printCompletion(w, duration, len(result.Monthly), cfg)
			return nil
		}, "Wrote monthly table"); err != nil {
			return fmt.Errorf("error writing monthly table output: %w", err)
		}
		return nil
	}

	printCompletion(os.Stderr, duration, len(result.Monthly), cfg)
	return nil
}

// writeMonthlyTable renders the most recent months followed by the busiest ones.
func writeMonthlyTable(w io.Writer, rows []schema.MonthlyRow, cfg *contract.Config, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Month", "Merges"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	shown := algo.Tail(rows, cfg.ResultLimit)
	data := make([][]string, 0, len(shown))
	for _, r := range shown {
		data = append(data, []string{monthOf(r.Date), fmt.Sprintf(intFmt, r.MergeBar)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if summary := busiestSummary(rows, intFmt); summary != "" {
		_, _ = fmt.Fprintf(w, "Busiest: %s\n", summary)
	}
	return nil
}

// busiestSummary lists the months with the most merges, largest first.
func busiestSummary(rows []schema.MonthlyRow, intFmt string) string {
	values := make([]int, len(rows))
	for i, r := range rows {
		values[i] = r.MergeBar
	}

	var parts []string
	for _, i := range algo.Busiest(values, busiestMonths) {
		if rows[i].MergeBar == 0 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s ("+intFmt+")", monthOf(rows[i].Date), rows[i].MergeBar))
	}
	return strings.Join(parts, ", ")
}

// monthOf trims the mid-month day from a monthly row date.
func monthOf(date string) string {
	if len(date) >= len("2006-01") {
		return date[:len("2006-01")]
	}
	return date
}
