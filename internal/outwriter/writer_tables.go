package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/repopulse/schema"
)

// generatedFileWarning opens and closes every generated module.
const generatedFileWarning = "// Generated file - DO NOT EDIT manually!\n"

const dailyRowType = `export type DailyRow = {
    date: string;
    merged: number;
    pr: number | null;
    cxx20: number | null;
    cxx23: number | null;
    cxx26: number | null;
    lwg: number | null;
    issue: number | null;
    bug: number | null;
    video: number | null;
    avg_age: number;
    avg_wait: number;
    sum_age: number;
    sum_wait: number;
};
`

const monthlyRowType = `export type MonthlyRow = {
    date: string;
    merge_bar: number;
};
`

// dailyCSVHeader returns the CSV header, in the column order of the generated module.
func dailyCSVHeader() []string {
	header := []string{"date", "merged"}
	for _, key := range schema.CountKeys {
		header = append(header, string(key))
	}
	return append(header, "avg_age", "avg_wait", "sum_age", "sum_wait")
}

// writeCSVDaily writes the daily rows. Filtered counts are empty cells.
func writeCSVDaily(w io.Writer, rows []schema.DailyRow, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, dailyCSVHeader(), func(cw *csv.Writer) error {
		for i := range rows {
			r := &rows[i]
			record := []string{r.Date, fmtFloat(r.Merged)}
			for _, key := range schema.CountKeys {
				record = append(record, formatCount(r.Count(key), intFmt, ""))
			}
			record = append(record, fmtFloat(r.AvgAge), fmtFloat(r.AvgWait), fmtFloat(r.SumAge), fmtFloat(r.SumWait))
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeCSVMonthly writes the monthly rows.
func writeCSVMonthly(w io.Writer, rows []schema.MonthlyRow, intFmt string) error {
	return writeCSVWithHeader(w, []string{"date", "merge_bar"}, func(cw *csv.Writer) error {
		for _, r := range rows {
			if err := cw.Write([]string{r.Date, fmt.Sprintf(intFmt, r.MergeBar)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeGeneratedModule wraps a table body in the generated-file banner.
func writeGeneratedModule(w io.Writer, body string) error {
	var sb strings.Builder
	sb.WriteString(generatedFileWarning)
	sb.WriteString("'use strict';\n\n")
	sb.WriteString(body)
	sb.WriteString(generatedFileWarning)
	_, err := io.WriteString(w, sb.String())
	return err
}

// writeTSDaily writes the daily table as a typed module. Floats always
// carry two decimals and filtered counts are null.
func writeTSDaily(w io.Writer, rows []schema.DailyRow) error {
	var sb strings.Builder
	sb.WriteString(dailyRowType)
	sb.WriteString("export const daily_table: DailyRow[] = [\n")
	for i := range rows {
		r := &rows[i]
		sb.WriteString("    { ")
		fmt.Fprintf(&sb, "date: '%s', ", r.Date)
		fmt.Fprintf(&sb, "merged: %.2f, ", r.Merged)
		for _, key := range schema.CountKeys {
			fmt.Fprintf(&sb, "%s: %s, ", key, formatCount(r.Count(key), "%d", "null"))
		}
		fmt.Fprintf(&sb, "avg_age: %.2f, ", r.AvgAge)
		fmt.Fprintf(&sb, "avg_wait: %.2f, ", r.AvgWait)
		fmt.Fprintf(&sb, "sum_age: %.2f, ", r.SumAge)
		fmt.Fprintf(&sb, "sum_wait: %.2f, ", r.SumWait)
		sb.WriteString("} as DailyRow,\n")
	}
	sb.WriteString("];\n")
	return writeGeneratedModule(w, sb.String())
}

// writeTSMonthly writes the monthly table as a typed module.
func writeTSMonthly(w io.Writer, rows []schema.MonthlyRow) error {
	var sb strings.Builder
	sb.WriteString(monthlyRowType)
	sb.WriteString("export const monthly_table: MonthlyRow[] = [\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "    { date: '%s', merge_bar: %d, },\n", r.Date, r.MergeBar)
	}
	sb.WriteString("];\n")
	return writeGeneratedModule(w, sb.String())
}
