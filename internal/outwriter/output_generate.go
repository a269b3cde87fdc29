package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// Names of the generated files.
const (
	DailyModuleFile   = "daily_table.ts"
	MonthlyModuleFile = "monthly_table.ts"
	ChartPageFile     = "status_chart.html"
)

// WriteGeneratedFiles writes both table modules and the chart page into cfg.OutDir.
func WriteGeneratedFiles(result schema.TableResult, cfg *contract.Config, duration time.Duration) error {
	dir := cfg.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
		msg   string
	}{
		{DailyModuleFile, func(w io.Writer) error { return writeTSDaily(w, result.Daily) }, "Wrote daily table module"},
		{MonthlyModuleFile, func(w io.Writer) error { return writeTSMonthly(w, result.Monthly) }, "Wrote monthly table module"},
		{ChartPageFile, func(w io.Writer) error { return writeChartPage(w, result, cfg.Labels) }, "Wrote status chart"},
	}
	for _, f := range files {
		if err := writeWithFile(filepath.Join(dir, f.name), f.write, f.msg); err != nil {
			return fmt.Errorf("error writing %s: %w", f.name, err)
		}
	}

	printCompletion(os.Stderr, duration, len(result.Daily)+len(result.Monthly), cfg)
	return nil
}
