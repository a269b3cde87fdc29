// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteDaily prints the daily table using the configured output format.
func (ow *OutWriter) WriteDaily(result schema.TableResult, cfg *contract.Config, duration time.Duration) error {
	return PrintDailyResults(result, cfg, duration)
}

// WriteMonthly prints the monthly merge table using the configured output format.
func (ow *OutWriter) WriteMonthly(result schema.TableResult, cfg *contract.Config, duration time.Duration) error {
	return PrintMonthlyResults(result, cfg, duration)
}

// WriteGenerated writes the table modules and the chart page into the output directory.
func (ow *OutWriter) WriteGenerated(result schema.TableResult, cfg *contract.Config, duration time.Duration) error {
	return WriteGeneratedFiles(result, cfg, duration)
}
