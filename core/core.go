// Package core has core logic for loading records, building the status
// tables and handing them to the writers.
package core

import (
	"context"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/internal/outwriter"
	"github.com/huangsam/repopulse/internal/source"
	"github.com/huangsam/repopulse/schema"
)

// ExecutorFunc defines the function signature for executing the table commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteDaily builds the tables and prints the daily table.
// It serves as the main entry point for the 'daily' command.
func ExecuteDaily(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetTableResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDaily(*result, cfg, duration)
}

// ExecuteMonthly builds the tables and prints the monthly merge table.
// It serves as the main entry point for the 'monthly' command.
func ExecuteMonthly(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetTableResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMonthly(*result, cfg, duration)
}

// ExecuteGenerate builds the tables and writes the generated modules and chart page.
// It serves as the main entry point for the 'generate' command.
func ExecuteGenerate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetTableResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteGenerated(*result, cfg, duration)
}

// GetTableResults loads the configured inputs and builds both tables.
// It does not print the results, only the header unless suppressed.
func GetTableResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.TableResult, time.Duration, error) {
	start := time.Now()
	result, err := runTableCore(ctx, cfg, source.NewFileSource(cfg), mgr)
	if err != nil {
		return nil, 0, err
	}
	return result, time.Since(start), nil
}

// WithSuppressHeader returns a context that silences the table header.
func WithSuppressHeader(ctx context.Context) context.Context {
	return withSuppressHeader(ctx)
}
