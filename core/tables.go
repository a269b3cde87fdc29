package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/repopulse/core/timeline"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// runTableCore performs the load, build and tracking steps shared by all table commands.
// Cancellation is only observed between stages.
func runTableCore(ctx context.Context, cfg *contract.Config, src contract.RecordSource, mgr contract.CacheManager) (*schema.TableResult, error) {
	if !shouldSuppressHeader(ctx) {
		logTableHeader(headerWriter, cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	runs := mgr.GetRunStore()
	if runs != nil {
		var err error
		runID, err = runs.BeginRun(time.Now(), runParams(cfg))
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Load Phase (with caching) ---
	set, err := cachedLoadRecords(ctx, cfg, src, mgr)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 2. Build Phase ---
	result, err := BuildTables(set, cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- 3. End Run Tracking ---
	if runs != nil && runID > 0 {
		if err := runs.RecordDailyRows(runID, result.Daily); err != nil {
			contract.LogWarn("Failed to record daily rows", err)
		}
		if err := runs.EndRun(runID, time.Now(), len(result.Daily)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return result, nil
}

// BuildTables runs the timeline engine over a record set and returns the
// daily table for [Begin, Now) and the monthly table of complete months.
func BuildTables(set *schema.RecordSet, cfg *contract.Config) (*schema.TableResult, error) {
	loc := location(cfg)
	grid := timeline.NewGrid(cfg.Begin, cfg.Now, loc)

	daily, err := timeline.Build(set, grid)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily table: %w", err)
	}
	monthly := timeline.MonthlyMerges(set.PullRequests, cfg.MonthlyBegin, cfg.Now, loc)

	return &schema.TableResult{
		Begin:   cfg.Begin,
		Now:     cfg.Now,
		Daily:   daily,
		Monthly: monthly,
	}, nil
}

// runParams are the settings stored with a tracked run.
func runParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"input":         cfg.InputPath,
		"videos":        cfg.VideosPath,
		"timezone":      location(cfg).String(),
		"begin":         cfg.Begin.Format(contract.DateTimeFormat),
		"monthly_begin": cfg.MonthlyBegin.Format(contract.DateTimeFormat),
		"now":           cfg.Now.Format(contract.DateTimeFormat),
		"labels":        cfg.Labels.String(),
		"output":        string(cfg.Output),
	}
}

func location(cfg *contract.Config) *time.Location {
	if cfg.Location == nil {
		return time.UTC
	}
	return cfg.Location
}
