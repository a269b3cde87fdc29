package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/huangsam/repopulse/core"
	"github.com/huangsam/repopulse/core/algo"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// mergeWeight is the result of the get_merge_weight tool.
type mergeWeight struct {
	DaysAgo float64 `json:"days_ago"`
	Weight  float64 `json:"weight"`
}

// tableConfig clones the base config and applies the shared tool arguments.
func (h *toolHandler) tableConfig(request mcp.CallToolRequest, beginStr string) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("input", ""); p != "" {
		cfg.InputPath = p
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("an input file is required")
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	} else {
		cfg.ResultLimit = 0
	}
	if err := contract.RevalidateRange(cfg, beginStr, request.GetString("now", "")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *toolHandler) handleGetDailyTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.tableConfig(request, request.GetString("begin", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid table parameters: %v", err)), nil
	}

	result, _, err := core.GetTableResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("building daily table failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(algo.Tail(result.Daily, cfg.ResultLimit), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetMonthlyTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.tableConfig(request, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid table parameters: %v", err)), nil
	}

	result, _, err := core.GetTableResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("building monthly table failed: %v", err)), nil
	}

	monthly := algo.Tail(result.Monthly, cfg.ResultLimit)
	if monthly == nil {
		monthly = []schema.MonthlyRow{}
	}
	jsonData, _ := json.MarshalIndent(monthly, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetMergeWeight(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	daysAgo, err := request.RequireFloat("days_ago")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if math.IsNaN(daysAgo) || math.IsInf(daysAgo, 0) {
		return mcp.NewToolResultError("days_ago must be a finite number"), nil
	}

	jsonData, _ := json.MarshalIndent(mergeWeight{DaysAgo: daysAgo, Weight: algo.Weight(daysAgo)}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
