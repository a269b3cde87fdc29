// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the repopulse MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Repopulse Status Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_daily_table ---
	s.AddTool(mcp.NewTool("get_daily_table",
		mcp.WithDescription("Build the daily status table of open pull requests, issues, video reviews and the smoothed merge rate."),
		mcp.WithString("input", mcp.Description("Path to the saved pull request and issue nodes (defaults to the configured input).")),
		mcp.WithString("begin", mcp.Description("First day of the table, ISO8601 or 'N units ago'.")),
		mcp.WithString("now", mcp.Description("End of the table (exclusive), ISO8601 or 'N units ago'. Defaults to the configured now.")),
		mcp.WithNumber("limit", mcp.Description("Return only the most recent rows.")),
	), h.handleGetDailyTable)

	// --- 2. Tool: get_monthly_table ---
	s.AddTool(mcp.NewTool("get_monthly_table",
		mcp.WithDescription("Count merged pull requests per complete calendar month."),
		mcp.WithString("input", mcp.Description("Path to the saved pull request and issue nodes.")),
		mcp.WithString("now", mcp.Description("Months before the month of this timestamp are counted.")),
		mcp.WithNumber("limit", mcp.Description("Return only the most recent months.")),
	), h.handleGetMonthlyTable)

	// --- 3. Tool: get_merge_weight ---
	s.AddTool(mcp.NewTool("get_merge_weight",
		mcp.WithDescription("Weight a merge contributes to the smoothed merge rate, given how many days ago it happened."),
		mcp.WithNumber("days_ago", mcp.Description("Days between the merge and the evaluated day."), mcp.Required()),
	), h.handleGetMergeWeight)

	return s
}

// StartMCPServer starts the repopulse MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
