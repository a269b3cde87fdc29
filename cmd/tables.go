package cmd

import (
	"github.com/huangsam/repopulse/core"
	"github.com/huangsam/repopulse/internal/contract"
	"github.com/spf13/cobra"
)

// dailyCmd prints the daily status table.
var dailyCmd = &cobra.Command{
	Use:   "daily [input]",
	Short: "Show the daily status table.",
	Long: `Build one row per calendar day from --begin until --now.

Each row counts the open pull requests, feature and resolution issues, other
issues, defects and pending video reviews at the start of that day, together
with the smoothed monthly merge rate and the average pull request age and
maintainer wait in days. Counts that did not change for a while are blanked
so that plotted lines stay readable.

Examples:
  # Last 30 days of the table
  repopulse daily nodes.json

  # Whole table with reviewers and videos
  repopulse daily nodes.json --maintainers maintainers.txt --contributors contributors.txt --videos videos.yaml --limit 0

  # Export for a spreadsheet
  repopulse daily nodes.json --output csv --output-file daily.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDaily(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build daily table", err)
		}
	},
}

// monthlyCmd prints the merges per complete month.
var monthlyCmd = &cobra.Command{
	Use:   "monthly [input]",
	Short: "Show merged pull requests per month.",
	Long: `Count merged pull requests for each complete calendar month from
--monthly-begin until the month of --now. The current month is left out
since it is still running.

Examples:
  # Monthly merges as a table
  repopulse monthly nodes.json

  # Monthly merges as JSON
  repopulse monthly nodes.json --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMonthly(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build monthly table", err)
		}
	},
}

// generateCmd writes the generated chart data modules and the chart page.
var generateCmd = &cobra.Command{
	Use:   "generate [input]",
	Short: "Write the chart data modules and the chart page.",
	Long: `Write daily_table.ts, monthly_table.ts and status_chart.html into --out-dir.

The TypeScript modules feed a status chart website. The HTML page renders the
same data directly with interactive charts.

Examples:
  # Regenerate the website data
  repopulse generate nodes.json --out-dir site/src/data`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGenerate(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot generate files", err)
		}
	},
}
