package cmd

import (
	"github.com/huangsam/repopulse/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [input]",
	Short: "Start the repopulse MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents read the daily and
monthly tables via standard tools. The configured input, labels and range are
the defaults of every tool call.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
