package outwriter

import (
	"os"

	"github.com/huangsam/repopulse/internal/contract"
	"golang.org/x/term"
)

// wideTableMinWidth is the terminal width needed to show the summed age and wait columns.
const wideTableMinWidth = 140

// GetTerminalWidth returns the width used to lay out tables.
func GetTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}

	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		return 80
	}
	return detectedWidth
}

// showSumColumns reports whether the daily table has room for the summed metrics.
func showSumColumns(cfg *contract.Config) bool {
	return GetTerminalWidth(cfg) >= wideTableMinWidth
}
