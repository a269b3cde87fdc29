package core

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/repopulse/internal/contract"
)

// headerWriter receives the table header, never stdout.
var headerWriter io.Writer = os.Stderr

// logTableHeader prints the input and the date range being built.
func logTableHeader(w io.Writer, cfg *contract.Config) {
	inputName := filepath.Base(cfg.InputPath)
	if cfg.InputPath == "" {
		inputName = "none"
	}

	searchPrefix, rangePrefix := "", ""
	if cfg.UseEmojis {
		searchPrefix, rangePrefix = "🔎 ", "📅 "
	}

	// Line 1: The input summary (file and timezone)
	_, _ = fmt.Fprintf(w, "%sInput: %s (Timezone: %s)\n", searchPrefix, inputName, location(cfg))

	// Line 2: The actual date range being built
	_, _ = fmt.Fprintf(w, "%sRange: %s → %s\n", rangePrefix, cfg.Begin.Format(contract.DateTimeFormat), cfg.Now.Format(contract.DateTimeFormat))
}
