package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Review wait label constants.
const (
	NeglectedValue = "Neglected" // Neglected value
	StaleValue     = "Stale"     // Stale value
	WaitingValue   = "Waiting"   // Waiting value
	FreshValue     = "Fresh"     // Fresh value
)

// Color variables for console output.
var (
	NeglectedColor = color.New(color.FgRed, color.Bold) // NeglectedColor represents standard danger.
	StaleColor     = color.New(color.FgYellow)          // StaleColor represents standard caution, not bold.
	WaitingColor   = color.New(color.FgCyan)            // WaitingColor represents informational signal.
	FreshColor     = color.New(color.FgGreen)           // FreshColor represents a healthy queue.
	MutedColor     = color.New(color.FgHiBlack)         // MutedColor dims filtered values.
)

// GetPlainLabel returns a plain text label for the average review wait in
// days. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(avgWaitDays float64) string {
	switch {
	case avgWaitDays >= 90:
		return NeglectedValue
	case avgWaitDays >= 30:
		return StaleValue
	case avgWaitDays >= 7:
		return WaitingValue
	default:
		return FreshValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(avgWaitDays float64) string {
	text := GetPlainLabel(avgWaitDays)

	switch text {
	case NeglectedValue:
		return NeglectedColor.Sprint(text)
	case StaleValue:
		return StaleColor.Sprint(text)
	case WaitingValue:
		return WaitingColor.Sprint(text)
	default:
		return FreshColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. Empty means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for record caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repopulse_cache.db"
	}
	return filepath.Join(homeDir, ".repopulse_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repopulse_runs.db"
	}
	return filepath.Join(homeDir, ".repopulse_runs.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
