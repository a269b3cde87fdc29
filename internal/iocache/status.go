package iocache

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/repopulse/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Cache Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s (%s)\n", status.LastEntryTime.Format(statusTimeFormat), humanize.Time(status.LastEntryTime))
		fmt.Printf("Oldest Entry: %s (%s)\n", status.OldestEntryTime.Format(statusTimeFormat), humanize.Time(status.OldestEntryTime))
	}
	fmt.Printf("Table Size: %s\n", humanize.Bytes(uint64(max(status.TableSizeBytes, 0))))
}

// PrintRunStatus prints run history status information.
func PrintRunStatus(status schema.RunStatus) {
	fmt.Printf("Runs Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s (%s)\n", status.LastRunTime.Format(statusTimeFormat), humanize.Time(status.LastRunTime))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeFormat))
		fmt.Printf("Total Daily Rows: %s\n", humanize.Comma(int64(status.TotalDailyRows)))
	}
	fmt.Println("Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		fmt.Printf("  %s: %s rows\n", table, humanize.Comma(status.TableSizes[table]))
	}
}
