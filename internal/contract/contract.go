// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repopulse/schema"
)

// RecordSource loads the interval records an aggregation runs on.
// This allows the core logic to be tested without files on disk.
type RecordSource interface {
	// Fingerprint identifies the current content of every input, cheaply.
	// Two equal fingerprints must load equal record sets.
	Fingerprint(ctx context.Context) (string, error)

	// Load reads, classifies and filters the records.
	Load(ctx context.Context) (*schema.RecordSet, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetRecordStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking runs and the daily rows they produced.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalRows int) error

	// RecordDailyRows stores the emitted daily rows of a run
	RecordDailyRows(runID int64, rows []schema.DailyRow) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllDailyRows returns every recorded daily row
	GetAllDailyRows() ([]schema.DailyRowRecord, error)

	// Close closes the underlying connection
	Close() error
}
