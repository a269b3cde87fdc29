package iocache

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/repopulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Already at latest
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))

	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 3))
}

func TestMigrateRuns_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, ":memory:", -1))
}

func TestMigrateRuns_CompatibleWithStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Tables created by the store are adopted by the first migrations
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
}

func TestMigrationsCoverEveryDialect(t *testing.T) {
	var counts []int
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		entries, err := fs.ReadDir(migrationsFS, migrationDir(backend))
		require.NoError(t, err, "backend %s", backend)
		assert.Zero(t, len(entries)%2, "every up migration needs a down for %s", backend)
		counts = append(counts, len(entries))
	}
	assert.Equal(t, counts[0], counts[1])
	assert.Equal(t, counts[0], counts[2])
}
