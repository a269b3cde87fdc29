package cmd

import (
	"fmt"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/internal/iocache"
	"github.com/huangsam/repopulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackendFromViper returns the configured run history backend, defaulting to none.
func runsBackendFromViper() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}

	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run history operations.
func runsSetup() error {
	backend, connStr, err := runsBackendFromViper()
	if err != nil {
		return err
	}

	// No record caching for runs commands
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads configuration for migrations without opening the
// store, so migrations can run on a fresh database.
func runsMigrateSetup() error {
	backend, connStr, err := runsBackendFromViper()
	if err != nil {
		return err
	}

	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run history management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of table runs and exports",
	Long: `Manage the history of table runs.

When --runs-backend is set, every table command records:
- Run metadata (timestamp, parameters, duration)
- Every daily row the run produced

This keeps past tables around for comparison and export.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check run history status
  repopulse runs status --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  repopulse runs export --runs-backend sqlite --output-file runs`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs and daily rows",
	Long: `Delete all stored runs and the daily rows they produced.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  repopulse runs export --runs-backend sqlite --output-file backup
  repopulse runs clear --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFile := sqliteFilePath(cfg.RunsDBConnect, contract.GetRunsDBFilePath())
		// Release the SQLite file before deleting it
		iocache.CloseCaching()
		if err := iocache.ClearRuns(cfg.RunsBackend, dbFile, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about the run history.

Displays:
- Backend type and connection status
- Total number of runs and daily rows stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run history status
  repopulse runs status --runs-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			iocache.PrintRunStatus(schema.RunStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs to Parquet format for use with analytics tools.

Exports two datasets:
- <output-file>.runs.parquet - metadata about each run
- <output-file>.daily_rows.parquet - every daily row of every run

Requires: --output-file parameter

Examples:
  # Export all data
  repopulse runs export --runs-backend sqlite --output-file repopulse

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('repopulse.daily_rows.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  repopulse runs migrate --runs-backend sqlite

  # Rollback to initial state
  repopulse runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
