package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/repopulse/internal/contract"
	"github.com/huangsam/repopulse/schema"
)

// Table names for run history.
const (
	runsTable       = "repopulse_runs"
	dailyRowsTable  = "repopulse_daily_rows"
	migrationsTable = "repopulse_schema_migrations"
)

// dailyRowColumns lists the stored columns of a daily row after run_id.
var dailyRowColumns = []string{
	"row_date", "merged", "pr", "cxx20", "cxx23", "cxx26", "lwg", "issue", "bug", "video",
	"avg_age", "avg_wait", "sum_age", "sum_wait",
}

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run history tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{dailyRowsTable, getCreateDailyRowsQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for repopulse_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_rows INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_rows INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateDailyRowsQuery returns the CREATE TABLE query for repopulse_daily_rows.
func getCreateDailyRowsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(dailyRowsTable, backend)

	var dateType, intType, floatType string
	switch backend {
	case schema.MySQLBackend:
		dateType, intType, floatType = "VARCHAR(10)", "INT", "DOUBLE"
	case schema.PostgreSQLBackend:
		dateType, intType, floatType = "VARCHAR(10)", "INT", "DOUBLE PRECISION"
	default: // SQLite
		dateType, intType, floatType = "TEXT", "INTEGER", "REAL"
	}

	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			run_id BIGINT NOT NULL,
			row_date %[2]s NOT NULL,
			merged %[4]s NOT NULL,
			pr %[3]s,
			cxx20 %[3]s,
			cxx23 %[3]s,
			cxx26 %[3]s,
			lwg %[3]s,
			issue %[3]s,
			bug %[3]s,
			video %[3]s,
			avg_age %[4]s NOT NULL,
			avg_wait %[4]s NOT NULL,
			sum_age %[4]s NOT NULL,
			sum_wait %[4]s NOT NULL,
			PRIMARY KEY (run_id, row_date)
		);
	`, quotedTableName, dateType, intType, floatType)
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalRows int) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	start := timeScanner{backend: rs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}

	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_rows = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3), placeholder(rs.backend, 4))
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, totalRows, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordDailyRows stores the emitted daily rows of a run in one transaction.
func (rs *RunStoreImpl) RecordDailyRows(runID int64, rows []schema.DailyRow) error {
	if rs.backend == schema.NoneBackend || rs.db == nil || len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, %s) VALUES (%s)`,
		quoteTableName(dailyRowsTable, rs.backend),
		strings.Join(dailyRowColumns, ", "),
		placeholderList(rs.backend, len(dailyRowColumns)+1))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare daily row insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		args := []any{
			runID, row.Date, row.Merged,
			nullInt(row.PR), nullInt(row.FeatureA), nullInt(row.FeatureB), nullInt(row.FeatureC),
			nullInt(row.Resolution), nullInt(row.Issue), nullInt(row.Bug), nullInt(row.Video),
			row.AvgAge, row.AvgWait, row.SumAge, row.SumWait,
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert daily row %s: %w", row.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit daily rows: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)

	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: rs.backend}
		query := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(query).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: rs.backend}
		query = fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(query).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	for _, table := range []string{runsTable, dailyRowsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalDailyRows = int(status.TableSizes[dailyRowsTable])

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_rows, config_params FROM %s ORDER BY run_id",
		quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := timeScanner{backend: rs.backend}
		end := timeScanner{backend: rs.backend}
		var duration sql.NullInt32
		var params sql.NullString

		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &duration, &record.TotalRows, &params); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		if duration.Valid {
			record.RunDurationMs = &duration.Int32
		}
		if params.Valid {
			record.ConfigParams = &params.String
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return results, nil
}

// GetAllDailyRows retrieves all daily rows from the store.
func (rs *RunStoreImpl) GetAllDailyRows() ([]schema.DailyRowRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, %s FROM %s ORDER BY run_id, row_date",
		strings.Join(dailyRowColumns, ", "), quoteTableName(dailyRowsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DailyRowRecord
	for rows.Next() {
		var record schema.DailyRowRecord
		var counts [8]sql.NullInt64

		if err := rows.Scan(
			&record.RunID, &record.Date, &record.Merged,
			&counts[0], &counts[1], &counts[2], &counts[3], &counts[4], &counts[5], &counts[6], &counts[7],
			&record.AvgAge, &record.AvgWait, &record.SumAge, &record.SumWait,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily row: %w", err)
		}

		dests := []**int{
			&record.PR, &record.FeatureA, &record.FeatureB, &record.FeatureC,
			&record.Resolution, &record.Issue, &record.Bug, &record.Video,
		}
		for i, c := range counts {
			if c.Valid {
				v := int(c.Int64)
				*dests[i] = &v
			}
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily rows: %w", err)
	}

	return results, nil
}

// nullInt converts a nullable count to a driver value.
func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
