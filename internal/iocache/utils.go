package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/huangsam/repopulse/schema"
)

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName validates that the table name is a safe SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNameRe.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNameRe)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// driverFor returns the database/sql driver name of a backend.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// openDB opens and pings a connection. An empty SQLite connection string
// falls back to defaultPath.
func openDB(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = defaultPath
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		switch backend {
		case schema.SQLiteBackend:
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Ensure the directory is writable", connStr, err)
		case schema.MySQLBackend:
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		default:
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}

// placeholder returns the i-th (1-based) parameter placeholder for the backend.
func placeholder(backend schema.DatabaseBackend, i int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// placeholderList returns n comma-separated placeholders starting at 1.
func placeholderList(backend schema.DatabaseBackend, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(backend, i+1)
	}
	return strings.Join(parts, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// timeScanner scans a timestamp column stored natively or as RFC3339 text.
type timeScanner struct {
	backend schema.DatabaseBackend
	text    sql.NullString
	native  sql.NullTime
}

func (ts *timeScanner) dest() any {
	if ts.backend == schema.SQLiteBackend {
		return &ts.text
	}
	return &ts.native
}

// value returns the scanned time, or nil for NULL.
func (ts *timeScanner) value() (*time.Time, error) {
	if ts.backend != schema.SQLiteBackend {
		if !ts.native.Valid {
			return nil, nil
		}
		t := ts.native.Time
		return &t, nil
	}
	if !ts.text.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts.text.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse time %q: %w", ts.text.String, err)
	}
	return &t, nil
}
