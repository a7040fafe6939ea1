package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/go-sql-driver/mysql"   // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// driverFor maps a backend to its database/sql driver name.
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

// openDB opens and pings a database for the backend. An empty SQLite
// connection string falls back to defaultPath.
func openDB(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	dsn := connStr
	switch backend {
	case schema.SQLiteBackend:
		if dsn == "" {
			dsn = defaultPath
		}
	case schema.MySQLBackend:
		// DATETIME columns scan into time.Time only with parseTime enabled
		if cfg, perr := mysql.ParseDSN(dsn); perr == nil {
			cfg.ParseTime = true
			dsn = cfg.FormatDSN()
		}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		switch backend {
		case schema.SQLiteBackend:
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dsn, err)
		case schema.MySQLBackend:
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		default:
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
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

// validateTableName validates that the table name is a safe SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("\"%s\"", name)
}

// bindVar returns the i-th (1-based) bind parameter in the backend's syntax.
func bindVar(backend schema.DatabaseBackend, i int) string {
	if backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// bindList returns n comma-separated bind parameters.
func bindList(backend schema.DatabaseBackend, n int) string {
	vars := make([]string, n)
	for i := range vars {
		vars[i] = bindVar(backend, i+1)
	}
	return strings.Join(vars, ", ")
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.Format(time.RFC3339Nano)
	}
	return t
}

// timeScanner scans a timestamp column regardless of how the backend stores it.
type timeScanner struct {
	backend schema.DatabaseBackend
	str     sql.NullString
	native  sql.NullTime
}

func (ts *timeScanner) dest() any {
	if ts.backend == schema.SQLiteBackend {
		return &ts.str
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
	if !ts.str.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, ts.str.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts.str.String, err)
	}
	return &t, nil
}
