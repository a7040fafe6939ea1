package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// resultTable is the name of the table for cached simulation results.
const resultTable = "result_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for cached results.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetStoreDBFilePath returns the path to the SQLite DB file for run tracking.
func GetStoreDBFilePath() string {
	return contract.GetStoreDBFilePath()
}

// InitStores initializes the global manager with the result cache and the run store.
// An empty backend leaves the corresponding store disabled.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, storeBackend schema.DatabaseBackend, storeConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var results contract.CacheStore
		if cacheBackend != "" {
			store, err := NewCacheStore(resultTable, cacheBackend, cacheConnStr)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize result caching: %w", err)
				return
			}
			results = store
		}

		var runs contract.RunStore
		if storeBackend != "" {
			store, err := NewRunStore(storeBackend, storeConnStr)
			if err != nil {
				if results != nil {
					_ = results.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
			runs = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.results = results
		Manager.runs = runs
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.results != nil {
			_ = Manager.results.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearCache clears the result cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, resultTable)
}

// ClearStore clears the run history for the specified backend.
// Schema migration bookkeeping is dropped with the tables.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	return clearBackend(backend, dbFilePath, connStr, detectionRatesTable, runsTable, "schema_migrations")
}

func clearBackend(backend schema.DatabaseBackend, dbFilePath, connStr string, tables ...string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		driverName, _ := driverFor(backend)
		for _, table := range tables {
			if err := clearSQLTable(driverName, backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(driverName string, backend schema.DatabaseBackend, connStr, tableName string) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
