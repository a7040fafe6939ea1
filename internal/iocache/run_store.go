package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/google/uuid"
)

// Table names for run tracking.
const (
	runsTable           = "robotsampler_runs"
	detectionRatesTable = "robotsampler_detection_rates"
)

// EngineVersion is recorded with each run once the engine_version column has been migrated in.
var EngineVersion = "dev"

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db               *sql.DB
	backend          schema.DatabaseBackend
	hasEngineVersion bool
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:               db,
		backend:          backend,
		hasEngineVersion: columnExists(db, backend, runsTable, "engine_version"),
	}, nil
}

// columnExists probes for a column without depending on dialect-specific catalogs.
func columnExists(db *sql.DB, backend schema.DatabaseBackend, table, column string) bool {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1 = 0", column, quoteTableName(table, backend))
	rows, err := db.Query(query)
	if err != nil {
		return false
	}
	_ = rows.Close()
	return true
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{detectionRatesTable, getCreateDetectionRatesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for robotsampler_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				command VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_configs INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				command TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_configs INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				command TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_configs INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateDetectionRatesQuery returns the CREATE TABLE query for robotsampler_detection_rates.
func getCreateDetectionRatesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(detectionRatesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				sample_method VARCHAR(32) NOT NULL,
				num_weeks INT NOT NULL,
				occupancy DOUBLE NOT NULL,
				detection DOUBLE NOT NULL,
				batching VARCHAR(32) NOT NULL,
				detectability VARCHAR(32) NOT NULL,
				num_sims INT NOT NULL,
				detected INT NOT NULL,
				probability DOUBLE NOT NULL,
				std_err DOUBLE NOT NULL,
				mean_rate DOUBLE NOT NULL,
				recorded_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				sample_method TEXT NOT NULL,
				num_weeks INT NOT NULL,
				occupancy DOUBLE PRECISION NOT NULL,
				detection DOUBLE PRECISION NOT NULL,
				batching TEXT NOT NULL,
				detectability TEXT NOT NULL,
				num_sims INT NOT NULL,
				detected INT NOT NULL,
				probability DOUBLE PRECISION NOT NULL,
				std_err DOUBLE PRECISION NOT NULL,
				mean_rate DOUBLE PRECISION NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				sample_method TEXT NOT NULL,
				num_weeks INTEGER NOT NULL,
				occupancy REAL NOT NULL,
				detection REAL NOT NULL,
				batching TEXT NOT NULL,
				detectability TEXT NOT NULL,
				num_sims INTEGER NOT NULL,
				detected INTEGER NOT NULL,
				probability REAL NOT NULL,
				std_err REAL NOT NULL,
				mean_rate REAL NOT NULL,
				recorded_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	columns := "run_uuid, command, start_time, config_params"
	args := []any{uuid.NewString(), command, formatTime(startTime, rs.backend), string(configJSON)}
	if rs.hasEngineVersion {
		columns += ", engine_version"
		args = append(args, EngineVersion)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	values := bindList(rs.backend, len(args))

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING run_id`, quotedTableName, columns, values)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, quotedTableName, columns, values)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// RecordRates stores the estimate of each regime for one configuration.
func (rs *RunStoreImpl) RecordRates(runID int64, rates schema.DetectionRates) error {
	if rs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, sample_method, num_weeks, occupancy, detection, batching, detectability,
		                num_sims, detected, probability, std_err, mean_rate, recorded_at)
		VALUES (%s)
	`, quoteTableName(detectionRatesTable, rs.backend), bindList(rs.backend, 13))

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	recordedAt := formatTime(time.Now(), rs.backend)
	for _, row := range schema.RowsFromRates(rates) {
		detected := rates.Estimate(row.SampleMethod).Detected
		if _, err := tx.Exec(query,
			runID, string(row.SampleMethod), row.NumWeeks, row.Occupancy, row.Detection,
			string(row.Batching), string(row.Detectability), row.NumSims, detected,
			row.Probability, row.StdErr, row.MeanRate, recordedAt,
		); err != nil {
			return fmt.Errorf("failed to insert %s rate: %w", row.SampleMethod, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rates: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalConfigs int) error {
	if rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	start := timeScanner{backend: rs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, bindVar(rs.backend, 1))
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	if startTime == nil {
		return fmt.Errorf("run %d has no start_time", runID)
	}

	durationMs := endTime.Sub(*startTime).Milliseconds()
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_configs = %s WHERE run_id = %s`,
		quotedTableName, bindVar(rs.backend, 1), bindVar(rs.backend, 2), bindVar(rs.backend, 3), bindVar(rs.backend, 4))
	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalConfigs, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
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
func (rs *RunStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: rs.backend}
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastQuery).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: rs.backend}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(oldestQuery).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	for _, table := range []string{runsTable, detectionRatesTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRates = int(status.TableSizes[detectionRatesTable])

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	columns := "run_id, run_uuid, command, start_time, end_time, run_duration_ms, total_configs, config_params"
	if rs.hasEngineVersion {
		columns += ", engine_version"
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id", columns, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var totalConfigs sql.NullInt32
		start := timeScanner{backend: rs.backend}
		end := timeScanner{backend: rs.backend}

		dest := []any{
			&record.RunID, &record.RunUUID, &record.Command, start.dest(), end.dest(),
			&record.RunDurationMs, &totalConfigs, &record.ConfigParams,
		}
		if rs.hasEngineVersion {
			dest = append(dest, &record.EngineVersion)
		}
		if err := rows.Scan(dest...); err != nil {
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
		record.TotalConfigs = totalConfigs.Int32

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRates retrieves all recorded detection rates from the store.
func (rs *RunStoreImpl) GetAllRates() ([]schema.RateRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, sample_method, num_weeks, occupancy, detection, batching, detectability,
		num_sims, detected, probability, std_err, mean_rate, recorded_at
		FROM %s ORDER BY run_id, num_weeks, sample_method`, quoteTableName(detectionRatesTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RateRecord
	for rows.Next() {
		var record schema.RateRecord
		recorded := timeScanner{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.SampleMethod, &record.NumWeeks, &record.Occupancy,
			&record.Detection, &record.Batching, &record.Detectability, &record.NumSims, &record.Detected,
			&record.Probability, &record.StdErr, &record.MeanRate, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan detection rate: %w", err)
		}
		recordedAt, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if recordedAt != nil {
			record.RecordedAt = *recordedAt
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detection rates: %w", err)
	}
	return results, nil
}
