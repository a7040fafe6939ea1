package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/iocache"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeBackendFromConfig resolves the run store backend and connection string.
// An empty backend means tracking is disabled.
func storeBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if backendStr := viper.GetString("store-backend"); backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	connStr := viper.GetString("store-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// storeSetup loads minimal configuration needed for run store operations.
func storeSetup() error {
	backend, connStr, err := storeBackendFromConfig()
	if err != nil {
		return err
	}

	// No result caching for store commands
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads the configuration for migrations. It does NOT
// initialize stores or create tables, so migrations can run on a fresh database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeCmd focused on run history management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by simulation commands.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage run tracking history and exports",
	Long: `Manage the history of simulation runs.

When --store-backend is set, every run, compare and sweep is recorded with:
- Run metadata (command, timestamp, configuration, duration)
- Both regime estimates of every simulated configuration

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export history to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  robotsampler store status --store-backend sqlite

  # Export for analysis in pandas/DuckDB
  robotsampler store export --store-backend sqlite --output-file history`,
}

// storeClearCmd clears the run history.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run tracking data",
	Long: `Delete all stored runs and detection rates.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  robotsampler store export --store-backend sqlite --output-file backup
  robotsampler store clear --store-backend sqlite`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// The open connection holds the SQLite file
		iocache.CloseStores()
		if err := iocache.ClearStore(cfg.StoreBackend, sqliteFilePath(cfg.StoreDBConnect, contract.GetStoreDBFilePath()), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// storeStatusCmd shows run store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about run tracking.

Displays:
- Backend type and connection status
- Total number of runs and the last run ID
- Last and oldest run timestamps
- Total detection rates recorded
- Database table sizes

Examples:
  robotsampler store status --store-backend sqlite`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run store status", errors.New("run tracking is disabled; set --store-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
	},
}

// storeExportCmd exports the run history to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs to Parquet format.

Writes two files next to the --output-file prefix:
- <prefix>.runs.parquet             - metadata about each run
- <prefix>.detection_rates.parquet  - both regime estimates per configuration

Requires: --output-file parameter

Examples:
  robotsampler store export --store-backend sqlite --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.detection_rates.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExportStore(os.Stdout, iocache.Manager.GetRunStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the run store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  robotsampler store migrate --store-backend sqlite

  # Rollback to the initial schema
  robotsampler store migrate --store-backend sqlite --target-version 0`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
