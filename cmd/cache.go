package cmd

import (
	"fmt"
	"os"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/iocache"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No run tracking for cache commands
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// sqliteFilePath returns the SQLite file a connection string points at.
func sqliteFilePath(connStr, defaultPath string) string {
	if connStr != "" {
		return connStr
	}
	return defaultPath
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by simulation commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the simulation result cache",
	Long: `Manage the cache of simulated configurations.

Each configuration is keyed by every parameter that affects its outcome,
including the seed, so a repeated run returns the stored rates instead of
simulating again.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached results

Examples:
  # Check cache status
  robotsampler cache status

  # Clear cache after changing the engine
  robotsampler cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached simulation results",
	Long: `Delete all cached simulation results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  robotsampler cache clear

  # Clear MySQL cache (set connection string via env variable)
  ROBOTSAMPLER_CACHE_BACKEND=mysql ROBOTSAMPLER_CACHE_DB_CONNECT="..." robotsampler cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// The open connection holds the SQLite file
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, sqliteFilePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the result cache.

Displays:
- Backend type and connection status
- Total number of cached configurations
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  robotsampler cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetResultStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
