// Package cmd defines the command-line interface for robotsampler.
package cmd

import (
	"fmt"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("sims", "n", contract.DefaultNumSims, "Number of Monte Carlo trials per configuration")
	rootCmd.PersistentFlags().IntP("horizon", "T", contract.DefaultHorizonDays, "Time horizon in days (positive multiple of 7)")
	rootCmd.PersistentFlags().String("occupancy", fmt.Sprint(contract.DefaultOccupancy), "Occupancy probability psi in [0,1] (decimal or percent)")
	rootCmd.PersistentFlags().String("detection", fmt.Sprint(contract.DefaultDetection), "Detection probability p in (0,1) (decimal or percent)")
	rootCmd.PersistentFlags().String("batching", string(schema.SubsampleBatching), "Conventional batching: subsample or independent")
	rootCmd.PersistentFlags().String("detectability", string(schema.ConstantDetectability), "Detection process: constant or time-varying")
	rootCmd.PersistentFlags().String("volatility", string(schema.HighVolatility), "Time-varying preset: high or low")
	rootCmd.PersistentFlags().String("phi", "", "AR(1) coefficient override for time-varying detectability")
	rootCmd.PersistentFlags().String("sigma", "", "Innovation scale override for time-varying detectability")
	rootCmd.PersistentFlags().Uint64("seed", contract.DefaultSeed, "Run seed; the same seed reproduces the same result")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Result cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("store-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of sweepCmd to Viper
	sweepCmd.Flags().String("horizons", contract.DefaultHorizons, "Comma-separated horizons in days")
	sweepCmd.Flags().String("occupancies", contract.DefaultOccupancies, "Comma-separated occupancy probabilities")
	sweepCmd.Flags().String("detections", contract.DefaultDetections, "Comma-separated detection probabilities")
	sweepCmd.Flags().String("batchings", contract.DefaultBatchings, "Comma-separated batching modes")
	sweepCmd.Flags().String("grid", "", "YAML grid file; overrides the list flags")
	sweepCmd.Flags().String("plot-file", "", "Write a PNG/SVG/PDF plot of detection probability against weeks")
	if err := viper.BindPFlags(sweepCmd.Flags()); err != nil {
		contract.LogFatal("Error binding sweep flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
