package contract

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/andyhoegh/RobotSampler-Sims/core/algo"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// Default values for configuration.
const (
	DefaultNumSims     = 10000
	DefaultHorizonDays = 56
	DefaultOccupancy   = 0.1
	DefaultDetection   = 0.1
	DefaultSeed        = 1
	DefaultPrecision   = 3
	MaxPrecision       = 6
	MaxNumSims         = 100_000_000
)

// Default sweep grid.
const (
	DefaultHorizons    = "7,14,21,28,35,42,49,56"
	DefaultOccupancies = "0.05,0.10,0.15"
	DefaultDetections  = "0.05,0.10,0.15"
	DefaultBatchings   = "subsample,independent"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a simulation.
// This struct remains the "final, validated" config.
type Config struct {
	NumSims       int
	HorizonDays   int
	Occupancy     float64
	Detection     float64
	Batching      schema.BatchingMode
	Detectability schema.Detectability
	Volatility    schema.Volatility
	Seed          uint64
	Workers       int

	// Sweep grid
	Horizons    []int
	Occupancies []float64
	Detections  []float64
	Batchings   []schema.BatchingMode
	PlotFile    string

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Sims           int    `mapstructure:"sims"`
	Horizon        int    `mapstructure:"horizon"`
	Occupancy      string `mapstructure:"occupancy"`
	Detection      string `mapstructure:"detection"`
	Batching       string `mapstructure:"batching"`
	Detectability  string `mapstructure:"detectability"`
	Volatility     string `mapstructure:"volatility"`
	Phi            string `mapstructure:"phi"`
	Sigma          string `mapstructure:"sigma"`
	Seed           uint64 `mapstructure:"seed"`
	Workers        int    `mapstructure:"workers"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`

	// --- Fields from sweepCmd.Flags() ---
	Horizons    string `mapstructure:"horizons"`
	Occupancies string `mapstructure:"occupancies"`
	Detections  string `mapstructure:"detections"`
	Batchings   string `mapstructure:"batchings"`
	Grid        string `mapstructure:"grid"`
	PlotFile    string `mapstructure:"plot-file"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Horizons = slices.Clone(c.Horizons)
	clone.Occupancies = slices.Clone(c.Occupancies)
	clone.Detections = slices.Clone(c.Detections)
	clone.Batchings = slices.Clone(c.Batchings)
	return &clone
}

// SimParams returns the single configuration described by the config.
func (c *Config) SimParams() schema.SimParams {
	return schema.SimParams{
		NumSims:       c.NumSims,
		HorizonDays:   c.HorizonDays,
		Occupancy:     c.Occupancy,
		Detection:     c.Detection,
		Batching:      c.Batching,
		Detectability: c.Detectability,
		Seed:          c.Seed,
	}
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSimulation(cfg, input); err != nil {
		return err
	}
	if err := processSweepGrid(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run store backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Run Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if cfg.StoreBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("store-db-connect: %w", err)
	}

	// Cache and run store must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.StoreBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		if cachePath == storePath {
			return fmt.Errorf("cache and run store must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and runtime fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return validateBackendConfigs(cfg, input)
}

// processSimulation resolves the single-configuration parameters and checks
// them before any sampling happens.
func processSimulation(cfg *Config, input *ConfigRawInput) error {
	if input.Sims <= 0 || input.Sims > MaxNumSims {
		return fmt.Errorf("sims must be greater than 0 and cannot exceed %d (received %d)", MaxNumSims, input.Sims)
	}
	cfg.NumSims = input.Sims
	cfg.HorizonDays = input.Horizon
	cfg.Seed = input.Seed

	occupancy, err := parseProbability("occupancy", input.Occupancy)
	if err != nil {
		return err
	}
	cfg.Occupancy = occupancy

	detection, err := parseProbability("detection", input.Detection)
	if err != nil {
		return err
	}
	cfg.Detection = detection

	cfg.Batching = schema.BatchingMode(strings.ToLower(input.Batching))
	if _, ok := schema.ValidBatchingModes[cfg.Batching]; !ok {
		return fmt.Errorf("invalid batching '%s'. must be subsample, independent", input.Batching)
	}

	detectability, err := processDetectability(cfg, input)
	if err != nil {
		return err
	}
	cfg.Detectability = detectability

	return algo.TrialParamsFrom(cfg.SimParams()).Validate()
}

// processDetectability resolves the detectability mode, the volatility preset
// and any explicit phi or sigma overrides.
func processDetectability(cfg *Config, input *ConfigRawInput) (schema.Detectability, error) {
	mode := schema.DetectabilityMode(strings.ToLower(input.Detectability))
	if mode == "time_varying" {
		mode = schema.TimeVaryingDetectability
	}
	if _, ok := schema.ValidDetectabilityModes[mode]; !ok {
		return schema.Detectability{}, fmt.Errorf("invalid detectability '%s'. must be constant, time-varying", input.Detectability)
	}

	cfg.Volatility = schema.Volatility(strings.ToLower(input.Volatility))
	if cfg.Volatility == "" {
		cfg.Volatility = schema.HighVolatility
	}
	preset, ok := schema.VolatilityPresets[cfg.Volatility]
	if !ok {
		return schema.Detectability{}, fmt.Errorf("invalid volatility '%s'. must be high, low", input.Volatility)
	}

	if mode == schema.ConstantDetectability {
		return schema.Detectability{Mode: mode}, nil
	}

	d := schema.Detectability{Mode: mode, Phi: preset.Phi, Sigma: preset.Sigma}
	if input.Phi != "" {
		phi, err := strconv.ParseFloat(strings.TrimSpace(input.Phi), 64)
		if err != nil {
			return schema.Detectability{}, fmt.Errorf("invalid phi '%s': %w", input.Phi, err)
		}
		d.Phi = phi
	}
	if input.Sigma != "" {
		sigma, err := strconv.ParseFloat(strings.TrimSpace(input.Sigma), 64)
		if err != nil {
			return schema.Detectability{}, fmt.Errorf("invalid sigma '%s': %w", input.Sigma, err)
		}
		d.Sigma = sigma
	}
	return d, nil
}

// processSweepGrid parses the grid lists, or loads them from a grid file.
func processSweepGrid(cfg *Config, input *ConfigRawInput) error {
	cfg.PlotFile = input.PlotFile

	if input.Grid != "" {
		grid, err := LoadGridFile(input.Grid)
		if err != nil {
			return err
		}
		return grid.apply(cfg)
	}

	var err error
	if cfg.Horizons, err = ParseIntList(input.Horizons); err != nil {
		return fmt.Errorf("invalid --horizons: %w", err)
	}
	if cfg.Occupancies, err = ParseFloatList(input.Occupancies); err != nil {
		return fmt.Errorf("invalid --occupancies: %w", err)
	}
	if cfg.Detections, err = ParseFloatList(input.Detections); err != nil {
		return fmt.Errorf("invalid --detections: %w", err)
	}
	if cfg.Batchings, err = ParseBatchingList(input.Batchings); err != nil {
		return fmt.Errorf("invalid --batchings: %w", err)
	}
	return nil
}

// parseProbability parses a probability string, accepting plain decimals and percentages.
func parseProbability(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, s, err)
	}
	v /= scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s '%s': must be finite", name, s)
	}
	return v, nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// RevalidateSimulation re-checks the simulation fields of a config that was
// changed after ProcessAndValidate, such as by an MCP tool call.
func RevalidateSimulation(cfg *Config) error {
	if cfg.NumSims <= 0 || cfg.NumSims > MaxNumSims {
		return fmt.Errorf("sims must be greater than 0 and cannot exceed %d (received %d)", MaxNumSims, cfg.NumSims)
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", cfg.Workers)
	}
	return algo.TrialParamsFrom(cfg.SimParams()).Validate()
}

// RevalidateDetectability resolves a detectability override the same way
// the flags are resolved. Empty phi or sigma keep the preset values.
func RevalidateDetectability(cfg *Config, mode, volatility, phi, sigma string) error {
	d, err := processDetectability(cfg, &ConfigRawInput{
		Detectability: mode,
		Volatility:    volatility,
		Phi:           phi,
		Sigma:         sigma,
	})
	if err != nil {
		return err
	}
	cfg.Detectability = d
	return nil
}

// RevalidateSweep overrides the sweep axes from comma-separated lists.
// An empty list keeps the current axis.
func RevalidateSweep(cfg *Config, horizons, occupancies, detections, batchings string) error {
	var err error
	if horizons != "" {
		if cfg.Horizons, err = ParseIntList(horizons); err != nil {
			return fmt.Errorf("invalid horizons: %w", err)
		}
	}
	if occupancies != "" {
		if cfg.Occupancies, err = ParseFloatList(occupancies); err != nil {
			return fmt.Errorf("invalid occupancies: %w", err)
		}
	}
	if detections != "" {
		if cfg.Detections, err = ParseFloatList(detections); err != nil {
			return fmt.Errorf("invalid detections: %w", err)
		}
	}
	if batchings != "" {
		if cfg.Batchings, err = ParseBatchingList(batchings); err != nil {
			return fmt.Errorf("invalid batchings: %w", err)
		}
	}
	if cfg.NumSims <= 0 || cfg.NumSims > MaxNumSims {
		return fmt.Errorf("sims must be greater than 0 and cannot exceed %d (received %d)", MaxNumSims, cfg.NumSims)
	}
	return nil
}
