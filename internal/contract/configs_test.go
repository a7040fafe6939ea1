package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andyhoegh/RobotSampler-Sims/core/algo"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns the raw input produced by the default flag values.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Sims:          1000,
		Horizon:       56,
		Occupancy:     "0.1",
		Detection:     "0.1",
		Batching:      "subsample",
		Detectability: "constant",
		Volatility:    "high",
		Seed:          1,
		Workers:       4,
		Precision:     3,
		Output:        "text",
		CacheBackend:  "none",
		Emoji:         "no",
		Color:         "yes",
		Horizons:      DefaultHorizons,
		Occupancies:   DefaultOccupancies,
		Detections:    DefaultDetections,
		Batchings:     DefaultBatchings,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, ""},
		{"percent probabilities", func(in *ConfigRawInput) { in.Occupancy = "10%" }, ""},
		{"zero occupancy allowed", func(in *ConfigRawInput) { in.Occupancy = "0" }, ""},
		{"horizon not a multiple of seven", func(in *ConfigRawInput) { in.Horizon = 30 }, "T=30"},
		{"detection at one", func(in *ConfigRawInput) { in.Detection = "1" }, "detection"},
		{"occupancy not a number", func(in *ConfigRawInput) { in.Occupancy = "abc" }, "occupancy"},
		{"zero sims", func(in *ConfigRawInput) { in.Sims = 0 }, "sims"},
		{"zero workers", func(in *ConfigRawInput) { in.Workers = 0 }, "workers"},
		{"bad precision", func(in *ConfigRawInput) { in.Precision = 9 }, "precision"},
		{"bad output", func(in *ConfigRawInput) { in.Output = "xml" }, "output"},
		{"parquet without file", func(in *ConfigRawInput) { in.Output = "parquet" }, "--output-file"},
		{"bad batching", func(in *ConfigRawInput) { in.Batching = "weekly" }, "batching"},
		{"bad detectability", func(in *ConfigRawInput) { in.Detectability = "random" }, "detectability"},
		{"bad volatility", func(in *ConfigRawInput) {
			in.Detectability = "time-varying"
			in.Volatility = "extreme"
		}, "volatility"},
		{"bad phi", func(in *ConfigRawInput) {
			in.Detectability = "time-varying"
			in.Phi = "x"
		}, "phi"},
		{"negative sigma", func(in *ConfigRawInput) {
			in.Detectability = "time-varying"
			in.Sigma = "-1"
		}, "sigma"},
		{"bad emoji", func(in *ConfigRawInput) { in.Emoji = "maybe" }, "--emoji"},
		{"bad color", func(in *ConfigRawInput) { in.Color = "" }, "--color"},
		{"bad cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, "cache backend"},
		{"bad horizons list", func(in *ConfigRawInput) { in.Horizons = "7,x" }, "--horizons"},
		{"empty detections list", func(in *ConfigRawInput) { in.Detections = " , " }, "--detections"},
		{"bad batchings list", func(in *ConfigRawInput) { in.Batchings = "subsample,daily" }, "--batchings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestProcessAndValidateValues(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, 1000, cfg.NumSims)
	assert.Equal(t, 56, cfg.HorizonDays)
	assert.Equal(t, 0.1, cfg.Occupancy)
	assert.Equal(t, 0.1, cfg.Detection)
	assert.Equal(t, schema.SubsampleBatching, cfg.Batching)
	assert.Equal(t, schema.Detectability{Mode: schema.ConstantDetectability}, cfg.Detectability)
	assert.Equal(t, uint64(1), cfg.Seed)
	assert.Equal(t, []int{7, 14, 21, 28, 35, 42, 49, 56}, cfg.Horizons)
	assert.Equal(t, []float64{0.05, 0.10, 0.15}, cfg.Occupancies)
	assert.Equal(t, []schema.BatchingMode{schema.SubsampleBatching, schema.IndependentBatching}, cfg.Batchings)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.Equal(t, schema.DatabaseBackend(""), cfg.StoreBackend)
}

func TestProcessDetectabilityPresets(t *testing.T) {
	tests := []struct {
		name       string
		volatility string
		phi, sigma string
		expected   schema.Detectability
	}{
		{"high preset", "high", "", "", schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.2, Sigma: 3}},
		{"low preset", "low", "", "", schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.5, Sigma: 0.3}},
		{"default preset", "", "", "", schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.2, Sigma: 3}},
		{"phi override", "low", "0.9", "", schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.9, Sigma: 0.3}},
		{"sigma override", "high", "", "0", schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.2, Sigma: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			input.Detectability = "time-varying"
			input.Volatility = tt.volatility
			input.Phi = tt.phi
			input.Sigma = tt.sigma
			cfg := &Config{}
			require.NoError(t, ProcessAndValidate(cfg, input))
			assert.Equal(t, tt.expected, cfg.Detectability)
		})
	}

	t.Run("underscore spelling", func(t *testing.T) {
		input := validInput()
		input.Detectability = "time_varying"
		cfg := &Config{}
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, schema.TimeVaryingDetectability, cfg.Detectability.Mode)
	})
}

func TestProcessAndValidateHorizonError(t *testing.T) {
	input := validInput()
	input.Horizon = 8
	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, algo.ErrInvalidHorizon)

	input = validInput()
	input.Detection = "0"
	err = ProcessAndValidate(&Config{}, input)
	assert.ErrorIs(t, err, algo.ErrProbabilityRange)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{schema.MySQLBackend, "user:pass@localhost", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=db", false},
		{schema.PostgreSQLBackend, "host=localhost", true},
		{schema.PostgreSQLBackend, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+"/"+tt.conn, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBackendConfigsSQLiteConflict(t *testing.T) {
	input := validInput()
	input.CacheBackend = "sqlite"
	input.StoreBackend = "sqlite"
	assert.NoError(t, ProcessAndValidate(&Config{}, input), "default files differ")

	shared := filepath.Join(t.TempDir(), "shared.db")
	input.CacheDBConnect = shared
	input.StoreDBConnect = shared
	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")

	input.StoreDBConnect = filepath.Join(t.TempDir(), "runs.db")
	assert.NoError(t, ProcessAndValidate(&Config{}, input))
}

func TestGridFileOverridesLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	content := "horizons: [7, 28]\noccupancies: [0.2]\ndetections: [0.3, 0.4]\nbatchings: [independent]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	input := validInput()
	input.Grid = path
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []int{7, 28}, cfg.Horizons)
	assert.Equal(t, []float64{0.2}, cfg.Occupancies)
	assert.Equal(t, []float64{0.3, 0.4}, cfg.Detections)
	assert.Equal(t, []schema.BatchingMode{schema.IndependentBatching}, cfg.Batchings)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Horizons: []int{7, 14}, Occupancies: []float64{0.1}}
	clone := cfg.Clone()
	clone.Horizons[0] = 99
	clone.Occupancies[0] = 0.9
	assert.Equal(t, 7, cfg.Horizons[0])
	assert.Equal(t, 0.1, cfg.Occupancies[0])
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}

func TestRevalidateSimulation(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))
	assert.NoError(t, RevalidateSimulation(cfg))

	bad := cfg.Clone()
	bad.HorizonDays = 30
	assert.ErrorIs(t, RevalidateSimulation(bad), algo.ErrInvalidHorizon)

	bad = cfg.Clone()
	bad.NumSims = 0
	assert.ErrorContains(t, RevalidateSimulation(bad), "sims must be greater than 0")

	bad = cfg.Clone()
	bad.Workers = 0
	assert.ErrorContains(t, RevalidateSimulation(bad), "workers must be greater than 0")
}

func TestRevalidateDetectability(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	require.NoError(t, RevalidateDetectability(cfg, "time-varying", "low", "", ""))
	assert.Equal(t, schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.5, Sigma: 0.3}, cfg.Detectability)

	require.NoError(t, RevalidateDetectability(cfg, "time-varying", "", "0.9", ""))
	assert.Equal(t, schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.9, Sigma: 3}, cfg.Detectability)

	assert.Error(t, RevalidateDetectability(cfg, "sometimes", "", "", ""))
	assert.Error(t, RevalidateDetectability(cfg, "time-varying", "extreme", "", ""))
}

func TestRevalidateSweep(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	require.NoError(t, RevalidateSweep(cfg, "7,14", "", "20%", "independent"))
	assert.Equal(t, []int{7, 14}, cfg.Horizons)
	assert.Equal(t, []float64{0.05, 0.10, 0.15}, cfg.Occupancies)
	assert.Equal(t, []float64{0.2}, cfg.Detections)
	assert.Equal(t, []schema.BatchingMode{schema.IndependentBatching}, cfg.Batchings)

	assert.ErrorContains(t, RevalidateSweep(cfg, "7,x", "", "", ""), "invalid horizons")
	assert.ErrorContains(t, RevalidateSweep(cfg, "", "", "", "weekly"), "invalid batchings")
}
