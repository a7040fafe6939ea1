package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// BatchingMode represents how the conventional regime treats the samples of one collection.
	BatchingMode string

	// DetectabilityMode represents how the detection probability evolves over a trial.
	DetectabilityMode string

	// Regime represents a sampling regime (also called the sample method).
	Regime string

	// Volatility names a calibration preset for the time-varying detectability process.
	Volatility string
)

// SamplingInterval is the number of elementary (daily) steps in one conventional collection.
const SamplingInterval = 7

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All batching modes supported.
const (
	SubsampleBatching   BatchingMode = "subsample" // default
	IndependentBatching BatchingMode = "independent"
)

// All detectability modes supported.
const (
	ConstantDetectability    DetectabilityMode = "constant" // default
	TimeVaryingDetectability DetectabilityMode = "time-varying"
)

// Both sampling regimes.
const (
	ConventionalRegime  Regime = "conventional"
	HighFrequencyRegime Regime = "high_frequency"
)

// Volatility presets for the time-varying process.
const (
	HighVolatility Volatility = "high" // default
	LowVolatility  Volatility = "low"
)

// AllRegimes lists the regimes in display order.
var AllRegimes = []Regime{HighFrequencyRegime, ConventionalRegime}

// AllBatchingModes lists the batching modes in display order.
var AllBatchingModes = []BatchingMode{SubsampleBatching, IndependentBatching}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidBatchingModes lists all valid batching modes.
var ValidBatchingModes = map[BatchingMode]struct{}{
	SubsampleBatching:   {},
	IndependentBatching: {},
}

// ValidDetectabilityModes lists all valid detectability modes.
var ValidDetectabilityModes = map[DetectabilityMode]struct{}{
	ConstantDetectability:    {},
	TimeVaryingDetectability: {},
}

// VolatilityPreset holds the AR(1) coefficient and innovation scale of a preset.
type VolatilityPreset struct {
	Phi   float64
	Sigma float64
}

// VolatilityPresets maps each preset name to its calibration.
var VolatilityPresets = map[Volatility]VolatilityPreset{
	HighVolatility: {Phi: 0.2, Sigma: 3},
	LowVolatility:  {Phi: 0.5, Sigma: 0.3},
}
