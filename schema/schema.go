// Package schema has configs, models and global variables for all parts of robotsampler.
package schema

// Detectability describes the detection-probability process of a configuration.
// Phi and Sigma are only meaningful for the time-varying mode.
type Detectability struct {
	Mode  DetectabilityMode `json:"mode"`
	Phi   float64           `json:"phi,omitempty"`
	Sigma float64           `json:"sigma,omitempty"`
}

// SimParams is one fully specified simulation configuration.
type SimParams struct {
	NumSims       int           `json:"num_sims"`
	HorizonDays   int           `json:"horizon_days"`
	Occupancy     float64       `json:"occupancy"`
	Detection     float64       `json:"detection"`
	Batching      BatchingMode  `json:"batching"`
	Detectability Detectability `json:"detectability"`
	Seed          uint64        `json:"seed"`
}

// NumWeeks returns the number of conventional collections in the horizon.
func (p SimParams) NumWeeks() int {
	return p.HorizonDays / SamplingInterval
}

// RegimeEstimate is the Monte Carlo estimate for one sampling regime.
type RegimeEstimate struct {
	Regime      Regime  `json:"regime"`
	Detected    int     `json:"detected"`    // Trials with at least one detection
	Probability float64 `json:"probability"` // Detected / NumSims
	StdErr      float64 `json:"std_err"`     // sqrt(p(1-p)/n)
	MeanRate    float64 `json:"mean_rate"`   // Mean of per-trial detections / T
}

// PairedCounts tallies the joint outcome of both regimes across trials.
type PairedCounts struct {
	Both              int `json:"both"`
	HighFrequencyOnly int `json:"high_frequency_only"`
	ConventionalOnly  int `json:"conventional_only"`
	Neither           int `json:"neither"`
}

// DetectionRates is the aggregate result of one configuration.
type DetectionRates struct {
	Params        SimParams      `json:"params"`
	HighFrequency RegimeEstimate `json:"high_frequency"`
	Conventional  RegimeEstimate `json:"conventional"`
	Paired        PairedCounts   `json:"paired"`
}

// Estimate returns the estimate for the given regime.
func (r DetectionRates) Estimate(regime Regime) RegimeEstimate {
	if regime == ConventionalRegime {
		return r.Conventional
	}
	return r.HighFrequency
}

// Contrast is the paired high-frequency minus conventional difference.
type Contrast struct {
	Difference float64 `json:"difference"`
	StdErr     float64 `json:"std_err"`
	Z          float64 `json:"z"`
	PValue     float64 `json:"p_value"`
	Discordant int     `json:"discordant"`
}

// ComparisonResult pairs the rates of one configuration with their contrast.
type ComparisonResult struct {
	Rates    DetectionRates `json:"rates"`
	Contrast Contrast       `json:"contrast"`
}

// SweepPoint is one grid coordinate of a sweep.
type SweepPoint struct {
	HorizonDays int          `json:"horizon_days"`
	Occupancy   float64      `json:"occupancy"`
	Detection   float64      `json:"detection"`
	Batching    BatchingMode `json:"batching"`
}

// SweepRow is one row of the sweep table, keyed by
// (sample method, number of weeks, occupancy, detection).
type SweepRow struct {
	SampleMethod  Regime            `json:"sample_method"`
	NumWeeks      int               `json:"num_weeks"`
	Occupancy     float64           `json:"occupancy"`
	Detection     float64           `json:"detection"`
	Batching      BatchingMode      `json:"batching"`
	Detectability DetectabilityMode `json:"detectability"`
	Probability   float64           `json:"probability"`
	StdErr        float64           `json:"std_err"`
	MeanRate      float64           `json:"mean_rate"`
	NumSims       int               `json:"num_sims"`
}

// RowsFromRates flattens a configuration result into one row per regime.
func RowsFromRates(r DetectionRates) []SweepRow {
	rows := make([]SweepRow, 0, len(AllRegimes))
	for _, regime := range AllRegimes {
		est := r.Estimate(regime)
		rows = append(rows, SweepRow{
			SampleMethod:  regime,
			NumWeeks:      r.Params.NumWeeks(),
			Occupancy:     r.Params.Occupancy,
			Detection:     r.Params.Detection,
			Batching:      r.Params.Batching,
			Detectability: r.Params.Detectability.Mode,
			Probability:   est.Probability,
			StdErr:        est.StdErr,
			MeanRate:      est.MeanRate,
			NumSims:       r.Params.NumSims,
		})
	}
	return rows
}

// SweepResult holds the rates of every grid point of a sweep, in grid order.
type SweepResult struct {
	Points []SweepPoint     `json:"points"`
	Rates  []DetectionRates `json:"rates"`
}

// Rows flattens every grid point into one row per regime.
func (s SweepResult) Rows() []SweepRow {
	rows := make([]SweepRow, 0, len(s.Rates)*len(AllRegimes))
	for _, r := range s.Rates {
		rows = append(rows, RowsFromRates(r)...)
	}
	return rows
}
