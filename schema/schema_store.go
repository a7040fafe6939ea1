package schema

import "time"

// RunRecord represents a row from the robotsampler_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	Command       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalConfigs  int32
	ConfigParams  *string
	EngineVersion *string
}

// RateRecord represents a row from the robotsampler_detection_rates table.
type RateRecord struct {
	RunID         int64
	SampleMethod  string
	NumWeeks      int32
	Occupancy     float64
	Detection     float64
	Batching      string
	Detectability string
	NumSims       int32
	Detected      int32
	Probability   float64
	StdErr        float64
	MeanRate      float64
	RecordedAt    time.Time
}
