// Package parquet provides data structures and functions for exporting simulation
// results and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single simulation run with metadata.
// This struct maps to the robotsampler_runs database table.
type Run struct {
	RunID         int64      `parquet:"run_id,snappy"`
	RunUUID       string     `parquet:"run_uuid,snappy"`
	Command       string     `parquet:"command,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalConfigs  int32      `parquet:"total_configs,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams  *string `parquet:"config_params,optional,snappy"`
	EngineVersion *string `parquet:"engine_version,optional,snappy"`
}

// DetectionRate is one regime estimate recorded during a run.
// This struct maps to the robotsampler_detection_rates database table.
type DetectionRate struct {
	RunID         int64     `parquet:"run_id,snappy"`
	SampleMethod  string    `parquet:"sample_method,dict,snappy"`
	NumWeeks      int32     `parquet:"num_weeks,snappy"`
	Occupancy     float64   `parquet:"occupancy,snappy"`
	Detection     float64   `parquet:"detection,snappy"`
	Batching      string    `parquet:"batching,dict,snappy"`
	Detectability string    `parquet:"detectability,dict,snappy"`
	NumSims       int32     `parquet:"num_sims,snappy"`
	Detected      int32     `parquet:"detected,snappy"`
	Probability   float64   `parquet:"probability,snappy"`
	StdErr        float64   `parquet:"std_err,snappy"`
	MeanRate      float64   `parquet:"mean_rate,snappy"`
	RecordedAt    time.Time `parquet:"recorded_at,snappy"`
}

// SweepRow is one row of a sweep table as written by the parquet output mode.
type SweepRow struct {
	SampleMethod  string  `parquet:"sample_method,dict,snappy"`
	NumWeeks      int32   `parquet:"num_weeks,snappy"`
	Occupancy     float64 `parquet:"occupancy,snappy"`
	Detection     float64 `parquet:"detection,snappy"`
	Batching      string  `parquet:"batching,dict,snappy"`
	Detectability string  `parquet:"detectability,dict,snappy"`
	Probability   float64 `parquet:"probability,snappy"`
	StdErr        float64 `parquet:"std_err,snappy"`
	MeanRate      float64 `parquet:"mean_rate,snappy"`
	NumSims       int32   `parquet:"num_sims,snappy"`
}

// WriteRows writes a slice of rows to w. The schema is derived from the struct tags of T.
func WriteRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes a slice of rows to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			Command:       record.Command,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalConfigs:  record.TotalConfigs,
			ConfigParams:  record.ConfigParams,
			EngineVersion: record.EngineVersion,
		}
	}
	return result
}

// ConvertRateRecords converts schema.RateRecord to DetectionRate for Parquet export.
func ConvertRateRecords(records []schema.RateRecord) []DetectionRate {
	result := make([]DetectionRate, len(records))
	for i, record := range records {
		result[i] = DetectionRate{
			RunID:         record.RunID,
			SampleMethod:  record.SampleMethod,
			NumWeeks:      record.NumWeeks,
			Occupancy:     record.Occupancy,
			Detection:     record.Detection,
			Batching:      record.Batching,
			Detectability: record.Detectability,
			NumSims:       record.NumSims,
			Detected:      record.Detected,
			Probability:   record.Probability,
			StdErr:        record.StdErr,
			MeanRate:      record.MeanRate,
			RecordedAt:    record.RecordedAt,
		}
	}
	return result
}

// ConvertSweepRows converts schema.SweepRow to SweepRow for Parquet output.
func ConvertSweepRows(rows []schema.SweepRow) []SweepRow {
	result := make([]SweepRow, len(rows))
	for i, row := range rows {
		result[i] = SweepRow{
			SampleMethod:  string(row.SampleMethod),
			NumWeeks:      int32(row.NumWeeks),
			Occupancy:     row.Occupancy,
			Detection:     row.Detection,
			Batching:      string(row.Batching),
			Detectability: string(row.Detectability),
			Probability:   row.Probability,
			StdErr:        row.StdErr,
			MeanRate:      row.MeanRate,
			NumSims:       int32(row.NumSims),
		}
	}
	return result
}
