package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/parquet"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// runExporter is implemented by run stores that can list their full history.
type runExporter interface {
	GetAllRuns() ([]schema.RunRecord, error)
	GetAllRates() ([]schema.RateRecord, error)
}

// ExportStore writes the run history of the store to two Parquet files
// prefixed by outputFile.
func ExportStore(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run store is not configured")
	}
	exporter, ok := store.(runExporter)
	if !ok {
		return fmt.Errorf("run store %T does not support export", store)
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total rate records: %d\n", status.TotalRates)

	runs, err := exporter.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	rates, err := exporter.GetAllRates()
	if err != nil {
		return fmt.Errorf("failed to retrieve detection rates: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	ratesFile := outputFile + ".detection_rates.parquet"
	if err := parquet.WriteFile(parquet.ConvertRateRecords(rates), ratesFile); err != nil {
		return fmt.Errorf("failed to write detection rates: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d rate records to: %s\n", len(rates), ratesFile)

	return nil
}
