package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintRunResults outputs the rates of one configuration, dispatching based on the output format configured.
func PrintRunResults(rates schema.DetectionRates, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	rows := schema.EnrichRows(schema.RowsFromRates(rates))

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rates)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSweepRowsCSV(w, rows, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetRows(schema.RowsFromRates(rates), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(rates, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeRunTable generates and writes the human-readable table.
func writeRunTable(rates schema.DetectionRates, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	wide := isWideTable(cfg)
	headers := []string{"Regime", "Detected", "Probability", "Std Err"}
	if wide {
		headers = append(headers, "Mean Rate")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, regime := range schema.AllRegimes {
		est := rates.Estimate(regime)
		row := []string{
			contract.GetRegimeLabel(regime, cfg.UseColors),
			fmt.Sprintf(intFmt, est.Detected),
			fmtFloat(est.Probability),
			fmtFloat(est.StdErr),
		}
		if wide {
			row = append(row, fmtFloat(est.MeanRate))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	difference := rates.HighFrequency.Probability - rates.Conventional.Probability
	label := schema.GetPlainLabel(difference)
	if cfg.UseColors {
		label = contract.GetColorLabel(difference)
	}
	if _, err := fmt.Fprintf(writer, "High-frequency advantage: %s (%s)\n", fmtSigned(fmtFloat, difference), label); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Simulated %d trials in %v with %d workers. Cache backend: %s\n", rates.Params.NumSims, duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// fmtSigned formats a difference with an explicit sign.
func fmtSigned(fmtFloat func(float64) string, v float64) string {
	if v > 0 {
		return "+" + fmtFloat(v)
	}
	return fmtFloat(v)
}
