package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// SweepSummary condenses the high-frequency advantage across grid points.
type SweepSummary struct {
	Points        int     `json:"points"`
	MeanAdvantage float64 `json:"mean_advantage"`
	StdAdvantage  float64 `json:"std_advantage"`
	MinAdvantage  float64 `json:"min_advantage"`
	MaxAdvantage  float64 `json:"max_advantage"`
}

// SummarizeSweep computes summary statistics of the per-point difference
// between the high-frequency and conventional detection probabilities.
func SummarizeSweep(result schema.SweepResult) SweepSummary {
	diffs := make([]float64, len(result.Rates))
	for i, r := range result.Rates {
		diffs[i] = r.HighFrequency.Probability - r.Conventional.Probability
	}
	summary := SweepSummary{Points: len(diffs)}
	if len(diffs) == 0 {
		return summary
	}
	summary.MeanAdvantage = stat.Mean(diffs, nil)
	if len(diffs) > 1 {
		summary.StdAdvantage = stat.StdDev(diffs, nil)
	}
	summary.MinAdvantage = floats.Min(diffs)
	summary.MaxAdvantage = floats.Max(diffs)
	return summary
}

// PrintSweepResults outputs the sweep table and, when requested, the plot.
func PrintSweepResults(result schema.SweepResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	rows := schema.EnrichRows(result.Rows())

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Rows    []schema.EnrichedSweepRow `json:"rows"`
				Summary SweepSummary              `json:"summary"`
			}{rows, SummarizeSweep(result)})
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
		if err := writeParquetRows(result.Rows(), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSweepTable(result, rows, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table"); err != nil {
			return err
		}
	}

	if cfg.PlotFile != "" {
		if err := WriteSweepPlot(result, cfg.PlotFile); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "📈 Wrote plot to %s\n", cfg.PlotFile)
	}
	return nil
}

// writeSweepTable generates and writes the human-readable sweep table.
func writeSweepTable(result schema.SweepResult, rows []schema.EnrichedSweepRow, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	wide := isWideTable(cfg)
	headers := []string{"Rank", "Method", "Weeks", "Occupancy", "Detection", "Batching", "Probability", "Std Err"}
	if wide {
		headers = append(headers, "Mean Rate", "Advantage")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Rank),
			contract.GetRegimeLabel(r.SampleMethod, cfg.UseColors),
			fmt.Sprintf(intFmt, r.NumWeeks),
			fmtFloat(r.Occupancy),
			fmtFloat(r.Detection),
			string(r.Batching),
			fmtFloat(r.Probability),
			fmtFloat(r.StdErr),
		}
		if wide {
			label := r.Label
			if cfg.UseColors && r.SampleMethod == schema.HighFrequencyRegime {
				label = colorizeLabel(label)
			}
			row = append(row, fmtFloat(r.MeanRate), label)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	summary := SummarizeSweep(result)
	if _, err := fmt.Fprintf(writer, "High-frequency advantage over %d points: mean %s (sd %s, min %s, max %s)\n",
		summary.Points, fmtSigned(fmtFloat, summary.MeanAdvantage), fmtFloat(summary.StdAdvantage),
		fmtSigned(fmtFloat, summary.MinAdvantage), fmtSigned(fmtFloat, summary.MaxAdvantage)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Sweep completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// colorizeLabel applies the advantage colors to an already computed plain label.
func colorizeLabel(label string) string {
	switch label {
	case schema.StrongAdvantage:
		return contract.StrongColor.Sprint(label)
	case schema.ModerateAdvantage:
		return contract.ModerateColor.Sprint(label)
	case schema.SlightAdvantage:
		return contract.SlightColor.Sprint(label)
	default:
		return contract.NegligibleColor.Sprint(label)
	}
}
