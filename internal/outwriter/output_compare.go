package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/fatih/color"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// significanceLevel is the p-value below which a paired difference is flagged.
const significanceLevel = 0.05

// PrintComparisonResults outputs the paired comparison of one configuration.
func PrintComparisonResults(result schema.ComparisonResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonCSV(w, result, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetRows(schema.RowsFromRates(result.Rates), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonTable(result, cfg, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeComparisonTable writes the paired outcome table followed by the contrast.
func writeComparisonTable(result schema.ComparisonResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	hfLabel := contract.GetRegimeLabel(schema.HighFrequencyRegime, cfg.UseColors)
	convLabel := contract.GetRegimeLabel(schema.ConventionalRegime, cfg.UseColors)
	table.Header([]string{"Outcome", "Trials", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	n := float64(result.Rates.Params.NumSims)
	share := func(count int) string {
		if n == 0 {
			return fmtFloat(0)
		}
		return fmtFloat(float64(count) / n)
	}
	paired := result.Rates.Paired
	data := [][]string{
		{"both", fmt.Sprintf(intFmt, paired.Both), share(paired.Both)},
		{hfLabel + " only", fmt.Sprintf(intFmt, paired.HighFrequencyOnly), share(paired.HighFrequencyOnly)},
		{convLabel + " only", fmt.Sprintf(intFmt, paired.ConventionalOnly), share(paired.ConventionalOnly)},
		{"neither", fmt.Sprintf(intFmt, paired.Neither), share(paired.Neither)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	c := result.Contrast
	verdict := "not significant"
	if c.PValue < significanceLevel {
		verdict = "significant"
	}
	if cfg.UseColors {
		if c.PValue < significanceLevel {
			verdict = color.New(color.FgGreen).Sprint(verdict)
		} else {
			verdict = color.New(color.Faint).Sprint(verdict)
		}
	}

	lines := []string{
		fmt.Sprintf("%s: %s ± %s", hfLabel, fmtFloat(result.Rates.HighFrequency.Probability), fmtFloat(result.Rates.HighFrequency.StdErr)),
		fmt.Sprintf("%s: %s ± %s", convLabel, fmtFloat(result.Rates.Conventional.Probability), fmtFloat(result.Rates.Conventional.StdErr)),
		fmt.Sprintf("Paired difference: %s ± %s (z = %s, p = %s, %s, %d discordant trials)",
			fmtSigned(fmtFloat, c.Difference), fmtFloat(c.StdErr), fmtFloat(c.Z), formatPValue(c.PValue), verdict, c.Discordant),
		fmt.Sprintf("Compared %d paired trials in %v with %d workers. Cache backend: %s", result.Rates.Params.NumSims, duration, cfg.Workers, cfg.CacheBackend),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
	}
	return nil
}

// writeComparisonCSV writes a single row holding both estimates and the contrast.
func writeComparisonCSV(w io.Writer, result schema.ComparisonResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"num_weeks",
		"occupancy",
		"detection",
		"batching",
		"detectability",
		"num_sims",
		"high_frequency",
		"conventional",
		"difference",
		"std_err",
		"z",
		"p_value",
		"discordant",
		"label",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		p := result.Rates.Params
		c := result.Contrast
		return cw.Write([]string{
			fmt.Sprintf(intFmt, p.NumWeeks()),
			fmtFloat(p.Occupancy),
			fmtFloat(p.Detection),
			string(p.Batching),
			string(p.Detectability.Mode),
			fmt.Sprintf(intFmt, p.NumSims),
			fmtFloat(result.Rates.HighFrequency.Probability),
			fmtFloat(result.Rates.Conventional.Probability),
			fmtFloat(c.Difference),
			fmtFloat(c.StdErr),
			fmtFloat(c.Z),
			formatPValue(c.PValue),
			fmt.Sprintf(intFmt, c.Discordant),
			schema.GetPlainLabel(c.Difference),
		})
	})
}

// formatPValue prints tiny p-values in scientific notation.
func formatPValue(p float64) string {
	if p > 0 && p < 1e-4 {
		return strconv.FormatFloat(p, 'e', 2, 64)
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}
