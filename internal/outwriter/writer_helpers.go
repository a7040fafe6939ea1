package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/parquet"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		_, _ = fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// writeParquetRows writes the per-regime rows as a Parquet file. Parquet
// output is binary, so it always needs an output file.
func writeParquetRows(rows []schema.SweepRow, outputFile string) error {
	if outputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return writeWithFile(outputFile, func(w io.Writer) error {
		return parquet.WriteRows(w, parquet.ConvertSweepRows(rows))
	}, "Wrote Parquet")
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	intFmt = "%d"
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	return fmtFloat, intFmt
}

// sweepRowHeader is the CSV header shared by every per-regime row output.
var sweepRowHeader = []string{
	"sample_method",
	"num_weeks",
	"occupancy",
	"detection",
	"batching",
	"detectability",
	"num_sims",
	"probability",
	"std_err",
	"mean_rate",
	"label",
}

// writeSweepRowsCSV writes enriched rows with the shared header.
func writeSweepRowsCSV(w io.Writer, rows []schema.EnrichedSweepRow, fmtFloat func(float64) string, intFmt string) error {
	return writeCSVWithHeader(w, sweepRowHeader, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				string(r.SampleMethod),
				fmt.Sprintf(intFmt, r.NumWeeks),
				fmtFloat(r.Occupancy),
				fmtFloat(r.Detection),
				string(r.Batching),
				string(r.Detectability),
				fmt.Sprintf(intFmt, r.NumSims),
				fmtFloat(r.Probability),
				fmtFloat(r.StdErr),
				fmtFloat(r.MeanRate),
				r.Label,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
