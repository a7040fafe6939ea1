// Package outwriter renders simulation results as tables, CSV, JSON, Parquet and plots.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"golang.org/x/term"
)

// wideTableWidth is the terminal width at which tables show their optional columns.
const wideTableWidth = 100

// getTableWidth returns the width available for tables, honoring the
// --width override before asking the terminal.
func getTableWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// isWideTable reports whether the optional columns fit.
func isWideTable(cfg *contract.Config) bool {
	return getTableWidth(cfg) >= wideTableWidth
}

// headerPrefix returns the emoji prefix when emojis are enabled.
func headerPrefix(cfg *contract.Config, emoji string) string {
	if cfg.UseEmojis {
		return emoji + " "
	}
	return ""
}

// describeDetectability renders the detectability mode with its parameters.
func describeDetectability(d schema.Detectability) string {
	if d.Mode != schema.TimeVaryingDetectability {
		return string(schema.ConstantDetectability)
	}
	return fmt.Sprintf("%s (phi=%g, sigma=%g)", d.Mode, d.Phi, d.Sigma)
}

// LogRunHeader prints a concise, 2-line header for a single configuration.
func LogRunHeader(w io.Writer, cfg *contract.Config) {
	_, _ = fmt.Fprintf(w, "%sSims: %d (seed %d, %d workers)\n",
		headerPrefix(cfg, "🎲"), cfg.NumSims, cfg.Seed, cfg.Workers)
	_, _ = fmt.Fprintf(w, "%sHorizon: %d days → %d weekly collections (occupancy %g, detection %g, %s, %s)\n",
		headerPrefix(cfg, "📅"), cfg.HorizonDays, cfg.HorizonDays/schema.SamplingInterval,
		cfg.Occupancy, cfg.Detection, cfg.Batching, describeDetectability(cfg.Detectability))
}

// LogSweepHeader prints a header for a grid sweep.
func LogSweepHeader(w io.Writer, cfg *contract.Config, numPoints int) {
	_, _ = fmt.Fprintf(w, "%sSweep: %d grid points × %d sims (seed %d, %d workers)\n",
		headerPrefix(cfg, "🗺️ "), numPoints, cfg.NumSims, cfg.Seed, cfg.Workers)
	_, _ = fmt.Fprintf(w, "%sHorizons: %s | Occupancies: %s | Detections: %s | Batchings: %s | %s\n",
		headerPrefix(cfg, "📅"),
		joinInts(cfg.Horizons), joinFloats(cfg.Occupancies), joinFloats(cfg.Detections),
		joinBatchings(cfg.Batchings), describeDetectability(cfg.Detectability))
}

// LogSweepProgress prints one progress line per finished grid point.
func LogSweepProgress(w io.Writer, cfg *contract.Config, index, total int, point schema.SweepPoint) {
	_, _ = fmt.Fprintf(w, "%s[%d/%d] T=%d occupancy=%g detection=%g %s\n",
		headerPrefix(cfg, "⏳"), index+1, total, point.HorizonDays, point.Occupancy, point.Detection, point.Batching)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func joinBatchings(values []schema.BatchingMode) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}
