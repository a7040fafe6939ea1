package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleParams(horizon int) schema.SimParams {
	return schema.SimParams{
		NumSims:       1000,
		HorizonDays:   horizon,
		Occupancy:     0.1,
		Detection:     0.1,
		Batching:      schema.SubsampleBatching,
		Detectability: schema.Detectability{Mode: schema.ConstantDetectability},
		Seed:          1,
	}
}

func sampleRates() schema.DetectionRates {
	return schema.DetectionRates{
		Params:        sampleParams(56),
		HighFrequency: schema.RegimeEstimate{Regime: schema.HighFrequencyRegime, Detected: 430, Probability: 0.43, StdErr: 0.0157, MeanRate: 0.01},
		Conventional:  schema.RegimeEstimate{Regime: schema.ConventionalRegime, Detected: 349, Probability: 0.349, StdErr: 0.0151, MeanRate: 0.008},
		Paired:        schema.PairedCounts{Both: 300, HighFrequencyOnly: 130, ConventionalOnly: 49, Neither: 521},
	}
}

func sampleSweep() schema.SweepResult {
	short := schema.DetectionRates{
		Params:        sampleParams(7),
		HighFrequency: schema.RegimeEstimate{Regime: schema.HighFrequencyRegime, Detected: 66, Probability: 0.066},
		Conventional:  schema.RegimeEstimate{Regime: schema.ConventionalRegime, Detected: 46, Probability: 0.046},
	}
	return schema.SweepResult{
		Points: []schema.SweepPoint{
			{HorizonDays: 56, Occupancy: 0.1, Detection: 0.1, Batching: schema.SubsampleBatching},
			{HorizonDays: 7, Occupancy: 0.1, Detection: 0.1, Batching: schema.SubsampleBatching},
		},
		Rates: []schema.DetectionRates{sampleRates(), short},
	}
}

func testConfig(t *testing.T, output schema.OutputMode, ext string) *contract.Config {
	t.Helper()
	return &contract.Config{
		NumSims:      1000,
		HorizonDays:  56,
		Occupancy:    0.1,
		Detection:    0.1,
		Batching:     schema.SubsampleBatching,
		Seed:         1,
		Workers:      4,
		Precision:    3,
		Output:       output,
		OutputFile:   filepath.Join(t.TempDir(), "out"+ext),
		Width:        120,
		CacheBackend: schema.NoneBackend,
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(content)
}

func TestPrintRunResults(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, ".txt")
		require.NoError(t, PrintRunResults(sampleRates(), cfg, time.Second))

		out := readOutput(t, cfg)
		assert.Contains(t, out, "high_frequency")
		assert.Contains(t, out, "conventional")
		assert.Contains(t, out, "0.430")
		assert.Contains(t, strings.ToUpper(out), "MEAN RATE")
		assert.Contains(t, out, "High-frequency advantage: +0.081 (Moderate)")
		assert.Contains(t, out, "Simulated 1000 trials in 1s with 4 workers. Cache backend: none")
	})

	t.Run("narrow text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, ".txt")
		cfg.Width = 60
		require.NoError(t, PrintRunResults(sampleRates(), cfg, time.Second))
		assert.NotContains(t, strings.ToUpper(readOutput(t, cfg)), "MEAN RATE")
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut, ".json")
		require.NoError(t, PrintRunResults(sampleRates(), cfg, time.Second))

		var decoded schema.DetectionRates
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, sampleRates(), decoded)
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, ".csv")
		require.NoError(t, PrintRunResults(sampleRates(), cfg, time.Second))

		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "high_frequency", records[1][0])
		assert.Equal(t, "0.349", records[2][7])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut, ".parquet")
		require.NoError(t, PrintRunResults(sampleRates(), cfg, time.Second))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))

		cfg.OutputFile = ""
		assert.ErrorContains(t, PrintRunResults(sampleRates(), cfg, time.Second), "error writing Parquet output")
	})
}

func TestPrintComparisonResults(t *testing.T) {
	result := schema.ComparisonResult{
		Rates:    sampleRates(),
		Contrast: schema.Contrast{Difference: 0.081, StdErr: 0.0098, Z: 8.27, PValue: 1e-16, Discordant: 179},
	}

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, ".txt")
		require.NoError(t, PrintComparisonResults(result, cfg, time.Second))

		out := readOutput(t, cfg)
		assert.Contains(t, out, "high_frequency only")
		assert.Contains(t, out, "0.130")
		assert.Contains(t, out, "Paired difference: +0.081 ± 0.010")
		assert.Contains(t, out, "p = 1.00e-16, significant, 179 discordant trials")
		assert.Contains(t, out, "Compared 1000 paired trials")
	})

	t.Run("not significant", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, ".txt")
		flat := result
		flat.Contrast = schema.Contrast{PValue: 1}
		require.NoError(t, PrintComparisonResults(flat, cfg, time.Second))
		assert.Contains(t, readOutput(t, cfg), "p = 1.0000, not significant")
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, ".csv")
		require.NoError(t, PrintComparisonResults(result, cfg, time.Second))

		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "difference", records[0][8])
		assert.Equal(t, "0.081", records[1][8])
		assert.Equal(t, "1.00e-16", records[1][11])
		assert.Equal(t, "179", records[1][12])
		assert.Equal(t, schema.ModerateAdvantage, records[1][13])
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut, ".json")
		require.NoError(t, PrintComparisonResults(result, cfg, time.Second))

		var decoded schema.ComparisonResult
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		assert.Equal(t, result, decoded)
	})
}

func TestPrintSweepResults(t *testing.T) {
	t.Run("text with plot", func(t *testing.T) {
		cfg := testConfig(t, schema.TextOut, ".txt")
		cfg.PlotFile = filepath.Join(t.TempDir(), "sweep.png")
		require.NoError(t, PrintSweepResults(sampleSweep(), cfg, time.Second))

		out := readOutput(t, cfg)
		assert.Contains(t, out, "High-frequency advantage over 2 points: mean +0.05")
		assert.Contains(t, out, "Sweep completed in 1s with 4 workers")
		assert.Contains(t, out, schema.ModerateAdvantage)
		assert.Contains(t, out, schema.SlightAdvantage)

		info, err := os.Stat(cfg.PlotFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})

	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut, ".json")
		require.NoError(t, PrintSweepResults(sampleSweep(), cfg, time.Second))

		var decoded struct {
			Rows    []schema.EnrichedSweepRow `json:"rows"`
			Summary SweepSummary              `json:"summary"`
		}
		require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &decoded))
		require.Len(t, decoded.Rows, 4)
		assert.Equal(t, 1, decoded.Rows[0].Rank)
		assert.Equal(t, 1, decoded.Rows[2].NumWeeks)
		assert.Equal(t, 2, decoded.Summary.Points)
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, ".csv")
		require.NoError(t, PrintSweepResults(sampleSweep(), cfg, time.Second))

		records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 5)
	})
}

func TestSummarizeSweep(t *testing.T) {
	summary := SummarizeSweep(sampleSweep())
	assert.Equal(t, 2, summary.Points)
	assert.InDelta(t, 0.0505, summary.MeanAdvantage, 1e-12)
	assert.InDelta(t, 0.061/1.4142135623730951, summary.StdAdvantage, 1e-9)
	assert.InDelta(t, 0.02, summary.MinAdvantage, 1e-12)
	assert.InDelta(t, 0.081, summary.MaxAdvantage, 1e-12)

	assert.Equal(t, SweepSummary{}, SummarizeSweep(schema.SweepResult{}))
}

func TestGroupSeries(t *testing.T) {
	series := groupSeries(sampleSweep().Rows())
	require.Len(t, series, 2)
	assert.Equal(t, "HF ψ=0.1 p=0.1 subsample", series[0].name)
	assert.Equal(t, "Conv ψ=0.1 p=0.1 subsample", series[1].name)
	for _, s := range series {
		require.Len(t, s.points, 2)
		assert.Equal(t, 1.0, s.points[0].X)
		assert.Equal(t, 8.0, s.points[1].X)
	}
	assert.Equal(t, 0.066, series[0].points[0].Y)
}

func TestWeekTicks(t *testing.T) {
	assert.Len(t, weekTicks(1, 8), 8)
	ticks := weekTicks(1, 40)
	assert.Len(t, ticks, 20)
	assert.Equal(t, "3", ticks[1].Label)
}

func TestWriteSweepPlotEmpty(t *testing.T) {
	err := WriteSweepPlot(schema.SweepResult{}, filepath.Join(t.TempDir(), "empty.png"))
	assert.ErrorContains(t, err, "no sweep rows")
}

func TestLogHeaders(t *testing.T) {
	cfg := testConfig(t, schema.TextOut, ".txt")

	var buf bytes.Buffer
	LogRunHeader(&buf, cfg)
	assert.True(t, strings.HasPrefix(buf.String(), "Sims: 1000 (seed 1, 4 workers)"))
	assert.Contains(t, buf.String(), "56 days → 8 weekly collections")
	assert.Contains(t, buf.String(), "subsample, constant")

	buf.Reset()
	cfg.UseEmojis = true
	cfg.Detectability = schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.2, Sigma: 3}
	LogRunHeader(&buf, cfg)
	assert.Contains(t, buf.String(), "🎲 Sims")
	assert.Contains(t, buf.String(), "time-varying (phi=0.2, sigma=3)")

	buf.Reset()
	cfg.UseEmojis = false
	cfg.Horizons = []int{7, 56}
	cfg.Occupancies = []float64{0.05, 0.1}
	cfg.Detections = []float64{0.1}
	cfg.Batchings = []schema.BatchingMode{schema.SubsampleBatching, schema.IndependentBatching}
	LogSweepHeader(&buf, cfg, 4)
	assert.Contains(t, buf.String(), "Sweep: 4 grid points × 1000 sims")
	assert.Contains(t, buf.String(), "Horizons: 7,56 | Occupancies: 0.05,0.1 | Detections: 0.1 | Batchings: subsample,independent")

	buf.Reset()
	LogSweepProgress(&buf, cfg, 0, 4, schema.SweepPoint{HorizonDays: 7, Occupancy: 0.05, Detection: 0.1, Batching: schema.SubsampleBatching})
	assert.Equal(t, "[1/4] T=7 occupancy=0.05 detection=0.1 subsample\n", buf.String())
}

func TestGetTableWidth(t *testing.T) {
	cfg := &contract.Config{Width: 123}
	assert.Equal(t, 123, getTableWidth(cfg))
	assert.True(t, isWideTable(cfg))

	cfg.Width = 70
	assert.False(t, isWideTable(cfg))
}
