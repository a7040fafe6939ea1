package outwriter

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// plotSeries is one line of the sweep plot.
type plotSeries struct {
	name   string
	points plotter.XYs
}

// seriesKey identifies a line: everything but the number of weeks.
type seriesKey struct {
	regime schema.Regime
	occ    float64
	det    float64
	batch  schema.BatchingMode
}

// groupSeries splits sweep rows into lines ordered by first appearance, each
// sorted by the number of weeks.
func groupSeries(rows []schema.SweepRow) []plotSeries {
	index := make(map[seriesKey]int)
	var series []plotSeries
	for _, r := range rows {
		k := seriesKey{r.SampleMethod, r.Occupancy, r.Detection, r.Batching}
		i, ok := index[k]
		if !ok {
			i = len(series)
			index[k] = i
			series = append(series, plotSeries{name: seriesName(k)})
		}
		series[i].points = append(series[i].points, plotter.XY{X: float64(r.NumWeeks), Y: r.Probability})
	}
	for _, s := range series {
		slices.SortFunc(s.points, func(a, b plotter.XY) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			}
			return 0
		})
	}
	return series
}

func seriesName(k seriesKey) string {
	regime := "HF"
	if k.regime == schema.ConventionalRegime {
		regime = "Conv"
	}
	return fmt.Sprintf("%s ψ=%g p=%g %s", regime, k.occ, k.det, k.batch)
}

// weekTicks marks every week, or every other week on long horizons.
func weekTicks(lo, hi float64) []plot.Tick {
	step := 1.0
	if hi-lo > 20 {
		step = 2
	}
	var ticks []plot.Tick
	for w := math.Max(1, math.Ceil(lo)); w <= hi; w += step {
		ticks = append(ticks, plot.Tick{Value: w, Label: strconv.Itoa(int(w))})
	}
	return ticks
}

// WriteSweepPlot renders detection probability against the number of weeks
// sampled, one line per regime and grid combination. The image format
// follows the file extension (png, svg, pdf).
func WriteSweepPlot(result schema.SweepResult, outputFile string) error {
	series := groupSeries(result.Rows())
	if len(series) == 0 {
		return fmt.Errorf("no sweep rows to plot")
	}

	p := plot.New()
	p.Title.Text = "Probability of at least one detection"
	p.X.Label.Text = "Weeks sampled"
	p.Y.Label.Text = "Detection probability"
	p.Y.Min, p.Y.Max = 0, 1
	p.X.Tick.Marker = plot.TickerFunc(weekTicks)
	p.Legend.Top = false
	p.Legend.Left = false
	p.Add(plotter.NewGrid())

	lines := make([]any, 0, 2*len(series))
	for _, s := range series {
		lines = append(lines, s.name, s.points)
	}
	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("failed to add sweep lines: %w", err)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, outputFile); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
