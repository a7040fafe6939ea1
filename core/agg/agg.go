// Package agg turns repeated trials into detection-probability estimates.
package agg

import (
	"fmt"
	"math"
	"sync"

	"github.com/andyhoegh/RobotSampler-Sims/core/algo"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// batchSize is the number of consecutive trials handed to a worker at once.
const batchSize = 256

// tally holds the integer counts of a range of trials. Counts add up the
// same way in any order, so merged tallies do not depend on scheduling.
type tally struct {
	hf, conv, both   int
	hfHits, convHits int64 // total detections, for the mean per-trial rate
}

func (t *tally) add(o tally) {
	t.hf += o.hf
	t.conv += o.conv
	t.both += o.both
	t.hfHits += o.hfHits
	t.convHits += o.convHits
}

type trialRange struct{ start, end int }

// Validate checks a configuration before any trial runs.
func Validate(params schema.SimParams) error {
	if params.NumSims <= 0 {
		return fmt.Errorf("num_sims must be greater than 0 (received %d)", params.NumSims)
	}
	return algo.TrialParamsFrom(params).Validate()
}

// Aggregate runs params.NumSims independent trials over a pool of workers and
// returns the fraction of trials with at least one detection per regime.
// Trial i draws from algo.TrialRand(params.Seed, i), so the result is identical
// for any worker count.
func Aggregate(params schema.SimParams, workers int) (schema.DetectionRates, error) {
	if err := Validate(params); err != nil {
		return schema.DetectionRates{}, err
	}
	workers = max(1, min(workers, (params.NumSims+batchSize-1)/batchSize))
	tp := algo.TrialParamsFrom(params)

	rangeCh := make(chan trialRange, workers)
	tallyCh := make(chan tally, workers)
	var wg sync.WaitGroup

	for range workers {
		wg.Go(func() {
			trial := algo.NewTrial(tp.HorizonDays)
			var local tally
			for r := range rangeCh {
				for i := r.start; i < r.end; i++ {
					trial.Generate(algo.TrialRand(params.Seed, i), tp)
					local.add(reduceTrial(trial))
				}
			}
			tallyCh <- local
		})
	}

	for start := 0; start < params.NumSims; start += batchSize {
		rangeCh <- trialRange{start: start, end: min(start+batchSize, params.NumSims)}
	}
	close(rangeCh)

	wg.Wait()
	close(tallyCh)

	var total tally
	for t := range tallyCh {
		total.add(t)
	}
	return summarize(params, total), nil
}

// reduceTrial keeps only the counts of a finished trial.
func reduceTrial(trial *algo.Trial) tally {
	var t tally
	hf, conv := trial.HighFrequencyDetected(), trial.ConventionalDetected()
	if hf {
		t.hf = 1
	}
	if conv {
		t.conv = 1
	}
	if hf && conv {
		t.both = 1
	}
	for _, v := range trial.HighFrequency {
		t.hfHits += int64(v)
	}
	for _, v := range trial.Conventional {
		t.convHits += int64(v)
	}
	return t
}

func summarize(params schema.SimParams, t tally) schema.DetectionRates {
	n := params.NumSims
	return schema.DetectionRates{
		Params:        params,
		HighFrequency: estimate(schema.HighFrequencyRegime, t.hf, t.hfHits, n, params.HorizonDays),
		Conventional:  estimate(schema.ConventionalRegime, t.conv, t.convHits, n, params.HorizonDays),
		Paired: schema.PairedCounts{
			Both:              t.both,
			HighFrequencyOnly: t.hf - t.both,
			ConventionalOnly:  t.conv - t.both,
			Neither:           n - t.hf - t.conv + t.both,
		},
	}
}

func estimate(regime schema.Regime, detected int, hits int64, n, horizon int) schema.RegimeEstimate {
	prob := float64(detected) / float64(n)
	return schema.RegimeEstimate{
		Regime:      regime,
		Detected:    detected,
		Probability: prob,
		StdErr:      StdErr(prob, n),
		MeanRate:    float64(hits) / float64(horizon) / float64(n),
	}
}

// StdErr returns the Monte Carlo standard error sqrt(p(1-p)/n).
func StdErr(prob float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Sqrt(prob * (1 - prob) / float64(n))
}
