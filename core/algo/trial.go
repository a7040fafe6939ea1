package algo

import (
	"errors"
	"fmt"
	"math"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// Configuration error classes.
var (
	ErrInvalidHorizon   = errors.New("invalid horizon")
	ErrProbabilityRange = errors.New("probability out of range")
	ErrInvalidProcess   = errors.New("invalid detectability process")
)

// TrialParams holds everything needed to generate one trial.
type TrialParams struct {
	HorizonDays   int
	Occupancy     float64
	Detection     float64
	Batching      schema.BatchingMode
	Detectability schema.Detectability
}

// TrialParamsFrom extracts the per-trial parameters of a configuration.
func TrialParamsFrom(p schema.SimParams) TrialParams {
	return TrialParams{
		HorizonDays:   p.HorizonDays,
		Occupancy:     p.Occupancy,
		Detection:     p.Detection,
		Batching:      p.Batching,
		Detectability: p.Detectability,
	}
}

// Validate checks the parameters before any sampling happens.
func (p TrialParams) Validate() error {
	if p.HorizonDays <= 0 || p.HorizonDays%schema.SamplingInterval != 0 {
		return fmt.Errorf("%w: T=%d is not a positive multiple of the sampling interval %d",
			ErrInvalidHorizon, p.HorizonDays, schema.SamplingInterval)
	}
	if math.IsNaN(p.Occupancy) || p.Occupancy < 0 || p.Occupancy > 1 {
		return fmt.Errorf("%w: occupancy %v must be within [0,1]", ErrProbabilityRange, p.Occupancy)
	}
	if math.IsNaN(p.Detection) || p.Detection <= 0 || p.Detection >= 1 {
		return fmt.Errorf("%w: detection %v must be within (0,1)", ErrProbabilityRange, p.Detection)
	}
	if _, ok := schema.ValidBatchingModes[p.Batching]; !ok {
		return fmt.Errorf("unknown batching mode %q", p.Batching)
	}
	if _, ok := schema.ValidDetectabilityModes[p.Detectability.Mode]; !ok {
		return fmt.Errorf("unknown detectability mode %q", p.Detectability.Mode)
	}
	if p.Detectability.Mode == schema.TimeVaryingDetectability {
		phi, sigma := p.Detectability.Phi, p.Detectability.Sigma
		if math.IsNaN(phi) || math.IsInf(phi, 0) {
			return fmt.Errorf("%w: phi %v must be finite", ErrInvalidProcess, phi)
		}
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
			return fmt.Errorf("%w: sigma %v must be finite and non-negative", ErrInvalidProcess, sigma)
		}
	}
	return nil
}

// Trial is one realization of the generative process. Its buffers are owned
// by a single worker and reused across replicates.
type Trial struct {
	Occupancy     []bool    // Z, length T
	DetectionProb []float64 // p_vec, length T
	HighFrequency []int     // one Bernoulli outcome per day
	Conventional  []int     // per collection (subsample) or per day (independent)
}

// NewTrial allocates the buffers for a horizon of the given length.
func NewTrial(horizon int) *Trial {
	return &Trial{
		Occupancy:     make([]bool, horizon),
		DetectionProb: make([]float64, horizon),
		HighFrequency: make([]int, horizon),
		Conventional:  make([]int, 0, horizon),
	}
}

// GenerateTrial draws a fresh trial. The parameters must already be validated.
func GenerateTrial(rng *Rand, p TrialParams) *Trial {
	t := NewTrial(p.HorizonDays)
	t.Generate(rng, p)
	return t
}

// Generate overwrites the trial with a new realization. The draw order is
// fixed: occupancy, detection probability, high-frequency, conventional.
func (t *Trial) Generate(rng *Rand, p TrialParams) {
	for i := range t.Occupancy {
		t.Occupancy[i] = rng.Bernoulli(p.Occupancy) == 1
	}
	FillDetectionProb(rng, p.Detection, p.Detectability, t.DetectionProb)
	for i := range t.HighFrequency {
		t.HighFrequency[i] = rng.Bernoulli(presentProb(t.Occupancy[i], t.DetectionProb[i]))
	}
	t.Conventional = conventionalSampler(p.Batching)(rng, t.Occupancy, t.DetectionProb, t.Conventional[:0])
}

// conventionalFunc appends the conventional outcomes of one trial to out.
type conventionalFunc func(rng *Rand, z []bool, pvec []float64, out []int) []int

// conventionalSampler selects the conventional draw for a batching mode.
func conventionalSampler(mode schema.BatchingMode) conventionalFunc {
	if mode == schema.IndependentBatching {
		return independentDraws
	}
	return subsampleDraws
}

// subsampleDraws draws one Binomial(s, Z·p) per collection. The s subsamples
// share the presence state realized on the collection day.
func subsampleDraws(rng *Rand, z []bool, pvec []float64, out []int) []int {
	for c := 0; c < len(z); c += schema.SamplingInterval {
		out = append(out, rng.Binomial(schema.SamplingInterval, presentProb(z[c], pvec[c])))
	}
	return out
}

// independentDraws evaluates every day against its own presence state, with
// the detection probability held at the value of the covering collection day.
func independentDraws(rng *Rand, z []bool, pvec []float64, out []int) []int {
	for i := range z {
		c := i - i%schema.SamplingInterval
		out = append(out, rng.Bernoulli(presentProb(z[i], pvec[c])))
	}
	return out
}

func presentProb(present bool, prob float64) float64 {
	if !present {
		return 0
	}
	return prob
}

// HighFrequencyDetected reports whether the high-frequency regime detected at least once.
func (t *Trial) HighFrequencyDetected() bool {
	return sum(t.HighFrequency) > 0
}

// ConventionalDetected reports whether the conventional regime detected at least once.
func (t *Trial) ConventionalDetected() bool {
	return sum(t.Conventional) > 0
}

// HighFrequencyRate returns the high-frequency detections normalized by T.
func (t *Trial) HighFrequencyRate() float64 {
	return rate(t.HighFrequency, len(t.Occupancy))
}

// ConventionalRate returns the conventional detections normalized by T.
func (t *Trial) ConventionalRate() float64 {
	return rate(t.Conventional, len(t.Occupancy))
}

func sum(xs []int) int {
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func rate(xs []int, horizon int) float64 {
	if horizon == 0 {
		return 0
	}
	return float64(sum(xs)) / float64(horizon)
}
