// Package algo has the random draw primitives and the per-trial generative process.
package algo

import (
	"math"
	"math/rand/v2"
)

// Rand is the explicit random source threaded through every draw of a trial.
// A Rand is not safe for concurrent use; each trial owns its own.
type Rand struct {
	src *rand.Rand
}

// NewRand returns a Rand deterministically seeded from seed.
func NewRand(seed uint64) *Rand {
	return &Rand{src: rand.New(rand.NewPCG(seed, splitmix64(seed)))}
}

// Float64 returns a uniform draw in [0,1).
func (r *Rand) Float64() float64 {
	return r.src.Float64()
}

// Bernoulli returns 1 with probability prob and 0 otherwise.
// prob is clamped into [0,1]; NaN behaves as 0.
func (r *Rand) Bernoulli(prob float64) int {
	if r.src.Float64() < clamp01(prob) {
		return 1
	}
	return 0
}

// Binomial returns the number of successes in n independent Bernoulli(prob) trials.
func (r *Rand) Binomial(n int, prob float64) int {
	prob = clamp01(prob)
	k := 0
	for range n {
		if r.src.Float64() < prob {
			k++
		}
	}
	return k
}

// Normal returns a Normal(0, sigma) draw.
func (r *Rand) Normal(sigma float64) float64 {
	return sigma * r.src.NormFloat64()
}

// Logit returns log(prob/(1-prob)). It is infinite at 0 and 1.
func Logit(prob float64) float64 {
	return math.Log(prob / (1 - prob))
}

// InvLogit returns 1/(1+exp(-eta)).
func InvLogit(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}

func clamp01(prob float64) float64 {
	switch {
	case prob > 1:
		return 1
	case prob > 0:
		return prob
	default: // also NaN
		return 0
	}
}
