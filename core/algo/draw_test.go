package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogitPair(t *testing.T) {
	assert.InDelta(t, 0.0, Logit(0.5), 1e-15)
	assert.InDelta(t, 0.5, InvLogit(0), 1e-15)
	assert.True(t, math.IsInf(Logit(0), -1))
	assert.True(t, math.IsInf(Logit(1), 1))

	for _, p := range []float64{1e-6, 0.05, 0.1, 0.3, 0.7, 0.999999} {
		assert.InDelta(t, p, InvLogit(Logit(p)), 1e-12, "roundtrip for %v", p)
	}

	// InvLogit is total on the reals
	for _, eta := range []float64{-1000, -40, 40, 1000} {
		v := InvLogit(eta)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestBernoulliBounds(t *testing.T) {
	rng := NewRand(7)
	tests := []struct {
		name string
		prob float64
		want int
	}{
		{"zero", 0, 0},
		{"one", 1, 1},
		{"above one clamps", 1.5, 1},
		{"negative clamps", -0.2, 0},
		{"nan behaves as zero", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for range 1000 {
				require.Equal(t, tt.want, rng.Bernoulli(tt.prob))
			}
		})
	}
}

func TestBernoulliMean(t *testing.T) {
	rng := NewRand(11)
	n := 50000
	hits := 0
	for range n {
		hits += rng.Bernoulli(0.3)
	}
	// 0.3 +/- ~5 standard errors
	assert.InDelta(t, 0.3, float64(hits)/float64(n), 0.01)
}

func TestBinomial(t *testing.T) {
	rng := NewRand(3)
	assert.Equal(t, 7, rng.Binomial(7, 1))
	assert.Equal(t, 0, rng.Binomial(7, 0))
	assert.Equal(t, 0, rng.Binomial(0, 0.5))

	n := 20000
	total := 0
	for range n {
		k := rng.Binomial(7, 0.3)
		require.GreaterOrEqual(t, k, 0)
		require.LessOrEqual(t, k, 7)
		total += k
	}
	assert.InDelta(t, 2.1, float64(total)/float64(n), 0.05)
}

func TestNormalZeroSigma(t *testing.T) {
	rng := NewRand(5)
	for range 100 {
		assert.Zero(t, rng.Normal(0))
	}
}

func TestRandReproducible(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for range 100 {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.Normal(2), b.Normal(2))
	}
	c := NewRand(43)
	assert.NotEqual(t, NewRand(42).Float64(), c.Float64())
}

func TestDeriveSeedDistinct(t *testing.T) {
	seen := make(map[uint64]int, 10000)
	for i := range 10000 {
		s := DeriveSeed(1, i)
		prev, dup := seen[s]
		require.False(t, dup, "seed collision between %d and %d", prev, i)
		seen[s] = i
	}
	assert.Equal(t, DeriveSeed(99, 5), DeriveSeed(99, 5))
	assert.NotEqual(t, DeriveSeed(1, 5), DeriveSeed(2, 5))
}

// FuzzBernoulli checks that any probability yields a value in {0,1}.
func FuzzBernoulli(f *testing.F) {
	for _, seed := range []float64{0, 0.5, 1, -1, 2, math.Inf(1), math.Inf(-1)} {
		f.Add(seed)
	}
	rng := NewRand(1)
	f.Fuzz(func(t *testing.T, prob float64) {
		v := rng.Bernoulli(prob)
		if v != 0 && v != 1 {
			t.Fatalf("Bernoulli(%v) = %d", prob, v)
		}
		if k := rng.Binomial(7, prob); k < 0 || k > 7 {
			t.Fatalf("Binomial(7, %v) = %d", prob, k)
		}
	})
}
