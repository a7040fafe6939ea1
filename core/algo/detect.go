package algo

import "github.com/andyhoegh/RobotSampler-Sims/schema"

// DriftStep advances the logit-scale drift by one day.
func DriftStep(phi, prev, innovation float64) float64 {
	return phi*prev + innovation
}

// FoldDrift folds DriftStep over innovations, starting from a zero drift.
// The result has one more element than innovations: out[0] is 0.
func FoldDrift(phi float64, innovations []float64) []float64 {
	out := make([]float64, len(innovations)+1)
	for t, eps := range innovations {
		out[t+1] = DriftStep(phi, out[t], eps)
	}
	return out
}

// FillDetectionProb writes the detection-probability sequence of one trial
// into out, whose length is the horizon. Constant mode consumes no randomness;
// time-varying mode consumes len(out)-1 normal draws.
func FillDetectionProb(rng *Rand, p float64, d schema.Detectability, out []float64) {
	if len(out) == 0 {
		return
	}
	if d.Mode != schema.TimeVaryingDetectability {
		for t := range out {
			out[t] = p
		}
		return
	}

	eta0 := Logit(p)
	drift := 0.0
	out[0] = InvLogit(eta0)
	for t := 1; t < len(out); t++ {
		drift = DriftStep(d.Phi, drift, rng.Normal(d.Sigma))
		out[t] = InvLogit(eta0 + drift)
	}
}

// DetectionProb allocates and returns the detection-probability sequence for a horizon.
func DetectionProb(rng *Rand, horizon int, p float64, d schema.Detectability) []float64 {
	out := make([]float64, horizon)
	FillDetectionProb(rng, p, d, out)
	return out
}
