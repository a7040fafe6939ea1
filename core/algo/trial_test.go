package algo

import (
	"testing"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() TrialParams {
	return TrialParams{
		HorizonDays:   56,
		Occupancy:     0.1,
		Detection:     0.1,
		Batching:      schema.SubsampleBatching,
		Detectability: schema.Detectability{Mode: schema.ConstantDetectability},
	}
}

func TestTrialParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *TrialParams)
		wantErr error
		errText string
	}{
		{"valid", func(*TrialParams) {}, nil, ""},
		{"zero occupancy is valid", func(p *TrialParams) { p.Occupancy = 0 }, nil, ""},
		{"full occupancy is valid", func(p *TrialParams) { p.Occupancy = 1 }, nil, ""},
		{"horizon not multiple", func(p *TrialParams) { p.HorizonDays = 10 }, ErrInvalidHorizon, "T=10"},
		{"horizon zero", func(p *TrialParams) { p.HorizonDays = 0 }, ErrInvalidHorizon, "interval 7"},
		{"horizon negative", func(p *TrialParams) { p.HorizonDays = -7 }, ErrInvalidHorizon, "T=-7"},
		{"occupancy above one", func(p *TrialParams) { p.Occupancy = 1.1 }, ErrProbabilityRange, "occupancy"},
		{"occupancy negative", func(p *TrialParams) { p.Occupancy = -0.1 }, ErrProbabilityRange, "occupancy"},
		{"detection zero", func(p *TrialParams) { p.Detection = 0 }, ErrProbabilityRange, "detection"},
		{"detection one", func(p *TrialParams) { p.Detection = 1 }, ErrProbabilityRange, "detection"},
		{"unknown batching", func(p *TrialParams) { p.Batching = "weekly" }, nil, "batching"},
		{"unknown detectability", func(p *TrialParams) { p.Detectability.Mode = "wild" }, nil, "detectability"},
		{"negative sigma", func(p *TrialParams) {
			p.Detectability = schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.2, Sigma: -1}
		}, ErrInvalidProcess, "sigma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil && tt.errText == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestGenerateTrialShapes(t *testing.T) {
	p := baseParams()
	trial := GenerateTrial(NewRand(1), p)
	assert.Len(t, trial.Occupancy, 56)
	assert.Len(t, trial.DetectionProb, 56)
	assert.Len(t, trial.HighFrequency, 56)
	assert.Len(t, trial.Conventional, 8)

	p.Batching = schema.IndependentBatching
	trial = GenerateTrial(NewRand(1), p)
	assert.Len(t, trial.Conventional, 56)
}

func TestGenerateTrialReproducible(t *testing.T) {
	p := baseParams()
	p.Detectability = schema.Detectability{Mode: schema.TimeVaryingDetectability, Phi: 0.2, Sigma: 3}
	for _, batching := range schema.AllBatchingModes {
		p.Batching = batching
		a := GenerateTrial(TrialRand(5, 17), p)
		b := GenerateTrial(TrialRand(5, 17), p)
		assert.Equal(t, a, b)
	}
}

func TestGenerateReusesBuffers(t *testing.T) {
	p := baseParams()
	trial := NewTrial(p.HorizonDays)
	for i := range 5 {
		trial.Generate(TrialRand(3, i), p)
		fresh := GenerateTrial(TrialRand(3, i), p)
		assert.Equal(t, fresh.Occupancy, trial.Occupancy)
		assert.Equal(t, fresh.HighFrequency, trial.HighFrequency)
		assert.Equal(t, fresh.Conventional, trial.Conventional)
	}
}

func TestNoDetectionWithoutPresence(t *testing.T) {
	p := baseParams()
	p.Occupancy = 0.3
	p.Detection = 0.9
	for _, batching := range schema.AllBatchingModes {
		p.Batching = batching
		for i := range 200 {
			trial := GenerateTrial(TrialRand(8, i), p)
			for day, present := range trial.Occupancy {
				if !present {
					require.Zero(t, trial.HighFrequency[day])
				}
			}
			if batching == schema.SubsampleBatching {
				for c, k := range trial.Conventional {
					if !trial.Occupancy[c*schema.SamplingInterval] {
						require.Zero(t, k)
					}
					require.LessOrEqual(t, k, schema.SamplingInterval)
				}
			} else {
				for day, present := range trial.Occupancy {
					if !present {
						require.Zero(t, trial.Conventional[day])
					}
				}
			}
		}
	}
}

func TestDegenerateTrials(t *testing.T) {
	p := baseParams()
	p.Occupancy = 0
	for i := range 100 {
		trial := GenerateTrial(TrialRand(1, i), p)
		assert.False(t, trial.HighFrequencyDetected())
		assert.False(t, trial.ConventionalDetected())
		assert.Zero(t, trial.HighFrequencyRate())
	}

	p.Occupancy = 1
	p.Detection = 0.999999
	p.HorizonDays = 7
	for i := range 100 {
		trial := GenerateTrial(TrialRand(1, i), p)
		assert.True(t, trial.HighFrequencyDetected())
		assert.True(t, trial.ConventionalDetected())
	}
}

func TestTrialRatesInRange(t *testing.T) {
	p := baseParams()
	p.Occupancy = 0.8
	p.Detection = 0.8
	for _, batching := range schema.AllBatchingModes {
		p.Batching = batching
		for i := range 50 {
			trial := GenerateTrial(TrialRand(2, i), p)
			for _, r := range []float64{trial.HighFrequencyRate(), trial.ConventionalRate()} {
				assert.GreaterOrEqual(t, r, 0.0)
				assert.LessOrEqual(t, r, 1.0)
			}
		}
	}
}

func TestIndependentUsesCollectionDayProbability(t *testing.T) {
	// With every day present and p_vec forced to 0 except on collection days,
	// the independent draws can only see the collection-day probability.
	z := make([]bool, 14)
	for i := range z {
		z[i] = true
	}
	pvec := make([]float64, 14)
	pvec[0], pvec[7] = 1, 1
	out := independentDraws(NewRand(1), z, pvec, nil)
	for _, v := range out {
		assert.Equal(t, 1, v)
	}

	pvec[0], pvec[7] = 0, 0
	for i := range pvec {
		if i%7 != 0 {
			pvec[i] = 1
		}
	}
	out = independentDraws(NewRand(1), z, pvec, nil)
	for _, v := range out {
		assert.Equal(t, 0, v)
	}
}

func TestSubsampleUsesCollectionDayPresence(t *testing.T) {
	z := make([]bool, 14)
	pvec := make([]float64, 14)
	for i := range pvec {
		pvec[i] = 1
		z[i] = i%7 != 0 // present every day except collection days
	}
	out := subsampleDraws(NewRand(1), z, pvec, nil)
	assert.Equal(t, []int{0, 0}, out)

	z[0], z[7] = true, true
	out = subsampleDraws(NewRand(1), z, pvec, nil)
	assert.Equal(t, []int{7, 7}, out)
}
