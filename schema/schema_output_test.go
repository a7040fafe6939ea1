package schema_test

import (
	"testing"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		diff     float64
		expected string
	}{
		{"Strong Upper", 0.5, "Strong"},
		{"Strong Lower", 0.10, "Strong"},
		{"Moderate Upper", 0.099, "Moderate"},
		{"Moderate Lower", 0.05, "Moderate"},
		{"Slight Upper", 0.049, "Slight"},
		{"Slight Lower", 0.01, "Slight"},
		{"Negligible", 0.005, "Negligible"},
		{"Zero", 0.0, "Negligible"},
		{"Negative Difference", -0.2, "Strong"}, // Edge case
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.diff))
		})
	}
}

func TestEnrichRows(t *testing.T) {
	rows := []schema.SweepRow{
		{SampleMethod: schema.HighFrequencyRegime, NumWeeks: 8, Occupancy: 0.1, Detection: 0.1, Batching: schema.SubsampleBatching, Probability: 0.43},
		{SampleMethod: schema.ConventionalRegime, NumWeeks: 8, Occupancy: 0.1, Detection: 0.1, Batching: schema.SubsampleBatching, Probability: 0.35},
		{SampleMethod: schema.HighFrequencyRegime, NumWeeks: 8, Occupancy: 0.1, Detection: 0.1, Batching: schema.IndependentBatching, Probability: 0.43},
		{SampleMethod: schema.ConventionalRegime, NumWeeks: 8, Occupancy: 0.1, Detection: 0.1, Batching: schema.IndependentBatching, Probability: 0.428},
	}

	enriched := schema.EnrichRows(rows)

	assert.Len(t, enriched, 4)

	assert.Equal(t, 1, enriched[0].Rank)
	assert.Equal(t, "Moderate", enriched[0].Label)
	assert.Equal(t, "Moderate", enriched[1].Label)

	assert.Equal(t, 3, enriched[2].Rank)
	assert.Equal(t, "Negligible", enriched[2].Label)
	assert.Equal(t, schema.IndependentBatching, enriched[3].Batching)
}
