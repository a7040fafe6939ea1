package schema

import "math"

// Advantage labels for the high-frequency minus conventional difference.
const (
	StrongAdvantage     = "Strong"
	ModerateAdvantage   = "Moderate"
	SlightAdvantage     = "Slight"
	NegligibleAdvantage = "Negligible"
)

// GetPlainLabel returns a plain text label describing how large the
// detection-rate difference between the two regimes is.
func GetPlainLabel(difference float64) string {
	d := math.Abs(difference)
	switch {
	case d >= 0.10:
		return StrongAdvantage
	case d >= 0.05:
		return ModerateAdvantage
	case d >= 0.01:
		return SlightAdvantage
	default:
		return NegligibleAdvantage
	}
}

// EnrichedSweepRow adds presentation data to a SweepRow.
type EnrichedSweepRow struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	SweepRow
}

// EnrichRows labels each row with the advantage of its grid point. Rows of
// the same grid point share a label; the high-frequency row of each point is
// compared against the conventional row with the same key.
func EnrichRows(rows []SweepRow) []EnrichedSweepRow {
	type key struct {
		weeks int
		occ   float64
		det   float64
		batch BatchingMode
	}
	conv := make(map[key]float64, len(rows)/2)
	hf := make(map[key]float64, len(rows)/2)
	for _, r := range rows {
		k := key{r.NumWeeks, r.Occupancy, r.Detection, r.Batching}
		if r.SampleMethod == ConventionalRegime {
			conv[k] = r.Probability
		} else {
			hf[k] = r.Probability
		}
	}

	output := make([]EnrichedSweepRow, len(rows))
	for i, r := range rows {
		k := key{r.NumWeeks, r.Occupancy, r.Detection, r.Batching}
		output[i] = EnrichedSweepRow{
			Rank:     i + 1,
			Label:    GetPlainLabel(hf[k] - conv[k]),
			SweepRow: r,
		}
	}
	return output
}
