package agg

import (
	"math"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"gonum.org/v1/gonum/stat/distuv"
)

// PairedContrast computes the high-frequency minus conventional difference of
// a configuration. Both regimes share Z and p_vec within a trial, so only the
// discordant trials carry information about the difference.
func PairedContrast(r schema.DetectionRates) schema.Contrast {
	n := float64(r.Params.NumSims)
	if n == 0 {
		return schema.Contrast{PValue: 1}
	}
	n10 := float64(r.Paired.HighFrequencyOnly)
	n01 := float64(r.Paired.ConventionalOnly)

	c := schema.Contrast{
		Difference: (n10 - n01) / n,
		Discordant: r.Paired.HighFrequencyOnly + r.Paired.ConventionalOnly,
		PValue:     1,
	}
	variance := (n10 + n01) - (n10-n01)*(n10-n01)/n
	if variance <= 0 {
		return c
	}
	c.StdErr = math.Sqrt(variance) / n
	c.Z = c.Difference / c.StdErr
	c.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(c.Z))
	return c
}
