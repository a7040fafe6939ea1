package cmd

import (
	"github.com/andyhoegh/RobotSampler-Sims/core"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/spf13/cobra"
)

// compareCmd contrasts the two regimes on the same trials.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Contrast daily and weekly sampling on paired trials.",
	Long: `Simulate one configuration and compare both sampling regimes on the very
same trials. Every trial draws one presence and detectability history that both
regimes observe, so the difference in detection probability is paired.

Reports:
- How many trials were detected by both, by one regime only, or by neither
- The paired difference (high-frequency minus conventional) and its standard error
- A McNemar-style z statistic with its two-sided p-value

Examples:
  # Is daily sampling significantly better at 8 weeks?
  robotsampler compare --horizon 56 --occupancy 0.05 --detection 0.1

  # Same question with independent batching
  robotsampler compare --batching independent

  # CSV for downstream analysis
  robotsampler compare --output csv --output-file contrast.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run comparison", err)
		}
	},
}
