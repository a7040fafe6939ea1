package cmd

import (
	"github.com/andyhoegh/RobotSampler-Sims/core"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/spf13/cobra"
)

// runCmd simulates a single configuration.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate detection probability for one configuration.",
	Long: `Simulate one configuration and report, for each sampling regime, the
probability that the species is detected at least once within the horizon.

The high-frequency regime samples every day. The conventional regime collects
once every 7 days, pooling 7 subsamples per collection.

Batching semantics for the conventional regime:
  subsample   - the 7 subsamples share the presence state of the collection day
  independent - each day in the batch is evaluated against its own presence state

Examples:
  # Default configuration (10000 trials, 56 days, psi=0.1, p=0.1)
  robotsampler run

  # Short horizon with a more common species
  robotsampler run --horizon 14 --occupancy 0.3 --detection 0.2

  # Time-varying detectability with the low-volatility preset
  robotsampler run --detectability time-varying --volatility low

  # Machine-readable output
  robotsampler run --output json --seed 42`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run simulation", err)
		}
	},
}
