package cmd

import (
	"github.com/andyhoegh/RobotSampler-Sims/core"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/spf13/cobra"
)

// sweepCmd runs a parameter grid.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Simulate a grid of horizons, occupancies and detection probabilities.",
	Long: `Simulate the cross product of horizons, occupancies, detection probabilities
and batching modes. Each grid point is simulated independently with its own
seed derived from --seed, so any single point can be reproduced on its own.

The result has one row per sampling regime and grid point, keyed by
(sample method, number of weeks, occupancy, detection).

The grid comes from the list flags or from a YAML file:

  horizons: [7, 14, 28, 56]
  occupancies: [0.05, 0.10]
  detections: [0.05, 0.10]
  batchings: [subsample, independent]

Examples:
  # Default grid (8 horizons x 3 occupancies x 3 detections x 2 batchings)
  robotsampler sweep

  # Small grid with a plot of probability against weeks
  robotsampler sweep --horizons 7,14,28,56 --occupancies 0.1 --detections 0.1 --plot-file sweep.png

  # Grid from a file, exported for BI tools
  robotsampler sweep --grid grid.yaml --output parquet --output-file sweep.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSweep(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run sweep", err)
		}
	},
}
