package core

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andyhoegh/RobotSampler-Sims/core/agg"
	"github.com/andyhoegh/RobotSampler-Sims/core/algo"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/outwriter"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// BuildGrid expands the sweep axes into the cross product of grid points.
// Horizons vary slowest and batching modes fastest.
func BuildGrid(cfg *contract.Config) []schema.SweepPoint {
	grid := make([]schema.SweepPoint, 0, len(cfg.Horizons)*len(cfg.Occupancies)*len(cfg.Detections)*len(cfg.Batchings))
	for _, horizon := range cfg.Horizons {
		for _, occ := range cfg.Occupancies {
			for _, det := range cfg.Detections {
				for _, batching := range cfg.Batchings {
					grid = append(grid, schema.SweepPoint{
						HorizonDays: horizon,
						Occupancy:   occ,
						Detection:   det,
						Batching:    batching,
					})
				}
			}
		}
	}
	return grid
}

// pointParams returns the configuration of grid point index. Each point draws
// from its own seed derived from the run seed.
func pointParams(cfg *contract.Config, point schema.SweepPoint, index int) schema.SimParams {
	return schema.SimParams{
		NumSims:       cfg.NumSims,
		HorizonDays:   point.HorizonDays,
		Occupancy:     point.Occupancy,
		Detection:     point.Detection,
		Batching:      point.Batching,
		Detectability: cfg.Detectability,
		Seed:          algo.DeriveSeed(cfg.Seed, index),
	}
}

// ValidateGrid checks every grid point before any of them is simulated.
// The first invalid point is reported with its coordinates.
func ValidateGrid(cfg *contract.Config, grid []schema.SweepPoint) error {
	if len(grid) == 0 {
		return errors.New("sweep grid is empty")
	}
	for i, point := range grid {
		if err := agg.Validate(pointParams(cfg, point, i)); err != nil {
			return fmt.Errorf("invalid grid point %d (T=%d, occupancy=%g, detection=%g, batching=%s): %w",
				i, point.HorizonDays, point.Occupancy, point.Detection, point.Batching, err)
		}
	}
	return nil
}

// RunSweep simulates every point of grid in order. The context is checked
// between points, so a cancelled sweep stops after the point in flight.
func RunSweep(ctx context.Context, cfg *contract.Config, grid []schema.SweepPoint, mgr contract.CacheManager) (schema.SweepResult, error) {
	if err := ValidateGrid(cfg, grid); err != nil {
		return schema.SweepResult{}, err
	}

	result := schema.SweepResult{
		Points: grid,
		Rates:  make([]schema.DetectionRates, 0, len(grid)),
	}
	for i, point := range grid {
		if err := ctx.Err(); err != nil {
			return schema.SweepResult{}, fmt.Errorf("sweep stopped after %d of %d points: %w", i, len(grid), err)
		}
		rates, err := simulate(ctx, pointParams(cfg, point, i), cfg.Workers, mgr)
		if err != nil {
			return schema.SweepResult{}, fmt.Errorf("grid point %d: %w", i, err)
		}
		recordRates(ctx, mgr, rates)
		result.Rates = append(result.Rates, rates)

		if !shouldSuppressHeader(ctx) {
			outwriter.LogSweepProgress(os.Stderr, cfg, i, len(grid), point)
		}
	}
	return result, nil
}
