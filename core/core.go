// Package core drives simulations: single configurations, paired comparisons and grid sweeps.
package core

import (
	"context"
	"os"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/core/agg"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/internal/outwriter"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// ExecutorFunc defines the function signature for executing different simulation commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// RunConfiguration simulates the single configuration described by cfg and
// returns the detection probability of both regimes. It neither caches nor
// tracks the run.
func RunConfiguration(ctx context.Context, cfg *contract.Config) (schema.DetectionRates, error) {
	if err := ctx.Err(); err != nil {
		return schema.DetectionRates{}, err
	}
	return agg.Aggregate(cfg.SimParams(), cfg.Workers)
}

// simulate runs one configuration through the result cache when one is configured.
func simulate(ctx context.Context, params schema.SimParams, workers int, mgr contract.CacheManager) (schema.DetectionRates, error) {
	if err := ctx.Err(); err != nil {
		return schema.DetectionRates{}, err
	}
	return agg.CachedAggregate(params, workers, resultStore(mgr))
}

// GetRunResults simulates the configuration in cfg, tracking it in the run store.
func GetRunResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.DetectionRates, time.Duration, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(os.Stderr, cfg)
	}

	ctx = beginRun(ctx, cfg, mgr, "run")
	rates, err := simulate(ctx, cfg.SimParams(), cfg.Workers, mgr)
	if err != nil {
		return schema.DetectionRates{}, 0, err
	}
	recordRates(ctx, mgr, rates)
	endRun(ctx, mgr, 1)

	return rates, time.Since(start), nil
}

// GetCompareResults simulates the configuration in cfg and computes the
// paired contrast between the two regimes.
func GetCompareResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ComparisonResult, time.Duration, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogRunHeader(os.Stderr, cfg)
	}

	ctx = beginRun(ctx, cfg, mgr, "compare")
	rates, err := simulate(ctx, cfg.SimParams(), cfg.Workers, mgr)
	if err != nil {
		return schema.ComparisonResult{}, 0, err
	}
	recordRates(ctx, mgr, rates)
	endRun(ctx, mgr, 1)

	result := schema.ComparisonResult{
		Rates:    rates,
		Contrast: agg.PairedContrast(rates),
	}
	return result, time.Since(start), nil
}

// GetSweepResults builds the grid from cfg and simulates every point of it.
func GetSweepResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.SweepResult, time.Duration, error) {
	start := time.Now()
	grid := BuildGrid(cfg)
	if err := ValidateGrid(cfg, grid); err != nil {
		return schema.SweepResult{}, 0, err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogSweepHeader(os.Stderr, cfg, len(grid))
	}

	ctx = beginRun(ctx, cfg, mgr, "sweep")
	result, err := RunSweep(ctx, cfg, grid, mgr)
	if err != nil {
		return schema.SweepResult{}, 0, err
	}
	endRun(ctx, mgr, len(result.Rates))

	return result, time.Since(start), nil
}

// ExecuteRun simulates one configuration and prints both regimes.
// It serves as the main entry point for the 'run' command.
func ExecuteRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	rates, duration, err := GetRunResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintRunResults(rates, cfg, duration)
}

// ExecuteCompare simulates one configuration and prints the paired contrast.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetCompareResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintComparisonResults(result, cfg, duration)
}

// ExecuteSweep simulates the configured grid and prints one row per regime and point.
func ExecuteSweep(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetSweepResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSweepResults(result, cfg, duration)
}
