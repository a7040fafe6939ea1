package core

import (
	"context"
	"fmt"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// runStore returns the configured run store, or nil when tracking is off.
func runStore(mgr contract.CacheManager) contract.RunStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRunStore()
}

// resultStore returns the configured result cache, or nil when caching is off.
func resultStore(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetResultStore()
}

// runConfigParams captures the settings of a run for the run store.
func runConfigParams(cfg *contract.Config, command string) map[string]any {
	params := map[string]any{
		"command":       command,
		"sims":          cfg.NumSims,
		"seed":          cfg.Seed,
		"workers":       cfg.Workers,
		"detectability": string(cfg.Detectability.Mode),
	}
	if cfg.Detectability.Mode == schema.TimeVaryingDetectability {
		params["phi"] = cfg.Detectability.Phi
		params["sigma"] = cfg.Detectability.Sigma
	}
	if command == "sweep" {
		params["horizons"] = cfg.Horizons
		params["occupancies"] = cfg.Occupancies
		params["detections"] = cfg.Detections
		params["batchings"] = cfg.Batchings
		return params
	}
	params["horizon"] = cfg.HorizonDays
	params["occupancy"] = cfg.Occupancy
	params["detection"] = cfg.Detection
	params["batching"] = string(cfg.Batching)
	return params
}

// beginRun starts run tracking when a run store is configured and returns a
// context carrying the run ID. Tracking failures only warn.
func beginRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, command string) context.Context {
	store := runStore(mgr)
	if store == nil {
		return ctx
	}
	runID, err := store.BeginRun(command, time.Now(), runConfigParams(cfg, command))
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// recordRates stores the rates of one configuration under the tracked run.
func recordRates(ctx context.Context, mgr contract.CacheManager, rates schema.DetectionRates) {
	runID := runIDFromContext(ctx)
	store := runStore(mgr)
	if store == nil || runID == 0 {
		return
	}
	if err := store.RecordRates(runID, rates); err != nil {
		logTrackingError("RecordRates", runID, err)
	}
}

// endRun finalizes the tracked run.
func endRun(ctx context.Context, mgr contract.CacheManager, totalConfigs int) {
	runID := runIDFromContext(ctx)
	store := runStore(mgr)
	if store == nil || runID == 0 {
		return
	}
	if err := store.EndRun(runID, time.Now(), totalConfigs); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// logTrackingError logs run tracking errors without failing the simulation.
func logTrackingError(operation string, runID int64, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on run %d", operation, runID), err)
}
