package agg

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// currentCacheVersion defines the version of the cached result layout and
// of the generative process. Bump it whenever a change alters draws.
const currentCacheVersion = 1

// CachedAggregate returns the cached result for params when one exists and
// otherwise runs Aggregate and stores the result. Results are deterministic
// in params, so cached entries never go stale. Cache failures only warn.
func CachedAggregate(params schema.SimParams, workers int, store contract.CacheStore) (schema.DetectionRates, error) {
	if err := Validate(params); err != nil {
		return schema.DetectionRates{}, err
	}
	if store == nil {
		return Aggregate(params, workers)
	}

	key := generateCacheKey(params)
	if result, ok := checkCacheHit(store, key); ok {
		result.Params = params
		return result, nil
	}
	return computeAndStore(params, workers, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached result.
func checkCacheHit(store contract.CacheStore, key string) (schema.DetectionRates, bool) {
	data, version, _, err := store.Get(key)
	if err != nil || version != currentCacheVersion {
		return schema.DetectionRates{}, false
	}
	var result schema.DetectionRates
	if err := json.Unmarshal(data, &result); err != nil {
		return schema.DetectionRates{}, false
	}
	return result, true
}

// computeAndStore computes the result and stores it in cache.
func computeAndStore(params schema.SimParams, workers int, store contract.CacheStore, key string) (schema.DetectionRates, error) {
	result, err := Aggregate(params, workers)
	if err != nil {
		return schema.DetectionRates{}, err
	}
	data, err := json.Marshal(result)
	if err == nil {
		err = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	if err != nil {
		contract.LogWarn("Failed to cache result", err)
	}
	return result, nil
}

// generateCacheKey creates a unique key from every input that affects the draws.
func generateCacheKey(params schema.SimParams) string {
	d := params.Detectability
	if d.Mode != schema.TimeVaryingDetectability {
		d.Phi, d.Sigma = 0, 0
	}
	key := fmt.Sprintf("%d:%d:%g:%g:%s:%s:%g:%g:%d",
		params.NumSims,
		params.HorizonDays,
		params.Occupancy,
		params.Detection,
		params.Batching,
		d.Mode,
		d.Phi,
		d.Sigma,
		params.Seed,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
