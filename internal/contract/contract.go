// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/andyhoegh/RobotSampler-Sims/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cached simulation results.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking simulation runs and their detection rates.
type RunStore interface {
	// BeginRun creates a new run for a command and returns its unique ID
	BeginRun(command string, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordRates stores both regime estimates of one configuration
	RecordRates(runID int64, rates schema.DetectionRates) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalConfigs int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
