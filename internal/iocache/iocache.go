package iocache

import (
	"sync"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
)

// CacheStoreManager manages the result cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	results      contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResultStore returns the result CacheStore, or nil when caching is disabled.
func (mgr *CacheStoreManager) GetResultStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}

// GetRunStore returns the RunStore, or nil when run tracking is disabled.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}

// NewCacheStoreManager returns a manager over already opened stores.
// Either store may be nil.
func NewCacheStoreManager(results contract.CacheStore, runs contract.RunStore) *CacheStoreManager {
	return &CacheStoreManager{results: results, runs: runs}
}
