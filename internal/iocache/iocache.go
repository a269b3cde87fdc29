// Package iocache is for caching loaded records and keeping run history.
package iocache

import (
	"sync"

	"github.com/huangsam/repopulse/internal/contract"
)

// CacheStoreManager manages the record cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	records      contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetRecordStore returns the record CacheStore.
func (mgr *CacheStoreManager) GetRecordStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.records
}

// GetRunStore returns the run history RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
