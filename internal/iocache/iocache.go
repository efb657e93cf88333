// Package iocache persists scored runs so they can be inspected and exported later.
package iocache

import (
	"sync"

	"github.com/huangsam/rubric/internal/contract"
)

// HistoryStoreManager holds the history store used by scoring commands.
type HistoryStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	history      contract.HistoryStore
}

var _ contract.HistoryManager = &HistoryStoreManager{} // Compile-time check

// GetHistoryStore returns the HistoryStore, or nil before initialization.
func (mgr *HistoryStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
