// Package iocache persists rating runs and their recommendations.
package iocache

import (
	"sync"

	"github.com/huangsam/prefscore/internal/contract"
)

// RecommendationStoreManager holds the RecommendationStore of the process.
type RecommendationStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.RecommendationStore
}

var _ contract.StoreManager = &RecommendationStoreManager{} // Compile-time check

// NewStoreManager wraps an existing store, mainly for tests and embedding.
func NewStoreManager(store contract.RecommendationStore) *RecommendationStoreManager {
	return &RecommendationStoreManager{store: store}
}

// GetRecommendationStore returns the RecommendationStore, or nil when tracking is disabled.
func (mgr *RecommendationStoreManager) GetRecommendationStore() contract.RecommendationStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}
