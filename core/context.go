package core

import (
	"context"

	"github.com/huangsam/prefscore/internal/contract"
)

// Context keys for rating runs
type contextKey string

const (
	runIDKey        contextKey = "runID"
	storeManagerKey contextKey = "storeManager"
)

// withRunID attaches the id of the current rating run to the context
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the id of the current rating run, if one is being recorded
func getRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok && runID != ""
}

// contextWithStoreManager attaches the store manager to the context
func contextWithStoreManager(ctx context.Context, mgr contract.StoreManager) context.Context {
	return context.WithValue(ctx, storeManagerKey, mgr)
}

// storeManagerFromContext returns the store manager from the context, or nil
func storeManagerFromContext(ctx context.Context) contract.StoreManager {
	mgr, _ := ctx.Value(storeManagerKey).(contract.StoreManager)
	return mgr
}
