// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/prefscore/schema"
)

// StoreManager defines the interface for managing the recommendation store.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetRecommendationStore() RecommendationStore
}

// RecommendationStore defines the interface for tracking rating runs and their outcomes.
type RecommendationStore interface {
	// BeginRun creates a new rating run under the given id
	BeginRun(runID string, userID string, algorithm string, startTime time.Time, configParams map[string]any) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalRated int) error

	// RecordRecommendation stores one rating of a run
	RecordRecommendation(rec schema.RecommendationRecord) error

	// RecordContributions stores the product tag contributions behind one rating
	RecordContributions(rows []schema.ContributionRow) error

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRecommendations returns every recorded rating
	GetAllRecommendations() ([]schema.RecommendationRecord, error)

	// GetAllContributions returns every recorded contribution row
	GetAllContributions() ([]schema.ContributionRow, error)

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
