package iocache

import (
	"time"

	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetRecommendationStore implements the StoreManager interface.
func (m *MockStoreManager) GetRecommendationStore() contract.RecommendationStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RecommendationStore)
	return store
}

// MockRecommendationStore is a mock implementation of RecommendationStore for testing.
type MockRecommendationStore struct {
	mock.Mock
}

var _ contract.RecommendationStore = &MockRecommendationStore{} // Compile-time check

// BeginRun implements the RecommendationStore interface.
func (m *MockRecommendationStore) BeginRun(runID, userID, algorithm string, startTime time.Time, configParams map[string]any) error {
	args := m.Called(runID, userID, algorithm, startTime, configParams)
	return args.Error(0)
}

// EndRun implements the RecommendationStore interface.
func (m *MockRecommendationStore) EndRun(runID string, endTime time.Time, totalRated int) error {
	args := m.Called(runID, endTime, totalRated)
	return args.Error(0)
}

// RecordRecommendation implements the RecommendationStore interface.
func (m *MockRecommendationStore) RecordRecommendation(rec schema.RecommendationRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

// RecordContributions implements the RecommendationStore interface.
func (m *MockRecommendationStore) RecordContributions(rows []schema.ContributionRow) error {
	args := m.Called(rows)
	return args.Error(0)
}

// GetAllRuns implements the RecommendationStore interface.
func (m *MockRecommendationStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllRecommendations implements the RecommendationStore interface.
func (m *MockRecommendationStore) GetAllRecommendations() ([]schema.RecommendationRecord, error) {
	args := m.Called()
	recs, _ := args.Get(0).([]schema.RecommendationRecord)
	return recs, args.Error(1)
}

// GetAllContributions implements the RecommendationStore interface.
func (m *MockRecommendationStore) GetAllContributions() ([]schema.ContributionRow, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.ContributionRow)
	return rows, args.Error(1)
}

// GetStatus implements the RecommendationStore interface.
func (m *MockRecommendationStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RecommendationStore interface.
func (m *MockRecommendationStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
