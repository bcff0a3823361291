package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportStore(t *testing.T) {
	store, _ := newSQLiteStore(t)
	recordSampleRun(t, store, "run-1", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	prefix := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExportStore(&out, store, prefix))

	for _, suffix := range []string{runsExportSuffix, recommendationsExportSuffix, contributionsExportSuffix} {
		info, err := os.Stat(prefix + suffix)
		require.NoError(t, err, suffix)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, out.String(), "Exporting data from sqlite backend")
	assert.Contains(t, out.String(), "Exported 1 runs")
	assert.Contains(t, out.String(), "Exported 3 recommendations")
	assert.Contains(t, out.String(), "Exported 3 contribution rows")
}

func TestExportStore_Errors(t *testing.T) {
	t.Run("missing prefix", func(t *testing.T) {
		err := ExportStore(&bytes.Buffer{}, &MockRecommendationStore{}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output-file")
	})

	t.Run("nil store", func(t *testing.T) {
		err := ExportStore(&bytes.Buffer{}, nil, "out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not initialized")
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockRecommendationStore{}
		store.On("GetStatus").Return(schema.StoreStatus{}, errors.New("boom"))

		err := ExportStore(&bytes.Buffer{}, store, "out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		store.AssertExpectations(t)
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockRecommendationStore{}
		store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true}, nil)

		err := ExportStore(&bytes.Buffer{}, store, "out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no rating runs")
		store.AssertNotCalled(t, "GetAllRuns")
	})

	t.Run("retrieval failure", func(t *testing.T) {
		store := &MockRecommendationStore{}
		store.On("GetStatus").Return(schema.StoreStatus{Backend: "sqlite", Connected: true, TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return(nil, errors.New("query failed"))

		err := ExportStore(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "out"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to retrieve runs")
		store.AssertExpectations(t)
	})
}
