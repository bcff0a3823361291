package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) (*RecommendationStoreImpl, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "store.db")
	store, err := NewRecommendationStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*RecommendationStoreImpl), dbPath
}

// recordSampleRun stores one run with a defined, a vetoed and an undefined rating.
func recordSampleRun(t *testing.T, store *RecommendationStoreImpl, runID string, start time.Time) {
	t.Helper()
	require.NoError(t, store.BeginRun(runID, "Thomas", "hypnorm", start, map[string]any{"rating_scale": 5.0}))

	recs := []schema.RecommendationRecord{
		{RunID: runID, UserID: "Thomas", ProductID: 2, Score: 5.95, RawScore: 0.19, Defined: true, RatedAt: start},
		{RunID: runID, UserID: "Thomas", ProductID: 3, Score: 0, Defined: true, Contradiction: true, RatedAt: start},
		{RunID: runID, UserID: "Thomas", ProductID: 5, Defined: false, RatedAt: start},
	}
	for _, rec := range recs {
		require.NoError(t, store.RecordRecommendation(rec))
	}
	require.NoError(t, store.RecordContributions([]schema.ContributionRow{
		{RunID: runID, UserID: "Thomas", ProductID: 2, ProductTagID: 5, PreferenceID: schema.TotalPreferenceID, Value: 0.6},
		{RunID: runID, UserID: "Thomas", ProductID: 2, ProductTagID: 5, PreferenceID: 1, Value: 0.6},
		{RunID: runID, UserID: "Thomas", ProductID: 3, ProductTagID: 7, PreferenceID: 1, Vetoed: true},
	}))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), len(recs)))
}

func TestRecommendationStore_NoneBackend(t *testing.T) {
	store, err := NewRecommendationStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	assert.NoError(t, store.BeginRun("run", "Thomas", "hypnorm", time.Now(), nil))
	assert.NoError(t, store.RecordRecommendation(schema.RecommendationRecord{RunID: "run"}))
	assert.NoError(t, store.RecordContributions([]schema.ContributionRow{{RunID: "run"}}))
	assert.NoError(t, store.EndRun("run", time.Now(), 1))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)

	assert.NoError(t, store.Close())
}

func TestRecommendationStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRecommendationStore(schema.DatabaseBackend("oracle"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestRecommendationStore_SQLiteLifecycle(t *testing.T) {
	store, _ := newSQLiteStore(t)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recordSampleRun(t, store, "run-1", start)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "Thomas", run.UserID)
	assert.Equal(t, "hypnorm", run.Algorithm)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(3), run.TotalRated)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"rating_scale":5}`, *run.ConfigParams)

	recs, err := store.GetAllRecommendations()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.InDelta(t, 5.95, recs[0].Score, 1e-9)
	assert.True(t, recs[0].Defined)
	assert.True(t, recs[1].Contradiction)
	assert.False(t, recs[2].Defined, "undefined ratings keep their flag")
	assert.True(t, start.Equal(recs[2].RatedAt))

	rows, err := store.GetAllContributions()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, schema.TotalPreferenceID, rows[0].PreferenceID, "total row sorts before preference rows")
	assert.Equal(t, "Thomas", rows[0].UserID)
	assert.True(t, rows[2].Vetoed)
}

func TestRecommendationStore_DuplicateRecommendation(t *testing.T) {
	store, _ := newSQLiteStore(t)
	rec := schema.RecommendationRecord{RunID: "run-1", UserID: "Thomas", ProductID: 1, Defined: true, RatedAt: time.Now()}
	require.NoError(t, store.RecordRecommendation(rec))
	assert.Error(t, store.RecordRecommendation(rec), "a product is rated once per user and run")
}

func TestRecommendationStore_EndUnknownRun(t *testing.T) {
	store, _ := newSQLiteStore(t)
	err := store.EndRun("missing", time.Now(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestRecommendationStore_GetStatus(t *testing.T) {
	store, _ := newSQLiteStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)

	older := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 1, 8, 0, 0, 500, time.UTC)
	recordSampleRun(t, store, "run-old", older)
	recordSampleRun(t, store, "run-new", newer)

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, "run-new", status.LastRunID)
	assert.True(t, newer.Equal(status.LastRunTime))
	assert.True(t, older.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalRecommendations)
	assert.Equal(t, map[string]int64{
		runsTable:            2,
		recommendationsTable: 6,
		contributionsTable:   6,
	}, status.TableSizes)
}

func TestRecommendationStore_ReopenKeepsData(t *testing.T) {
	store, dbPath := newSQLiteStore(t)
	recordSampleRun(t, store, "run-1", time.Now())
	require.NoError(t, store.Close())

	reopened, err := NewRecommendationStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.GetAllRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestClearStore(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		store, dbPath := newSQLiteStore(t)
		require.NoError(t, store.Close())

		require.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))
		_, err := os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Clearing twice is fine
		assert.NoError(t, ClearStore(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.Error(t, ClearStore(schema.SQLiteBackend, "", ""))
	})

	t.Run("none is a no-op", func(t *testing.T) {
		assert.NoError(t, ClearStore(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearStore(schema.DatabaseBackend("oracle"), "", ""))
	})
}

func TestRebind(t *testing.T) {
	pg := &RecommendationStoreImpl{backend: schema.PostgreSQLBackend}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.rebind("UPDATE t SET a = ? WHERE b = ?"))

	lite := &RecommendationStoreImpl{backend: schema.SQLiteBackend}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		want    string
	}{
		{"SQLite backend", schema.SQLiteBackend, `"prefscore_runs"`},
		{"MySQL backend", schema.MySQLBackend, "`prefscore_runs`"},
		{"PostgreSQL backend", schema.PostgreSQLBackend, `"prefscore_runs"`},
		{"None backend defaults to SQLite style", schema.NoneBackend, `"prefscore_runs"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteTableName(runsTable, tt.backend))
		})
	}
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"store table", recommendationsTable, false},
		{"leading underscore", "_runs", false},
		{"empty", "", true},
		{"leading digit", "1runs", true},
		{"injection", "runs; DROP TABLE users", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetCreateTableQuery(t *testing.T) {
	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend} {
		for _, table := range storeTables {
			query := getCreateTableQuery(table, backend)
			assert.Contains(t, query, "CREATE TABLE IF NOT EXISTS "+quoteTableName(table, backend))
			assert.Contains(t, query, "run_id")
		}
	}
	assert.Contains(t, getCreateTableQuery(runsTable, schema.MySQLBackend), "DATETIME(6)")
	assert.Contains(t, getCreateTableQuery(contributionsTable, schema.PostgreSQLBackend), "DOUBLE PRECISION")
}

func TestStoreManager(t *testing.T) {
	store, _ := newSQLiteStore(t)
	mgr := NewStoreManager(store)
	assert.Same(t, store, mgr.GetRecommendationStore())
	assert.Nil(t, (&RecommendationStoreManager{}).GetRecommendationStore())
}
