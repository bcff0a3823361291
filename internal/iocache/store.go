package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for recommendation tracking.
const (
	runsTable            = "prefscore_runs"
	recommendationsTable = "prefscore_recommendations"
	contributionsTable   = "prefscore_contributions"

	// migrationsTable is the version table maintained by golang-migrate.
	migrationsTable = "schema_migrations"
)

// storeTables lists every table of the store in dependency order.
var storeTables = []string{runsTable, recommendationsTable, contributionsTable}

// RecommendationStoreImpl implements the RecommendationStore interface.
type RecommendationStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RecommendationStore = &RecommendationStoreImpl{} // Compile-time check

// driverFor returns the database/sql driver name of a backend.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// openDB opens and pings the database of a backend. An empty SQLite connection
// string selects the default database file.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, "", err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		switch backend {
		case schema.MySQLBackend:
			return nil, "", fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		case schema.PostgreSQLBackend:
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... dbname=...", err)
		default:
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", connStr, err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, "", fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}
	return db, driverName, nil
}

// NewRecommendationStore creates a new RecommendationStore with the specified backend.
// The none backend returns a store that accepts and discards everything.
func NewRecommendationStore(backend schema.DatabaseBackend, connStr string) (contract.RecommendationStore, error) {
	if backend == schema.NoneBackend {
		return &RecommendationStoreImpl{backend: backend}, nil
	}

	db, driverName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createStoreTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store tables: %w", err)
	}

	return &RecommendationStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createStoreTables creates the recommendation tracking tables.
func createStoreTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range storeTables {
		if _, err := db.Exec(getCreateTableQuery(table, backend)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// columnTypes holds the per-backend column types used by the store tables.
type columnTypes struct {
	id, text, timestamp, integer, bigint, double, boolean string
}

func typesFor(backend schema.DatabaseBackend) columnTypes {
	switch backend {
	case schema.MySQLBackend:
		return columnTypes{"VARCHAR(64)", "TEXT", "DATETIME(6)", "INT", "BIGINT", "DOUBLE", "BOOLEAN"}
	case schema.PostgreSQLBackend:
		return columnTypes{"TEXT", "TEXT", "TIMESTAMPTZ", "INT", "BIGINT", "DOUBLE PRECISION", "BOOLEAN"}
	default: // SQLite
		return columnTypes{"TEXT", "TEXT", "TEXT", "INTEGER", "INTEGER", "REAL", "INTEGER"}
	}
}

// getCreateTableQuery returns the CREATE TABLE query for one store table.
func getCreateTableQuery(table string, backend schema.DatabaseBackend) string {
	c := typesFor(backend)
	quoted := quoteTableName(table, backend)

	switch table {
	case runsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s PRIMARY KEY,
				user_id %s NOT NULL,
				algorithm %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms %s,
				total_rated %s NOT NULL DEFAULT 0,
				config_params %s
			);
		`, quoted, c.id, c.id, c.id, c.timestamp, c.timestamp, c.integer, c.integer, c.text)

	case recommendationsTable:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				user_id %s NOT NULL,
				product_id %s NOT NULL,
				score %s NOT NULL,
				raw_score %s NOT NULL,
				score_defined %s NOT NULL,
				contradiction %s NOT NULL,
				rated_at %s NOT NULL,
				PRIMARY KEY (run_id, user_id, product_id)
			);
		`, quoted, c.id, c.id, c.bigint, c.double, c.double, c.boolean, c.boolean, c.timestamp)

	default: // contributionsTable
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s NOT NULL,
				user_id %s NOT NULL,
				product_id %s NOT NULL,
				product_tag_id %s NOT NULL,
				preference_id %s NOT NULL,
				contribution %s NOT NULL,
				vetoed %s NOT NULL,
				PRIMARY KEY (run_id, user_id, product_id, product_tag_id, preference_id)
			);
		`, quoted, c.id, c.id, c.bigint, c.bigint, c.bigint, c.double, c.boolean)
	}
}

// disabled reports whether the store discards all writes.
func (rs *RecommendationStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (rs *RecommendationStoreImpl) rebind(query string) string {
	if rs.backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BeginRun creates a new run with the given id.
func (rs *RecommendationStoreImpl) BeginRun(runID, userID, algorithm string, startTime time.Time, configParams map[string]any) error {
	if rs.disabled() {
		return nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := rs.rebind(fmt.Sprintf(`INSERT INTO %s (run_id, user_id, algorithm, start_time, config_params) VALUES (?, ?, ?, ?, ?)`,
		quoteTableName(runsTable, rs.backend)))
	if _, err := rs.db.Exec(query, runID, userID, algorithm, formatTime(startTime, rs.backend), string(configJSON)); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (rs *RecommendationStoreImpl) EndRun(runID string, endTime time.Time, totalRated int) error {
	if rs.disabled() {
		return nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	row := rs.db.QueryRow(rs.rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quoted)), runID)
	startTime, err := rs.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()
	query := rs.rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_rated = ? WHERE run_id = ?`, quoted))
	if _, err := rs.db.Exec(query, formatTime(endTime, rs.backend), durationMs, totalRated, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordRecommendation stores one rating of a run.
func (rs *RecommendationStoreImpl) RecordRecommendation(rec schema.RecommendationRecord) error {
	if rs.disabled() {
		return nil
	}

	query := rs.rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, user_id, product_id, score, raw_score, score_defined, contradiction, rated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(recommendationsTable, rs.backend)))
	if _, err := rs.db.Exec(query, rec.RunID, rec.UserID, rec.ProductID, rec.Score, rec.RawScore,
		rec.Defined, rec.Contradiction, formatTime(rec.RatedAt, rs.backend)); err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

// RecordContributions stores the contribution rows of one rating in a single transaction.
func (rs *RecommendationStoreImpl) RecordContributions(rows []schema.ContributionRow) error {
	if rs.disabled() || len(rows) == 0 {
		return nil
	}

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(rs.rebind(fmt.Sprintf(`
		INSERT INTO %s (run_id, user_id, product_id, product_tag_id, preference_id, contribution, vetoed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(contributionsTable, rs.backend))))
	if err != nil {
		return fmt.Errorf("failed to prepare contribution insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.Exec(r.RunID, r.UserID, r.ProductID, r.ProductTagID, r.PreferenceID, r.Value, r.Vetoed); err != nil {
			return fmt.Errorf("failed to insert contribution for product tag %d: %w", r.ProductTagID, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying DB connection.
func (rs *RecommendationStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the recommendation store.
func (rs *RecommendationStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", quotedRuns))
		var lastRunID string
		var lastRunTime time.Time
		var err error
		if rs.backend == schema.SQLiteBackend {
			var lastRunTimeStr string
			if err = row.Scan(&lastRunID, &lastRunTimeStr); err == nil {
				lastRunTime, err = time.Parse(time.RFC3339Nano, lastRunTimeStr)
			}
		} else {
			err = row.Scan(&lastRunID, &lastRunTime)
		}
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = lastRunID
		status.LastRunTime = lastRunTime

		oldest, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest
	}

	for _, table := range storeTables {
		var count int64
		if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRecommendations = int(status.TableSizes[recommendationsTable])

	return status, nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (rs *RecommendationStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, user_id, algorithm, start_time, end_time, run_duration_ms, total_rated, config_params
		FROM %s ORDER BY start_time, run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		if rs.backend == schema.SQLiteBackend {
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.UserID, &record.Algorithm, &startTimeStr, &endTimeStr,
				&record.RunDurationMs, &record.TotalRated, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		} else if err := rows.Scan(&record.RunID, &record.UserID, &record.Algorithm, &record.StartTime, &record.EndTime,
			&record.RunDurationMs, &record.TotalRated, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllRecommendations retrieves all stored ratings.
func (rs *RecommendationStoreImpl) GetAllRecommendations() ([]schema.RecommendationRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, user_id, product_id, score, raw_score, score_defined, contradiction, rated_at
		FROM %s ORDER BY run_id, user_id, product_id`, quoteTableName(recommendationsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RecommendationRecord
	for rows.Next() {
		var record schema.RecommendationRecord
		if rs.backend == schema.SQLiteBackend {
			var ratedAtStr string
			if err := rows.Scan(&record.RunID, &record.UserID, &record.ProductID, &record.Score, &record.RawScore,
				&record.Defined, &record.Contradiction, &ratedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan recommendation: %w", err)
			}
			if record.RatedAt, err = time.Parse(time.RFC3339Nano, ratedAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse rated_at: %w", err)
			}
		} else if err := rows.Scan(&record.RunID, &record.UserID, &record.ProductID, &record.Score, &record.RawScore,
			&record.Defined, &record.Contradiction, &record.RatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return results, nil
}

// GetAllContributions retrieves all stored contribution rows.
func (rs *RecommendationStoreImpl) GetAllContributions() ([]schema.ContributionRow, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, user_id, product_id, product_tag_id, preference_id, contribution, vetoed
		FROM %s ORDER BY run_id, user_id, product_id, product_tag_id, preference_id`, quoteTableName(contributionsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ContributionRow
	for rows.Next() {
		var r schema.ContributionRow
		if err := rows.Scan(&r.RunID, &r.UserID, &r.ProductID, &r.ProductTagID, &r.PreferenceID, &r.Value, &r.Vetoed); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, parsing the text form SQLite stores.
func (rs *RecommendationStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// sqliteTimeFormat has fixed-width fractions so lexical order matches time order.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeFormat)
	default:
		return t
	}
}

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName validates that the table name is a safe SQL identifier.
func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %q (must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$)", name)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	if backend == schema.MySQLBackend {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("%q", name)
}
