// Package parquet provides data structures and functions for exporting prefscore
// recommendation data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/prefscore/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single rating run with metadata.
// This struct maps to the prefscore_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID string `parquet:"run_id,snappy"`

	// UserID is the rated user, or "*" when one product was rated for every user
	UserID string `parquet:"user_id,snappy"`

	// Algorithm is the name of the rating algorithm
	Algorithm string `parquet:"algorithm,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalRated is the number of (user, product) pairs rated in this run
	TotalRated int32 `parquet:"total_rated,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Recommendation is one stored rating.
// This struct maps to the prefscore_recommendations database table.
type Recommendation struct {
	RunID     string `parquet:"run_id,snappy"`
	UserID    string `parquet:"user_id,snappy"`
	ProductID int64  `parquet:"product_id,snappy"`

	// Score is null when the rating carries no information
	Score *float64 `parquet:"score,optional,snappy"`

	RawScore      float64   `parquet:"raw_score,snappy"`
	Contradiction bool      `parquet:"contradiction,snappy"`
	RatedAt       time.Time `parquet:"rated_at,snappy"`
}

// Contribution is one product tag contribution of a stored rating.
// This struct maps to the prefscore_contributions database table.
type Contribution struct {
	RunID        string `parquet:"run_id,snappy"`
	UserID       string `parquet:"user_id,snappy"`
	ProductID    int64  `parquet:"product_id,snappy"`
	ProductTagID int64  `parquet:"product_tag_id,snappy"`

	// PreferenceID is null for the row holding the total over all preferences
	PreferenceID *int64 `parquet:"preference_id,optional,snappy"`

	Value  float64 `parquet:"value,snappy"`
	Vetoed bool    `parquet:"vetoed,snappy"`
}

// RankedRating is one row of a ranking written with --output parquet.
type RankedRating struct {
	Rank          int32    `parquet:"rank,snappy"`
	UserID        string   `parquet:"user_id,snappy"`
	ProductID     int64    `parquet:"product_id,snappy"`
	ProductName   string   `parquet:"product_name,snappy"`
	Score         *float64 `parquet:"score,optional,snappy"`
	RawScore      *float64 `parquet:"raw_score,optional,snappy"`
	Label         string   `parquet:"label,snappy"`
	Contradiction bool     `parquet:"contradiction,snappy"`
}

// writeParquet writes all rows of data to a new Parquet file at outputPath.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRecommendationsParquet writes a slice of Recommendation structs to a Parquet file.
func WriteRecommendationsParquet(data []Recommendation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteContributionsParquet writes a slice of Contribution structs to a Parquet file.
func WriteContributionsParquet(data []Contribution, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRankedRatingsParquet writes a slice of RankedRating structs to a Parquet file.
func WriteRankedRatingsParquet(data []RankedRating, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			UserID:        record.UserID,
			Algorithm:     record.Algorithm,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRated:    record.TotalRated,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertRecommendationRecords converts schema.RecommendationRecord to Recommendation for Parquet export.
func ConvertRecommendationRecords(records []schema.RecommendationRecord) []Recommendation {
	result := make([]Recommendation, len(records))
	for i, record := range records {
		var score *float64
		if record.Defined {
			score = &record.Score
		}
		result[i] = Recommendation{
			RunID:         record.RunID,
			UserID:        record.UserID,
			ProductID:     record.ProductID,
			Score:         score,
			RawScore:      record.RawScore,
			Contradiction: record.Contradiction,
			RatedAt:       record.RatedAt,
		}
	}
	return result
}

// ConvertContributionRows converts schema.ContributionRow to Contribution for Parquet export.
func ConvertContributionRows(rows []schema.ContributionRow) []Contribution {
	result := make([]Contribution, len(rows))
	for i, row := range rows {
		var preferenceID *int64
		if row.PreferenceID != schema.TotalPreferenceID {
			preferenceID = &row.PreferenceID
		}
		result[i] = Contribution{
			RunID:        row.RunID,
			UserID:       row.UserID,
			ProductID:    row.ProductID,
			ProductTagID: row.ProductTagID,
			PreferenceID: preferenceID,
			Value:        row.Value,
			Vetoed:       row.Vetoed,
		}
	}
	return result
}

// ConvertEnrichedRatings converts ranked output rows to RankedRating for Parquet export.
func ConvertEnrichedRatings(ratings []schema.EnrichedRating) []RankedRating {
	result := make([]RankedRating, len(ratings))
	for i, r := range ratings {
		result[i] = RankedRating{
			Rank:          int32(r.Rank),
			UserID:        r.UserID,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Score:         r.Score,
			RawScore:      r.RawScore,
			Label:         r.Label,
			Contradiction: r.Contradiction,
		}
	}
	return result
}
