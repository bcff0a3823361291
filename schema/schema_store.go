package schema

import "time"

// RunRecord represents a row from the prefscore_runs table.
type RunRecord struct {
	RunID         string
	UserID        string
	Algorithm     string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRated    int32
	ConfigParams  *string
}

// RecommendationRecord represents a row from the prefscore_recommendations table.
// Undefined ratings are stored with Defined=false since SQL backends reject NaN.
type RecommendationRecord struct {
	RunID         string
	UserID        string
	ProductID     int64
	Score         float64
	RawScore      float64
	Defined       bool
	Contradiction bool
	RatedAt       time.Time
}

// TotalPreferenceID marks the contribution row that holds the total over all preferences.
const TotalPreferenceID int64 = -1

// ContributionRow represents a row from the prefscore_contributions table.
// Vetoed rows carry a zero value since SQL backends reject infinities.
type ContributionRow struct {
	RunID        string
	UserID       string
	ProductID    int64
	ProductTagID int64
	PreferenceID int64
	Value        float64
	Vetoed       bool
}
