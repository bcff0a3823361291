package schema

import (
	"encoding/json"
	"math"
)

// Recommendation is the output triple of one rating.
type Recommendation struct {
	UserID    string  `json:"user_id"`
	ProductID int64   `json:"product_id"`
	Score     float64 `json:"score"`
}

// Defined reports whether the score carries information. NaN means insufficient information.
func (r Recommendation) Defined() bool {
	return !math.IsNaN(r.Score)
}

// MarshalJSON renders undefined scores as null since JSON has no NaN.
func (r Recommendation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID    string   `json:"user_id"`
		ProductID int64    `json:"product_id"`
		Score     *float64 `json:"score"`
	}{r.UserID, r.ProductID, FiniteOrNil(r.Score)})
}

// ContributionRecord explains how much of a rating one product tag is responsible for,
// overall and per preference.
type ContributionRecord struct {
	ProductTagID  int64
	Total         float64
	PerPreference map[int64]float64
}

// NewContributionRecord creates an empty record for a product tag.
func NewContributionRecord(productTagID int64) *ContributionRecord {
	return &ContributionRecord{ProductTagID: productTagID, PerPreference: make(map[int64]float64)}
}

// Add accumulates a contribution made through the given preference.
func (c *ContributionRecord) Add(preferenceID int64, value float64) {
	c.Total += value
	c.PerPreference[preferenceID] += value
}

// RatingResult is the full outcome of rating one product for one user.
// It is populated by a single rating call and not modified afterwards.
type RatingResult struct {
	UserID                  string
	ProductID               int64
	Algorithm               string
	Rating                  float64
	RawRating               float64
	NoProductTagInformation bool
	Contradiction           bool

	// PreferenceContributions is expressed in final rating units, keyed by preference id.
	PreferenceContributions map[int64]float64

	// PreferenceOrder lists preference ids in the order the user scored them.
	PreferenceOrder []int64

	// ProductTagContributions is keyed by product tag id.
	ProductTagContributions map[int64]*ContributionRecord

	Contradictions []Contradiction
}

// Recommendation returns the (user, product, score) triple for the result.
func (r *RatingResult) Recommendation() Recommendation {
	return Recommendation{UserID: r.UserID, ProductID: r.ProductID, Score: r.Rating}
}

// Contribution is one entry of a sorted contribution view.
type Contribution struct {
	ID    int64   `json:"id"`
	Value float64 `json:"value"`
}

// FiniteOrNil returns nil for NaN and infinities so values can be encoded as JSON.
func FiniteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
