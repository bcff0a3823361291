package schema

import "math"

// Rating labels.
const (
	ExcellentLabel = "Excellent"
	GoodLabel      = "Good"
	NeutralLabel   = "Neutral"
	PoorLabel      = "Poor"
	VetoedLabel    = "Vetoed"
	UnknownLabel   = "Unknown"
)

// EnrichedRating adds presentation data to a RatingResult.
type EnrichedRating struct {
	Rank          int      `json:"rank"`
	Label         string   `json:"label"`
	UserID        string   `json:"user_id"`
	ProductID     int64    `json:"product_id"`
	ProductName   string   `json:"product_name"`
	Score         *float64 `json:"score"`
	RawScore      *float64 `json:"raw_score"`
	Contradiction bool     `json:"contradiction"`
}

// GetPlainLabel returns a plain text label for a rating relative to the
// configured product midpoint and scale.
func GetPlainLabel(score float64, cfg RatingConfig) string {
	if math.IsNaN(score) {
		return UnknownLabel
	}
	rel := (score - cfg.MeanProductRating) / cfg.RatingScale
	switch {
	case rel >= 0.6:
		return ExcellentLabel
	case rel >= 0.2:
		return GoodLabel
	case rel > -0.2:
		return NeutralLabel
	default:
		return PoorLabel
	}
}

// LabelFor returns the label of a result, marking vetoed ratings explicitly.
func LabelFor(r *RatingResult, cfg RatingConfig) string {
	if r.Contradiction {
		return VetoedLabel
	}
	return GetPlainLabel(r.Rating, cfg)
}

// EnrichRatings adds rank and label to a ranked list of results.
// names maps product ids to display names and may be nil.
func EnrichRatings(results []*RatingResult, cfg RatingConfig, names map[int64]string) []EnrichedRating {
	output := make([]EnrichedRating, len(results))
	for i, r := range results {
		output[i] = EnrichedRating{
			Rank:          i + 1,
			Label:         LabelFor(r, cfg),
			UserID:        r.UserID,
			ProductID:     r.ProductID,
			ProductName:   names[r.ProductID],
			Score:         FiniteOrNil(r.Rating),
			RawScore:      FiniteOrNil(r.RawRating),
			Contradiction: r.Contradiction,
		}
	}
	return output
}

// ExplainedContribution is one named entry of an explanation.
// Share is the value divided by the sum of absolute values of its list.
type ExplainedContribution struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Value  *float64 `json:"value"`
	Share  *float64 `json:"share"`
	Vetoed bool     `json:"vetoed,omitempty"`
}

// PreferenceBreakdown lists the product tags that contributed through one preference.
// Share is relative to the magnitude of the preference's own contribution.
type PreferenceBreakdown struct {
	PreferenceID int64                   `json:"preference_id"`
	Name         string                  `json:"name"`
	ProductTags  []ExplainedContribution `json:"product_tags"`
}

// Explanation is the presentable contribution breakdown of one rating.
type Explanation struct {
	UserID         string                  `json:"user_id"`
	ProductID      int64                   `json:"product_id"`
	ProductName    string                  `json:"product_name"`
	Algorithm      string                  `json:"algorithm"`
	Label          string                  `json:"label"`
	Rating         *float64                `json:"rating"`
	RawRating      *float64                `json:"raw_rating"`
	Contradiction  bool                    `json:"contradiction"`
	NoInformation  bool                    `json:"no_information"`
	Preferences    []ExplainedContribution `json:"preferences"`
	ProductTags    []ExplainedContribution `json:"product_tags"`
	ByPreference   []PreferenceBreakdown   `json:"by_preference"`
	Contradictions []Contradiction         `json:"contradictions,omitempty"`
}

// ScoredPreference is one preference of a user summary.
type ScoredPreference struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Stance Stance  `json:"stance"`
}

// UserSummary describes a user and the stance behind every scored preference.
type UserSummary struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name,omitempty"`
	Preferences         []ScoredPreference `json:"preferences"`
	TotalAbsoluteOffset float64            `json:"total_absolute_offset"`
	HistorySize         int                `json:"history_size"`
}

// Count returns how many preferences of the summary take the given stance.
func (s UserSummary) Count(stance Stance) int {
	n := 0
	for _, p := range s.Preferences {
		if p.Stance == stance {
			n++
		}
	}
	return n
}
