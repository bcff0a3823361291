package schema

import "math"

// Default values for the rating configuration.
const (
	DefaultMeanUserPreference    = 5.0
	DefaultMaxAllowedAssociation = 1.0
	DefaultMeanProductRating     = 5.0
	DefaultRatingScale           = 5.0
)

// RatingConfig holds the constants that control scale and midpoints of a rating.
// It is passed by value into every rating so concurrent ratings never share it.
type RatingConfig struct {
	MeanUserPreference    float64 `json:"mean_user_preference" validate:"gte=0"`
	MaxAllowedAssociation float64 `json:"max_allowed_association" validate:"gt=0"`
	MeanProductRating     float64 `json:"mean_product_rating" validate:"gte=0"`
	RatingScale           float64 `json:"rating_scale" validate:"gt=0"`
}

// DefaultRatingConfig returns the stock configuration.
func DefaultRatingConfig() RatingConfig {
	return RatingConfig{
		MeanUserPreference:    DefaultMeanUserPreference,
		MaxAllowedAssociation: DefaultMaxAllowedAssociation,
		MeanProductRating:     DefaultMeanProductRating,
		RatingScale:           DefaultRatingScale,
	}
}

// MaxUserPreference is the highest score a user can give a preference.
func (c RatingConfig) MaxUserPreference() float64 {
	return 2 * c.MeanUserPreference
}

// ContradictionOffset is the product of a maximal offset and a maximal opposing
// association. An offset times association equal to this value vetoes a rating.
func (c RatingConfig) ContradictionOffset() float64 {
	return -math.Abs(c.MeanUserPreference) * math.Abs(c.MaxAllowedAssociation)
}
