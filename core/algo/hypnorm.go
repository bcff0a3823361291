package algo

import (
	"math"

	"github.com/huangsam/prefscore/schema"
)

// HypNorm rates a product by normalizing, per preference tag, the summed association of the
// product's tags against the strongest positive and negative association reachable for that tag.
// Normalized values are averaged per preference and weighted by the user's offset for it.
type HypNorm struct{}

var _ RatingAlgorithm = HypNorm{} // Compile-time check

// Name implements RatingAlgorithm.
func (HypNorm) Name() string {
	return schema.DefaultAlgorithm
}

// Rate implements RatingAlgorithm.
//
// The rating is NaN when the user has no net preference strength or when no preference
// tag of the user is associated with any tag of the product. A contradiction between a
// maximal preference and a maximally opposing association vetoes the rating to 0.
func (h HypNorm) Rate(user *schema.User, product *schema.Product, index AssociationLookup, cfg schema.RatingConfig) *schema.RatingResult {
	result := &schema.RatingResult{
		UserID:                  user.ID,
		ProductID:               product.ID,
		Algorithm:               h.Name(),
		NoProductTagInformation: true,
		PreferenceContributions: make(map[int64]float64),
		ProductTagContributions: make(map[int64]*schema.ContributionRecord),
	}

	summedOffset := user.TotalAbsoluteOffset(cfg)
	if summedOffset == 0 {
		result.RawRating = math.NaN()
		result.Rating = math.NaN()
		return result
	}

	tags := productTagSet(product)
	contradictionOffset := cfg.ContradictionOffset()
	attr := newAttributor(cfg, summedOffset, result.ProductTagContributions)
	summedAverageAssociation := 0.0

	for _, ps := range user.Preferences() {
		preference := ps.Preference
		offset := ps.Score - cfg.MeanUserPreference
		summedNormalized := 0.0

		for _, tagID := range preference.Tags {
			all := index.FindByPreferenceTag(tagID)
			matching := filterOnProduct(all, tags)
			if len(matching) > 0 {
				result.NoProductTagInformation = false
			}

			summed := 0.0
			vetoed := make([]bool, len(matching))
			for i, a := range matching {
				summed += a.Value
				// Exact comparison: both sides derive from configured constants.
				if offset*a.Value == contradictionOffset {
					vetoed[i] = true
					result.Contradiction = true
					result.Contradictions = append(result.Contradictions, schema.Contradiction{
						PreferenceID:    preference.ID,
						PreferenceTagID: tagID,
						ProductTagID:    a.ProductTagID,
						Value:           a.Value,
					})
				}
			}

			aggregated := clip(summed, cfg.MaxAllowedAssociation)
			maxRef, minRef := referenceScale(all, cfg.MaxAllowedAssociation)
			summedNormalized += normalize(aggregated, maxRef, minRef)

			ref := minRef
			if summed > 0 {
				ref = maxRef
			}
			for i, a := range matching {
				attr.contribute(preference, a, summed, offset, ref, vetoed[i])
			}
		}

		// Sustainability index of the product for this preference.
		average := summedNormalized / float64(len(preference.Tags))
		contribution := 0.0
		if isFinite(average) {
			contribution = average * offset
		}

		if _, seen := result.PreferenceContributions[preference.ID]; !seen {
			result.PreferenceOrder = append(result.PreferenceOrder, preference.ID)
		}
		result.PreferenceContributions[preference.ID] += cfg.RatingScale * contribution / summedOffset
		summedAverageAssociation += contribution
	}

	switch {
	case result.NoProductTagInformation:
		result.RawRating = math.NaN()
	case result.Contradiction:
		result.RawRating = math.Inf(-1)
	default:
		result.RawRating = summedAverageAssociation / summedOffset
	}

	result.Rating = cfg.MeanProductRating + cfg.RatingScale*result.RawRating
	if math.IsInf(result.Rating, -1) {
		result.Rating = 0
	}
	return result
}

// referenceScale sums positive and non-positive association values separately, clips both
// and returns their magnitudes. These are the best and worst aggregates reachable for a tag.
func referenceScale(assocs []schema.Association, bound float64) (maxRef, minRef float64) {
	for _, a := range assocs {
		if a.Value > 0 {
			maxRef += a.Value
		} else {
			minRef += a.Value
		}
	}
	return math.Abs(clip(maxRef, bound)), math.Abs(clip(minRef, bound))
}

// normalize maps an aggregated association onto [-1, 1] relative to the reference scale.
// A zero reference yields a non-finite value which the caller drops.
func normalize(aggregated, maxRef, minRef float64) float64 {
	switch {
	case aggregated > 0:
		return aggregated / maxRef
	case aggregated < 0:
		return aggregated / minRef
	default:
		return 0
	}
}

// clip clamps x to [-bound, bound].
func clip(x, bound float64) float64 {
	return math.Max(-bound, math.Min(bound, x))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
