package algo

import (
	"cmp"
	"math"
	"slices"

	"github.com/huangsam/prefscore/schema"
)

// SortByMagnitude orders contributions by descending absolute value with ascending id as tiebreak.
func SortByMagnitude(list []schema.Contribution) {
	slices.SortFunc(list, func(a, b schema.Contribution) int {
		if c := cmp.Compare(math.Abs(b.Value), math.Abs(a.Value)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Percentages divides every value by the sum of absolute values of the list and
// returns a new, sorted list. All values are NaN when the absolute sum is zero.
func Percentages(list []schema.Contribution) []schema.Contribution {
	absSum := 0.0
	for _, c := range list {
		absSum += math.Abs(c.Value)
	}
	out := make([]schema.Contribution, len(list))
	for i, c := range list {
		value := math.NaN()
		if absSum != 0 {
			value = c.Value / absSum
		}
		out[i] = schema.Contribution{ID: c.ID, Value: value}
	}
	SortByMagnitude(out)
	return out
}

// PreferenceContributions returns the contribution of every preference, sorted by magnitude.
func PreferenceContributions(r *schema.RatingResult) []schema.Contribution {
	out := make([]schema.Contribution, 0, len(r.PreferenceContributions))
	for _, id := range r.PreferenceOrder {
		out = append(out, schema.Contribution{ID: id, Value: r.PreferenceContributions[id]})
	}
	SortByMagnitude(out)
	return out
}

// ProductTagContributions returns the total contribution of every product tag, sorted by magnitude.
func ProductTagContributions(r *schema.RatingResult) []schema.Contribution {
	out := make([]schema.Contribution, 0, len(r.ProductTagContributions))
	for id, rec := range r.ProductTagContributions {
		out = append(out, schema.Contribution{ID: id, Value: rec.Total})
	}
	SortByMagnitude(out)
	return out
}

// ProductTagContributionsByPreference groups product tag contributions by the preference
// they were made through. Each list is sorted by magnitude.
func ProductTagContributionsByPreference(r *schema.RatingResult) map[int64][]schema.Contribution {
	return groupByPreference(r, func(_ int64, value float64) float64 { return value })
}

// ProductTagPercentagesByPreference is like ProductTagContributionsByPreference but divides each
// value by the magnitude of the preference's own contribution.
func ProductTagPercentagesByPreference(r *schema.RatingResult) map[int64][]schema.Contribution {
	return groupByPreference(r, func(prefID int64, value float64) float64 {
		return value / math.Abs(r.PreferenceContributions[prefID])
	})
}

func groupByPreference(r *schema.RatingResult, transform func(prefID int64, value float64) float64) map[int64][]schema.Contribution {
	out := make(map[int64][]schema.Contribution)
	for tagID, rec := range r.ProductTagContributions {
		for prefID, value := range rec.PerPreference {
			out[prefID] = append(out[prefID], schema.Contribution{ID: tagID, Value: transform(prefID, value)})
		}
	}
	for _, list := range out {
		SortByMagnitude(list)
	}
	return out
}

// PreferenceContributionsForTag returns what each preference contributed through one
// product tag, sorted by magnitude.
func PreferenceContributionsForTag(rec *schema.ContributionRecord) []schema.Contribution {
	out := make([]schema.Contribution, 0, len(rec.PerPreference))
	for prefID, value := range rec.PerPreference {
		out = append(out, schema.Contribution{ID: prefID, Value: value})
	}
	SortByMagnitude(out)
	return out
}
