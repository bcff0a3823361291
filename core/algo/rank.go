package algo

import (
	"math"
	"sort"

	"github.com/huangsam/prefscore/schema"
)

// RankResults orders results with undefined ratings first, then by descending rating,
// and returns the top 'limit' results. Equal ratings are ordered by product id.
func RankResults(results []*schema.RatingResult, limit int) []*schema.RatingResult {
	sort.SliceStable(results, func(i, j int) bool {
		return rankedBefore(results[i].Rating, results[j].Rating, results[i].ProductID, results[j].ProductID)
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// RankRecommendations applies the ordering of RankResults to plain recommendations.
func RankRecommendations(recs []schema.Recommendation, limit int) []schema.Recommendation {
	sort.SliceStable(recs, func(i, j int) bool {
		return rankedBefore(recs[i].Score, recs[j].Score, recs[i].ProductID, recs[j].ProductID)
	})
	if limit > 0 && len(recs) > limit {
		return recs[:limit]
	}
	return recs
}

func rankedBefore(a, b float64, idA, idB int64) bool {
	nanA, nanB := math.IsNaN(a), math.IsNaN(b)
	switch {
	case nanA && nanB:
		return idA < idB
	case nanA:
		return true
	case nanB:
		return false
	case a != b:
		return a > b
	default:
		return idA < idB
	}
}
