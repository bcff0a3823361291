package core

import (
	"math"

	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/schema"
)

// BuildExplanation turns a rating result into a named, sorted contribution breakdown.
func BuildExplanation(r *schema.RatingResult, cat *catalog.Catalog, cfg schema.RatingConfig) schema.Explanation {
	ex := schema.Explanation{
		UserID:         r.UserID,
		ProductID:      r.ProductID,
		Algorithm:      r.Algorithm,
		Label:          schema.LabelFor(r, cfg),
		Rating:         schema.FiniteOrNil(r.Rating),
		RawRating:      schema.FiniteOrNil(r.RawRating),
		Contradiction:  r.Contradiction,
		NoInformation:  r.NoProductTagInformation,
		Contradictions: r.Contradictions,
	}
	if p, ok := cat.Products[r.ProductID]; ok {
		ex.ProductName = p.Name
	}

	prefs := algo.PreferenceContributions(r)
	ex.Preferences = explain(prefs, algo.Percentages(prefs), cat.PreferenceName)

	tags := algo.ProductTagContributions(r)
	ex.ProductTags = explain(tags, algo.Percentages(tags), cat.ProductTagName)

	byPref := algo.ProductTagContributionsByPreference(r)
	shares := algo.ProductTagPercentagesByPreference(r)
	for _, prefID := range r.PreferenceOrder {
		list, ok := byPref[prefID]
		if !ok {
			continue
		}
		ex.ByPreference = append(ex.ByPreference, schema.PreferenceBreakdown{
			PreferenceID: prefID,
			Name:         cat.PreferenceName(prefID),
			ProductTags:  explain(list, shares[prefID], cat.ProductTagName),
		})
	}
	return ex
}

// explain names each contribution and attaches its share. Both lists are sorted the same way.
func explain(values, shares []schema.Contribution, name func(int64) string) []schema.ExplainedContribution {
	shareOf := make(map[int64]float64, len(shares))
	for _, s := range shares {
		shareOf[s.ID] = s.Value
	}
	out := make([]schema.ExplainedContribution, 0, len(values))
	for _, c := range values {
		out = append(out, schema.ExplainedContribution{
			ID:     c.ID,
			Name:   name(c.ID),
			Value:  schema.FiniteOrNil(c.Value),
			Share:  schema.FiniteOrNil(shareOf[c.ID]),
			Vetoed: math.IsInf(c.Value, -1),
		})
	}
	return out
}

// BuildUserSummaries describes every user with the stance of each scored preference.
func BuildUserSummaries(users []*schema.User, cfg schema.RatingConfig) []schema.UserSummary {
	out := make([]schema.UserSummary, 0, len(users))
	for _, u := range users {
		s := schema.UserSummary{
			ID:                  u.ID,
			Name:                u.Name,
			TotalAbsoluteOffset: u.TotalAbsoluteOffset(cfg),
			HistorySize:         len(u.History()),
		}
		for _, ps := range u.Preferences() {
			s.Preferences = append(s.Preferences, schema.ScoredPreference{
				ID:     ps.Preference.ID,
				Name:   ps.Preference.Name,
				Score:  ps.Score,
				Stance: schema.StanceOf(ps.Score, cfg),
			})
		}
		out = append(out, s)
	}
	return out
}
