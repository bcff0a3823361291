package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTagsRejectsWrongKind(t *testing.T) {
	t.Run("preference", func(t *testing.T) {
		p := NewPreference(1, "vegan")
		err := p.AddTags(NewPreferenceTag(1, "a"), NewProductTag(2, "b"))
		assert.ErrorIs(t, err, ErrInvalidTagKind)
		assert.Empty(t, p.Tags)
	})

	t.Run("product", func(t *testing.T) {
		p := NewProduct(1, "milk")
		err := p.AddTags(NewPreferenceTag(1, "a"))
		assert.ErrorIs(t, err, ErrInvalidTagKind)
		assert.Empty(t, p.Tags)
	})
}

func TestAddTagsDeduplicates(t *testing.T) {
	p := NewPreference(1, "vegan")
	a, b := NewPreferenceTag(1, "a"), NewPreferenceTag(2, "b")
	require.NoError(t, p.AddTags(a, b, a))
	require.NoError(t, p.AddTags(b))
	assert.Equal(t, []int64{1, 2}, p.Tags)
	assert.True(t, p.HasTag(2))
	assert.False(t, p.HasTag(3))

	prod := NewProduct(1, "milk")
	z := NewProductTag(1, "z")
	require.NoError(t, prod.AddTags(z, z))
	assert.Equal(t, []int64{1}, prod.Tags)
}

func TestNewAssociation(t *testing.T) {
	prodTag, prefTag := NewProductTag(3, "z3"), NewPreferenceTag(1, "w1")

	a, err := NewAssociation(prodTag, prefTag, -0.4)
	require.NoError(t, err)
	assert.Equal(t, AssociationKey{PreferenceTagID: 1, ProductTagID: 3}, a.Key())

	_, err = NewAssociation(prefTag, prodTag, 0.4)
	assert.ErrorIs(t, err, ErrInvalidTagKind)
}

func TestUserOffsets(t *testing.T) {
	cfg := DefaultRatingConfig()
	c1, c2 := NewPreference(1, "c1"), NewPreference(2, "c2")

	u := NewUser("Thomas")
	u.SetPreference(c1, 10)
	u.SetPreference(c2, 3)

	assert.Equal(t, 5.0, u.Offset(1, cfg))
	assert.Equal(t, -2.0, u.Offset(2, cfg))
	assert.Equal(t, 2.0, u.AbsoluteOffset(2, cfg))
	assert.Equal(t, 0.0, u.Offset(99, cfg))
	assert.Equal(t, 7.0, u.TotalAbsoluteOffset(cfg))

	u.SetPreference(c1, 4)
	prefs := u.Preferences()
	require.Len(t, prefs, 2)
	assert.Equal(t, int64(1), prefs[0].Preference.ID, "re-scoring keeps position")
	assert.Equal(t, 4.0, prefs[0].Score)
}

func TestUserHistory(t *testing.T) {
	u := NewUser("u")
	u.AddToHistory(7, 2)
	u.AddToHistory(7, 1)
	h := u.History()
	assert.Equal(t, map[int64]float64{7: 3}, h)

	h[7] = 100
	assert.Equal(t, 3.0, u.History()[7])
}

func TestPreferencesString(t *testing.T) {
	cfg := DefaultRatingConfig()
	u := NewUser("Thomas")
	u.SetPreference(NewPreference(1, "c1"), 10)
	u.SetPreference(NewPreference(2, "c2"), 3)
	u.SetPreference(NewPreference(3, "c3"), 5)

	want := "User: Thomas\n" +
		"c1\t::\t10\tpro\n" +
		"c2\t::\t3\tagainst\n" +
		"c3\t::\t5\tneutral\n" +
		"-----\n"
	assert.Equal(t, want, u.PreferencesString(cfg))
}

func TestRatingConfig(t *testing.T) {
	cfg := DefaultRatingConfig()
	assert.Equal(t, 10.0, cfg.MaxUserPreference())
	assert.Equal(t, -5.0, cfg.ContradictionOffset())
}

func TestGetPlainLabel(t *testing.T) {
	cfg := DefaultRatingConfig()
	tests := []struct {
		score float64
		want  string
	}{
		{math.NaN(), UnknownLabel},
		{9.5, ExcellentLabel},
		{8, ExcellentLabel},
		{6.5, GoodLabel},
		{5, NeutralLabel},
		{4.1, NeutralLabel},
		{4, PoorLabel},
		{0, PoorLabel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPlainLabel(tt.score, cfg), "score %v", tt.score)
	}

	vetoed := &RatingResult{Rating: 0, Contradiction: true}
	assert.Equal(t, VetoedLabel, LabelFor(vetoed, cfg))
}

func TestEnrichRatings(t *testing.T) {
	results := []*RatingResult{
		{UserID: "u", ProductID: 3, Rating: math.NaN(), RawRating: math.NaN()},
		{UserID: "u", ProductID: 1, Rating: 9.3, RawRating: 0.86},
	}
	out := EnrichRatings(results, DefaultRatingConfig(), map[int64]string{1: "Meat"})
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Rank)
	assert.Nil(t, out[0].Score)
	assert.Equal(t, UnknownLabel, out[0].Label)
	assert.Equal(t, "Meat", out[1].ProductName)
	require.NotNil(t, out[1].Score)
	assert.Equal(t, 9.3, *out[1].Score)
}

func TestRecommendationJSON(t *testing.T) {
	data, err := json.Marshal(Recommendation{UserID: "u", ProductID: 2, Score: math.NaN()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u","product_id":2,"score":null}`, string(data))

	data, err = json.Marshal(Recommendation{UserID: "u", ProductID: 2, Score: 7.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u","product_id":2,"score":7.5}`, string(data))

	assert.False(t, Recommendation{Score: math.NaN()}.Defined())
	assert.True(t, Recommendation{Score: 0}.Defined())
}

func TestContributionRecord(t *testing.T) {
	rec := NewContributionRecord(4)
	rec.Add(1, 0.5)
	rec.Add(2, -0.25)
	rec.Add(1, 0.25)
	assert.Equal(t, 0.5, rec.Total)
	assert.Equal(t, map[int64]float64{1: 0.75, 2: -0.25}, rec.PerPreference)
}
