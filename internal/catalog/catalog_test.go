package catalog

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Len(t, c.PreferenceTags, 4)
	assert.Len(t, c.ProductTags, 11)
	assert.Len(t, c.Preferences, 3)
	assert.Equal(t, 17, c.Index.Len())
	assert.Equal(t, int64(1), c.Preferences[1].CategoryID)

	u, err := c.User("Thomas")
	require.NoError(t, err)
	assert.Equal(t, 9.0, u.TotalAbsoluteOffset(schema.DefaultRatingConfig()))
	assert.Equal(t, map[int64]float64{2: 3}, u.History())

	p1, err := c.Product(1)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p1.Brand)
	assert.Len(t, p1.Categories, 2)

	ids := make([]int64, 0)
	for _, p := range c.ProductsInOrder() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	assert.Equal(t, []string{"Thomas", "neutral"}, []string{c.UsersInOrder()[0].ID, c.UsersInOrder()[1].ID})
}

func TestLoadYAMLRatings(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)
	u, err := c.User("Thomas")
	require.NoError(t, err)

	want := map[int64]float64{1: 5.694444, 2: 5.949074, 3: 0, 4: 5.138889}
	for id, rating := range want {
		r := algo.HypNorm{}.Rate(u, c.Products[id], c.Index, schema.DefaultRatingConfig())
		assert.InDelta(t, rating, r.Rating, 1e-5, "product %d", id)
	}
	r := algo.HypNorm{}.Rate(u, c.Products[5], c.Index, schema.DefaultRatingConfig())
	assert.True(t, math.IsNaN(r.Rating))
}

func TestLoadDir(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "ranking"))
	require.NoError(t, err)

	assert.Len(t, c.Products, 4)
	assert.Equal(t, 4, c.Index.Len())
	assert.Equal(t, []int64{1, 2}, c.Preferences[5].Tags)
	assert.Empty(t, c.Products[3].Tags)
	assert.Equal(t, "7610000000000", c.Products[0].EAN)

	u, err := c.User("ranker")
	require.NoError(t, err)
	assert.Len(t, u.Preferences(), 3)
	assert.Equal(t, map[int64]float64{1: 2}, u.History())

	results := make([]*schema.RatingResult, 0, len(c.Products))
	for _, p := range c.ProductsInOrder() {
		results = append(results, algo.HypNorm{}.Rate(u, p, c.Index, schema.DefaultRatingConfig()))
	}
	ranked := algo.RankResults(results, 0)
	got := make([]int64, len(ranked))
	for i, r := range ranked {
		got[i] = r.ProductID
	}
	assert.Equal(t, []int64{3, 1, 2, 0}, got)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	content := `{
		"preference_tags": [{"id": 1, "name": "organic"}],
		"product_tags": [{"id": 1, "name": "bio"}],
		"preferences": [{"id": 1, "name": "organic food", "tags": [1]}],
		"products": [{"id": 9, "name": "Bio milk", "tags": [1]}],
		"associations": [{"preference_tag": 1, "product_tag": 1, "value": 0.9}],
		"users": [{"id": "anna", "preferences": [{"preference": 1, "score": 8}]}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	u, err := c.User("anna")
	require.NoError(t, err)
	r := algo.HypNorm{}.Rate(u, c.Products[9], c.Index, schema.DefaultRatingConfig())
	assert.InDelta(t, 10.0, r.Rating, 1e-9)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.xml")
		require.NoError(t, os.WriteFile(path, []byte("<x/>"), 0o644))
		_, err := Load(path)
		assert.ErrorContains(t, err, "unsupported catalog format")
	})

	t.Run("missing directory file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestBuildErrors(t *testing.T) {
	base := func() *Document {
		return &Document{
			PreferenceTags: []TagDoc{{ID: 1, Name: "w1"}},
			ProductTags:    []TagDoc{{ID: 2, Name: "z2"}},
			Preferences:    []PreferenceDoc{{ID: 1, Name: "c1", Tags: []int64{1}}},
			Products:       []ProductDoc{{ID: 1, Name: "p1", Tags: []int64{2}}},
			Associations:   []AssociationDoc{{PreferenceTag: 1, ProductTag: 2, Value: 0.5}},
			Users:          []UserDoc{{ID: "u", Preferences: []UserPreferenceDoc{{Preference: 1, Score: 7}}}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Document)
		errIs  error
		errMsg string
	}{
		{name: "duplicate preference tag", mutate: func(d *Document) {
			d.PreferenceTags = append(d.PreferenceTags, TagDoc{ID: 1, Name: "again"})
		}, errMsg: "duplicates"},
		{name: "duplicate user", mutate: func(d *Document) {
			d.Users = append(d.Users, UserDoc{ID: "u"})
		}, errMsg: "duplicates"},
		{name: "preference without tags", mutate: func(d *Document) { d.Preferences[0].Tags = nil }, errMsg: "Tags"},
		{name: "tag without name", mutate: func(d *Document) { d.ProductTags[0].Name = "" }, errMsg: "required"},
		{name: "negative score", mutate: func(d *Document) { d.Users[0].Preferences[0].Score = -1 }, errMsg: "Score"},
		{name: "unknown preference tag", mutate: func(d *Document) { d.Preferences[0].Tags = []int64{9} }, errMsg: "unknown preference tag 9"},
		{name: "product tag on preference", mutate: func(d *Document) { d.Preferences[0].Tags = []int64{2} }, errIs: schema.ErrInvalidTagKind},
		{name: "unknown product tag", mutate: func(d *Document) { d.Products[0].Tags = []int64{1} }, errMsg: "unknown product tag 1"},
		{name: "association with swapped tags", mutate: func(d *Document) {
			d.Associations[0] = AssociationDoc{PreferenceTag: 2, ProductTag: 1}
		}, errIs: schema.ErrInvalidTagKind},
		{name: "unknown user preference", mutate: func(d *Document) { d.Users[0].Preferences[0].Preference = 3 }, errMsg: "unknown preference 3"},
		{name: "unknown history product", mutate: func(d *Document) {
			d.Users[0].History = []PurchaseDoc{{Product: 5, Quantity: 1}}
		}, errIs: ErrUnknownProduct},
		{name: "unknown category", mutate: func(d *Document) {
			cat := int64(4)
			d.Preferences[0].Category = &cat
		}, errMsg: "unknown category 4"},
	}

	_, err := Build(base())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.mutate(doc)
			_, err := Build(doc)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLookupErrors(t *testing.T) {
	c, err := Build(&Document{})
	require.NoError(t, err)

	_, err = c.User("ghost")
	assert.ErrorIs(t, err, ErrUnknownUser)
	_, err = c.Product(1)
	assert.ErrorIs(t, err, ErrUnknownProduct)
	assert.Equal(t, "#3", c.PreferenceName(3))
	assert.Equal(t, "#4", c.ProductTagName(4))
}

func TestReadDelimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.txt")
	content := "# header\n1; a ;x|y\n\n2;b\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := ReadDelimited(path, ';')
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "a", "x|y"}, {"2", "b"}}, rows)
}

func TestReadDirRowErrors(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		PreferenceTagsFile:  "1,w1\n",
		ProductTagsFile:     "x,z1\n",
		PreferencesFile:     "1,c1,1\n",
		ProductsFile:        "1,p1,\n",
		AssociationsFile:    "1,1\n",
		UserPreferencesFile: "u,1,5\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	_, err := ReadDir(dir, DefaultSeparator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ProductTagsFile)
	assert.Contains(t, err.Error(), AssociationsFile)
}
