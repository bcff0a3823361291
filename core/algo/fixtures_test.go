package algo

import (
	"fmt"
	"testing"

	"github.com/huangsam/prefscore/schema"
	"github.com/stretchr/testify/require"
)

// manualSetting is the four-tag, three-preference setting with a 17-entry association table.
type manualSetting struct {
	user     *schema.User
	prefs    map[string]*schema.Preference
	products map[string]*schema.Product
	index    *AssociationIndex
}

func newManualSetting(t testing.TB) *manualSetting {
	t.Helper()

	w1 := schema.NewPreferenceTag(1, "w1")
	w2 := schema.NewPreferenceTag(2, "w2")
	w3 := schema.NewPreferenceTag(3, "w3")
	w4 := schema.NewPreferenceTag(4, "w4")

	c1 := schema.NewPreference(1, "c1")
	c2 := schema.NewPreference(2, "c2")
	c3 := schema.NewPreference(3, "c3")
	require.NoError(t, c1.AddTags(w1, w2))
	require.NoError(t, c2.AddTags(w3, w4))
	require.NoError(t, c3.AddTags(w2, w4))

	user := schema.NewUser("Thomas")
	user.SetPreference(c1, 10)
	user.SetPreference(c2, 3)
	user.SetPreference(c3, 7)

	z := make(map[int64]schema.Tag)
	for _, id := range []int64{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 65} {
		z[id] = schema.NewProductTag(id, fmt.Sprintf("z%d", id))
	}

	product := func(id int64, name string, tags ...int64) *schema.Product {
		p := schema.NewProduct(id, name)
		for _, tagID := range tags {
			require.NoError(t, p.AddTags(z[tagID]))
		}
		return p
	}

	idx := NewAssociationIndex()
	add := func(prodTag int64, prefTag schema.Tag, value float64) {
		a, err := schema.NewAssociation(z[prodTag], prefTag, value)
		require.NoError(t, err)
		idx.Add(a)
	}
	add(7, w1, -1.0)
	add(8, w1, 0.3)
	add(1, w1, 0.4)
	add(4, w1, 0.2)
	add(5, w1, 0.3)
	add(10, w1, -0.2)

	add(2, w2, -0.3)
	add(3, w2, 0.3)
	add(6, w2, -0.2)
	add(11, w2, 0.3)

	add(3, w3, -0.2)
	add(5, w3, 0.3)
	add(7, w3, 0.5)
	add(10, w3, -0.6)

	add(1, w4, 1.0)
	add(5, w4, 0.3)
	add(6, w4, -0.2)

	return &manualSetting{
		user:  user,
		prefs: map[string]*schema.Preference{"c1": c1, "c2": c2, "c3": c3},
		products: map[string]*schema.Product{
			"p1": product(1, "Normal Product", 1, 2, 3),
			"p2": product(2, "Most Preferred Product", 3, 4, 5, 6),
			"p3": product(3, "Fair Joghurt", 7, 8),
			"p4": product(4, "Mixed Product", 2, 10, 11),
			"p5": product(5, "Unrelated tag product", 65),
		},
		index: idx,
	}
}
