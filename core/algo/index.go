// Package algo holds the association index and the rating algorithms built on it.
package algo

import "github.com/huangsam/prefscore/schema"

// AssociationLookup is the read-only view of an association table that rating algorithms need.
type AssociationLookup interface {
	FindByPreferenceTag(preferenceTagID int64) []schema.Association
}

// AssociationIndex stores associations in a flat arena with a key lookup
// and a per-preference-tag slot list. It must not be mutated while ratings run.
type AssociationIndex struct {
	arena           []schema.Association
	slots           map[schema.AssociationKey]int
	byPreferenceTag map[int64][]int
}

var _ AssociationLookup = &AssociationIndex{} // Compile-time check

// NewAssociationIndex creates an index holding the given associations.
func NewAssociationIndex(assocs ...schema.Association) *AssociationIndex {
	idx := &AssociationIndex{
		slots:           make(map[schema.AssociationKey]int),
		byPreferenceTag: make(map[int64][]int),
	}
	for _, a := range assocs {
		idx.Add(a)
	}
	return idx
}

// Add inserts an association or replaces the value of an existing one with the same tag pair.
// A replaced association keeps its original position.
func (idx *AssociationIndex) Add(a schema.Association) {
	key := a.Key()
	if slot, ok := idx.slots[key]; ok {
		idx.arena[slot] = a
		return
	}
	slot := len(idx.arena)
	idx.arena = append(idx.arena, a)
	idx.slots[key] = slot
	idx.byPreferenceTag[a.PreferenceTagID] = append(idx.byPreferenceTag[a.PreferenceTagID], slot)
}

// FindByPreferenceTag returns every association of a preference tag in insertion order.
func (idx *AssociationIndex) FindByPreferenceTag(preferenceTagID int64) []schema.Association {
	slots := idx.byPreferenceTag[preferenceTagID]
	out := make([]schema.Association, 0, len(slots))
	for _, slot := range slots {
		out = append(out, idx.arena[slot])
	}
	return out
}

// FindMatching returns the associations of a preference tag whose product tag is on the product.
func (idx *AssociationIndex) FindMatching(product *schema.Product, preferenceTagID int64) []schema.Association {
	return filterOnProduct(idx.FindByPreferenceTag(preferenceTagID), productTagSet(product))
}

// FindByPreference returns the associations of all tags of a preference.
func (idx *AssociationIndex) FindByPreference(preference *schema.Preference) []schema.Association {
	var out []schema.Association
	for _, tagID := range preference.Tags {
		out = append(out, idx.FindByPreferenceTag(tagID)...)
	}
	return out
}

// FindAll returns every association between a tag of the preference and a tag of the product.
func (idx *AssociationIndex) FindAll(preference *schema.Preference, product *schema.Product) []schema.Association {
	var out []schema.Association
	for _, prefTagID := range preference.Tags {
		for _, prodTagID := range product.Tags {
			if a, ok := idx.Get(prefTagID, prodTagID); ok {
				out = append(out, a)
			}
		}
	}
	return out
}

// FindAllForProductTag returns the associations between the preference's tags and one product tag.
func (idx *AssociationIndex) FindAllForProductTag(preference *schema.Preference, productTagID int64) []schema.Association {
	var out []schema.Association
	for _, prefTagID := range preference.Tags {
		if a, ok := idx.Get(prefTagID, productTagID); ok {
			out = append(out, a)
		}
	}
	return out
}

// Get returns the association for a tag pair.
func (idx *AssociationIndex) Get(preferenceTagID, productTagID int64) (schema.Association, bool) {
	slot, ok := idx.slots[schema.AssociationKey{PreferenceTagID: preferenceTagID, ProductTagID: productTagID}]
	if !ok {
		return schema.Association{}, false
	}
	return idx.arena[slot], true
}

// Contains reports whether an association exists for the tag pair.
func (idx *AssociationIndex) Contains(preferenceTagID, productTagID int64) bool {
	_, ok := idx.Get(preferenceTagID, productTagID)
	return ok
}

// Score returns the association value for the tag pair, or 0 when there is none.
func (idx *AssociationIndex) Score(preferenceTagID, productTagID int64) float64 {
	a, _ := idx.Get(preferenceTagID, productTagID)
	return a.Value
}

// Len returns the number of associations.
func (idx *AssociationIndex) Len() int {
	return len(idx.arena)
}

// Associations returns a copy of all associations in insertion order.
func (idx *AssociationIndex) Associations() []schema.Association {
	out := make([]schema.Association, len(idx.arena))
	copy(out, idx.arena)
	return out
}

// productTagSet builds a membership set of a product's tags.
func productTagSet(product *schema.Product) map[int64]struct{} {
	set := make(map[int64]struct{}, len(product.Tags))
	for _, id := range product.Tags {
		set[id] = struct{}{}
	}
	return set
}

// filterOnProduct keeps the associations whose product tag is in the set, preserving order.
func filterOnProduct(assocs []schema.Association, tags map[int64]struct{}) []schema.Association {
	var out []schema.Association
	for _, a := range assocs {
		if _, ok := tags[a.ProductTagID]; ok {
			out = append(out, a)
		}
	}
	return out
}
