// Package schema has configs, models and constants for all parts of prefscore.
package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidTagKind is returned when a tag of the wrong kind is attached to a
// preference or a product.
var ErrInvalidTagKind = errors.New("invalid tag kind")

// TagKind distinguishes the two tag namespaces.
type TagKind string

// All tag kinds supported.
const (
	PreferenceTagKind TagKind = "preference"
	ProductTagKind    TagKind = "product"
)

// Tag is an identified, named label. Ids are unique within a kind only.
type Tag struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Kind       TagKind `json:"kind"`
	VersionIn  int     `json:"version_in,omitempty"`
	VersionOut int     `json:"version_out,omitempty"`
}

// NewPreferenceTag creates a tag that can be attached to preferences.
func NewPreferenceTag(id int64, name string) Tag {
	return Tag{ID: id, Name: name, Kind: PreferenceTagKind}
}

// NewProductTag creates a tag that can be attached to products.
func NewProductTag(id int64, name string) Tag {
	return Tag{ID: id, Name: name, Kind: ProductTagKind}
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	return fmt.Sprintf("%s(%d)", t.Name, t.ID)
}

// AssociationKey identifies an association by its tag pair.
type AssociationKey struct {
	PreferenceTagID int64
	ProductTagID    int64
}

// Association links one preference tag to one product tag with a signed strength.
// Positive values mean the product tag supports the preference tag.
type Association struct {
	PreferenceTagID int64   `json:"preference_tag_id"`
	ProductTagID    int64   `json:"product_tag_id"`
	Value           float64 `json:"value"`
}

// NewAssociation builds an association between a product tag and a preference tag.
// The argument order mirrors how association tables are usually authored.
func NewAssociation(productTag, preferenceTag Tag, value float64) (Association, error) {
	if productTag.Kind != ProductTagKind {
		return Association{}, fmt.Errorf("%w: %s is not a product tag", ErrInvalidTagKind, productTag)
	}
	if preferenceTag.Kind != PreferenceTagKind {
		return Association{}, fmt.Errorf("%w: %s is not a preference tag", ErrInvalidTagKind, preferenceTag)
	}
	return Association{PreferenceTagID: preferenceTag.ID, ProductTagID: productTag.ID, Value: value}, nil
}

// Key returns the index key for the association.
func (a Association) Key() AssociationKey {
	return AssociationKey{PreferenceTagID: a.PreferenceTagID, ProductTagID: a.ProductTagID}
}

// Contradiction records an association that vetoed a rating.
type Contradiction struct {
	PreferenceID    int64   `json:"preference_id"`
	PreferenceTagID int64   `json:"preference_tag_id"`
	ProductTagID    int64   `json:"product_tag_id"`
	Value           float64 `json:"value"`
}
