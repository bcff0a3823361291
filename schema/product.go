package schema

import (
	"fmt"
	"slices"
)

// ProductCategory places a product in a category tree at the given level.
type ProductCategory struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Product is a rateable item described by product tags.
type Product struct {
	ID          int64             `json:"id"`
	EAN         string            `json:"ean,omitempty"`
	Name        string            `json:"name"`
	Brand       string            `json:"brand,omitempty"`
	Ingredients string            `json:"ingredients,omitempty"`
	Description string            `json:"description,omitempty"`
	Categories  []ProductCategory `json:"categories,omitempty"`
	Tags        []int64           `json:"tags"`
}

// NewProduct creates a product without tags.
func NewProduct(id int64, name string) *Product {
	return &Product{ID: id, Name: name}
}

// AddTags attaches product tags in order. Duplicates are ignored.
func (p *Product) AddTags(tags ...Tag) error {
	for _, t := range tags {
		if t.Kind != ProductTagKind {
			return fmt.Errorf("%w: %s cannot be added to product %q", ErrInvalidTagKind, t, p.Name)
		}
	}
	for _, t := range tags {
		if !p.HasTag(t.ID) {
			p.Tags = append(p.Tags, t.ID)
		}
	}
	return nil
}

// AddCategory appends a category at the given level.
func (p *Product) AddCategory(name string, level int) {
	p.Categories = append(p.Categories, ProductCategory{Name: name, Level: level})
}

// HasTag reports whether the product carries the product tag id.
func (p *Product) HasTag(id int64) bool {
	return slices.Contains(p.Tags, id)
}

// String implements fmt.Stringer.
func (p *Product) String() string {
	return fmt.Sprintf("%s(%d)", p.Name, p.ID)
}
