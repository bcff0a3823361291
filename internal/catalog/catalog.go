// Package catalog loads tags, preferences, products, associations and users from files
// and wires them into the types the rating algorithms work on.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	"github.com/spf13/viper"
)

// Lookup errors.
var (
	ErrUnknownUser    = errors.New("unknown user")
	ErrUnknownProduct = errors.New("unknown product")
)

// Catalog is the in-memory model used for rating. It is read-only after Build.
type Catalog struct {
	PreferenceTags map[int64]schema.Tag
	ProductTags    map[int64]schema.Tag
	Categories     map[int64]schema.PreferenceCategory
	Preferences    map[int64]*schema.Preference
	Products       map[int64]*schema.Product
	Users          map[string]*schema.User
	Index          *algo.AssociationIndex

	productOrder []int64
	userOrder    []string
}

// Load reads a catalog from a YAML, JSON or TOML document, or from a directory
// of comma separated files.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path, DefaultSeparator)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
	default:
		return nil, fmt.Errorf("unsupported catalog format %q. must be yaml, yml, json, toml or a directory", filepath.Ext(path))
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return Build(&doc)
}

// Build validates a document and resolves every id reference in it.
func Build(doc *Document) (*Catalog, error) {
	if err := contract.ValidateStruct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		PreferenceTags: make(map[int64]schema.Tag, len(doc.PreferenceTags)),
		ProductTags:    make(map[int64]schema.Tag, len(doc.ProductTags)),
		Categories:     make(map[int64]schema.PreferenceCategory, len(doc.Categories)),
		Preferences:    make(map[int64]*schema.Preference, len(doc.Preferences)),
		Products:       make(map[int64]*schema.Product, len(doc.Products)),
		Users:          make(map[string]*schema.User, len(doc.Users)),
		Index:          algo.NewAssociationIndex(),
	}

	for _, t := range doc.PreferenceTags {
		tag := schema.NewPreferenceTag(t.ID, t.Name)
		tag.VersionIn, tag.VersionOut = t.VersionIn, t.VersionOut
		c.PreferenceTags[t.ID] = tag
	}
	for _, t := range doc.ProductTags {
		tag := schema.NewProductTag(t.ID, t.Name)
		tag.VersionIn, tag.VersionOut = t.VersionIn, t.VersionOut
		c.ProductTags[t.ID] = tag
	}
	for _, cat := range doc.Categories {
		c.Categories[cat.ID] = schema.PreferenceCategory{ID: cat.ID, Name: cat.Name}
	}

	if err := c.buildPreferences(doc.Preferences); err != nil {
		return nil, err
	}
	if err := c.buildProducts(doc.Products); err != nil {
		return nil, err
	}
	if err := c.buildAssociations(doc.Associations); err != nil {
		return nil, err
	}
	if err := c.buildUsers(doc.Users); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) buildPreferences(docs []PreferenceDoc) error {
	for _, d := range docs {
		p := schema.NewPreference(d.ID, d.Name)
		p.Translation = d.Translation
		p.VersionIn, p.VersionOut = d.VersionIn, d.VersionOut
		if d.Category != nil {
			if _, ok := c.Categories[*d.Category]; !ok {
				return fmt.Errorf("preference %d references unknown category %d", d.ID, *d.Category)
			}
			p.CategoryID = *d.Category
		}
		for _, tagID := range d.Tags {
			tag, err := c.preferenceTag(tagID)
			if err != nil {
				return fmt.Errorf("preference %d: %w", d.ID, err)
			}
			if err := p.AddTags(tag); err != nil {
				return err
			}
		}
		c.Preferences[d.ID] = p
	}
	return nil
}

func (c *Catalog) buildProducts(docs []ProductDoc) error {
	for _, d := range docs {
		p := schema.NewProduct(d.ID, d.Name)
		p.EAN, p.Brand = d.EAN, d.Brand
		p.Ingredients, p.Description = d.Ingredients, d.Description
		for _, cat := range d.Categories {
			p.AddCategory(cat.Name, cat.Level)
		}
		for _, tagID := range d.Tags {
			tag, ok := c.ProductTags[tagID]
			if !ok {
				return fmt.Errorf("product %d references unknown product tag %d", d.ID, tagID)
			}
			if err := p.AddTags(tag); err != nil {
				return err
			}
		}
		c.Products[d.ID] = p
		c.productOrder = append(c.productOrder, d.ID)
	}
	return nil
}

func (c *Catalog) buildAssociations(docs []AssociationDoc) error {
	for i, d := range docs {
		prefTag, err := c.preferenceTag(d.PreferenceTag)
		if err != nil {
			return fmt.Errorf("association %d: %w", i, err)
		}
		prodTag, ok := c.ProductTags[d.ProductTag]
		if !ok {
			return fmt.Errorf("association %d references unknown product tag %d", i, d.ProductTag)
		}
		a, err := schema.NewAssociation(prodTag, prefTag, d.Value)
		if err != nil {
			return err
		}
		c.Index.Add(a)
	}
	return nil
}

func (c *Catalog) buildUsers(docs []UserDoc) error {
	for _, d := range docs {
		u := schema.NewUser(d.ID)
		u.Name = d.Name
		for _, ps := range d.Preferences {
			p, ok := c.Preferences[ps.Preference]
			if !ok {
				return fmt.Errorf("user %s references unknown preference %d", d.ID, ps.Preference)
			}
			u.SetPreference(p, ps.Score)
		}
		for _, h := range d.History {
			if _, ok := c.Products[h.Product]; !ok {
				return fmt.Errorf("user %s history: %w %d", d.ID, ErrUnknownProduct, h.Product)
			}
			u.AddToHistory(h.Product, h.Quantity)
		}
		c.Users[d.ID] = u
		c.userOrder = append(c.userOrder, d.ID)
	}
	return nil
}

func (c *Catalog) preferenceTag(id int64) (schema.Tag, error) {
	if tag, ok := c.PreferenceTags[id]; ok {
		return tag, nil
	}
	if _, ok := c.ProductTags[id]; ok {
		return schema.Tag{}, fmt.Errorf("%w: %d is only known as a product tag", schema.ErrInvalidTagKind, id)
	}
	return schema.Tag{}, fmt.Errorf("unknown preference tag %d", id)
}

// User returns the user with the given id.
func (c *Catalog) User(id string) (*schema.User, error) {
	u, ok := c.Users[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownUser, id)
	}
	return u, nil
}

// Product returns the product with the given id.
func (c *Catalog) Product(id int64) (*schema.Product, error) {
	p, ok := c.Products[id]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnknownProduct, id)
	}
	return p, nil
}

// ProductsInOrder returns products in the order they were declared.
func (c *Catalog) ProductsInOrder() []*schema.Product {
	out := make([]*schema.Product, 0, len(c.productOrder))
	for _, id := range c.productOrder {
		out = append(out, c.Products[id])
	}
	return out
}

// UsersInOrder returns users in the order they were declared.
func (c *Catalog) UsersInOrder() []*schema.User {
	out := make([]*schema.User, 0, len(c.userOrder))
	for _, id := range c.userOrder {
		out = append(out, c.Users[id])
	}
	return out
}

// ProductNames maps product ids to names.
func (c *Catalog) ProductNames() map[int64]string {
	out := make(map[int64]string, len(c.Products))
	for id, p := range c.Products {
		out[id] = p.Name
	}
	return out
}

// PreferenceName returns the name of a preference, or its id when unknown.
func (c *Catalog) PreferenceName(id int64) string {
	if p, ok := c.Preferences[id]; ok {
		return p.Name
	}
	return fmt.Sprintf("#%d", id)
}

// ProductTagName returns the name of a product tag, or its id when unknown.
func (c *Catalog) ProductTagName(id int64) string {
	if t, ok := c.ProductTags[id]; ok {
		return t.Name
	}
	return fmt.Sprintf("#%d", id)
}

// UserIDs returns all user ids sorted.
func (c *Catalog) UserIDs() []string {
	ids := slices.Clone(c.userOrder)
	slices.Sort(ids)
	return ids
}
