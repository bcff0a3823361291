package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSeparator is the field separator of catalog directories.
const DefaultSeparator = ','

// listSeparator separates ids inside a single field, e.g. the tags of a product.
const listSeparator = "|"

// Files of a catalog directory. History is optional.
const (
	PreferenceTagsFile  = "preference_tags.csv"
	ProductTagsFile     = "product_tags.csv"
	PreferencesFile     = "preferences.csv"
	ProductsFile        = "products.csv"
	AssociationsFile    = "associations.csv"
	UserPreferencesFile = "user_preferences.csv"
	UserHistoryFile     = "user_history.csv"
)

// ReadDelimited reads a delimited text file into rows of trimmed fields.
// Blank lines and lines starting with '#' are skipped. Rows may have different lengths.
func ReadDelimited(path string, sep rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = sep
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// LoadDir reads a catalog directory and builds it.
//
//	preference_tags.csv   id, name
//	product_tags.csv      id, name
//	preferences.csv       id, name, tag|tag|...
//	products.csv          id, name, tag|tag|..., ean, brand
//	associations.csv      preference_tag, product_tag, value
//	user_preferences.csv  user, preference, score
//	user_history.csv      user, product, quantity (optional)
func LoadDir(dir string, sep rune) (*Catalog, error) {
	doc, err := ReadDir(dir, sep)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// ReadDir reads a catalog directory into a document without validating references.
func ReadDir(dir string, sep rune) (*Document, error) {
	doc := &Document{}
	read := func(name string, minFields int, optional bool, fn func(rowFields) error) error {
		path := filepath.Join(dir, name)
		rows, err := ReadDelimited(path, sep)
		if err != nil {
			if optional && errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		for i, row := range rows {
			if len(row) < minFields {
				return fmt.Errorf("%s row %d: expected at least %d fields, got %d", name, i+1, minFields, len(row))
			}
			if err := fn(rowFields(row)); err != nil {
				return fmt.Errorf("%s row %d: %w", name, i+1, err)
			}
		}
		return nil
	}

	steps := []error{
		read(PreferenceTagsFile, 2, false, func(r rowFields) error {
			id, err := r.integer(0)
			doc.PreferenceTags = append(doc.PreferenceTags, TagDoc{ID: id, Name: r.str(1)})
			return err
		}),
		read(ProductTagsFile, 2, false, func(r rowFields) error {
			id, err := r.integer(0)
			doc.ProductTags = append(doc.ProductTags, TagDoc{ID: id, Name: r.str(1)})
			return err
		}),
		read(PreferencesFile, 3, false, func(r rowFields) error {
			id, err := r.integer(0)
			if err != nil {
				return err
			}
			tags, err := r.ids(2)
			doc.Preferences = append(doc.Preferences, PreferenceDoc{ID: id, Name: r.str(1), Tags: tags})
			return err
		}),
		read(ProductsFile, 2, false, func(r rowFields) error {
			id, err := r.integer(0)
			if err != nil {
				return err
			}
			tags, err := r.ids(2)
			doc.Products = append(doc.Products, ProductDoc{ID: id, Name: r.str(1), Tags: tags, EAN: r.str(3), Brand: r.str(4)})
			return err
		}),
		read(AssociationsFile, 3, false, func(r rowFields) error {
			prefTag, err1 := r.integer(0)
			prodTag, err2 := r.integer(1)
			value, err3 := r.number(2)
			doc.Associations = append(doc.Associations, AssociationDoc{PreferenceTag: prefTag, ProductTag: prodTag, Value: value})
			return errors.Join(err1, err2, err3)
		}),
		read(UserPreferencesFile, 3, false, func(r rowFields) error {
			prefID, err1 := r.integer(1)
			score, err2 := r.number(2)
			u := doc.user(r.str(0))
			u.Preferences = append(u.Preferences, UserPreferenceDoc{Preference: prefID, Score: score})
			return errors.Join(err1, err2)
		}),
		read(UserHistoryFile, 3, true, func(r rowFields) error {
			productID, err1 := r.integer(1)
			qty, err2 := r.number(2)
			u := doc.user(r.str(0))
			u.History = append(u.History, PurchaseDoc{Product: productID, Quantity: qty})
			return errors.Join(err1, err2)
		}),
	}
	if err := errors.Join(steps...); err != nil {
		return nil, fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}
	return doc, nil
}

// user returns the user document with the id, appending a new one on first use.
func (d *Document) user(id string) *UserDoc {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	d.Users = append(d.Users, UserDoc{ID: id})
	return &d.Users[len(d.Users)-1]
}

type rowFields []string

func (r rowFields) str(i int) string {
	if i >= len(r) {
		return ""
	}
	return r[i]
}

func (r rowFields) integer(i int) (int64, error) {
	v, err := strconv.ParseInt(r.str(i), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i+1, err)
	}
	return v, nil
}

func (r rowFields) number(i int) (float64, error) {
	v, err := strconv.ParseFloat(r.str(i), 64)
	if err != nil {
		return 0, fmt.Errorf("field %d: %w", i+1, err)
	}
	return v, nil
}

// ids parses a list of ids separated by '|'. An empty field is an empty list.
func (r rowFields) ids(i int) ([]int64, error) {
	field := r.str(i)
	if field == "" {
		return nil, nil
	}
	parts := strings.Split(field, listSeparator)
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}
