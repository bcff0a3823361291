package schema

import (
	"fmt"
	"slices"
)

// PreferenceCategory groups related preferences, e.g. "diet" or "labour".
type PreferenceCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Preference is a statement built from one or more preference tags.
type Preference struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Translation string  `json:"translation,omitempty"`
	CategoryID  int64   `json:"category_id,omitempty"`
	VersionIn   int     `json:"version_in,omitempty"`
	VersionOut  int     `json:"version_out,omitempty"`
	Tags        []int64 `json:"tags"`
}

// NewPreference creates a preference without tags.
func NewPreference(id int64, name string) *Preference {
	return &Preference{ID: id, Name: name}
}

// AddTags attaches preference tags in order. Duplicates are ignored.
// A tag of any other kind fails with ErrInvalidTagKind and nothing is added.
func (p *Preference) AddTags(tags ...Tag) error {
	for _, t := range tags {
		if t.Kind != PreferenceTagKind {
			return fmt.Errorf("%w: %s cannot be added to preference %q", ErrInvalidTagKind, t, p.Name)
		}
	}
	for _, t := range tags {
		if !p.HasTag(t.ID) {
			p.Tags = append(p.Tags, t.ID)
		}
	}
	return nil
}

// HasTag reports whether the preference contains the preference tag id.
func (p *Preference) HasTag(id int64) bool {
	return slices.Contains(p.Tags, id)
}

// String implements fmt.Stringer.
func (p *Preference) String() string {
	return fmt.Sprintf("%s(%d)", p.Name, p.ID)
}
