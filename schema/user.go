package schema

import (
	"fmt"
	"math"
	"strings"
)

// Stance describes on which side of the neutral midpoint a preference score lies.
type Stance string

// All stances supported.
const (
	ProStance     Stance = "pro"
	AgainstStance Stance = "against"
	NeutralStance Stance = "neutral"
)

// PreferenceScore is one scored preference of a user.
type PreferenceScore struct {
	Preference *Preference `json:"preference"`
	Score      float64     `json:"score"`
}

// User holds a score per preference in the order the preferences were first scored,
// plus a purchase history of product id to quantity.
type User struct {
	ID          string
	Name        string
	preferences []PreferenceScore
	slot        map[int64]int
	history     map[int64]float64
}

// NewUser creates a user without preferences.
func NewUser(id string) *User {
	return &User{
		ID:      id,
		slot:    make(map[int64]int),
		history: make(map[int64]float64),
	}
}

// SetPreference records the score for a preference. Re-scoring a preference keeps
// its original position.
func (u *User) SetPreference(p *Preference, score float64) {
	if i, ok := u.slot[p.ID]; ok {
		u.preferences[i] = PreferenceScore{Preference: p, Score: score}
		return
	}
	u.slot[p.ID] = len(u.preferences)
	u.preferences = append(u.preferences, PreferenceScore{Preference: p, Score: score})
}

// Preferences returns the scored preferences in order.
func (u *User) Preferences() []PreferenceScore {
	out := make([]PreferenceScore, len(u.preferences))
	copy(out, u.preferences)
	return out
}

// Score returns the user's score for a preference.
func (u *User) Score(preferenceID int64) (float64, bool) {
	i, ok := u.slot[preferenceID]
	if !ok {
		return 0, false
	}
	return u.preferences[i].Score, true
}

// Offset returns score minus the configured midpoint for a preference.
func (u *User) Offset(preferenceID int64, cfg RatingConfig) float64 {
	score, ok := u.Score(preferenceID)
	if !ok {
		return 0
	}
	return score - cfg.MeanUserPreference
}

// AbsoluteOffset returns the magnitude of Offset.
func (u *User) AbsoluteOffset(preferenceID int64, cfg RatingConfig) float64 {
	return math.Abs(u.Offset(preferenceID, cfg))
}

// TotalAbsoluteOffset sums the absolute offsets of every scored preference.
func (u *User) TotalAbsoluteOffset(cfg RatingConfig) float64 {
	sum := 0.0
	for _, ps := range u.preferences {
		sum += math.Abs(ps.Score - cfg.MeanUserPreference)
	}
	return sum
}

// AddToHistory adds a purchased quantity of a product.
func (u *User) AddToHistory(productID int64, quantity float64) {
	u.history[productID] += quantity
}

// History returns a copy of the purchase history.
func (u *User) History() map[int64]float64 {
	out := make(map[int64]float64, len(u.history))
	for k, v := range u.history {
		out[k] = v
	}
	return out
}

// StanceOf classifies a score relative to the midpoint.
func StanceOf(score float64, cfg RatingConfig) Stance {
	switch {
	case score > cfg.MeanUserPreference:
		return ProStance
	case score < cfg.MeanUserPreference:
		return AgainstStance
	default:
		return NeutralStance
	}
}

// PreferencesString renders one line per preference with its score and stance.
func (u *User) PreferencesString(cfg RatingConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User: %s\n", u.ID)
	for _, ps := range u.preferences {
		fmt.Fprintf(&sb, "%s\t::\t%g\t%s\n", ps.Preference.Name, ps.Score, StanceOf(ps.Score, cfg))
	}
	sb.WriteString("-----\n")
	return sb.String()
}
