package algo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/prefscore/schema"
)

// ErrUnknownAlgorithm is returned by Lookup for an unregistered algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown rating algorithm")

// RatingAlgorithm turns a user's preferences and a product's tags into a rating.
// Implementations must be pure: the same inputs always give the same result and
// concurrent calls share no mutable state.
type RatingAlgorithm interface {
	// Name returns the registry name of the algorithm.
	Name() string

	// Rate computes the rating and its contribution breakdown.
	Rate(user *schema.User, product *schema.Product, index AssociationLookup, cfg schema.RatingConfig) *schema.RatingResult
}

// algorithms lists all registered rating algorithms by name.
var algorithms = map[string]RatingAlgorithm{
	schema.DefaultAlgorithm: HypNorm{},
}

// Lookup returns the algorithm registered under name. An empty name selects the default.
func Lookup(name string) (RatingAlgorithm, error) {
	if name == "" {
		name = schema.DefaultAlgorithm
	}
	a, ok := algorithms[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q. must be one of: %s", ErrUnknownAlgorithm, name, strings.Join(AlgorithmNames(), ", "))
	}
	return a, nil
}

// AlgorithmNames returns the sorted names of all registered algorithms.
func AlgorithmNames() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
