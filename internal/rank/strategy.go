// Package rank provides pluggable document ranking strategies resolved
// through a named registry.
package rank

import (
	"github.com/kailas-cloud/textdex/internal/domain/search"
)

// Ranked pairs a document row index with its similarity score.
type Ranked struct {
	Index int
	Score float64
}

// Strategy scores documents against a query in the shared vector space.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string

	// Score ranks all document vectors against the query vector,
	// descending by score. The sort is stable: equal scores keep the
	// documents' original order.
	Score(query []float64, docs [][]float64) []Ranked

	// Explain breaks a single query-document similarity down into
	// per-term contributions, used for diagnostics only.
	Explain(query, doc []float64, vocab []string) search.Explanation
}
