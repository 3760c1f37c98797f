package rank

import (
	"math"
	"sort"

	"github.com/kailas-cloud/textdex/internal/domain/search"
)

// Cosine ranks documents by the cosine of the angle between the query
// and document TF-IDF vectors. With pre-normalized vectors this reduces
// to the inner product.
type Cosine struct{}

// NewCosine creates the cosine similarity strategy.
func NewCosine() *Cosine { return &Cosine{} }

// Name implements Strategy.
func (*Cosine) Name() string { return "tfidf" }

// Score implements Strategy.
func (*Cosine) Score(query []float64, docs [][]float64) []Ranked {
	ranked := make([]Ranked, len(docs))
	for i, doc := range docs {
		ranked[i] = Ranked{Index: i, Score: cosine(query, doc)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}

// Explain implements Strategy. Per term present in both vectors the
// contribution is query_weight × doc_weight, sorted descending.
func (*Cosine) Explain(query, doc []float64, vocab []string) search.Explanation {
	var contributions []search.TermContribution
	for j := range vocab {
		if j >= len(query) || j >= len(doc) {
			break
		}
		if query[j] == 0 || doc[j] == 0 {
			continue
		}
		contributions = append(contributions, search.TermContribution{
			Term:         vocab[j],
			QueryWeight:  query[j],
			DocWeight:    doc[j],
			Contribution: query[j] * doc[j],
		})
	}
	sort.SliceStable(contributions, func(a, b int) bool {
		return contributions[a].Contribution > contributions[b].Contribution
	})
	return search.Explanation{
		Similarity:    cosine(query, doc),
		MatchingTerms: len(contributions),
		Contributions: contributions,
	}
}

// cosine computes the normalized inner product of two vectors.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
