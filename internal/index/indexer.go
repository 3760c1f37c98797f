package index

import (
	"errors"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search"
	"github.com/kailas-cloud/textdex/internal/rank"
)

// Hit is a single similarity match against the index.
type Hit struct {
	Doc   document.Document
	Score float64
}

// Stats describes the index state.
type Stats struct {
	NumDocuments int
	IsIndexBuilt bool
	NumTerms     int
	Rows         int
	Cols         int
}

// snapshot is one immutable build of the vector index. A rebuild
// produces a fresh snapshot and swaps the pointer, so in-flight readers
// finish against the old one.
type snapshot struct {
	version    uint64
	vocab      []string
	vocabIndex map[string]int
	idf        []float64
	docs       []document.Document
	matrix     [][]float64
}

// Indexer builds a TF-IDF term-weight matrix over the store and answers
// similarity queries against it. Safe for concurrent use.
type Indexer struct {
	store    *Store
	maxTerms int
	logger   *zap.Logger

	buildMu sync.Mutex
	snap    atomic.Pointer[snapshot]
}

// NewIndexer creates an indexer over the given store. maxTerms caps the
// vocabulary size (0 = unlimited).
func NewIndexer(store *Store, maxTerms int, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{store: store, maxTerms: maxTerms, logger: logger}
}

// Build recomputes the vocabulary and term-weight matrix from the
// current document set. Returns ErrEmptyCorpus (and stays stale) when
// the store is empty. Deterministic for a given document set.
func (ix *Indexer) Build() error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	docs, version := ix.store.all()
	if len(docs) == 0 {
		return domain.ErrEmptyCorpus
	}
	if cur := ix.snap.Load(); cur != nil && cur.version == version {
		return nil
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = termCounts(doc.Content())
		for term := range counts[i] {
			df[term]++
		}
	}

	vocab := buildVocabulary(df, ix.maxTerms)
	vocabIndex := make(map[string]int, len(vocab))
	for j, term := range vocab {
		vocabIndex[term] = j
	}

	// Smoothed log-scaled IDF.
	idf := make([]float64, len(vocab))
	n := float64(len(docs))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/float64(1+df[term])) + 1
	}

	matrix := make([][]float64, len(docs))
	for i := range docs {
		matrix[i] = weightVector(counts[i], vocabIndex, idf)
	}

	ix.snap.Store(&snapshot{
		version:    version,
		vocab:      vocab,
		vocabIndex: vocabIndex,
		idf:        idf,
		docs:       docs,
		matrix:     matrix,
	})

	ix.logger.Debug("index built",
		zap.Int("documents", len(docs)),
		zap.Int("terms", len(vocab)),
	)
	return nil
}

// Search returns the top limit documents with strictly positive
// similarity to the query, in descending score order. Ties keep the
// documents' insertion order. Rebuilds the index first when stale; an
// empty corpus yields an empty result set.
func (ix *Indexer) Search(query string, limit int, strat rank.Strategy) ([]Hit, error) {
	snap, err := ix.fresh()
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			return nil, nil
		}
		return nil, err
	}

	qv := snap.queryVector(query)
	ranked := strat.Score(qv, snap.matrix)

	hits := make([]Hit, 0, limit)
	for _, r := range ranked {
		if r.Score <= 0 || len(hits) >= limit {
			break
		}
		hits = append(hits, Hit{Doc: snap.docs[r.Index], Score: r.Score})
	}
	return hits, nil
}

// Explain describes why a document matches a query, using the current
// index weights.
func (ix *Indexer) Explain(query, id string, strat rank.Strategy) (search.Explanation, error) {
	snap, err := ix.fresh()
	if err != nil {
		return search.Explanation{}, err
	}
	for i, doc := range snap.docs {
		if doc.ID() == id {
			return strat.Explain(snap.queryVector(query), snap.matrix[i], snap.vocab), nil
		}
	}
	return search.Explanation{}, domain.ErrDocumentNotFound
}

// TermImportance returns the document's non-zero term weights sorted
// descending. Empty when the document is unknown.
func (ix *Indexer) TermImportance(id string) []search.TermWeight {
	snap, err := ix.fresh()
	if err != nil {
		return nil
	}

	for i, doc := range snap.docs {
		if doc.ID() != id {
			continue
		}
		var terms []search.TermWeight
		for j, w := range snap.matrix[i] {
			if w > 0 {
				terms = append(terms, search.TermWeight{Term: snap.vocab[j], Weight: w})
			}
		}
		sort.SliceStable(terms, func(a, b int) bool {
			if terms[a].Weight != terms[b].Weight {
				return terms[a].Weight > terms[b].Weight
			}
			return terms[a].Term < terms[b].Term
		})
		return terms
	}
	return nil
}

// Stats reports the current index state.
func (ix *Indexer) Stats() Stats {
	s := Stats{NumDocuments: ix.store.Len()}
	snap := ix.snap.Load()
	if snap != nil && snap.version == ix.store.Version() {
		s.IsIndexBuilt = true
		s.NumTerms = len(snap.vocab)
		s.Rows = len(snap.docs)
		s.Cols = len(snap.vocab)
	}
	return s
}

// fresh returns a snapshot matching the current store version,
// rebuilding if needed.
func (ix *Indexer) fresh() (*snapshot, error) {
	if s := ix.snap.Load(); s != nil && s.version == ix.store.Version() {
		return s, nil
	}
	if err := ix.Build(); err != nil {
		return nil, err
	}
	return ix.snap.Load(), nil
}

// queryVector projects a query into the snapshot's vocabulary space.
// Terms outside the vocabulary contribute zero weight.
func (s *snapshot) queryVector(query string) []float64 {
	return weightVector(termCounts(query), s.vocabIndex, s.idf)
}

// weightVector computes an L2-normalized TF-IDF vector over the
// vocabulary.
func weightVector(counts map[string]int, vocabIndex map[string]int, idf []float64) []float64 {
	vec := make([]float64, len(idf))
	for term, c := range counts {
		if j, ok := vocabIndex[term]; ok {
			vec[j] = float64(c) * idf[j]
		}
	}
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] /= norm
		}
	}
	return vec
}

// buildVocabulary orders distinct terms lexicographically. When capped,
// the highest-document-frequency terms survive (ties lexicographic).
func buildVocabulary(df map[string]int, maxTerms int) []string {
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	if maxTerms > 0 && len(vocab) > maxTerms {
		sort.Slice(vocab, func(a, b int) bool {
			if df[vocab[a]] != df[vocab[b]] {
				return df[vocab[a]] > df[vocab[b]]
			}
			return vocab[a] < vocab[b]
		})
		vocab = vocab[:maxTerms]
	}
	sort.Strings(vocab)
	return vocab
}
