// Package engine composes the document store, vector index, ranking
// strategy, and cache coordinator into the public search API. Store
// consistency is authoritative; cache consistency is best-effort.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/cache"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search"
	"github.com/kailas-cloud/textdex/internal/index"
	"github.com/kailas-cloud/textdex/internal/rank"
)

// DefaultLimit is the result limit used when the caller passes none.
const DefaultLimit = 10

// Stats is the merged engine statistics snapshot.
type Stats struct {
	NumDocuments int            `json:"num_documents"`
	IsIndexBuilt bool           `json:"is_index_built"`
	NumTerms     int            `json:"num_terms,omitempty"`
	IndexShape   []int          `json:"index_shape,omitempty"`
	RankerType   string         `json:"ranker_type"`
	Cache        *cache.Metrics `json:"cache,omitempty"`
}

// Engine orchestrates indexing and searching with a read/write-through
// cache in front of the vector index.
type Engine struct {
	store        *index.Store
	idx          *index.Indexer
	cache        Cache
	defaultLimit int
	logger       *zap.Logger

	mu       sync.RWMutex
	strategy rank.Strategy
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultLimit overrides the default search result limit.
func WithDefaultLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.defaultLimit = limit
		}
	}
}

// New creates an engine. cacheMgr may be nil to run cacheless;
// strategyName resolves through the ranking registry.
func New(
	store *index.Store, idx *index.Indexer, cacheMgr Cache,
	strategyName string, logger *zap.Logger, opts ...Option,
) (*Engine, error) {
	if strategyName == "" {
		strategyName = rank.DefaultStrategy
	}
	strategy, err := rank.New(strategyName)
	if err != nil {
		return nil, fmt.Errorf("resolve strategy: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:        store,
		idx:          idx,
		cache:        cacheMgr,
		strategy:     strategy,
		defaultLimit: DefaultLimit,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// IndexDocument validates and stores a single document, then
// write-throughs the document cache and invalidates all cached query
// results. The store mutation is authoritative: cache failures do not
// undo it.
func (e *Engine) IndexDocument(
	ctx context.Context, id, content string, metadata map[string]any,
) error {
	doc, err := document.New(id, content, metadata)
	if err != nil {
		return err
	}
	if err := e.store.Add(doc); err != nil {
		return err
	}
	if e.cache != nil {
		e.cache.StoreDocument(ctx, doc.ToRecord())
		e.cache.InvalidateAllQueries(ctx)
	}
	return nil
}

// IndexDocuments ingests a batch of records, silently skipping invalid
// and duplicate entries. Returns the count actually indexed.
func (e *Engine) IndexDocuments(ctx context.Context, recs []document.Record) int {
	docs := make([]document.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := document.FromRecord(rec)
		if err != nil {
			e.logger.Debug("skipping invalid record", zap.String("doc_id", rec.DocID), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	added := 0
	for _, doc := range docs {
		if err := e.store.Add(doc); err != nil {
			continue
		}
		added++
		if e.cache != nil {
			e.cache.StoreDocument(ctx, doc.ToRecord())
		}
	}
	if added > 0 && e.cache != nil {
		e.cache.InvalidateAllQueries(ctx)
	}
	return added
}

// RemoveDocument deletes a document from the store, then drops its
// cache entry and all cached query results.
func (e *Engine) RemoveDocument(ctx context.Context, id string) error {
	if err := e.store.Remove(id); err != nil {
		return err
	}
	if e.cache != nil {
		e.cache.InvalidateDocument(ctx, id)
		e.cache.InvalidateAllQueries(ctx)
	}
	return nil
}

// GetDocument returns a document record, cache-first with backfill.
func (e *Engine) GetDocument(ctx context.Context, id string) (document.Record, error) {
	if e.cache != nil {
		if rec, ok := e.cache.CachedDocument(ctx, id); ok {
			return rec, nil
		}
	}
	doc, err := e.store.Get(id)
	if err != nil {
		return document.Record{}, err
	}
	rec := doc.ToRecord()
	if e.cache != nil {
		e.cache.StoreDocument(ctx, rec)
	}
	return rec, nil
}

// DefaultLimit returns the result limit used when callers pass none.
func (e *Engine) DefaultLimit() int {
	return e.defaultLimit
}

// Search returns the top limit documents ranked against the query.
// A cached result is returned without touching the index; on miss the
// index is brought fresh, ranked, and the result written through. The
// invalidation epoch is captured before ranking so a result computed
// before a concurrent mutation is never cached after its invalidation.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = e.defaultLimit
	}

	var epoch uint64
	if e.cache != nil {
		if results, ok := e.cache.CachedQueryResults(ctx, query, limit); ok {
			return results, nil
		}
		epoch = e.cache.QueryEpoch()
	}

	hits, err := e.idx.Search(query, limit, e.currentStrategy())
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]search.Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, search.Result{
			DocID:    hit.Doc.ID(),
			Content:  hit.Doc.Content(),
			Metadata: hit.Doc.Metadata(),
			Score:    hit.Score,
		})
	}

	if e.cache != nil {
		e.cache.StoreQueryResults(ctx, query, limit, results, epoch)
	}
	return results, nil
}

// Explain breaks down why a document matches a query.
func (e *Engine) Explain(_ context.Context, query, id string) (search.Explanation, error) {
	return e.idx.Explain(query, id, e.currentStrategy())
}

// TermImportance returns a document's most important index terms.
func (e *Engine) TermImportance(_ context.Context, id string) []search.TermWeight {
	return e.idx.TermImportance(id)
}

// Stats returns the merged index + cache statistics snapshot,
// cache-first with a short TTL on the cached copy.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	if e.cache != nil {
		if data, ok := e.cache.CachedStats(ctx); ok {
			var stats Stats
			if err := json.Unmarshal(data, &stats); err == nil {
				return stats, nil
			}
		}
	}

	ixStats := e.idx.Stats()
	stats := Stats{
		NumDocuments: ixStats.NumDocuments,
		IsIndexBuilt: ixStats.IsIndexBuilt,
		RankerType:   e.currentStrategy().Name(),
	}
	if ixStats.IsIndexBuilt {
		stats.NumTerms = ixStats.NumTerms
		stats.IndexShape = []int{ixStats.Rows, ixStats.Cols}
	}
	if e.cache != nil {
		m := e.cache.Metrics()
		stats.Cache = &m
		if data, err := json.Marshal(stats); err == nil {
			e.cache.StoreStats(ctx, data)
		}
	}
	return stats, nil
}

// SetStrategy switches the ranking strategy by name. An unknown name
// returns ErrUnsupportedStrategy and leaves the current strategy in
// place.
func (e *Engine) SetStrategy(name string) error {
	strategy, err := rank.New(name)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.strategy = strategy
	e.mu.Unlock()
	e.logger.Info("ranking strategy changed", zap.String("strategy", strategy.Name()))
	return nil
}

// StrategyName returns the active ranking strategy name.
func (e *Engine) StrategyName() string {
	return e.currentStrategy().Name()
}

// EnableCache turns the cache layer on.
func (e *Engine) EnableCache() {
	if e.cache != nil {
		e.cache.Enable()
	}
}

// DisableCache turns the cache layer off without dropping entries.
func (e *Engine) DisableCache() {
	if e.cache != nil {
		e.cache.Disable()
	}
}

// ClearCache drops every cached document and query result.
func (e *Engine) ClearCache(ctx context.Context) bool {
	if e.cache == nil {
		return false
	}
	return e.cache.InvalidateAll(ctx)
}

// CacheMetrics returns the cache counters, or nil when running
// cacheless.
func (e *Engine) CacheMetrics() *cache.Metrics {
	if e.cache == nil {
		return nil
	}
	m := e.cache.Metrics()
	return &m
}

// ResetCacheMetrics zeroes the cache hit/miss counters without touching
// cached entries.
func (e *Engine) ResetCacheMetrics() {
	if e.cache != nil {
		e.cache.ResetMetrics()
	}
}

// CacheAvailable reports whether the cache backend responds. The second
// return is false when running cacheless.
func (e *Engine) CacheAvailable(ctx context.Context) (available, present bool) {
	if e.cache == nil {
		return false, false
	}
	return e.cache.Available(ctx), true
}

func (e *Engine) currentStrategy() rank.Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy
}
