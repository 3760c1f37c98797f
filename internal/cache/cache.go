// Package cache layers document-level and query-level caching, hit/miss
// accounting, and TTL policy on top of the key-value store port. Every
// backend failure degrades to "cache absent"; the search engine keeps
// working, just without the speedup.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/db"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search"
	"github.com/kailas-cloud/textdex/internal/metrics"
)

// Default TTLs, in line with the persisted cache contract.
const (
	DefaultDocTTL    = 24 * time.Hour
	DefaultQueryTTL  = time.Hour
	DefaultStatsTTL  = 5 * time.Minute
	DefaultOpTimeout = 2 * time.Second
)

// Config holds TTL policy and the per-operation timeout bound.
type Config struct {
	DocTTL    time.Duration
	QueryTTL  time.Duration
	StatsTTL  time.Duration
	OpTimeout time.Duration
}

// ApplyDefaults fills zero fields with default values.
func (c *Config) ApplyDefaults() {
	if c.DocTTL <= 0 {
		c.DocTTL = DefaultDocTTL
	}
	if c.QueryTTL <= 0 {
		c.QueryTTL = DefaultQueryTTL
	}
	if c.StatsTTL <= 0 {
		c.StatsTTL = DefaultStatsTTL
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = DefaultOpTimeout
	}
}

// Metrics is a snapshot of cache performance counters.
type Metrics struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Total    int64   `json:"total"`
	HitRatio float64 `json:"hit_ratio"`
	Enabled  bool    `json:"cache_enabled"`
}

// queryEnvelope is the persisted shape of a cached query result set.
type queryEnvelope struct {
	Results   []search.Result `json:"results"`
	Timestamp float64         `json:"timestamp"`
	Query     string          `json:"query"`
	TopN      int             `json:"top_n"`
}

// Manager coordinates the doc:/query:/stats: namespaces over one store.
// Safe for concurrent use.
//
// Query writes are epoch-guarded: InvalidateAllQueries bumps the epoch
// under the same lock that serializes query sets, so a result computed
// before an invalidation can never land in the cache after it.
type Manager struct {
	store  db.KVStore
	cfg    Config
	logger *zap.Logger

	enabled atomic.Bool
	hits    atomic.Int64
	misses  atomic.Int64

	queryMu    sync.Mutex
	queryEpoch uint64
}

// NewManager creates a cache manager over the given store.
func NewManager(store db.KVStore, cfg Config, logger *zap.Logger) *Manager {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{store: store, cfg: cfg, logger: logger}
	m.enabled.Store(true)
	return m
}

// Enable turns caching on.
func (m *Manager) Enable() {
	m.enabled.Store(true)
	m.logger.Info("cache enabled")
}

// Disable turns caching off. Reads report absent and writes become
// no-ops; previously stored entries survive until their TTL.
func (m *Manager) Disable() {
	m.enabled.Store(false)
	m.logger.Info("cache disabled")
}

// Enabled reports whether caching is on.
func (m *Manager) Enabled() bool {
	return m.enabled.Load()
}

// StoreDocument write-throughs a document record. Returns false when
// caching is disabled or the backend failed.
func (m *Manager) StoreDocument(ctx context.Context, rec document.Record) bool {
	if !m.enabled.Load() {
		return false
	}
	return m.set(ctx, DocKey(rec.DocID), rec, m.cfg.DocTTL)
}

// CachedDocument retrieves a document record from the cache.
func (m *Manager) CachedDocument(ctx context.Context, id string) (document.Record, bool) {
	var rec document.Record
	if !m.enabled.Load() {
		return rec, false
	}
	if !m.get(ctx, DocKey(id), &rec, "document") {
		return document.Record{}, false
	}
	return rec, true
}

// QueryEpoch returns the current query invalidation epoch. Callers
// capture it before computing a result set and pass it back to
// StoreQueryResults so a write racing an invalidation is dropped.
func (m *Manager) QueryEpoch() uint64 {
	m.queryMu.Lock()
	defer m.queryMu.Unlock()
	return m.queryEpoch
}

// StoreQueryResults caches a query result set under the normalized
// query + limit key. The write is skipped when any query invalidation
// ran since the given epoch was captured: such a result may predate a
// document mutation and caching it would serve stale hits until TTL.
func (m *Manager) StoreQueryResults(
	ctx context.Context, query string, limit int, results []search.Result, epoch uint64,
) bool {
	if !m.enabled.Load() {
		return false
	}
	envelope := queryEnvelope{
		Results:   results,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Query:     query,
		TopN:      limit,
	}

	// Holding queryMu across the set serializes it against the epoch
	// bump + prefix delete in InvalidateAllQueries.
	m.queryMu.Lock()
	defer m.queryMu.Unlock()
	if epoch != m.queryEpoch {
		m.logger.Debug("query cache write dropped, invalidated since computed",
			zap.String("query", query))
		return false
	}
	return m.set(ctx, QueryKey(query, limit), envelope, m.cfg.QueryTTL)
}

// CachedQueryResults retrieves a cached query result set. A lookup for
// the same query text but a different limit is guaranteed to miss.
func (m *Manager) CachedQueryResults(
	ctx context.Context, query string, limit int,
) ([]search.Result, bool) {
	if !m.enabled.Load() {
		return nil, false
	}
	var envelope queryEnvelope
	if !m.get(ctx, QueryKey(query, limit), &envelope, "query") {
		return nil, false
	}
	if envelope.Results == nil {
		envelope.Results = []search.Result{}
	}
	return envelope.Results, true
}

// StoreStats caches an engine stats snapshot.
func (m *Manager) StoreStats(ctx context.Context, payload []byte) bool {
	if !m.enabled.Load() {
		return false
	}
	ctx, cancel := m.bound(ctx)
	defer cancel()
	if err := m.store.SetWithTTL(ctx, statsKey, payload, m.cfg.StatsTTL); err != nil {
		m.degraded("set", statsKey, err)
		return false
	}
	return true
}

// CachedStats retrieves the cached engine stats snapshot.
func (m *Manager) CachedStats(ctx context.Context) ([]byte, bool) {
	if !m.enabled.Load() {
		return nil, false
	}
	ctx, cancel := m.bound(ctx)
	defer cancel()
	data, err := m.store.Get(ctx, statsKey)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			m.degraded("get", statsKey, err)
		}
		m.miss("stats")
		return nil, false
	}
	m.hit("stats")
	return data, true
}

// InvalidateDocument drops a single cached document.
func (m *Manager) InvalidateDocument(ctx context.Context, id string) bool {
	ctx, cancel := m.bound(ctx)
	defer cancel()
	if err := m.store.Del(ctx, DocKey(id)); err != nil {
		m.degraded("del", DocKey(id), err)
		return false
	}
	return true
}

// InvalidateAllDocuments drops every cached document.
func (m *Manager) InvalidateAllDocuments(ctx context.Context) bool {
	return m.delPrefix(ctx, DocPrefix)
}

// InvalidateAllQueries drops every cached query result. Any document
// mutation makes all of them suspect, so invalidation is corpus-wide.
// The epoch bumps before the delete, under the lock that also guards
// query writes: an in-flight write either lands before the delete (and
// is deleted) or observes the new epoch and drops itself.
func (m *Manager) InvalidateAllQueries(ctx context.Context) bool {
	m.queryMu.Lock()
	defer m.queryMu.Unlock()
	m.queryEpoch++
	return m.delPrefix(ctx, QueryPrefix)
}

// InvalidateAll drops all cached documents and query results.
func (m *Manager) InvalidateAll(ctx context.Context) bool {
	docs := m.InvalidateAllDocuments(ctx)
	queries := m.InvalidateAllQueries(ctx)
	return docs && queries
}

// Metrics returns a snapshot of the hit/miss counters.
func (m *Manager) Metrics() Metrics {
	hits := m.hits.Load()
	misses := m.misses.Load()
	total := hits + misses
	ratio := 0.0
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return Metrics{
		Hits:     hits,
		Misses:   misses,
		Total:    total,
		HitRatio: ratio,
		Enabled:  m.enabled.Load(),
	}
}

// ResetMetrics zeroes the hit/miss counters without touching cache
// contents.
func (m *Manager) ResetMetrics() {
	m.hits.Store(0)
	m.misses.Store(0)
}

// Available reports whether the backend currently responds. Stores
// without connectivity checks (in-memory) always report available.
func (m *Manager) Available(ctx context.Context) bool {
	p, ok := m.store.(db.Pinger)
	if !ok {
		return true
	}
	ctx, cancel := m.bound(ctx)
	defer cancel()
	return p.Ping(ctx) == nil
}

func (m *Manager) set(ctx context.Context, key string, v any, ttl time.Duration) bool {
	data, err := json.Marshal(v)
	if err != nil {
		m.degraded("marshal", key, err)
		return false
	}
	ctx, cancel := m.bound(ctx)
	defer cancel()
	if err := m.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		m.degraded("set", key, err)
		return false
	}
	return true
}

func (m *Manager) get(ctx context.Context, key string, v any, namespace string) bool {
	ctx, cancel := m.bound(ctx)
	defer cancel()
	data, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			m.degraded("get", key, err)
		}
		m.miss(namespace)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		m.degraded("unmarshal", key, err)
		m.miss(namespace)
		return false
	}
	m.hit(namespace)
	return true
}

func (m *Manager) delPrefix(ctx context.Context, prefix string) bool {
	ctx, cancel := m.bound(ctx)
	defer cancel()
	if err := m.store.DelPrefix(ctx, prefix); err != nil {
		m.degraded("del_prefix", prefix, err)
		return false
	}
	return true
}

// bound caps an operation at the configured timeout so a hung backend
// never hangs the caller.
func (m *Manager) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.OpTimeout)
}

func (m *Manager) hit(namespace string) {
	m.hits.Add(1)
	metrics.ObserveCacheHit(namespace)
	m.logger.Debug("cache hit", zap.String("namespace", namespace))
}

func (m *Manager) miss(namespace string) {
	m.misses.Add(1)
	metrics.ObserveCacheMiss(namespace)
	m.logger.Debug("cache miss", zap.String("namespace", namespace))
}

func (m *Manager) degraded(op, key string, err error) {
	metrics.ObserveCacheError()
	m.logger.Warn("cache degraded",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
