package textdex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/cache"
	"github.com/kailas-cloud/textdex/internal/db"
	dbMemory "github.com/kailas-cloud/textdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/textdex/internal/db/redis"
	"github.com/kailas-cloud/textdex/internal/engine"
	"github.com/kailas-cloud/textdex/internal/index"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the textdex SDK entry point.
type Client struct {
	store  db.Store
	engine *engine.Engine
}

// New creates a Client. Without options the client runs cacheless; use
// WithRedis or WithMemoryCache to add the cache layer.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: "none", strategy: "tfidf"}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	var store db.Store
	var err error
	switch cfg.driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("textdex: create cache store: %w", err)
		}
		if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			// Degraded, not fatal: the engine works without a cache backend.
			cfg.logger.Warn("textdex: cache backend not ready", zap.Error(err))
		}
	case "memory":
		store = dbMemory.NewStore()
	case "none":
		store = nil
	default:
		return nil, fmt.Errorf("textdex: unknown cache driver %q", cfg.driver)
	}

	var cacheMgr engine.Cache
	if store != nil {
		cacheMgr = cache.NewManager(store, cache.Config{
			DocTTL:    cfg.docTTL,
			QueryTTL:  cfg.queryTTL,
			StatsTTL:  cfg.statsTTL,
			OpTimeout: cfg.opTimeout,
		}, cfg.logger)
	}

	docStore := index.NewStore()
	indexer := index.NewIndexer(docStore, cfg.maxTerms, cfg.logger)

	engineOpts := []engine.Option{}
	if cfg.defaultLimit > 0 {
		engineOpts = append(engineOpts, engine.WithDefaultLimit(cfg.defaultLimit))
	}
	eng, err := engine.New(docStore, indexer, cacheMgr, cfg.strategy, cfg.logger, engineOpts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("textdex: %w", err)
	}

	return &Client{store: store, engine: eng}, nil
}

// Close releases the cache backend connection.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// IndexDocument indexes a single document.
func (c *Client) IndexDocument(ctx context.Context, id, content string, metadata map[string]any) error {
	return c.engine.IndexDocument(ctx, id, content, metadata)
}

// IndexDocuments ingests a batch of records, skipping invalid and
// duplicate entries. Returns the count actually indexed.
func (c *Client) IndexDocuments(ctx context.Context, recs []Record) int {
	return c.engine.IndexDocuments(ctx, recs)
}

// RemoveDocument deletes a document by ID.
func (c *Client) RemoveDocument(ctx context.Context, id string) error {
	return c.engine.RemoveDocument(ctx, id)
}

// GetDocument returns a document record by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (Record, error) {
	return c.engine.GetDocument(ctx, id)
}

// Search returns the top limit documents ranked against the query.
// limit <= 0 uses the configured default.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	return c.engine.Search(ctx, query, limit)
}

// Explain breaks down why a document matches a query.
func (c *Client) Explain(ctx context.Context, query, id string) (Explanation, error) {
	return c.engine.Explain(ctx, query, id)
}

// TermImportance returns a document's most important index terms.
func (c *Client) TermImportance(ctx context.Context, id string) []TermWeight {
	return c.engine.TermImportance(ctx, id)
}

// Stats returns the merged index and cache statistics snapshot.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	return c.engine.Stats(ctx)
}

// SetStrategy switches the ranking strategy by name.
func (c *Client) SetStrategy(name string) error {
	return c.engine.SetStrategy(name)
}

// EnableCache turns the cache layer on.
func (c *Client) EnableCache() { c.engine.EnableCache() }

// DisableCache turns the cache layer off without dropping entries.
func (c *Client) DisableCache() { c.engine.DisableCache() }

// ClearCache drops every cached document and query result.
func (c *Client) ClearCache(ctx context.Context) bool {
	return c.engine.ClearCache(ctx)
}

// ResetCacheMetrics zeroes the cache hit/miss counters without touching
// cached entries.
func (c *Client) ResetCacheMetrics() { c.engine.ResetCacheMetrics() }

// CacheAvailable reports whether the cache backend responds. The second
// return is false when the client runs cacheless.
func (c *Client) CacheAvailable(ctx context.Context) (available, present bool) {
	return c.engine.CacheAvailable(ctx)
}
