package engine

import (
	"context"

	"github.com/kailas-cloud/textdex/internal/cache"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search"
)

// Cache is the coordinator contract the engine consumes. A nil Cache
// means the engine runs without a cache layer at all.
type Cache interface {
	StoreDocument(ctx context.Context, rec document.Record) bool
	CachedDocument(ctx context.Context, id string) (document.Record, bool)

	QueryEpoch() uint64
	StoreQueryResults(ctx context.Context, query string, limit int, results []search.Result, epoch uint64) bool
	CachedQueryResults(ctx context.Context, query string, limit int) ([]search.Result, bool)

	StoreStats(ctx context.Context, payload []byte) bool
	CachedStats(ctx context.Context) ([]byte, bool)

	InvalidateDocument(ctx context.Context, id string) bool
	InvalidateAllQueries(ctx context.Context) bool
	InvalidateAll(ctx context.Context) bool

	Enable()
	Disable()
	Enabled() bool
	Available(ctx context.Context) bool
	Metrics() cache.Metrics
	ResetMetrics()
}
