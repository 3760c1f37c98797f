package textdex

import (
	"time"

	"go.uber.org/zap"
)

type clientConfig struct {
	driver       string // redis, memory, none
	addrs        []string
	username     string
	password     string
	db           int
	strategy     string
	defaultLimit int
	maxTerms     int
	docTTL       time.Duration
	queryTTL     time.Duration
	statsTTL     time.Duration
	opTimeout    time.Duration
	logger       *zap.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithRedis backs the cache with a Redis service at the given addresses.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = addrs
	}
}

// WithRedisAuth sets Redis credentials.
func WithRedisAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithRedisDB selects the Redis logical database.
func WithRedisDB(db int) Option {
	return func(c *clientConfig) { c.db = db }
}

// WithMemoryCache backs the cache with process memory. Useful for tests
// and single-node deployments without Redis.
func WithMemoryCache() Option {
	return func(c *clientConfig) { c.driver = "memory" }
}

// WithoutCache disables the cache layer entirely.
func WithoutCache() Option {
	return func(c *clientConfig) { c.driver = "none" }
}

// WithStrategy selects the ranking strategy by registry name.
func WithStrategy(name string) Option {
	return func(c *clientConfig) { c.strategy = name }
}

// WithDefaultLimit sets the result limit used when a search passes none.
func WithDefaultLimit(limit int) Option {
	return func(c *clientConfig) { c.defaultLimit = limit }
}

// WithMaxTerms caps the index vocabulary size (0 = unlimited).
func WithMaxTerms(n int) Option {
	return func(c *clientConfig) { c.maxTerms = n }
}

// WithTTLs overrides the document, query, and stats cache TTLs.
func WithTTLs(doc, query, stats time.Duration) Option {
	return func(c *clientConfig) {
		c.docTTL = doc
		c.queryTTL = query
		c.statsTTL = stats
	}
}

// WithOpTimeout bounds each cache backend operation.
func WithOpTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.opTimeout = d }
}

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
