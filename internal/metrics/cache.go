package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and outcome",
		},
		[]string{"namespace", "outcome"},
	)

	cacheErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "textdex",
			Name:      "cache_errors_total",
			Help:      "Cache operations degraded due to backend failures",
		},
	)
)

// RegisterCacheMetrics registers the cache collectors. Called once from
// the composition root.
func RegisterCacheMetrics() {
	prometheus.MustRegister(cacheLookups)
	prometheus.MustRegister(cacheErrors)
}

// ObserveCacheHit records a cache hit for the given key namespace.
func ObserveCacheHit(namespace string) {
	cacheLookups.WithLabelValues(namespace, "hit").Inc()
}

// ObserveCacheMiss records a cache miss for the given key namespace.
func ObserveCacheMiss(namespace string) {
	cacheLookups.WithLabelValues(namespace, "miss").Inc()
}

// ObserveCacheError records a degraded cache operation.
func ObserveCacheError() {
	cacheErrors.Inc()
}
