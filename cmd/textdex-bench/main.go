// Command textdex-bench measures indexing and search latency of the
// engine over a synthetic corpus, with and without the cache layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/cache"
	"github.com/kailas-cloud/textdex/internal/db/memory"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/engine"
	"github.com/kailas-cloud/textdex/internal/index"
)

var topics = map[string][]string{
	"programming": {"python", "golang", "code", "function", "variable", "compiler", "debugging", "algorithm"},
	"databases":   {"sql", "query", "table", "index", "transaction", "schema", "replication", "shard"},
	"networking":  {"protocol", "packet", "router", "latency", "bandwidth", "socket", "tcp", "http"},
	"search":      {"ranking", "relevance", "term", "corpus", "vector", "similarity", "tokenizer", "engine"},
	"caching":     {"redis", "ttl", "eviction", "hit", "miss", "invalidation", "writethrough", "key"},
}

func main() {
	docCount := flag.Int("docs", 1000, "number of synthetic documents")
	queryCount := flag.Int("queries", 100, "number of queries per pass")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	logger := zap.NewNop()
	rng := rand.New(rand.NewSource(*seed))

	docs := generateDocuments(rng, *docCount)
	queries := generateQueries(rng, *queryCount)

	store := index.NewStore()
	indexer := index.NewIndexer(store, 0, logger)
	mgr := cache.NewManager(memory.NewStore(), cache.Config{}, logger)

	eng, err := engine.New(store, indexer, mgr, "tfidf", logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}

	ctx := context.Background()

	start := time.Now()
	indexed := eng.IndexDocuments(ctx, docs)
	indexingTime := time.Since(start)

	// First build happens inside the first search.
	start = time.Now()
	if _, err := eng.Search(ctx, queries[0], 10); err != nil {
		fmt.Fprintln(os.Stderr, "search:", err)
		os.Exit(1)
	}
	buildTime := time.Since(start)

	cold := runPass(ctx, eng, queries, func() { eng.DisableCache() })
	warmFill := runPass(ctx, eng, queries, func() { eng.EnableCache() })
	warm := runPass(ctx, eng, queries, nil)

	fmt.Printf("documents indexed:   %d (%.2fms)\n", indexed, ms(indexingTime))
	fmt.Printf("first search+build:  %.2fms\n", ms(buildTime))
	fmt.Printf("uncached avg:        %.3fms/query\n", ms(cold)/float64(len(queries)))
	fmt.Printf("cache-fill avg:      %.3fms/query\n", ms(warmFill)/float64(len(queries)))
	fmt.Printf("cached avg:          %.3fms/query\n", ms(warm)/float64(len(queries)))
	if m := eng.CacheMetrics(); m != nil {
		fmt.Printf("cache hits/misses:   %d/%d (ratio %.2f)\n", m.Hits, m.Misses, m.HitRatio)
	}
}

func runPass(ctx context.Context, eng *engine.Engine, queries []string, setup func()) time.Duration {
	if setup != nil {
		setup()
	}
	start := time.Now()
	for _, q := range queries {
		if _, err := eng.Search(ctx, q, 10); err != nil {
			fmt.Fprintln(os.Stderr, "search:", err)
			os.Exit(1)
		}
	}
	return time.Since(start)
}

func generateDocuments(rng *rand.Rand, count int) []document.Record {
	names := topicNames()
	docs := make([]document.Record, 0, count)
	for i := 0; i < count; i++ {
		topic := names[rng.Intn(len(names))]
		words := topics[topic]
		content := make([]string, 30+rng.Intn(40))
		for j := range content {
			content[j] = words[rng.Intn(len(words))]
		}
		docs = append(docs, document.Record{
			DocID:    fmt.Sprintf("doc_%d", i),
			Content:  strings.Join(content, " "),
			Metadata: map[string]any{"topic": topic},
		})
	}
	return docs
}

func generateQueries(rng *rand.Rand, count int) []string {
	names := topicNames()
	queries := make([]string, 0, count)
	for i := 0; i < count; i++ {
		words := topics[names[rng.Intn(len(names))]]
		terms := make([]string, 1+rng.Intn(3))
		for j := range terms {
			terms[j] = words[rng.Intn(len(words))]
		}
		queries = append(queries, strings.Join(terms, " "))
	}
	return queries
}

func topicNames() []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
