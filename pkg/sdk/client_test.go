package textdex

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_CachelessDefaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.IndexDocument(ctx, "doc1", "cats and dogs", nil); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	results, err := c.Search(ctx, "cats", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != "doc1" {
		t.Errorf("results = %+v", results)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Cache != nil {
		t.Error("cacheless client must not report cache metrics")
	}
}

func TestNew_MemoryCache(t *testing.T) {
	c, err := New(WithMemoryCache(), WithTTLs(time.Minute, time.Minute, time.Minute))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.IndexDocument(ctx, "doc1", "cats", nil); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	// Two identical searches: second one comes from cache.
	for i := 0; i < 2; i++ {
		results, err := c.Search(ctx, "cats", 10)
		if err != nil {
			t.Fatalf("Search pass %d: %v", i, err)
		}
		if len(results) != 1 {
			t.Fatalf("pass %d: %d results", i, len(results))
		}
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Cache == nil {
		t.Fatal("cache metrics missing")
	}
	if stats.Cache.Hits == 0 {
		t.Error("second search should have hit the cache")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(func(cfg *clientConfig) { cfg.driver = "memcached" })
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New(WithStrategy("bm25"))
	if !errors.Is(err, ErrUnsupportedStrategy) {
		t.Fatalf("expected ErrUnsupportedStrategy, got %v", err)
	}
}

func TestClient_DefaultLimitOption(t *testing.T) {
	c, err := New(WithDefaultLimit(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	_ = c.IndexDocument(ctx, "a", "cats one", nil)
	_ = c.IndexDocument(ctx, "b", "cats two", nil)

	results, err := c.Search(ctx, "cats", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("default limit not applied: %d results", len(results))
	}
}

func TestClient_ErrorsSurface(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.IndexDocument(ctx, "", "content", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("missing id: %v", err)
	}
	_ = c.IndexDocument(ctx, "doc1", "cats", nil)
	if err := c.IndexDocument(ctx, "doc1", "again", nil); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate: %v", err)
	}
	if _, err := c.GetDocument(ctx, "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("missing get: %v", err)
	}
	if err := c.RemoveDocument(ctx, "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("missing remove: %v", err)
	}
}

func TestClient_CacheControls(t *testing.T) {
	c, err := New(WithMemoryCache())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	_ = c.IndexDocument(ctx, "doc1", "cats", nil)
	if _, err := c.Search(ctx, "cats", 10); err != nil {
		t.Fatal(err)
	}

	c.DisableCache()
	c.EnableCache()
	if !c.ClearCache(ctx) {
		t.Error("ClearCache returned false")
	}

	if available, present := c.CacheAvailable(ctx); !present || !available {
		t.Errorf("CacheAvailable = %v, %v, want true, true", available, present)
	}

	c.ResetCacheMetrics()
	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	// The stats read itself may record one lookup; the earlier search
	// traffic must be gone.
	if stats.Cache == nil || stats.Cache.Total > 1 {
		t.Errorf("cache counters after reset = %+v", stats.Cache)
	}

	plain, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer plain.Close()
	if _, present := plain.CacheAvailable(ctx); present {
		t.Error("cacheless client must report no cache present")
	}
}

func TestClient_BatchAndTerms(t *testing.T) {
	c, err := New(WithMemoryCache())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	added := c.IndexDocuments(ctx, []Record{
		{DocID: "doc1", Content: "cats cats dogs"},
		{DocID: "", Content: "invalid"},
	})
	if added != 1 {
		t.Fatalf("IndexDocuments = %d, want 1", added)
	}

	terms := c.TermImportance(ctx, "doc1")
	if len(terms) != 2 || terms[0].Term != "cats" {
		t.Errorf("terms = %+v", terms)
	}

	expl, err := c.Explain(ctx, "cats", "doc1")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if expl.Similarity <= 0 {
		t.Errorf("similarity = %f", expl.Similarity)
	}
}
