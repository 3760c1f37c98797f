package chi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/cache"
	"github.com/kailas-cloud/textdex/internal/db/memory"
	"github.com/kailas-cloud/textdex/internal/engine"
	"github.com/kailas-cloud/textdex/internal/index"
	"github.com/kailas-cloud/textdex/internal/rank"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := index.NewStore()
	idx := index.NewIndexer(store, 0, zap.NewNop())
	mgr := cache.NewManager(memory.NewStore(), cache.Config{}, zap.NewNop())
	eng, err := engine.New(store, idx, mgr, rank.DefaultStrategy, zap.NewNop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return NewServer(eng, zap.NewNop()).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rr := doJSON(t, h, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Status         string `json:"status"`
		CacheAvailable *bool  `json:"cache_available"`
	}
	decode(t, rr, &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.CacheAvailable == nil || !*resp.CacheAvailable {
		t.Errorf("cache_available = %v, want true", resp.CacheAvailable)
	}
}

func TestIndexAndSearch(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/documents", map[string]any{
		"doc_id":  "doc1",
		"content": "cats and dogs",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("index status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, "GET", "/search?q=cats", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d", rr.Code)
	}
	var resp struct {
		Query   string `json:"query"`
		Limit   int    `json:"limit"`
		Count   int    `json:"count"`
		Results []struct {
			DocID string  `json:"doc_id"`
			Score float64 `json:"score"`
		} `json:"results"`
	}
	decode(t, rr, &resp)
	if resp.Count != 1 || len(resp.Results) != 1 {
		t.Fatalf("count = %d, results = %d", resp.Count, len(resp.Results))
	}
	if resp.Results[0].DocID != "doc1" || resp.Results[0].Score <= 0 {
		t.Errorf("result = %+v", resp.Results[0])
	}
	if resp.Limit != engine.DefaultLimit {
		t.Errorf("limit = %d, want default %d", resp.Limit, engine.DefaultLimit)
	}
}

func TestSearch_Validation(t *testing.T) {
	h := newTestServer(t)

	if rr := doJSON(t, h, "GET", "/search", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d", rr.Code)
	}
	if rr := doJSON(t, h, "GET", "/search?q=cats&limit=abc", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d", rr.Code)
	}
	if rr := doJSON(t, h, "GET", "/search?q=cats&limit=-1", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("negative limit: status = %d", rr.Code)
	}
}

func TestIndexDocument_Errors(t *testing.T) {
	h := newTestServer(t)

	// Missing content.
	rr := doJSON(t, h, "POST", "/documents", map[string]any{"doc_id": "doc1"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("validation: status = %d", rr.Code)
	}

	// Duplicate.
	body := map[string]any{"doc_id": "doc1", "content": "cats"}
	if rr := doJSON(t, h, "POST", "/documents", body); rr.Code != http.StatusCreated {
		t.Fatalf("first insert: status = %d", rr.Code)
	}
	if rr := doJSON(t, h, "POST", "/documents", body); rr.Code != http.StatusConflict {
		t.Errorf("duplicate: status = %d", rr.Code)
	}

	// Malformed JSON.
	req := httptest.NewRequest("POST", "/documents", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status = %d", rec.Code)
	}
}

func TestBatchIndex(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "POST", "/documents/batch", map[string]any{
		"documents": []map[string]any{
			{"doc_id": "doc1", "content": "cats"},
			{"doc_id": "", "content": "no id"},
			{"doc_id": "doc2", "content": "dogs"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Indexed int `json:"indexed_count"`
		Total   int `json:"total_count"`
	}
	decode(t, rr, &resp)
	if resp.Indexed != 2 || resp.Total != 3 {
		t.Errorf("indexed = %d, total = %d", resp.Indexed, resp.Total)
	}

	if rr := doJSON(t, h, "POST", "/documents/batch", map[string]any{}); rr.Code != http.StatusBadRequest {
		t.Errorf("missing documents array: status = %d", rr.Code)
	}
}

func TestGetAndRemoveDocument(t *testing.T) {
	h := newTestServer(t)
	_ = doJSON(t, h, "POST", "/documents", map[string]any{"doc_id": "doc1", "content": "cats"})

	rr := doJSON(t, h, "GET", "/documents/doc1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	var rec struct {
		DocID   string `json:"doc_id"`
		Content string `json:"content"`
	}
	decode(t, rr, &rec)
	if rec.DocID != "doc1" || rec.Content != "cats" {
		t.Errorf("record = %+v", rec)
	}

	if rr := doJSON(t, h, "GET", "/documents/missing", nil); rr.Code != http.StatusNotFound {
		t.Errorf("missing get status = %d", rr.Code)
	}

	if rr := doJSON(t, h, "DELETE", "/documents/doc1", nil); rr.Code != http.StatusOK {
		t.Errorf("delete status = %d", rr.Code)
	}
	if rr := doJSON(t, h, "DELETE", "/documents/doc1", nil); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rr.Code)
	}
}

func TestDocumentTerms(t *testing.T) {
	h := newTestServer(t)
	_ = doJSON(t, h, "POST", "/documents", map[string]any{"doc_id": "doc1", "content": "cats cats dogs"})

	rr := doJSON(t, h, "GET", "/documents/doc1/terms", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		DocID string `json:"doc_id"`
		Terms []struct {
			Term   string  `json:"term"`
			Weight float64 `json:"weight"`
		} `json:"terms"`
	}
	decode(t, rr, &resp)
	if len(resp.Terms) != 2 || resp.Terms[0].Term != "cats" {
		t.Errorf("terms = %+v", resp.Terms)
	}
}

func TestStats(t *testing.T) {
	h := newTestServer(t)
	_ = doJSON(t, h, "POST", "/documents", map[string]any{"doc_id": "doc1", "content": "cats"})

	rr := doJSON(t, h, "GET", "/stats", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Stats struct {
			NumDocuments int    `json:"num_documents"`
			RankerType   string `json:"ranker_type"`
			Cache        *struct {
				Enabled bool `json:"cache_enabled"`
			} `json:"cache"`
		} `json:"stats"`
	}
	decode(t, rr, &resp)
	if resp.Stats.NumDocuments != 1 {
		t.Errorf("num_documents = %d", resp.Stats.NumDocuments)
	}
	if resp.Stats.RankerType != "tfidf" {
		t.Errorf("ranker_type = %q", resp.Stats.RankerType)
	}
	if resp.Stats.Cache == nil || !resp.Stats.Cache.Enabled {
		t.Errorf("cache block = %+v", resp.Stats.Cache)
	}
}

func TestSetStrategy(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, "PUT", "/strategy", map[string]any{"strategy": "tfidf"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, "PUT", "/strategy", map[string]any{"strategy": "bm25"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy status = %d", rr.Code)
	}
	var errResp struct {
		Error     string   `json:"error"`
		Available []string `json:"available"`
	}
	decode(t, rr, &errResp)
	if len(errResp.Available) == 0 || errResp.Available[0] != "tfidf" {
		t.Errorf("available = %v, want [tfidf]", errResp.Available)
	}
}

func TestClearCache(t *testing.T) {
	h := newTestServer(t)
	_ = doJSON(t, h, "POST", "/documents", map[string]any{"doc_id": "doc1", "content": "cats"})
	_ = doJSON(t, h, "GET", "/search?q=cats", nil)

	rr := doJSON(t, h, "POST", "/cache/clear", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp map[string]bool
	decode(t, rr, &resp)
	if !resp["success"] {
		t.Error("clear reported failure")
	}
}

func TestResetCacheMetrics(t *testing.T) {
	h := newTestServer(t)
	_ = doJSON(t, h, "POST", "/documents", map[string]any{"doc_id": "doc1", "content": "cats"})
	_ = doJSON(t, h, "GET", "/search?q=cats", nil) // miss
	_ = doJSON(t, h, "GET", "/search?q=cats", nil) // hit

	rr := doJSON(t, h, "POST", "/cache/metrics/reset", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = doJSON(t, h, "GET", "/stats", nil)
	var resp struct {
		Stats struct {
			Cache *struct {
				Total int64 `json:"total"`
			} `json:"cache"`
		} `json:"stats"`
	}
	decode(t, rr, &resp)
	if resp.Stats.Cache == nil {
		t.Fatal("cache block missing from stats")
	}
	// The stats read itself may count one lookup, but the search
	// hits/misses from before the reset must be gone.
	if resp.Stats.Cache.Total > 1 {
		t.Errorf("cache total after reset = %d", resp.Stats.Cache.Total)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	rr := doJSON(t, h, "GET", "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.Len() == 0 {
		t.Error("empty metrics exposition")
	}
}
