// Package chi serves the search engine over HTTP. The transport is a
// thin shim: all semantics live in the engine.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/domain"
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/engine"
	"github.com/kailas-cloud/textdex/internal/logger"
	"github.com/kailas-cloud/textdex/internal/metrics"
	"github.com/kailas-cloud/textdex/internal/rank"
)

// Server exposes the engine's operations as a JSON API.
type Server struct {
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer creates an HTTP API server around an engine instance.
func NewServer(eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: eng, logger: logger}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(metrics.Middleware())

	r.Get("/health", s.health)
	r.Get("/search", s.search)
	r.Get("/stats", s.stats)
	r.Post("/documents", s.indexDocument)
	r.Post("/documents/batch", s.indexBatch)
	r.Get("/documents/{id}", s.getDocument)
	r.Get("/documents/{id}/terms", s.documentTerms)
	r.Delete("/documents/{id}", s.removeDocument)
	r.Put("/strategy", s.setStrategy)
	r.Post("/cache/clear", s.clearCache)
	r.Post("/cache/metrics/reset", s.resetCacheMetrics)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger stores a request-scoped logger in the context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), l)))
	})
}

// health reports liveness plus cache backend reachability. A dead cache
// backend is degraded, not down: the engine keeps serving uncached.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if available, present := s.engine.CacheAvailable(r.Context()); present {
		resp["cache_available"] = available
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := s.engine.DefaultLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	results, err := s.engine.Search(r.Context(), query, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   query,
		Limit:   limit,
		Count:   len(results),
		Results: results,
	})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) indexDocument(w http.ResponseWriter, r *http.Request) {
	var rec document.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err := s.engine.IndexDocument(r.Context(), rec.DocID, rec.Content, rec.Metadata)
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "document already exists")
	case err != nil:
		s.logger.Error("index document failed", zap.String("doc_id", rec.DocID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "index failed")
	default:
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "doc_id": rec.DocID})
	}
}

func (s *Server) indexBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Documents == nil {
		writeError(w, http.StatusBadRequest, "documents array is required")
		return
	}

	count := s.engine.IndexDocuments(r.Context(), req.Documents)
	writeJSON(w, http.StatusOK, map[string]any{
		"indexed_count": count,
		"total_count":   len(req.Documents),
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.engine.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("get document failed", zap.String("doc_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) documentTerms(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	terms := s.engine.TermImportance(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": id, "terms": terms})
}

func (s *Server) removeDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.engine.RemoveDocument(r.Context(), id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		s.logger.Error("remove document failed", zap.String("doc_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "remove failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "doc_id": id})
}

func (s *Server) setStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.engine.SetStrategy(req.Strategy); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     err.Error(),
			"available": rank.Available(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "strategy": s.engine.StrategyName()})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	ok := s.engine.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": ok})
}

func (s *Server) resetCacheMetrics(w http.ResponseWriter, _ *http.Request) {
	s.engine.ResetCacheMetrics()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
