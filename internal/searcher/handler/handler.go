package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/cache"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/executor"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/parser"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/ranker"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/logger"
)

// IndexStats is the part of the index engine the stats endpoint reads.
type IndexStats interface {
	Stat() (docs, terms int)
	Frozen() bool
	Fingerprint() string
}

type Handler struct {
	service      *searcher.Service
	index        IndexStats
	cache        *cache.QueryCache
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// SearchResponse is a SearchResult plus how it was produced.
type SearchResponse struct {
	*executor.SearchResult
	CacheHit  bool    `json:"cache_hit"`
	LatencyMs float64 `json:"latency_ms"`
}

// New creates a Handler. queryCache may be nil when caching is disabled.
func New(svc *searcher.Service, index IndexStats, queryCache *cache.QueryCache, defaultLimit, maxResults int) *Handler {
	return &Handler{
		service:      svc,
		index:        index,
		cache:        queryCache,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if h.maxResults > 0 && (limit == 0 || limit > h.maxResults) {
		limit = h.maxResults
	}

	resp, err := h.service.Search(ctx, query, limit)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		var syntaxErr *parser.SyntaxError
		switch {
		case errors.As(err, &syntaxErr):
			h.writeError(w, status, syntaxErr.Error())
		case errors.Is(err, searcher.ErrNoUsableCharacters):
			h.writeError(w, status, "found no usable characters in the query")
		case status < http.StatusInternalServerError:
			h.writeError(w, status, err.Error())
		default:
			logger.FromContext(ctx).Error("search execution failed", "query", query, "error", err)
			h.writeError(w, status, "search failed")
		}
		return
	}

	// results may be shared with concurrent callers through the cache
	result := *resp.Result
	if result.Results == nil {
		result.Results = []ranker.ScoredDoc{}
	}
	h.writeJSON(w, http.StatusOK, SearchResponse{
		SearchResult: &result,
		CacheHit:     resp.CacheHit,
		LatencyMs:    float64(resp.Latency.Microseconds()) / 1000,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	docs, terms := h.index.Stat()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"documents":   docs,
		"terms":       terms,
		"frozen":      h.index.Frozen(),
		"fingerprint": h.index.Fingerprint(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
