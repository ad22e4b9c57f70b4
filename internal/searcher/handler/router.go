package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/analytics"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/health"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/metrics"
	"github.com/pollikk/pre-inf1101-p2-v2/pkg/middleware"
)

// RouterDeps are the optional collaborators mounted next to the search API.
// Nil fields leave their routes out.
type RouterDeps struct {
	Analytics *analytics.Handler
	Health    *health.Checker
	Metrics   *metrics.Metrics
	Timeout   time.Duration
}

func NewRouter(h *Handler, deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	if deps.Timeout > 0 {
		r.Use(middleware.Timeout(deps.Timeout))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/stats", h.Stats)
		r.Get("/cache/stats", h.CacheStats)
		if deps.Analytics != nil {
			r.Get("/analytics", deps.Analytics.Stats)
		}
	})
	if deps.Health != nil {
		r.Get("/health/live", deps.Health.LiveHandler())
		r.Get("/health/ready", deps.Health.ReadyHandler())
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}
	return r
}
