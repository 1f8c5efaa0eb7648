// Package server wires HTTP handlers into a chi router for the scoreline
// application via routing helpers.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/Tyrowin/scoreline/internal/errors"
	"github.com/Tyrowin/scoreline/internal/match"
	"github.com/Tyrowin/scoreline/internal/web"
)

const (
	apiTimeout        = 15 * time.Second
	assetCacheControl = "public, max-age=31536000, immutable"
)

// routes configures the router with every application route.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperrors.Respond(w, r, apperrors.NotFoundError("route not found").
			WithContext("path", r.URL.Path))
	})

	r.Get("/health", s.HealthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
		prometheus.Gatherers{s.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	))
	r.Get("/ws", s.WebSocketHandler)

	r.Group(func(r chi.Router) {
		r.Use(noStore)
		r.Get("/", s.ControlPageHandler)
		r.Get("/overlay", s.OverlayPageHandler)
	})
	r.With(middleware.SetHeader("Cache-Control", assetCacheControl)).Method(http.MethodGet, "/assets/*", web.Assets())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.origins.apiCORS())
		r.Use(middleware.Timeout(apiTimeout))
		r.Use(middleware.SetHeader("Cache-Control", "no-store"))
		r.Get("/match-state", s.MatchStateHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware)
			r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))

			r.Post("/update-score", mutationHandler(s, match.OpUpdateScore, s.service.UpdateScore))
			r.Post("/update-round", mutationHandler(s, match.OpUpdateRound, s.service.UpdateRound))
			r.Post("/update-teams", mutationHandler(s, match.OpUpdateTeams, s.service.UpdateTeams))
			r.Post("/update-event", mutationHandler(s, match.OpUpdateEvent, s.service.UpdateEvent))
			r.Post("/update-sides", mutationHandler(s, match.OpUpdateSides, s.service.UpdateSides))
		})
	})

	return r
}
