// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, the control and overlay pages, and request logging.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/Tyrowin/scoreline/internal/errors"
	"github.com/Tyrowin/scoreline/internal/web"
)

// WebSocketHandler upgrades the request to a WebSocket connection and hands
// the new subscriber to the hub, which syncs it with the current state.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	client := NewClient(conn, s.hub, r.RemoteAddr, s.cfg.MaxMessageSize)
	s.hub.Register(client)
}

// HealthHandler provides a simple health check endpoint that returns server status.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "scoreline server is running (%d subscribers)", s.hub.ClientCount())
}

// ControlPageHandler serves the operator control page.
func (s *Server) ControlPageHandler(w http.ResponseWriter, r *http.Request) {
	render(w, r, web.ControlPage(s.service.Current()))
}

// OverlayPageHandler serves the broadcast overlay page.
func (s *Server) OverlayPageHandler(w http.ResponseWriter, r *http.Request) {
	render(w, r, web.OverlayPage(s.service.Current()))
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		apperrors.Respond(w, r, apperrors.InternalError("failed to render page", err))
	}
}

// noStore marks responses as uncacheable so browsers always load the
// latest pages.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request once the response is written.
// Health checks and metrics scrapes are logged at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		switch r.URL.Path {
		case "/health", "/metrics":
			level = slog.LevelDebug
		}

		slog.Log(r.Context(), level, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", statusOrOK(ww.Status()),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
