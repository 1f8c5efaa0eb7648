package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPErrorsTotal tracks HTTP errors by type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)
)

// Respond converts err into a structured error, logs it with the request
// context and writes the JSON error body.
func Respond(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	structuredErr := AsStructuredError(err)
	HTTPErrorsTotal.WithLabelValues(string(structuredErr.Type)).Inc()
	logError(r, structuredErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(structuredErr.HTTPStatus())
	if err := json.NewEncoder(w).Encode(structuredErr.ToResponse()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write error response", "error", err)
	}
}

// logError logs an error with request context.
func logError(r *http.Request, err *Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", r.URL.Path,
		"method", r.Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := r.Context()
	switch err.Type {
	case TypeValidation, TypeNotFound, TypeTooLarge:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case TypeRateLimited:
		slog.WarnContext(ctx, "Rate limit exceeded", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	}
}
