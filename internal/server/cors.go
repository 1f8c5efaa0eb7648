package server

import (
	"net/http"

	"github.com/go-chi/cors"
)

// corsMaxAge is how long browsers may cache a preflight answer, in seconds.
const corsMaxAge = 300

// apiCORS lets browser controllers on other origins call /api. It follows
// the same policy as the push channel: `*` accepts any origin, otherwise
// same-origin pages and the configured allow-list.
func (p originPolicy) apiCORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: p.allowsOrigin,
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:  []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:          corsMaxAge,
	})
}
