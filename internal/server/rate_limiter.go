// Package server implements a per-client token bucket limiter that protects
// the mutation endpoints from request floods.
package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	apperrors "github.com/Tyrowin/scoreline/internal/errors"
)

// limiterIdleTTL is how long an unused bucket is kept before eviction.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. A bucket holds burst
// tokens and refills burst tokens per interval.
type ipRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	clock     clockwork.Clock
	lastSweep time.Time
}

func newIPRateLimiter(cfg RateLimitConfig, clock clockwork.Clock) *ipRateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = time.Second
	}

	return &ipRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Limit(float64(burst) / interval.Seconds()),
		burst:     burst,
		clock:     clock,
		lastSweep: clock.Now(),
	}
}

func (l *ipRateLimiter) allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.evictIdle(now)

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// evictIdle drops buckets that have not been used for limiterIdleTTL. It
// runs at most once per TTL. Callers must hold l.mu.
func (l *ipRateLimiter) evictIdle(now time.Time) {
	if now.Sub(l.lastSweep) < limiterIdleTTL {
		return
	}
	l.lastSweep = now

	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
}

func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects requests from clients that exhausted their bucket.
func (l *ipRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.allow(key) {
			apperrors.Respond(w, r, apperrors.RateLimitedError("too many requests").
				WithContext("client", key))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller by IP. RemoteAddr is the connection
// address unless TrustProxyHeaders enabled the RealIP middleware.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
