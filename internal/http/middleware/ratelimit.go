package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aanand-mishra/people-api/internal/utils/response"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a client's bucket is kept after its last request.
const DefaultIdleTTL = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client address with a token bucket.
// Buckets idle for longer than the TTL are evicted.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*client),
		rate:      rate.Limit(rps),
		burst:     burst,
		idleTTL:   DefaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweep(now)
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// sweep drops idle buckets. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.idleTTL {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

// Len reports how many client buckets are held.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Handler rejects requests over the limit with 429. It keys on the host
// part of r.RemoteAddr, which is the TCP peer unless chi's RealIP runs
// earlier in the chain.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(key); err == nil {
			key = host
		}

		if !rl.limiter(key).Allow() {
			slog.Warn("rate limit exceeded", slog.String("client", key))
			response.WriteJSON(w, http.StatusTooManyRequests,
				response.GeneralError(errors.New("rate limit exceeded")))
			return
		}
		next.ServeHTTP(w, r)
	})
}
