package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultLimiterIdle = 10 * time.Minute
	defaultMaxClients  = 10000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client. Buckets idle for longer than
// the idle timeout are dropped, and at most maxClients buckets are kept.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	rateLimit  rate.Limit
	burstLimit int
	idle       time.Duration
	maxClients int
	clock      clock.Clock
	lastSweep  time.Time
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithLimiterClock sets the clock used for refills and eviction.
func WithLimiterClock(c clock.Clock) RateLimiterOption {
	return func(r *RateLimiter) {
		r.clock = c
	}
}

// WithIdleTimeout sets how long an unused client bucket is kept.
func WithIdleTimeout(d time.Duration) RateLimiterOption {
	return func(r *RateLimiter) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithMaxClients caps the number of tracked clients.
func WithMaxClients(n int) RateLimiterOption {
	return func(r *RateLimiter) {
		if n > 0 {
			r.maxClients = n
		}
	}
}

// NewRateLimiter creates a limiter allowing ratePerSecond requests per client
// with bursts of up to burst requests.
func NewRateLimiter(ratePerSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		rateLimit:  rate.Limit(ratePerSecond),
		burstLimit: burst,
		idle:       defaultLimiterIdle,
		maxClients: defaultMaxClients,
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.clock.Now()
	return r
}

// Allow reports whether a request from the client may proceed.
func (r *RateLimiter) Allow(client string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if now.Sub(r.lastSweep) >= r.idle {
		r.sweep(now)
	}

	c, ok := r.clients[client]
	if !ok {
		if len(r.clients) >= r.maxClients {
			r.sweep(now)
			if len(r.clients) >= r.maxClients {
				r.evictOldest()
			}
		}
		c = &clientLimiter{limiter: rate.NewLimiter(r.rateLimit, r.burstLimit)}
		r.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// sweep drops clients idle for at least the idle timeout. Callers hold mu.
func (r *RateLimiter) sweep(now time.Time) {
	for key, c := range r.clients {
		if now.Sub(c.lastSeen) >= r.idle {
			delete(r.clients, key)
		}
	}
	r.lastSweep = now
}

// evictOldest drops the least recently seen client. Callers hold mu.
func (r *RateLimiter) evictOldest() {
	var (
		oldest string
		seen   time.Time
		found  bool
	)
	for key, c := range r.clients {
		if !found || c.lastSeen.Before(seen) {
			oldest, seen, found = key, c.lastSeen, true
		}
	}
	if found {
		delete(r.clients, oldest)
	}
}

// Middleware rejects requests over the client's limit with 429.
// The client is gin's ClientIP, which only honors forwarding headers from
// trusted proxies (see WithTrustedProxies).
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
