package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// SkipPrefixes lists path prefixes that are never limited, such as
	// health probes and the long-lived WebSocket upgrade.
	SkipPrefixes []string
	// IdleTTL is how long a client may stay silent before its bucket is
	// dropped. Zero uses one minute.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
		SkipPrefixes:      []string{"/health", "/ws"},
		IdleTTL:           time.Minute,
	}
}

// bucket is a token bucket for one client. It is guarded by ipLimiter.mu.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// ipLimiter hands out tokens per client IP and forgets clients that have
// been idle for longer than ttl.
type ipLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      float64
	burst     float64
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newIPLimiter(cfg RateLimitConfig) *ipLimiter {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ipLimiter{
		buckets: make(map[string]*bucket),
		rate:    cfg.RequestsPerSecond,
		burst:   float64(cfg.BurstSize),
		ttl:     ttl,
		now:     time.Now,
	}
}

// take spends one token for ip. When none is left it reports how many whole
// seconds the client should wait.
func (l *ipLimiter) take(ip string) (remaining int, retryAfter int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweepLocked(now)
	}

	b, found := l.buckets[ip]
	if !found {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[ip] = b
	}
	b.tokens = math.Min(l.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*l.rate)
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return int(b.tokens), 0, true
	}
	if l.rate <= 0 {
		return 0, 1, false
	}
	return 0, int((1-b.tokens)/l.rate) + 1, false
}

func (l *ipLimiter) sweepLocked(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.ttl {
			delete(l.buckets, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit returns a per-IP token bucket rate limiter.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	limiter := newIPLimiter(cfg)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range cfg.SkipPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			remaining, retryAfter, ok := limiter.take(c.RealIP())
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
