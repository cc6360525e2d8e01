package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP with a token bucket per client.
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
// rps: requests per second per client
// burst: max burst size
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// getLimiter returns the limiter for ip and marks it as used.
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, exists := rl.limiters[ip]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = c
	}
	c.lastSeen = rl.now()
	return c.limiter
}

// Limit is a middleware that enforces the limit per client IP. Rejected requests get 429
// with a Retry-After hint.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.getLimiter(clientIP(r))

		if !limiter.Allow() {
			retryAfter := 1
			if rl.rate > 0 {
				if secs := int(1 / float64(rl.rate)); secs > retryAfter {
					retryAfter = secs
				}
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr. chi's RealIP middleware has already
// replaced it with X-Forwarded-For or X-Real-IP when a proxy set them.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// CleanupIdle drops limiters of clients not seen for maxIdle and returns how many remain.
func (rl *RateLimiter) CleanupIdle(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	for ip, c := range rl.limiters {
		if c.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
	return len(rl.limiters)
}

// RunCleanup calls CleanupIdle every interval until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupIdle(maxIdle)
		}
	}
}
