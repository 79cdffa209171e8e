package security

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
)

// RateLimiter throttles requests per client key
type RateLimiter struct {
	limiter ratelimit.RateLimiter
}

// NewRateLimiter allows rate requests per window for each key, with bursts up to rate
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	if rate <= 0 {
		rate = 1
	}
	return &RateLimiter{
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate,
			Interval: window,
		}),
	}
}

// Allow checks if a request from key should be allowed
func (rl *RateLimiter) Allow(ctx context.Context, key string) bool {
	return rl.limiter.Allow(ctx, key)
}

// GetClientIP extracts the client IP from the request
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (when behind proxy); the first entry is the client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
