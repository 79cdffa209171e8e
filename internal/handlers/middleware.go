package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vocabdrill/internal/logger"
	"vocabdrill/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserIDContextKey ContextKey = "user_id"

// Authenticator resolves a bearer token to a user id
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth    Authenticator
	limiter *security.RateLimiter
	log     *logger.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(auth Authenticator, limiter *security.RateLimiter, log *logger.Logger) *Middleware {
	return &Middleware{auth: auth, limiter: limiter, log: log}
}

// RequireAuth is middleware that requires a valid bearer token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondWithError(m.log, w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		userID, err := m.auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			respondWithError(m.log, w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit is middleware that throttles requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(r.Context(), ip) {
			m.log.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			respondWithError(m.log, w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests
func Logging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String())
	})
}

// UserIDFromContext retrieves the authenticated user id from the request context
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}
