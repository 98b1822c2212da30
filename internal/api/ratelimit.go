package api

import (
	"log/slog"
	"net"
	"net/http"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/http/response"
	"github.com/recipebox/recipebox-server/internal/ratelimit"
)

// Paths that health checkers and scrapers poll. They are never rate limited.
var rateLimitExempt = map[string]bool{
	"/api/health": true,
	"/metrics":    true,
}

// RateLimitMiddleware creates a middleware that rate limits requests by IP.
// Returns 429 Too Many Requests when limit is exceeded. onReject may be nil.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, onReject func(), logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rateLimitExempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				if onReject != nil {
					onReject()
				}
				err := domainerrors.RateLimited(msgTooManyRequests)
				w.Header().Set("Retry-After", "1")
				response.Error(w, err.HTTPStatus(), err.Message, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr. middleware.RealIP has
// already applied X-Forwarded-For and X-Real-IP by the time this runs.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
