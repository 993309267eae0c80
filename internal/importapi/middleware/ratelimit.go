package middleware

import (
	"net/http"
	"strings"

	"github.com/catalogops/import-pipeline/internal/auth/ratelimit"
)

// RateLimit returns middleware that enforces the per-principal request
// limit. It reads the principal from context (set by BasicAuth), so it must
// sit inside the auth middleware in the chain. Requests without a principal
// pass through for BasicAuth to reject. Health endpoints are exempt.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			principal := GetPrincipal(r.Context())
			if principal == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(r.Context(), principal) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
