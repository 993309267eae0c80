package middleware

import (
	"net/http"

	"github.com/catalogops/import-pipeline/pkg/logger"
	"github.com/google/uuid"
)

// RequestID assigns each request a UUID (or propagates an incoming
// X-Request-ID) and stores it in the request context for log enrichment.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
