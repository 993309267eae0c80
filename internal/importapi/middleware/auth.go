// Package middleware provides HTTP middleware for the import API front door:
// the Basic-credential authorization gate, CORS, and per-principal rate
// limiting.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/catalogops/import-pipeline/internal/auth/basicauth"
	"github.com/catalogops/import-pipeline/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// BasicAuth returns middleware that runs every request through the
// authorization gate. A malformed or absent credential maps to 401, an
// explicit Deny to 403. Health endpoints are exempt.
func BasicAuth(gate *basicauth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/health") {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := gate.Authorize(r.Header.Get("Authorization"), r.Method+" "+r.URL.Path)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if decision.Effect != basicauth.Allow {
				logger.FromContext(r.Context()).Warn("access denied",
					"principal", decision.Principal,
					"resource", decision.Resource,
				)
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, decision.Principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the authenticated principal from the request
// context, or "" when the request was not gated.
func GetPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey).(string)
	return principal
}

// writeError writes a JSON error response to the client.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
