// Package router wires up the import API routes and applies the middleware
// chain.
package router

import (
	"net/http"
	"time"

	"github.com/catalogops/import-pipeline/internal/auth/basicauth"
	"github.com/catalogops/import-pipeline/internal/auth/ratelimit"
	"github.com/catalogops/import-pipeline/internal/importapi/handler"
	apimw "github.com/catalogops/import-pipeline/internal/importapi/middleware"
	"github.com/catalogops/import-pipeline/pkg/health"
	"github.com/catalogops/import-pipeline/pkg/metrics"
	pkgmw "github.com/catalogops/import-pipeline/pkg/middleware"
)

// New builds the full import API HTTP handler.
//
// Route table:
//
//	GET  /import          → issue presigned upload grant
//	GET  /health          → service health
//	GET  /health/live     → liveness probe
//	GET  /health/ready    → readiness probe (checks dependencies)
//
// Middleware chain (outermost first):
//
//	RequestID → Metrics → Timeout → CORS → BasicAuth → RateLimit → handler
func New(h *handler.Handler, gate *basicauth.Gate, limiter *ratelimit.Limiter, checker *health.Checker, m *metrics.Metrics, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /import", h.Import)

	// Health (unauthenticated)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	// Middleware chain, applied inside-out.
	var chain http.Handler = mux
	chain = apimw.RateLimit(limiter)(chain)
	chain = apimw.BasicAuth(gate)(chain)
	chain = apimw.CORS(chain)
	chain = pkgmw.Timeout(requestTimeout)(chain)
	if m != nil {
		chain = pkgmw.Metrics(m)(chain)
	}
	chain = pkgmw.RequestID(chain)

	return chain
}
