package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/catalogops/import-pipeline/internal/importapi/issuer"
	apperrors "github.com/catalogops/import-pipeline/pkg/errors"
	"github.com/catalogops/import-pipeline/pkg/logger"
	"github.com/catalogops/import-pipeline/pkg/metrics"
)

// GrantIssuer is the upload-grant operation the handler fronts.
type GrantIssuer interface {
	Issue(ctx context.Context, fileName string) (*issuer.UploadGrant, error)
}

type Handler struct {
	issuer  GrantIssuer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(iss GrantIssuer, m *metrics.Metrics) *Handler {
	return &Handler{
		issuer:  iss,
		metrics: m,
		logger:  slog.Default().With("component", "import-handler"),
	}
}

// Import handles GET /import?name=<fileName>. It returns the upload grant as
// {url, key, expiresIn}, 400 when the name is missing, 500 otherwise.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	grant, err := h.issuer.Issue(ctx, r.URL.Query().Get("name"))
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("grant issuance failed",
			"error", err,
			"status_code", statusCode,
		)
		message := "could not issue upload grant"
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && statusCode < 500 {
			message = appErr.Message
		}
		h.writeError(w, statusCode, message)
		return
	}
	if h.metrics != nil {
		h.metrics.GrantsIssuedTotal.Inc()
	}
	log.Info("import requested", "key", grant.Key)
	h.writeJSON(w, http.StatusOK, grant)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}
