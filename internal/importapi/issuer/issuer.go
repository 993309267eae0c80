// Package issuer grants time-limited, write-scoped upload locations. The key
// is derived by namespacing the requested file name under the inbound prefix
// that the file parser's trigger filters on; the two must stay in lockstep.
package issuer

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	apperrors "github.com/catalogops/import-pipeline/pkg/errors"
)

// UploadGrant is the issued permission to PUT one object. No record of it is
// kept after issuance, so grants cannot be revoked or tracked.
type UploadGrant struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Presigner obtains write-scoped presigned URLs from the object store.
type Presigner interface {
	PresignedUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*url.URL, error)
}

// Issuer derives object keys and requests presigned upload grants.
type Issuer struct {
	presigner   Presigner
	prefix      string
	contentType string
	ttl         time.Duration
	logger      *slog.Logger
}

// New creates an Issuer writing under prefix with the given grant TTL.
func New(presigner Presigner, prefix, contentType string, ttl time.Duration) *Issuer {
	return &Issuer{
		presigner:   presigner,
		prefix:      prefix,
		contentType: contentType,
		ttl:         ttl,
		logger:      slog.Default().With("component", "issuer"),
	}
}

// Issue returns an UploadGrant for fileName. An empty name is a client
// error and no grant is requested.
func (i *Issuer) Issue(ctx context.Context, fileName string) (*UploadGrant, error) {
	if fileName == "" {
		return nil, apperrors.New(apperrors.ErrMissingFileName, 400, "query parameter 'name' is required")
	}

	key := i.prefix + fileName
	u, err := i.presigner.PresignedUpload(ctx, key, i.contentType, i.ttl)
	if err != nil {
		i.logger.Error("failed to presign upload", "key", key, "error", err)
		return nil, apperrors.Newf(apperrors.ErrUpstreamUnavailable, 500, "requesting upload grant for %s", key)
	}

	i.logger.Info("upload grant issued", "key", key, "expires_in", int(i.ttl.Seconds()))
	return &UploadGrant{
		URL:       u.String(),
		Key:       key,
		ExpiresIn: int(i.ttl.Seconds()),
	}, nil
}
