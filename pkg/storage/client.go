// Package storage wraps the MinIO S3 client with the three operations the
// pipeline needs: presigned write grants, streaming object reads, and
// prefix-filtered object-created notifications.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/catalogops/import-pipeline/pkg/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectEvent describes one object-created notification. Key is reported
// as the store encodes it; callers are responsible for percent-decoding.
type ObjectEvent struct {
	Bucket string
	Key    string
}

// Client is an S3-compatible object store client scoped to a single bucket.
type Client struct {
	mc     *minio.Client
	bucket string
	logger *slog.Logger
}

// New creates a Client for the configured endpoint and bucket.
func New(cfg config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &Client{
		mc:     mc,
		bucket: cfg.Bucket,
		logger: slog.Default().With("component", "storage", "bucket", cfg.Bucket),
	}, nil
}

// PresignedUpload returns a write-scoped URL for a single PUT of the given
// key, valid for ttl and pinned to contentType.
func (c *Client) PresignedUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*url.URL, error) {
	headers := http.Header{"Content-Type": []string{contentType}}
	u, err := c.mc.PresignHeader(ctx, http.MethodPut, c.bucket, key, ttl, url.Values{}, headers)
	if err != nil {
		return nil, fmt.Errorf("presigning upload for %s: %w", key, err)
	}
	return u, nil
}

// Open returns a streaming reader for the object at key. Bytes are fetched
// incrementally as the caller reads; the object is never buffered whole.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("opening object %s: %w", key, err)
	}
	return obj, nil
}

// Listen subscribes to object-created notifications for keys under prefix.
// The returned channel closes when ctx is cancelled. Notification transport
// errors are logged and the subscription continues; the store redelivers
// at-least-once.
func (c *Client) Listen(ctx context.Context, prefix string) <-chan ObjectEvent {
	out := make(chan ObjectEvent)
	events := c.mc.ListenBucketNotification(ctx, c.bucket, prefix, "", []string{
		"s3:ObjectCreated:*",
	})

	go func() {
		defer close(out)
		for info := range events {
			if info.Err != nil {
				c.logger.Error("notification stream error", "error", info.Err)
				continue
			}
			for _, rec := range info.Records {
				select {
				case out <- ObjectEvent{Bucket: rec.S3.Bucket.Name, Key: rec.S3.Object.Key}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", c.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", c.bucket)
	}
	return nil
}
