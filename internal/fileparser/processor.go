package fileparser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/catalogops/import-pipeline/pkg/metrics"
	"github.com/catalogops/import-pipeline/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// ObjectOpener streams the bytes of a stored object.
type ObjectOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// RowPublisher submits one row message to the queue.
type RowPublisher interface {
	PublishRow(ctx context.Context, msg RowMessage) error
}

// Processor handles object-created events: it resolves and decodes the
// object key, streams the CSV, and publishes each row. Publish operations
// for different rows run concurrently up to the configured cap.
type Processor struct {
	opener      ObjectOpener
	publisher   RowPublisher
	concurrency int
	timeout     time.Duration
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewProcessor creates a Processor with the given publish concurrency cap
// and per-object timeout.
func NewProcessor(opener ObjectOpener, publisher RowPublisher, concurrency int, timeout time.Duration, m *metrics.Metrics) *Processor {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Processor{
		opener:      opener,
		publisher:   publisher,
		concurrency: concurrency,
		timeout:     timeout,
		metrics:     m,
		logger:      slog.Default().With("component", "file-parser"),
	}
}

// Run drains events until ctx is cancelled. Each event is processed
// independently; a failed object never blocks the next one.
func (p *Processor) Run(ctx context.Context, events <-chan storage.ObjectEvent) error {
	p.logger.Info("file parser started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("file parser stopping", "reason", ctx.Err())
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := p.HandleEvent(ctx, ev); err != nil {
				p.logger.Error("object processing failed",
					"bucket", ev.Bucket,
					"key", ev.Key,
					"error", err,
				)
			}
		}
	}
}

// HandleEvent processes one object-created event end to end. Individual
// publish failures are logged and counted but do not abort the stream; a
// decode error fails the whole invocation while rows already enqueued stay
// enqueued.
func (p *Processor) HandleEvent(ctx context.Context, ev storage.ObjectEvent) error {
	key, err := url.QueryUnescape(ev.Key)
	if err != nil {
		return fmt.Errorf("decoding object key %q: %w", ev.Key, err)
	}
	p.logger.Info("processing uploaded file", "bucket", ev.Bucket, "key", key)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	body, err := p.opener.Open(ctx, key)
	if err != nil {
		p.countObject("read_error")
		return fmt.Errorf("opening object %s: %w", key, err)
	}
	defer body.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	published := 0
	rows, decodeErr := DecodeRows(body, func(fields map[string]string) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		msg := RowMessage{SourceKey: key, Fields: fields}
		g.Go(func() error {
			if err := p.publisher.PublishRow(gctx, msg); err != nil {
				p.logger.Error("row publish failed, row lost",
					"key", key,
					"error", err,
				)
				p.countPublish("error")
				return nil
			}
			p.countPublish("ok")
			return nil
		})
		published++
		return nil
	})

	if err := g.Wait(); err != nil && decodeErr == nil {
		decodeErr = err
	}

	if p.metrics != nil {
		p.metrics.RowsParsedTotal.Add(float64(rows))
	}
	if decodeErr != nil {
		p.countObject("decode_error")
		return fmt.Errorf("parsing %s after %d rows: %w", key, rows, decodeErr)
	}

	p.countObject("ok")
	p.logger.Info("file parsed", "key", key, "rows", rows, "publish_attempts", published)
	return nil
}

func (p *Processor) countObject(outcome string) {
	if p.metrics != nil {
		p.metrics.ObjectsProcessed.WithLabelValues(outcome).Inc()
	}
}

func (p *Processor) countPublish(status string) {
	if p.metrics != nil {
		p.metrics.RowPublishesTotal.WithLabelValues(status).Inc()
	}
}
