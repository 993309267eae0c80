package catalogbatch

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/catalogops/import-pipeline/internal/fileparser"
	"github.com/catalogops/import-pipeline/pkg/kafka"
	"github.com/catalogops/import-pipeline/pkg/metrics"
	"github.com/google/uuid"
)

// RecordStore persists catalog records. SaveProduct and SaveStock are two
// separate writes with no cross-store transaction; a crash between them can
// leave a product without a stock entry.
type RecordStore interface {
	SaveProduct(ctx context.Context, rec CatalogRecord) error
	SaveStock(ctx context.Context, productID string, count int) error
}

// Notifier publishes batch completion notifications.
type Notifier interface {
	NotifyCompletion(ctx context.Context, n CompletionNotification) error
}

// Processor validates and persists one batch of row messages at a time.
// It assigns a fresh identity per record on every invocation, so broker
// redelivery of a message creates a duplicate record.
type Processor struct {
	store    RecordStore
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewProcessor creates a Processor over the given store and notifier.
func NewProcessor(store RecordStore, notifier Notifier, m *metrics.Metrics) *Processor {
	return &Processor{
		store:    store,
		notifier: notifier,
		metrics:  m,
		logger:   slog.Default().With("component", "catalog-batch"),
	}
}

// Handler adapts the Processor to the queue consumer's batch callback.
func (p *Processor) Handler() kafka.BatchHandler {
	return func(ctx context.Context, msgs []kafka.Message) {
		p.HandleBatch(ctx, msgs)
	}
}

// HandleBatch processes every message in the batch independently: a
// deserialization or validation failure marks only that message as failed.
// After the batch, exactly one completion notification goes out if at least
// one record persisted; an all-fail batch publishes nothing.
func (p *Processor) HandleBatch(ctx context.Context, msgs []kafka.Message) BatchResult {
	var result BatchResult
	fileKeys := make(map[string]struct{})

	for _, msg := range msgs {
		key, err := p.processMessage(ctx, msg.Value)
		if err != nil {
			p.logger.Error("message failed",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
			result.Failed++
			continue
		}
		result.Succeeded++
		if key != "" {
			fileKeys[key] = struct{}{}
		}
	}

	for key := range fileKeys {
		result.FileKeys = append(result.FileKeys, key)
	}
	sort.Strings(result.FileKeys)

	p.countBatch(result)
	p.logger.Info("batch processed",
		"size", len(msgs),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"outcome", result.Outcome(),
	)

	if result.Succeeded == 0 {
		return result
	}

	notification := CompletionNotification{
		FileKeys:    result.FileKeys,
		Succeeded:   result.Succeeded,
		Failed:      result.Failed,
		Outcome:     result.Outcome(),
		CompletedAt: time.Now().UTC(),
	}
	if err := p.notifier.NotifyCompletion(ctx, notification); err != nil {
		p.logger.Error("failed to publish completion notification", "error", err)
	} else if p.metrics != nil {
		p.metrics.NotificationsTotal.Inc()
	}
	return result
}

// processMessage decodes, validates, and persists a single row message,
// returning the source file key on success.
func (p *Processor) processMessage(ctx context.Context, value []byte) (string, error) {
	row, err := kafka.DecodeJSON[fileparser.RowMessage](value)
	if err != nil {
		p.countRecord("decode_error")
		return "", err
	}

	rec, err := buildRecord(row.Fields)
	if err != nil {
		p.countRecord("invalid")
		return "", err
	}

	if err := p.store.SaveProduct(ctx, rec); err != nil {
		p.countRecord("store_error")
		return "", err
	}
	if err := p.store.SaveStock(ctx, rec.ID, rec.Count); err != nil {
		// The product row is already committed; the missing stock entry is
		// an accepted inconsistency window.
		p.countRecord("store_error")
		return "", err
	}

	p.countRecord("persisted")
	p.logger.Debug("record persisted", "id", rec.ID, "title", rec.Title, "source", row.SourceKey)
	return row.SourceKey, nil
}

// buildRecord validates required fields (title, price, count) and assigns a
// fresh identity.
func buildRecord(fields map[string]string) (CatalogRecord, error) {
	title := strings.TrimSpace(fields["title"])
	if title == "" {
		return CatalogRecord{}, &ValidationError{Field: "title", Reason: "required"}
	}
	price, err := strconv.Atoi(strings.TrimSpace(fields["price"]))
	if err != nil {
		return CatalogRecord{}, &ValidationError{Field: "price", Reason: "required integer"}
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields["count"]))
	if err != nil {
		return CatalogRecord{}, &ValidationError{Field: "count", Reason: "required integer"}
	}

	return CatalogRecord{
		ID:          uuid.NewString(),
		Title:       title,
		Description: fields["description"],
		Price:       price,
		Count:       count,
	}, nil
}

// ValidationError reports a missing or unparseable required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid record: field " + e.Field + ": " + e.Reason
}

func (p *Processor) countRecord(result string) {
	if p.metrics != nil {
		p.metrics.RecordsTotal.WithLabelValues(result).Inc()
	}
}

func (p *Processor) countBatch(result BatchResult) {
	if p.metrics == nil {
		return
	}
	outcome := string(result.Outcome())
	if result.Succeeded == 0 {
		outcome = "failed"
	}
	p.metrics.BatchesTotal.WithLabelValues(outcome).Inc()
}
