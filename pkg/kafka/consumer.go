// Package kafka provides Kafka producer and consumer clients backed by
// segmentio/kafka-go. The producer serialises events as JSON; the batch
// consumer fetches bounded groups of messages and hands them to a
// BatchHandler callback before committing the group's offsets.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/catalogops/import-pipeline/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Message is a single consumed Kafka message.
type Message struct {
	Key       []byte
	Value     []byte
	Partition int
	Offset    int64
}

// BatchHandler is invoked once per drained batch. Per-message failures are
// the handler's concern; the batch's offsets are committed when it returns.
type BatchHandler func(ctx context.Context, msgs []Message)

// BatchConsumer reads messages from a Kafka topic in bounded batches. A batch
// closes when it reaches batchSize messages or when pollWait elapses with at
// least one message buffered, whichever comes first.
type BatchConsumer struct {
	reader    *kafka.Reader
	batchSize int
	pollWait  time.Duration
	logger    *slog.Logger
	handler   BatchHandler
}

// NewBatchConsumer creates a BatchConsumer for the given topic and handler.
func NewBatchConsumer(cfg config.KafkaConfig, topic string, batchSize int, pollWait time.Duration, handler BatchHandler) *BatchConsumer {
	if batchSize <= 0 {
		batchSize = 5
	}
	if pollWait <= 0 {
		pollWait = 2 * time.Second
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &BatchConsumer{
		reader:    r,
		batchSize: batchSize,
		pollWait:  pollWait,
		logger:    slog.Default().With("component", "kafka-batch-consumer", "topic", topic),
		handler:   handler,
	}
}

// Start enters the consume loop, draining and processing batches until ctx
// is cancelled. Offsets are committed after every handled batch regardless
// of per-message outcomes; redelivery semantics beyond at-least-once belong
// to the broker.
func (c *BatchConsumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", "batch_size", c.batchSize)
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", "reason", ctx.Err())
			return c.reader.Close()
		default:
		}

		raw, err := c.fetchBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return c.reader.Close()
			}
			c.logger.Error("failed to fetch batch", "error", err)
			continue
		}
		if len(raw) == 0 {
			continue
		}

		msgs := make([]Message, len(raw))
		for i, m := range raw {
			msgs[i] = Message{Key: m.Key, Value: m.Value, Partition: m.Partition, Offset: m.Offset}
		}
		c.logger.Debug("batch received", "count", len(msgs))
		c.handler(ctx, msgs)

		if err := c.reader.CommitMessages(ctx, raw...); err != nil {
			c.logger.Error("failed to commit batch",
				"count", len(raw),
				"error", err,
			)
		}
	}
}

// fetchBatch blocks for the first message, then keeps fetching under a
// pollWait deadline until the batch is full or the deadline fires.
func (c *BatchConsumer) fetchBatch(ctx context.Context) ([]kafka.Message, error) {
	first, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	batch := []kafka.Message{first}

	pollCtx, cancel := context.WithTimeout(ctx, c.pollWait)
	defer cancel()
	for len(batch) < c.batchSize {
		msg, err := c.reader.FetchMessage(pollCtx)
		if err != nil {
			if pollCtx.Err() == nil {
				c.logger.Warn("fetch interrupted mid-batch", "error", err)
			}
			break
		}
		batch = append(batch, msg)
	}
	return batch, nil
}

// Close closes the underlying Kafka reader.
func (c *BatchConsumer) Close() error {
	return c.reader.Close()
}

// DecodeJSON is a generic helper that unmarshals a Kafka message value into T.
func DecodeJSON[T any](value []byte) (T, error) {
	var result T
	if err := json.Unmarshal(value, &result); err != nil {
		return result, fmt.Errorf("decoding kafka message: %w", err)
	}
	return result, nil
}
