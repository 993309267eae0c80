package fileparser

import (
	"context"

	"github.com/catalogops/import-pipeline/pkg/kafka"
)

// QueuePublisher publishes row messages to the catalog-items topic. The
// source key is used as the partition key so one file's rows hash to the
// same partition; no ordering is guaranteed after enqueue.
type QueuePublisher struct {
	producer *kafka.Producer
}

// NewQueuePublisher wraps a Kafka producer as a RowPublisher.
func NewQueuePublisher(producer *kafka.Producer) *QueuePublisher {
	return &QueuePublisher{producer: producer}
}

func (q *QueuePublisher) PublishRow(ctx context.Context, msg RowMessage) error {
	return q.producer.Publish(ctx, kafka.Event{Key: msg.SourceKey, Value: msg})
}
