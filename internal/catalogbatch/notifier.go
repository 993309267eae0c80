package catalogbatch

import (
	"context"

	"github.com/catalogops/import-pipeline/pkg/kafka"
)

// TopicNotifier publishes completion notifications to the import-complete
// topic, from which external subscribers (for example an email bridge) fan
// out.
type TopicNotifier struct {
	producer *kafka.Producer
}

// NewTopicNotifier wraps a Kafka producer as a Notifier.
func NewTopicNotifier(producer *kafka.Producer) *TopicNotifier {
	return &TopicNotifier{producer: producer}
}

func (t *TopicNotifier) NotifyCompletion(ctx context.Context, n CompletionNotification) error {
	return t.producer.Publish(ctx, kafka.Event{Key: "import-complete", Value: n})
}
