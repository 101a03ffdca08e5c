package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher emits domain events. Publish failures are reported but must never
// fail the operation that produced the event.
type Publisher interface {
	Publish(ctx context.Context, topic string, key string, event Event) error
	Close() error
}

// KafkaPublisher writes events to Kafka using one writer across topics.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed publisher.
func NewKafkaPublisher(brokers []string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish marshals and writes one event. The key keeps events for the same
// order in a single partition, preserving their relative ordering.
func (p *KafkaPublisher) Publish(ctx context.Context, topic string, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write event to %s: %w", topic, err)
	}

	p.logger.Debug("event published",
		slog.String("topic", topic),
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. Used when no broker is configured and in
// tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, Event) error { return nil }
func (NopPublisher) Close() error                                         { return nil }
