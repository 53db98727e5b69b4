package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka publishes relayed audit events to the broker. Messages are keyed by
// entity id so all events for one principal/session land on one partition in
// commit order.
type Kafka struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	return &Kafka{
		writer: writer,
		logger: logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, key string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.logger.Error("audit event publish failed",
			"event", "kafka_publish_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", k.writer.Topic,
			"key", key,
			"error", err.Error(),
		)
		return err
	}
	k.logger.Info("audit event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", k.writer.Topic,
		"key", key,
	)
	return nil
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
