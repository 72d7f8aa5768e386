// internal/events/kafka.go
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const kafkaWriteTimeout = 5 * time.Second

// KafkaPublisher writes ledger events to one topic, keyed by event type.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: kafkaWriteTimeout,
		MaxAttempts:  3,
	}
	return &KafkaPublisher{w: w}, nil
}

func (kp *KafkaPublisher) Publish(ctx context.Context, evts ...Event) error {
	msgs := make([]kafka.Message, 0, len(evts))
	for _, e := range evts {
		body, err := e.Marshal()
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Type),
			Value: body,
		})
	}
	if err := kp.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write events to kafka: %w", err)
	}
	return nil
}

func (kp *KafkaPublisher) Close() error {
	return kp.w.Close()
}
