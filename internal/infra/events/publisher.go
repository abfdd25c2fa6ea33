package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type TipPublisher interface {
	Publish(ctx context.Context, events ...TipEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTipPublisher writes tip events keyed by order id, so every event of one
// order lands on the same partition in order.
type KafkaTipPublisher struct {
	writer messageWriter
}

func NewKafkaTipPublisher(brokers []string, topic string) *KafkaTipPublisher {
	return &KafkaTipPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (k *KafkaTipPublisher) Publish(ctx context.Context, events ...TipEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := tipMessage(event)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("failed to write tip events: %w", err)
	}
	return nil
}

func tipMessage(event TipEvent) (kafka.Message, error) {
	v, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s event for order %s: %w", event.Type, event.OrderID, err)
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: v,
		Time:  event.OccurredAt,
	}, nil
}

func (k *KafkaTipPublisher) Close() error {
	return k.writer.Close()
}

// NoopTipPublisher is used when no brokers are configured.
type NoopTipPublisher struct{}

func (NoopTipPublisher) Publish(context.Context, ...TipEvent) error { return nil }
func (NoopTipPublisher) Close() error                              { return nil }
