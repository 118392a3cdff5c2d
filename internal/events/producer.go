package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

const (
	UserTopic     = "user_events"
	PurchaseTopic = "purchase_events"
)

// Publisher pushes domain events to the broker. Publishing is best-effort
// everywhere: a failed event is logged by the caller, never returned to the
// client.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

var _ Publisher = (*KafkaProducer)(nil)

func NewKafkaProducer(address []string) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(address...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: w}
}

func (p *KafkaProducer) Publish(ctx context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
