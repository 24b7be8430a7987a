package events

import (
	"context"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes sale events to one topic, keyed by car id so every
// event for a car lands on the same partition in order.
type KafkaPublisher struct {
	w *kafkaGo.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkaGo.Hash{},
		AllowAutoTopicCreation: true,
		// Publish runs on the request path; don't wait out the 1s default.
		BatchTimeout: 10 * time.Millisecond,
	}}
}

func (k *KafkaPublisher) Publish(ctx context.Context, evt SaleEvent) error {
	payload, err := evt.encode()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return k.w.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(evt.CarID),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
}

func (k *KafkaPublisher) Close() error { return k.w.Close() }
