package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

type DefaultKafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

func NewDefaultKafkaPublisher(brokers []string) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
		timeout: 10 * time.Second,
	}
}

// Publish writes msgs to topic. Messages sharing a key land on the same
// partition, so events of one order or phone stay ordered.
func (k *DefaultKafkaPublisher) Publish(topic string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()
	return k.writer.WriteMessages(ctx, km...)
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}

// NoopPublisher drops every message. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, ...domain.Message) error { return nil }
