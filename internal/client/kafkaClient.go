package client

import (
	"context"
	"evcharge-storefront/internal/config"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventPublisher writes keyed messages to the order events topic.
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

type kafkaPublisherImpl struct {
	writer *kafka.Writer
}

// NewEventPublisher returns a no-op publisher when no brokers are set.
func NewEventPublisher(cfg *config.Kafka) EventPublisher {
	if len(cfg.Brokers) == 0 {
		return noopPublisher{}
	}

	return &kafkaPublisherImpl{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.OrderTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
			WriteTimeout:           10 * time.Second,
		},
	}
}

func (p *kafkaPublisherImpl) Publish(ctx context.Context, key, value []byte) error {
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *kafkaPublisherImpl) Close() error {
	return p.writer.Close()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, []byte, []byte) error { return nil }
func (noopPublisher) Close() error                                  { return nil }
