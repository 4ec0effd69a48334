package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loginsight-webhook/config"
	"loginsight-webhook/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

// EventPublisher fans dispatched events out to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event model.DispatchedEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaEventPublisher struct {
	writer messageWriter
	topic  string
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, event model.DispatchedEvent) error { return nil }
func (noopPublisher) Close() error                                                    { return nil }

// NewEventPublisher returns a no-op publisher when no brokers are configured.
func NewEventPublisher(lc fx.Lifecycle, cfg *config.Config) (EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("Kafka brokers not configured, dispatched events will not be published")
		return noopPublisher{}, nil
	}
	if cfg.Kafka.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.EventTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
	})
	p := newKafkaEventPublisher(writer, cfg.Kafka.EventTopic)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Closing Kafka event publisher")
			return p.Close()
		},
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.EventTopic).Msg("Kafka event publisher initialized")
	return p, nil
}

func newKafkaEventPublisher(writer messageWriter, topic string) *kafkaEventPublisher {
	return &kafkaEventPublisher{writer: writer, topic: topic}
}

func (p *kafkaEventPublisher) Publish(ctx context.Context, event model.DispatchedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal dispatched event for Kafka")
		return fmt.Errorf("failed to marshal dispatched event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Event.Hostname),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Str("topic", p.topic).Msg("Failed to write dispatched event to Kafka")
		return err
	}

	log.Debug().Str("topic", p.topic).Str("hostname", event.Event.Hostname).Msg("Published dispatched event to Kafka")
	return nil
}

func (p *kafkaEventPublisher) Close() error {
	return p.writer.Close()
}
