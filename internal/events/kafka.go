package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
	logger  zerolog.Logger
}

// publishAttempts caps broker round trips per event.
const publishAttempts = 3

// NewKafkaPublisher publishes events to topic, keyed by order number so every
// event of one order lands on the same partition. A publish gives up after
// timeout so a slow broker never holds a committed request open.
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration, logger zerolog.Logger) Publisher {
	logger = logger.With().Str("component", "kafka-publisher").Str("topic", topic).Logger()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           timeout,
		MaxAttempts:            publishAttempts,
		AllowAutoTopicCreation: true,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Debug().Msg(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error().Msg(fmt.Sprintf(msg, args...))
		}),
	}

	return newKafkaPublisher(writer, timeout, logger)
}

func newKafkaPublisher(writer messageWriter, timeout time.Duration, logger zerolog.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: writer, timeout: timeout, logger: logger}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "event-id", Value: []byte(event.ID.String())},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event for %s: %w", event.Type, event.OrderNumber, err)
	}

	p.logger.Debug().
		Str("event_type", string(event.Type)).
		Str("order_number", event.OrderNumber).
		Msg("order event published")

	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
