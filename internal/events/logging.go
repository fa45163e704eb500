package events

import (
	"context"

	"github.com/rs/zerolog"
)

type loggingPublisher struct {
	logger zerolog.Logger
}

// NewLoggingPublisher records events in the log instead of a broker. It is
// used when Kafka is disabled.
func NewLoggingPublisher(logger zerolog.Logger) Publisher {
	return &loggingPublisher{
		logger: logger.With().Str("component", "event-log").Logger(),
	}
}

func (p *loggingPublisher) Publish(_ context.Context, event OrderEvent) error {
	p.logger.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Str("order_number", event.OrderNumber).
		Str("status", string(event.Status)).
		Str("actor", event.Actor).
		Msg("order event")
	return nil
}

func (p *loggingPublisher) Close() error {
	return nil
}
