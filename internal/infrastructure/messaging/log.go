package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
)

// LogPublisher stands in for Kafka when no brokers are configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.Event) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("aggregate_id", event.AggregateID).
		Int("movements", len(event.Movements)).
		Msg("event published")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
