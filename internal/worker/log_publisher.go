package worker

import (
	"context"

	"jaldrishti/internal/logger"
	"jaldrishti/internal/models"
)

// LogPublisher writes events to the structured log. Used when no brokers are configured.
type LogPublisher struct{}

// Publish logs one event.
func (LogPublisher) Publish(ctx context.Context, e *models.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logger.WithComponent("event_feed")
	log.Info().
		Str("kind", string(e.Kind)).
		Str("event_id", e.EventID()).
		Str("partition_key", e.PartitionKey).
		Str("node", e.Node).
		Time("emitted_at", e.EmittedAt).
		Msg("event")
	return nil
}

// PublishBatch logs each event in order.
func (l LogPublisher) PublishBatch(ctx context.Context, events []*models.Envelope) error {
	for _, e := range events {
		if err := l.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}
