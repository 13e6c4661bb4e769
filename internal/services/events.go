package services

import (
	"context"

	"gym/pkg/logger"
)

// Routing keys of published domain events.
const (
	EventTraineeRegistered = "trainee.registered"
	EventTrainerRegistered = "trainer.registered"
	EventTraineeDeleted    = "trainee.deleted"
	EventTrainingCreated   = "training.created"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// publishEvent sends an event after the owning transaction committed. A nil
// publisher or a failed publish never fails the caller.
func publishEvent(ctx context.Context, log logger.Logger, events EventPublisher, routingKey string, payload map[string]interface{}) {
	if events == nil {
		log.Debug("event publisher is not configured, skipping event", "event", routingKey)
		return
	}
	if id := logger.CorrelationID(ctx); id != "" {
		payload["correlationId"] = id
	}
	if err := events.Publish(ctx, routingKey, payload); err != nil {
		log.InternalError("failed to publish event", err, "event", routingKey)
		return
	}
	log.Debug("published event", "event", routingKey)
}
