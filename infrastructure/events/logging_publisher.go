// Package events provides event publisher implementations.
package events

import (
	"salesvc/domain/shared"
	"salesvc/pkg/logger"

	"go.uber.org/zap"
)

// LoggingEventPublisher writes every published event to the structured log.
// It is the default sink when no message broker is configured; swapping in a
// real broker only requires another shared.EventPublisher implementation.
type LoggingEventPublisher struct{}

func NewLoggingEventPublisher() *LoggingEventPublisher {
	return &LoggingEventPublisher{}
}

func (p *LoggingEventPublisher) Publish(event shared.DomainEvent) error {
	logger.Info("domain event published",
		zap.String("event", event.EventName()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Time("occurred_on", event.OccurredOn()),
	)
	return nil
}

var _ shared.EventPublisher = (*LoggingEventPublisher)(nil)
