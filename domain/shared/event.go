package shared

import (
	"fmt"
	"time"
)

// DomainEvent is an event recorded by an aggregate when its state changes.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string
}

// EventPublisher delivers domain events to whatever sink the application is
// wired with. Publishing is fire-and-forget from the domain's point of view:
// no subscriber is required for correctness, and a publish failure must never
// roll back the business operation that produced the event.
type EventPublisher interface {
	Publish(event DomainEvent) error
}

// ValidateEvent rejects structurally broken events before publishing.
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}

	if event.GetAggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}

	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}

	return nil
}
