package mocks

import (
	"sync"

	"salesvc/domain/shared"
)

// MockEventPublisher records published events for assertions. FailWith makes
// every Publish return that error, for testing the swallow-and-log path.
type MockEventPublisher struct {
	mu       sync.Mutex
	events   []shared.DomainEvent
	FailWith error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (p *MockEventPublisher) Publish(event shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FailWith != nil {
		return p.FailWith
	}
	p.events = append(p.events, event)
	return nil
}

// Events returns the published events in publish order.
func (p *MockEventPublisher) Events() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]shared.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventNames returns just the names, in publish order.
func (p *MockEventPublisher) EventNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.EventName()
	}
	return names
}

var _ shared.EventPublisher = (*MockEventPublisher)(nil)
