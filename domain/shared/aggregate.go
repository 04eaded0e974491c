package shared

// AggregateRoot is the entry point of an aggregate. It owns the consistency
// boundary: every mutation of the aggregate's entities goes through it, and it
// records the domain events those mutations produce.
type AggregateRoot interface {
	// ID returns the globally unique identity of the aggregate root.
	ID() string

	// Version returns the current version, used for optimistic concurrency
	// control at the repository boundary.
	Version() int

	// PullEvents returns and clears the events recorded by the aggregate.
	// The caller publishes them after a successful save.
	PullEvents() []DomainEvent
}

// Entity is an object with identity inside an aggregate. Equality follows the
// identity, not the attribute values.
type Entity interface {
	ID() string
}
