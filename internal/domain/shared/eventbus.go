package shared

import "context"

// EventHandler reacts to domain events after the originating change is saved.
// Handler errors are logged by the bus and never reach the caller.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes filters delivery; empty receives everything.
	EventTypes() []string
}

// EventPublisher is what application services depend on to announce events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
