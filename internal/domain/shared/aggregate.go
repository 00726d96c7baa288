package shared

// BaseAggregateRoot is embedded by aggregates that carry an optimistic-lock
// version and collect events while a command runs. Services drain the events
// with PullDomainEvents once the aggregate has been persisted.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent records events in the order they are raised.
func (a *BaseAggregateRoot) AddDomainEvent(events ...DomainEvent) {
	a.pending = append(a.pending, events...)
}

// GetDomainEvents returns the pending events without draining them.
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.pending
}

// PullDomainEvents returns the pending events and resets the queue.
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.pending
	a.pending = nil
	return events
}

// ClearDomainEvents drops pending events without announcing them.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
