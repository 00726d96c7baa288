package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// History is an audit entry for one change to a subscription
type History struct {
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	Action         Action
	OldStatus      Status
	NewStatus      Status
	ChangedFields  map[string]any
	ActorType      ActorType
	ActorID        string
	Notes          string
	CreatedAt      time.Time
}

// NewHistory builds an entry for s, which must already carry its new state
func NewHistory(s *Subscription, action Action, oldStatus Status, actor Actor, notes string, changed map[string]any) *History {
	return &History{
		ID:             uuid.New(),
		SubscriptionID: s.ID,
		Action:         action,
		OldStatus:      oldStatus,
		NewStatus:      s.Status,
		ChangedFields:  changed,
		ActorType:      actor.Type,
		ActorID:        actor.ID,
		Notes:          notes,
		CreatedAt:      time.Now(),
	}
}

// HistoryRepository stores the append-only audit trail
type HistoryRepository interface {
	Append(ctx context.Context, h *History) error
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]History, error)
}
