package marketing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// DefaultSource is used when a signup form does not say where it lives
const DefaultSource = "footer"

// SubscriberStatus is active or unsubscribed
type SubscriberStatus string

const (
	SubscriberActive       SubscriberStatus = "active"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
)

// Subscriber is a newsletter signup
type Subscriber struct {
	shared.BaseEntity
	Email          string
	FirstName      string
	Source         string
	Status         SubscriberStatus
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
}

// Signup is a request to join the list
type Signup struct {
	Email     string
	FirstName string
	Source    string
}

// Normalize cleans the signup and checks the required fields
func (s Signup) Normalize() (Signup, error) {
	if strings.TrimSpace(s.Email) == "" {
		return s, shared.NewDomainError("INVALID_INPUT", "Email is required")
	}
	if strings.TrimSpace(s.FirstName) == "" {
		return s, shared.NewDomainError("INVALID_INPUT", "First name is required")
	}
	if err := customer.ValidateEmail(s.Email); err != nil {
		return s, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	s.Email = customer.NormalizeEmail(s.Email)
	s.FirstName = strings.TrimSpace(s.FirstName)
	s.Source = strings.TrimSpace(s.Source)
	if s.Source == "" {
		s.Source = DefaultSource
	}
	return s, nil
}

// Tags are the CRM tags applied for a signup source
func (s Signup) Tags() []string {
	return []string{"newsletter-" + s.Source, "lead-nurture", "email-marketing"}
}

// NewSubscriber creates an active subscriber from a normalized signup
func NewSubscriber(s Signup, now time.Time) *Subscriber {
	return &Subscriber{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        s.Email,
		FirstName:    s.FirstName,
		Source:       s.Source,
		Status:       SubscriberActive,
		SubscribedAt: now,
	}
}

// Resubscribe reactivates a subscriber who had left.
// Returns false if the subscriber was already active.
func (sub *Subscriber) Resubscribe(s Signup, now time.Time) bool {
	if sub.Status == SubscriberActive {
		return false
	}
	sub.FirstName = s.FirstName
	sub.Source = s.Source
	sub.Status = SubscriberActive
	sub.SubscribedAt = now
	sub.UnsubscribedAt = nil
	sub.Touch()
	return true
}

// Unsubscribe removes the subscriber from mailings
func (sub *Subscriber) Unsubscribe(now time.Time) {
	sub.Status = SubscriberUnsubscribed
	sub.UnsubscribedAt = &now
	sub.Touch()
}

// SubscriberRepository persists subscribers
type SubscriberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscriber, error)
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	// FindAll lists subscribers. Filters supports "status" and "source".
	FindAll(ctx context.Context, filter shared.Filter) ([]Subscriber, int64, error)
	Save(ctx context.Context, s *Subscriber) error
}
