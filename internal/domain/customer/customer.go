package customer

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors
var (
	ErrInvalidEmail = shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	ErrNameRequired = shared.NewDomainError("INVALID_INPUT", "First name is required")
)

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address shape after normalization
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(NormalizeEmail(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// Customer is a storefront buyer. Guests are created at checkout without an account.
type Customer struct {
	shared.BaseAggregateRoot
	Email                  string
	FirstName              string
	LastName               string
	Phone                  string
	IsGuest                bool
	DefaultShippingAddress *valueobject.Address

	// CRM sync state
	CRMContactID  string
	CRMTags       []string
	CRMLastSyncAt *time.Time
	CRMSyncError  string
}

// NewCustomer creates a registered customer
func NewCustomer(email, firstName, lastName, phone string) (*Customer, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             NormalizeEmail(email),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Phone:             strings.TrimSpace(phone),
	}, nil
}

// NewGuestCustomer creates a customer record for a checkout without an account
func NewGuestCustomer(email, firstName, lastName, phone string) (*Customer, error) {
	c, err := NewCustomer(email, firstName, lastName, phone)
	if err != nil {
		return nil, err
	}
	c.IsGuest = true
	return c, nil
}

// FullName returns "First Last"
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ClaimAccount turns a guest record into a registered customer once the
// email has been verified by a sign-in
func (c *Customer) ClaimAccount() {
	if c.IsGuest {
		c.IsGuest = false
		c.Touch()
	}
}

// SetDefaultShippingAddress stores the address used for subscription shipments and tax
func (c *Customer) SetDefaultShippingAddress(addr valueobject.Address) {
	normalized := addr.Normalize()
	c.DefaultShippingAddress = &normalized
	c.Touch()
}

// RecordCRMSync stores the result of a successful contact upsert.
// Tags are merged with the ones already known.
func (c *Customer) RecordCRMSync(contactID string, tags []string, at time.Time) {
	c.CRMContactID = contactID
	c.CRMTags = MergeTags(c.CRMTags, tags)
	c.CRMLastSyncAt = &at
	c.CRMSyncError = ""
	c.Touch()
}

// RecordCRMSyncError stores the reason the last upsert failed
func (c *Customer) RecordCRMSyncError(reason string, at time.Time) {
	c.CRMSyncError = reason
	c.CRMLastSyncAt = &at
	c.Touch()
}

// MergeTags returns the union of both tag lists, keeping first-seen order
func MergeTags(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Repository persists customers
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}
