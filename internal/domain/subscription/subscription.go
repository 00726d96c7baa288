package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// AggregateType is the aggregate name used on domain events
const AggregateType = "Subscription"

// DefaultMaxPaymentAttempts is the number of consecutive failed charges
// after which a subscription is paused.
const DefaultMaxPaymentAttempts = 3

var hundred = decimal.NewFromInt(100)

// Errors
var (
	ErrSubscriptionNotFound = shared.NewDomainError("NOT_FOUND", "Subscription not found")
	ErrNoItems              = shared.NewDomainError("INVALID_INPUT", "At least one item is required")
	ErrInvalidItem          = shared.NewDomainError("INVALID_INPUT", "Each item needs a name, a quantity of at least 1 and a non-negative price")
	ErrInvalidFrequency     = shared.NewDomainError("INVALID_INPUT", "Invalid frequency")
	ErrInvalidDiscount      = shared.NewDomainError("INVALID_INPUT", "Discount percentage must be between 0 and 100")
	ErrNotPausable          = shared.NewDomainError("INVALID_STATE", "Only active or past due subscriptions can be paused")
	ErrNotPaused            = shared.NewDomainError("INVALID_STATE", "Only paused subscriptions can be resumed")
	ErrAlreadyCancelled     = shared.NewDomainError("INVALID_STATE", "Subscription is already cancelled")
	ErrNotActive            = shared.NewDomainError("INVALID_STATE", "Only active subscriptions can skip deliveries")
	ErrNotBillable          = shared.NewDomainError("INVALID_STATE", "Subscription is not in a billable state")
	ErrBillingDateInPast    = shared.NewDomainError("INVALID_INPUT", "Next billing date cannot be in the past")
	ErrNotOwner             = shared.NewDomainError("FORBIDDEN", "You do not have access to this subscription")
)

// Type distinguishes single-product subscriptions from bundles
type Type string

const (
	TypeProduct Type = "product"
	TypeBundle  Type = "bundle"
)

// Item is one line of a recurring box
type Item struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	BundleID  string          `json:"bundle_id,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Weight    string          `json:"weight,omitempty"`
}

// LineTotal is price × quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidateItems checks that the list is non-empty and each line is sane
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" || it.Quantity < 1 || it.Price.IsNegative() {
			return ErrInvalidItem
		}
	}
	return nil
}

// CalculateAmount sums the items and applies the percentage discount
func CalculateAmount(items []Item, discountPercentage decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	factor := decimal.NewFromInt(1).Sub(discountPercentage.Div(hundred))
	return shared.Round2(sum.Mul(factor))
}

// Subscription is a recurring order with a billing frequency and next billing date
type Subscription struct {
	shared.BaseAggregateRoot
	CustomerID         uuid.UUID
	OrderID            *uuid.UUID
	Status             Status
	Type               Type
	Frequency          Frequency
	IntervalCount      int
	NextBillingDate    time.Time
	LastBillingDate    *time.Time
	StartedAt          time.Time
	PausedAt           *time.Time
	ResumeDate         *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	Amount             decimal.Decimal
	Currency           string
	DiscountPercentage decimal.Decimal
	Items              []Item
	PaymentMethodID    *uuid.UUID
	ShippingAddress    *valueobject.Address
	FailedPaymentCount int
	Notes              string
	Metadata           map[string]any
}

// NewParams are the inputs for a new subscription
type NewParams struct {
	CustomerID         uuid.UUID
	Type               Type
	Frequency          Frequency
	Items              []Item
	DiscountPercentage decimal.Decimal
	PaymentMethodID    *uuid.UUID
	ShippingAddress    *valueobject.Address
	StartDate          time.Time
}

// New creates an active subscription whose first billing date is the start date
func New(p NewParams) (*Subscription, error) {
	if p.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "customer_id is required")
	}
	if !p.Frequency.IsValid() {
		return nil, ErrInvalidFrequency
	}
	if err := ValidateItems(p.Items); err != nil {
		return nil, err
	}
	if p.DiscountPercentage.IsNegative() || p.DiscountPercentage.GreaterThan(hundred) {
		return nil, ErrInvalidDiscount
	}
	if p.Type == "" {
		p.Type = TypeProduct
	}
	if p.StartDate.IsZero() {
		p.StartDate = time.Now()
	}

	s := &Subscription{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		CustomerID:         p.CustomerID,
		Status:             StatusActive,
		Type:               p.Type,
		Frequency:          p.Frequency,
		IntervalCount:      1,
		NextBillingDate:    DateOf(p.StartDate),
		StartedAt:          time.Now(),
		Currency:           "USD",
		DiscountPercentage: p.DiscountPercentage,
		Items:              p.Items,
		PaymentMethodID:    p.PaymentMethodID,
		ShippingAddress:    p.ShippingAddress,
		Metadata:           map[string]any{},
	}
	s.Amount = CalculateAmount(s.Items, s.DiscountPercentage)
	s.raise(EventTypeCreated, nil)
	return s, nil
}

// IsOwnedBy reports whether the subscription belongs to the customer
func (s *Subscription) IsOwnedBy(customerID uuid.UUID) bool {
	return s.CustomerID == customerID
}

// SetItems replaces the items and recalculates the amount
func (s *Subscription) SetItems(items []Item) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if err := ValidateItems(items); err != nil {
		return err
	}
	s.Items = items
	s.Amount = CalculateAmount(items, s.DiscountPercentage)
	s.Touch()
	return nil
}

// ChangeFrequency switches the billing cadence. The next billing date is kept.
func (s *Subscription) ChangeFrequency(f Frequency) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if !f.IsValid() {
		return ErrInvalidFrequency
	}
	s.Frequency = f
	s.Touch()
	return nil
}

// SetPaymentMethod points future charges at another stored method
func (s *Subscription) SetPaymentMethod(id uuid.UUID) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	s.PaymentMethodID = &id
	s.Touch()
	return nil
}

// SetNextBillingDate moves the next charge. It may not be earlier than today.
func (s *Subscription) SetNextBillingDate(date, today time.Time) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if DateOf(date).Before(DateOf(today)) {
		return ErrBillingDateInPast
	}
	s.NextBillingDate = DateOf(date)
	s.Touch()
	return nil
}

// UpdateAddress sets the shipping address for future boxes
func (s *Subscription) UpdateAddress(addr valueobject.Address) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	addr = addr.Normalize()
	if err := addr.Validate(); err != nil {
		return shared.WrapDomainError("INVALID_INPUT", err.Error(), err)
	}
	s.ShippingAddress = &addr
	s.Touch()
	return nil
}

// Pause stops billing until the subscription is resumed
func (s *Subscription) Pause(reason string, resumeDate *time.Time, now time.Time) error {
	if s.Status != StatusActive && s.Status != StatusPastDue {
		return ErrNotPausable
	}
	s.Status = StatusPaused
	s.PausedAt = &now
	if resumeDate != nil {
		d := DateOf(*resumeDate)
		s.ResumeDate = &d
	}
	s.Touch()
	s.raise(EventTypePaused, func(e *Event) { e.Reason = reason })
	return nil
}

// Resume reactivates a paused subscription. A billing date that slipped into
// the past while paused moves to today.
func (s *Subscription) Resume(today time.Time) error {
	if s.Status != StatusPaused {
		return ErrNotPaused
	}
	s.Status = StatusActive
	s.PausedAt = nil
	s.ResumeDate = nil
	s.FailedPaymentCount = 0
	if s.NextBillingDate.Before(DateOf(today)) {
		s.NextBillingDate = DateOf(today)
	}
	s.Touch()
	s.raise(EventTypeResumed, nil)
	return nil
}

// Cancel ends the subscription for good
func (s *Subscription) Cancel(reason string, now time.Time) error {
	if s.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.CancellationReason = reason
	s.Touch()
	s.raise(EventTypeCancelled, func(e *Event) { e.Reason = reason })
	return nil
}

// SkipNext pushes the next billing date out by one cycle
func (s *Subscription) SkipNext(reason string, now time.Time) error {
	if s.Status != StatusActive {
		return ErrNotActive
	}
	s.NextBillingDate = s.Frequency.Advance(s.NextBillingDate)
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	s.Metadata["last_skip_date"] = now.UTC().Format(time.RFC3339)
	s.Metadata["last_skip_reason"] = reason
	s.Metadata["total_skips"] = metadataInt(s.Metadata["total_skips"]) + 1
	s.Touch()
	return nil
}

// RecordPaymentSuccess closes the billing cycle starting on cycle
func (s *Subscription) RecordPaymentSuccess(cycle time.Time, inv *Invoice) error {
	if !s.Status.Billable() {
		return ErrNotBillable
	}
	c := DateOf(cycle)
	s.Status = StatusActive
	s.LastBillingDate = &c
	s.NextBillingDate = s.Frequency.Advance(c)
	s.FailedPaymentCount = 0
	s.Touch()
	s.raise(EventTypePaymentSucceeded, func(e *Event) {
		e.InvoiceNumber = inv.InvoiceNumber
		e.TransactionID = inv.TransactionID
		e.Amount = inv.Total
		e.BillingDate = &c
	})
	return nil
}

// MarkInitialCyclePaid records the charge taken at signup for the cycle
// starting on cycle. Billing continues one cycle later.
func (s *Subscription) MarkInitialCyclePaid(cycle time.Time) {
	c := DateOf(cycle)
	s.LastBillingDate = &c
	s.NextBillingDate = s.Frequency.Advance(c)
	s.Touch()
}

// RecordPaymentFailure counts a failed charge. The subscription goes past due
// and is paused once maxAttempts consecutive charges have failed.
// Returns true if the subscription was paused.
func (s *Subscription) RecordPaymentFailure(inv *Invoice, reason string, maxAttempts int, now time.Time) (bool, error) {
	if !s.Status.Billable() {
		return false, ErrNotBillable
	}
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxPaymentAttempts
	}
	s.FailedPaymentCount++
	paused := s.FailedPaymentCount >= maxAttempts
	if paused {
		s.Status = StatusPaused
		s.PausedAt = &now
	} else {
		s.Status = StatusPastDue
	}
	s.raise(EventTypePaymentFailed, func(e *Event) {
		e.InvoiceNumber = inv.InvoiceNumber
		e.Amount = inv.Total
		e.FailureReason = reason
		e.AttemptCount = s.FailedPaymentCount
		e.FinalAttempt = paused
		billed := inv.BillingDate
		e.BillingDate = &billed
		if !paused {
			e.NextRetryAt = inv.NextRetryAt
		}
	})
	if paused {
		s.raise(EventTypePaused, func(e *Event) {
			e.Reason = fmt.Sprintf("payment failed %d times", s.FailedPaymentCount)
		})
	}
	s.Touch()
	return paused, nil
}

func (s *Subscription) raise(eventType string, fill func(*Event)) {
	e := &Event{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateType, s.ID),
		CustomerID:      s.CustomerID,
		Status:          s.Status,
		Frequency:       s.Frequency,
		Amount:          s.Amount,
		NextBillingDate: s.NextBillingDate,
		Items:           s.Items,
	}
	if fill != nil {
		fill(e)
	}
	s.AddDomainEvent(e)
}

func metadataInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Repository persists subscriptions
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, status Status) ([]Subscription, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Subscription, int64, error)
	// FindDue returns billable subscriptions whose next billing date is on or before asOf
	FindDue(ctx context.Context, asOf time.Time) ([]Subscription, error)
	// CountActiveByPaymentMethod counts non-cancelled subscriptions charging the method
	CountActiveByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (int64, error)
	Save(ctx context.Context, s *Subscription) error
}
