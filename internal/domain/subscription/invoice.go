package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// InvoiceStatus is the payment state of one billing cycle
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusFailed   InvoiceStatus = "failed"
	InvoiceStatusRefunded InvoiceStatus = "refunded"
)

// IsValid returns true if the invoice status is known
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusFailed, InvoiceStatusRefunded:
		return true
	default:
		return false
	}
}

var ErrInvoiceNotFound = shared.NewDomainError("NOT_FOUND", "Invoice not found")

// Invoice records the charge for one billing cycle of a subscription.
// There is at most one invoice per (subscription, billing date).
type Invoice struct {
	shared.BaseEntity
	SubscriptionID  uuid.UUID
	CustomerID      uuid.UUID
	OrderID         *uuid.UUID
	InvoiceNumber   string
	Status          InvoiceStatus
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	PaymentMethodID *uuid.UUID
	TransactionID   string
	BillingDate     time.Time
	DueDate         time.Time
	PaidAt          *time.Time
	AttemptCount    int
	LastAttemptAt   *time.Time
	NextRetryAt     *time.Time
	FailureReason   string
	Metadata        map[string]any
}

// InvoiceNumberFor builds the number for a cycle: SUB-<YYYYMMDD>-<first 8 of id>
func InvoiceNumberFor(subscriptionID uuid.UUID, cycle time.Time) string {
	return fmt.Sprintf("SUB-%s-%s", DateOf(cycle).Format("20060102"), subscriptionID.String()[:8])
}

// NewInvoice opens a pending invoice for the subscription's cycle
func NewInvoice(s *Subscription, cycle time.Time, tax decimal.Decimal) *Invoice {
	c := DateOf(cycle)
	subtotal := s.Amount
	return &Invoice{
		BaseEntity:      shared.NewBaseEntity(),
		SubscriptionID:  s.ID,
		CustomerID:      s.CustomerID,
		InvoiceNumber:   InvoiceNumberFor(s.ID, c),
		Status:          InvoiceStatusPending,
		Subtotal:        subtotal,
		Tax:             shared.Round2(tax),
		Shipping:        decimal.Zero,
		Discount:        decimal.Zero,
		Total:           shared.Round2(subtotal.Add(tax)),
		PaymentMethodID: s.PaymentMethodID,
		BillingDate:     c,
		DueDate:         c,
		Metadata:        map[string]any{},
	}
}

// RetryDelay is how long to wait after the n-th failed attempt
func RetryDelay(attempt int) time.Duration {
	day := 24 * time.Hour
	switch attempt {
	case 1:
		return 3 * day
	case 2:
		return 7 * day
	case 3:
		return 14 * day
	default:
		return 30 * day
	}
}

// SkipReason explains why a charge attempt should not happen now.
// An empty string means the invoice may be charged.
func (i *Invoice) SkipReason(now time.Time, maxAttempts int) string {
	switch i.Status {
	case InvoiceStatusPaid:
		return "cycle already paid"
	case InvoiceStatusRefunded:
		return "cycle refunded"
	case InvoiceStatusFailed:
		if maxAttempts > 0 && i.AttemptCount >= maxAttempts {
			return "retry attempts exhausted"
		}
		if i.NextRetryAt != nil && i.NextRetryAt.After(now) {
			return "retry not due until " + i.NextRetryAt.UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// MarkPaid records a successful charge
func (i *Invoice) MarkPaid(transactionID string, now time.Time) {
	i.Status = InvoiceStatusPaid
	i.TransactionID = transactionID
	i.AttemptCount++
	i.LastAttemptAt = &now
	i.PaidAt = &now
	i.NextRetryAt = nil
	i.FailureReason = ""
	i.Touch()
}

// MarkFailed records a failed charge and schedules the next retry
func (i *Invoice) MarkFailed(reason string, now time.Time) {
	i.Status = InvoiceStatusFailed
	i.AttemptCount++
	i.LastAttemptAt = &now
	next := now.Add(RetryDelay(i.AttemptCount))
	i.NextRetryAt = &next
	i.FailureReason = reason
	i.Touch()
}

// AttachOrder links the order created for this cycle
func (i *Invoice) AttachOrder(orderID uuid.UUID) {
	i.OrderID = &orderID
	i.Touch()
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByCycle returns the invoice for the subscription's billing date, or shared.ErrNotFound
	FindByCycle(ctx context.Context, subscriptionID uuid.UUID, billingDate time.Time) (*Invoice, error)
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]Invoice, error)
	// FindRetryable returns failed invoices with attempts left whose retry time has come
	FindRetryable(ctx context.Context, asOf time.Time, maxAttempts int) ([]Invoice, error)
	FindFailed(ctx context.Context, filter shared.Filter) ([]Invoice, int64, error)
	Save(ctx context.Context, inv *Invoice) error
}
