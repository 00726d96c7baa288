package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// Event types, named after the CRM events they feed
const (
	EventTypeCreated          = "subscription.created"
	EventTypePaymentSucceeded = "subscription.payment.success"
	EventTypePaymentFailed    = "subscription.payment.failed"
	EventTypePaused           = "subscription.paused"
	EventTypeResumed          = "subscription.resumed"
	EventTypeCancelled        = "subscription.cancelled"
)

// Event is raised on every lifecycle change of a subscription
type Event struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	Status          Status          `json:"status"`
	Frequency       Frequency       `json:"frequency"`
	Amount          decimal.Decimal `json:"amount"`
	NextBillingDate time.Time       `json:"next_billing_date"`
	Items           []Item          `json:"items,omitempty"`
	Reason          string          `json:"reason,omitempty"`

	InvoiceNumber string `json:"invoice_number,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
	AttemptCount  int    `json:"attempt_count,omitempty"`
	FinalAttempt  bool   `json:"final_attempt,omitempty"`

	BillingDate *time.Time `json:"billing_date,omitempty"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`
}
