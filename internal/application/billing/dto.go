package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/subscription"
)

// OutcomeStatus is the result of one charge attempt
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeError     OutcomeStatus = "error"
)

// Outcome reports what happened to one subscription cycle
type Outcome struct {
	SubscriptionID  uuid.UUID     `json:"subscription_id"`
	InvoiceID       *uuid.UUID    `json:"invoice_id,omitempty"`
	Status          OutcomeStatus `json:"status"`
	Reason          string        `json:"reason,omitempty"`
	TransactionID   string        `json:"transaction_id,omitempty"`
	OrderNumber     string        `json:"order_number,omitempty"`
	Paused          bool          `json:"paused,omitempty"`
	NextBillingDate *time.Time    `json:"next_billing_date,omitempty"`
	NextRetryAt     *time.Time    `json:"next_retry_at,omitempty"`
}

func skipped(id uuid.UUID, reason string) Outcome {
	return Outcome{SubscriptionID: id, Status: OutcomeSkipped, Reason: reason}
}

func errored(id uuid.UUID, invoiceID *uuid.UUID, err error) Outcome {
	return Outcome{SubscriptionID: id, InvoiceID: invoiceID, Status: OutcomeError, Reason: err.Error()}
}

// BatchError names a subscription that did not bill
type BatchError struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	Error          string    `json:"error"`
}

// BatchResult summarizes a billing or retry run
type BatchResult struct {
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Errors     []BatchError `json:"errors"`
}

func newBatchResult() *BatchResult {
	return &BatchResult{Errors: []BatchError{}}
}

func (r *BatchResult) add(o Outcome) {
	r.Total++
	switch o.Status {
	case OutcomeSucceeded:
		r.Successful++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
		r.Errors = append(r.Errors, BatchError{SubscriptionID: o.SubscriptionID, Error: o.Reason})
	}
}

// ManualBillingRequest is the admin trigger for one subscription
type ManualBillingRequest struct {
	SubscriptionID uuid.UUID `json:"subscription_id" binding:"required"`
}

// InvoiceResponse is an invoice as shown to customers and admins
type InvoiceResponse struct {
	ID             uuid.UUID                  `json:"id"`
	SubscriptionID uuid.UUID                  `json:"subscription_id"`
	CustomerID     uuid.UUID                  `json:"customer_id"`
	OrderID        *uuid.UUID                 `json:"order_id,omitempty"`
	InvoiceNumber  string                     `json:"invoice_number"`
	Status         subscription.InvoiceStatus `json:"status"`
	Subtotal       decimal.Decimal            `json:"subtotal"`
	Tax            decimal.Decimal            `json:"tax"`
	Shipping       decimal.Decimal            `json:"shipping"`
	Discount       decimal.Decimal            `json:"discount"`
	Total          decimal.Decimal            `json:"total"`
	TransactionID  string                     `json:"transaction_id,omitempty"`
	BillingDate    time.Time                  `json:"billing_date"`
	DueDate        time.Time                  `json:"due_date"`
	PaidAt         *time.Time                 `json:"paid_at,omitempty"`
	AttemptCount   int                        `json:"attempt_count"`
	LastAttemptAt  *time.Time                 `json:"last_attempt_at,omitempty"`
	NextRetryAt    *time.Time                 `json:"next_retry_at,omitempty"`
	FailureReason  string                     `json:"failure_reason,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
}

// ToInvoiceResponse maps an invoice
func ToInvoiceResponse(i *subscription.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             i.ID,
		SubscriptionID: i.SubscriptionID,
		CustomerID:     i.CustomerID,
		OrderID:        i.OrderID,
		InvoiceNumber:  i.InvoiceNumber,
		Status:         i.Status,
		Subtotal:       i.Subtotal,
		Tax:            i.Tax,
		Shipping:       i.Shipping,
		Discount:       i.Discount,
		Total:          i.Total,
		TransactionID:  i.TransactionID,
		BillingDate:    i.BillingDate,
		DueDate:        i.DueDate,
		PaidAt:         i.PaidAt,
		AttemptCount:   i.AttemptCount,
		LastAttemptAt:  i.LastAttemptAt,
		NextRetryAt:    i.NextRetryAt,
		FailureReason:  i.FailureReason,
		CreatedAt:      i.CreatedAt,
	}
}
