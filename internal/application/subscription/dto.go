package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/subscription"
)

// ItemInput is one subscription line from a request. Name and price come
// from the catalog.
type ItemInput struct {
	ProductID *uuid.UUID `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	BundleID  string     `json:"bundle_id"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
}

// CreateRequest creates a subscription without an initial charge. Only admins
// may set DiscountPercentage.
type CreateRequest struct {
	CustomerID         uuid.UUID            `json:"customer_id"`
	Type               string               `json:"subscription_type"`
	Frequency          string               `json:"frequency" binding:"required,frequency"`
	Items              []ItemInput          `json:"items" binding:"required,min=1,dive"`
	DiscountPercentage decimal.Decimal      `json:"discount_percentage"`
	PaymentMethodID    *uuid.UUID           `json:"payment_method_id"`
	ShippingAddress    *valueobject.Address `json:"shipping_address"`
	StartDate          *time.Time           `json:"start_date"`
	Notes              string               `json:"notes"`
}

// UpdateRequest changes any subset of a subscription's settings
type UpdateRequest struct {
	Frequency       *string      `json:"frequency"`
	Items           *[]ItemInput `json:"items"`
	PaymentMethodID *uuid.UUID   `json:"payment_method_id"`
	NextBillingDate *time.Time   `json:"next_billing_date"`
	Notes           *string      `json:"notes"`
}

// AdminUpdateRequest additionally lets an admin move the status
type AdminUpdateRequest struct {
	UpdateRequest
	Status *string `json:"status"`
	Reason string  `json:"reason"`
}

// PauseRequest pauses a subscription
type PauseRequest struct {
	Reason     string     `json:"reason"`
	ResumeDate *time.Time `json:"resume_date"`
}

// CancelRequest cancels a subscription
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ChangeFrequencyRequest switches the cadence
type ChangeFrequencyRequest struct {
	Frequency string `json:"frequency" binding:"required,frequency"`
}

// SkipRequest skips the next delivery
type SkipRequest struct {
	Reason string `json:"reason"`
}

// UpdateItemsRequest replaces the box contents
type UpdateItemsRequest struct {
	Items []ItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateAddressRequest sets the shipping address
type UpdateAddressRequest struct {
	ShippingAddress valueobject.Address `json:"shipping_address" binding:"required"`
}

// ListFilter narrows the admin list
type ListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SubscriptionResponse is a subscription as returned by the API
type SubscriptionResponse struct {
	ID                 uuid.UUID              `json:"id"`
	CustomerID         uuid.UUID              `json:"customer_id"`
	Status             subscription.Status    `json:"status"`
	Type               subscription.Type      `json:"subscription_type"`
	Frequency          subscription.Frequency `json:"frequency"`
	IntervalCount      int                    `json:"interval_count"`
	NextBillingDate    string                 `json:"next_billing_date"`
	LastBillingDate    *string                `json:"last_billing_date"`
	StartedAt          time.Time              `json:"started_at"`
	PausedAt           *time.Time             `json:"paused_at"`
	ResumeDate         *string                `json:"resume_date"`
	CancelledAt        *time.Time             `json:"cancelled_at"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	Amount             decimal.Decimal        `json:"amount"`
	Currency           string                 `json:"currency"`
	DiscountPercentage decimal.Decimal        `json:"discount_percentage"`
	Items              []subscription.Item    `json:"items"`
	PaymentMethodID    *uuid.UUID             `json:"payment_method_id"`
	ShippingAddress    *valueobject.Address   `json:"shipping_address"`
	FailedPaymentCount int                    `json:"failed_payment_count"`
	Notes              string                 `json:"notes,omitempty"`
	Metadata           map[string]any         `json:"metadata"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ToSubscriptionResponse maps a subscription
func ToSubscriptionResponse(s *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                 s.ID,
		CustomerID:         s.CustomerID,
		Status:             s.Status,
		Type:               s.Type,
		Frequency:          s.Frequency,
		IntervalCount:      s.IntervalCount,
		NextBillingDate:    s.NextBillingDate.Format(dateLayout),
		LastBillingDate:    datePtr(s.LastBillingDate),
		StartedAt:          s.StartedAt,
		PausedAt:           s.PausedAt,
		ResumeDate:         datePtr(s.ResumeDate),
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
		Amount:             s.Amount,
		Currency:           s.Currency,
		DiscountPercentage: s.DiscountPercentage,
		Items:              s.Items,
		PaymentMethodID:    s.PaymentMethodID,
		ShippingAddress:    s.ShippingAddress,
		FailedPaymentCount: s.FailedPaymentCount,
		Notes:              s.Notes,
		Metadata:           s.Metadata,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// HistoryResponse is one audit entry
type HistoryResponse struct {
	ID            uuid.UUID              `json:"id"`
	Action        subscription.Action    `json:"action"`
	OldStatus     subscription.Status    `json:"old_status,omitempty"`
	NewStatus     subscription.Status    `json:"new_status,omitempty"`
	ChangedFields map[string]any         `json:"changed_fields,omitempty"`
	ActorType     subscription.ActorType `json:"actor_type"`
	ActorID       string                 `json:"actor_id,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToHistoryResponse maps a history entry
func ToHistoryResponse(h *subscription.History) HistoryResponse {
	return HistoryResponse{
		ID:            h.ID,
		Action:        h.Action,
		OldStatus:     h.OldStatus,
		NewStatus:     h.NewStatus,
		ChangedFields: h.ChangedFields,
		ActorType:     h.ActorType,
		ActorID:       h.ActorID,
		Notes:         h.Notes,
		CreatedAt:     h.CreatedAt,
	}
}
