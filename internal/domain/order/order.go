package order

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
const AggregateType = "Order"

// Status is the fulfilment state of an order
type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusPaymentFailed  Status = "payment_failed"
	StatusRefunded       Status = "refunded"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusOutForDelivery,
		StatusDelivered, StatusCancelled, StatusPaymentFailed, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus tracks the charge behind the order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Source tells how the order was placed
type Source string

const (
	SourceCheckout     Source = "checkout"
	SourceSubscription Source = "subscription"
)

// Event types
const (
	EventTypePlaced  = "order.placed"
	EventTypeShipped = "order.shipped"
	// EventTypeStatusChanged fires for every fulfilment status change
	EventTypeStatusChanged = "order.status_changed"
)

// Errors
var (
	ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrInvalidStatus = shared.NewDomainError("INVALID_INPUT", "Invalid order status")
	ErrNoItems       = shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	ErrInvalidItem   = shared.NewDomainError("INVALID_INPUT", "Each item needs a name, a quantity of at least 1 and a non-negative price")
	ErrNotOwner      = shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
)

// NewOrderNumber is "WM" followed by the last 8 digits of the unix millisecond time
func NewOrderNumber(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "WM" + ms
}

// Item is one order line
type Item struct {
	ID        uuid.UUID
	ProductID *uuid.UUID
	VariantID *uuid.UUID
	Name      string
	SKU       string
	Price     decimal.Decimal
	Quantity  int
	Weight    string
}

// Total is price × quantity
func (i Item) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidateItems checks the item list of a new order
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

// Subtotal sums the line totals
func Subtotal(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total())
	}
	return shared.Round2(sum)
}

// Totals are the money columns of an order
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountCode   string
	DiscountAmount decimal.Decimal
	ShippingMethod string
	ShippingCost   decimal.Decimal
	Tax            decimal.Decimal
}

// Total is subtotal − discount + shipping + tax, never below zero
func (t Totals) Total() decimal.Decimal {
	total := t.Subtotal.Sub(t.DiscountAmount).Add(t.ShippingCost).Add(t.Tax)
	if total.IsNegative() {
		return decimal.Zero
	}
	return shared.Round2(total)
}

// Order is a placed storefront or subscription order
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	CustomerID      uuid.UUID
	Email           string
	Status          Status
	PaymentStatus   PaymentStatus
	Source          Source
	SubscriptionID  *uuid.UUID
	Items           []Item
	Subtotal        decimal.Decimal
	DiscountCode    string
	DiscountAmount  decimal.Decimal
	ShippingMethod  string
	ShippingCost    decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	ShippingAddress valueobject.Address
	PaymentMethodID *uuid.UUID
	TransactionID   string
	TrackingNumber  string
	Carrier         string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	Notes           string
}

// NewParams are the inputs for a new order
type NewParams struct {
	CustomerID      uuid.UUID
	Email           string
	Source          Source
	SubscriptionID  *uuid.UUID
	Items           []Item
	Totals          Totals
	ShippingAddress valueobject.Address
	PaymentMethodID *uuid.UUID
	Notes           string
	Now             time.Time
}

// New creates an order awaiting payment
func New(p NewParams) (*Order, error) {
	if err := ValidateItems(p.Items); err != nil {
		return nil, err
	}
	if p.Now.IsZero() {
		p.Now = time.Now()
	}
	if p.Source == "" {
		p.Source = SourceCheckout
	}
	items := make([]Item, len(p.Items))
	for i, it := range p.Items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		items[i] = it
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       NewOrderNumber(p.Now),
		CustomerID:        p.CustomerID,
		Email:             p.Email,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
		Source:            p.Source,
		SubscriptionID:    p.SubscriptionID,
		Items:             items,
		Subtotal:          p.Totals.Subtotal,
		DiscountCode:      p.Totals.DiscountCode,
		DiscountAmount:    p.Totals.DiscountAmount,
		ShippingMethod:    p.Totals.ShippingMethod,
		ShippingCost:      p.Totals.ShippingCost,
		Tax:               p.Totals.Tax,
		Total:             p.Totals.Total(),
		ShippingAddress:   p.ShippingAddress,
		PaymentMethodID:   p.PaymentMethodID,
		Notes:             p.Notes,
	}, nil
}

// MarkPaid records the captured charge. Checkout orders stay pending until
// fulfilment starts; subscription orders go straight to processing.
func (o *Order) MarkPaid(transactionID string) {
	o.PaymentStatus = PaymentPaid
	o.TransactionID = transactionID
	if o.Source == SourceSubscription {
		o.Status = StatusProcessing
	}
	o.Touch()
	o.raise(EventTypePlaced)
}

// MarkPaymentFailed keeps the order on record with a failed charge
func (o *Order) MarkPaymentFailed() {
	o.Status = StatusPaymentFailed
	o.PaymentStatus = PaymentFailed
	o.Touch()
}

// IsOwnedBy reports whether the order belongs to the customer
func (o *Order) IsOwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}

// UpdateShipping sets tracking details and, optionally, a new status
func (o *Order) UpdateShipping(status Status, trackingNumber, carrier string, now time.Time) error {
	if status != "" && !status.IsValid() {
		return ErrInvalidStatus
	}
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	if carrier != "" {
		o.Carrier = carrier
	}
	if status != "" && status != o.Status {
		o.Status = status
		switch status {
		case StatusShipped:
			o.ShippedAt = &now
			o.raise(EventTypeShipped)
		case StatusDelivered:
			o.DeliveredAt = &now
		}
		o.raise(EventTypeStatusChanged)
	}
	o.Touch()
	return nil
}

func (o *Order) raise(eventType string) {
	o.AddDomainEvent(&Event{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateType, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		Status:          o.Status,
		Total:           o.Total,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		Source:          o.Source,
	})
}

// Event is raised when an order is placed or moves through fulfilment
type Event struct {
	shared.BaseDomainEvent
	OrderNumber    string          `json:"order_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Email          string          `json:"email"`
	Status         Status          `json:"status"`
	Total          decimal.Decimal `json:"total"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Carrier        string          `json:"carrier,omitempty"`
	Source         Source          `json:"source"`
}

// Repository persists orders and their items
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	// FindAll lists orders. Filters supports "status".
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
	Save(ctx context.Context, o *Order) error
}
