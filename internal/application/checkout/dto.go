package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	paymentapp "github.com/wagginmeals/backend/internal/application/payment"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/subscription"
)

// CartItem is one line of the cart. Name, price and weight come from the catalog.
type CartItem struct {
	ProductID *uuid.UUID `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity"`
}

// Contact identifies the buyer
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// PaymentInput is a stored method or a new card
type PaymentInput struct {
	PaymentMethodID *uuid.UUID            `json:"payment_method_id"`
	NewCard         *paymentapp.CardInput `json:"new_card"`
	BillingAddress  *valueobject.Address  `json:"billing_address"`
}

// CreateOrderRequest places a one-time order
type CreateOrderRequest struct {
	Contact
	PaymentInput
	// CustomerID is the signed-in caller, never read from the body
	CustomerID      *uuid.UUID          `json:"-"`
	Items           []CartItem          `json:"items"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	ShippingMethod  string              `json:"shipping_method"`
	DiscountCode    string              `json:"discount_code"`
	Notes           string              `json:"notes"`
}

// CreateSubscriptionRequest signs up for a recurring box and charges the first cycle
type CreateSubscriptionRequest struct {
	Contact
	PaymentInput
	CustomerID      *uuid.UUID          `json:"-"`
	Items           []CartItem          `json:"items"`
	Frequency       string              `json:"frequency"`
	Type            string              `json:"subscription_type"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	StartDate       *time.Time          `json:"start_date"`
}

// OrderResponse summarizes a placed order
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	Status         order.Status        `json:"status"`
	PaymentStatus  order.PaymentStatus `json:"payment_status"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountCode   string              `json:"discount_code,omitempty"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	ShippingMethod string              `json:"shipping_method"`
	ShippingCost   decimal.Decimal     `json:"shipping_cost"`
	Tax            decimal.Decimal     `json:"tax"`
	Total          decimal.Decimal     `json:"total"`
	TransactionID  string              `json:"transaction_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ToOrderResponse maps an order
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		Subtotal:       o.Subtotal,
		DiscountCode:   o.DiscountCode,
		DiscountAmount: o.DiscountAmount,
		ShippingMethod: o.ShippingMethod,
		ShippingCost:   o.ShippingCost,
		Tax:            o.Tax,
		Total:          o.Total,
		TransactionID:  o.TransactionID,
		CreatedAt:      o.CreatedAt,
	}
}

// SubscriptionResponse summarizes a new subscription and its first charge
type SubscriptionResponse struct {
	SubscriptionID  uuid.UUID              `json:"subscription_id"`
	CustomerID      uuid.UUID              `json:"customer_id"`
	Status          subscription.Status    `json:"status"`
	Frequency       subscription.Frequency `json:"frequency"`
	Amount          decimal.Decimal        `json:"amount"`
	NextBillingDate string                 `json:"next_billing_date"`
	InvoiceNumber   string                 `json:"invoice_number"`
	Total           decimal.Decimal        `json:"total"`
	TransactionID   string                 `json:"transaction_id"`
	OrderNumber     string                 `json:"order_number,omitempty"`
	PaymentMethodID uuid.UUID              `json:"payment_method_id"`
}
