package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// ItemResponse is one order line
type ItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// OrderResponse is the full order view
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Email           string              `json:"email"`
	Status          order.Status        `json:"status"`
	PaymentStatus   order.PaymentStatus `json:"payment_status"`
	Source          order.Source        `json:"source"`
	SubscriptionID  *uuid.UUID          `json:"subscription_id,omitempty"`
	Items           []ItemResponse      `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountCode    string              `json:"discount_code,omitempty"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	ShippingMethod  string              `json:"shipping_method"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost"`
	Tax             decimal.Decimal     `json:"tax"`
	Total           decimal.Decimal     `json:"total"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	TransactionID   string              `json:"transaction_id,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	Carrier         string              `json:"carrier,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToOrderResponse maps an order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Total:     it.Total(),
		}
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Source:          o.Source,
		SubscriptionID:  o.SubscriptionID,
		Items:           items,
		Subtotal:        o.Subtotal,
		DiscountCode:    o.DiscountCode,
		DiscountAmount:  o.DiscountAmount,
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    o.ShippingCost,
		Tax:             o.Tax,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		TransactionID:   o.TransactionID,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToOrderResponses maps a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// UpdateShippingRequest sets tracking details and optionally moves the order on
type UpdateShippingRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

// ListFilter narrows the admin order list
type ListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
