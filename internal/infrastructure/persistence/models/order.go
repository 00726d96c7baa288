package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"gorm.io/datatypes"
)

// OrderModel is the persistence model for orders
type OrderModel struct {
	AggregateModel
	OrderNumber     string                                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID      uuid.UUID                               `gorm:"type:uuid;not null;index"`
	Email           string                                  `gorm:"type:varchar(255);not null"`
	Status          string                                  `gorm:"type:varchar(20);not null;index"`
	PaymentStatus   string                                  `gorm:"type:varchar(20);not null"`
	Source          string                                  `gorm:"type:varchar(20);not null;default:'checkout'"`
	SubscriptionID  *uuid.UUID                              `gorm:"type:uuid;index"`
	Subtotal        decimal.Decimal                         `gorm:"type:decimal(12,2);not null"`
	DiscountCode    string                                  `gorm:"type:varchar(50)"`
	DiscountAmount  decimal.Decimal                         `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingMethod  string                                  `gorm:"type:varchar(100)"`
	ShippingCost    decimal.Decimal                         `gorm:"type:decimal(12,2);not null;default:0"`
	Tax             decimal.Decimal                         `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal                         `gorm:"type:decimal(12,2);not null"`
	ShippingAddress datatypes.JSONType[valueobject.Address] `gorm:"not null"`
	PaymentMethodID *uuid.UUID                              `gorm:"type:uuid"`
	TransactionID   string                                  `gorm:"type:varchar(100)"`
	TrackingNumber  string                                  `gorm:"type:varchar(100)"`
	Carrier         string                                  `gorm:"type:varchar(50)"`
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	Notes           string           `gorm:"type:text"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one order line
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID *uuid.UUID      `gorm:"type:uuid"`
	VariantID *uuid.UUID      `gorm:"type:uuid"`
	Name      string          `gorm:"type:varchar(255);not null"`
	SKU       string          `gorm:"column:sku;type:varchar(100)"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Weight    string          `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	items := make([]order.Item, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, order.Item{
			ID:        it.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Weight:    it.Weight,
		})
	}
	return &order.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		Email:             m.Email,
		Status:            order.Status(m.Status),
		PaymentStatus:     order.PaymentStatus(m.PaymentStatus),
		Source:            order.Source(m.Source),
		SubscriptionID:    m.SubscriptionID,
		Items:             items,
		Subtotal:          m.Subtotal,
		DiscountCode:      m.DiscountCode,
		DiscountAmount:    m.DiscountAmount,
		ShippingMethod:    m.ShippingMethod,
		ShippingCost:      m.ShippingCost,
		Tax:               m.Tax,
		Total:             m.Total,
		ShippingAddress:   m.ShippingAddress.Data(),
		PaymentMethodID:   m.PaymentMethodID,
		TransactionID:     m.TransactionID,
		TrackingNumber:    m.TrackingNumber,
		Carrier:           m.Carrier,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
		Notes:             m.Notes,
	}
}

// OrderModelFromDomain converts a domain Order to the persistence model
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Email:           o.Email,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Source:          string(o.Source),
		SubscriptionID:  o.SubscriptionID,
		Subtotal:        o.Subtotal,
		DiscountCode:    o.DiscountCode,
		DiscountAmount:  o.DiscountAmount,
		ShippingMethod:  o.ShippingMethod,
		ShippingCost:    o.ShippingCost,
		Tax:             o.Tax,
		Total:           o.Total,
		ShippingAddress: datatypes.NewJSONType(o.ShippingAddress),
		PaymentMethodID: o.PaymentMethodID,
		TransactionID:   o.TransactionID,
		TrackingNumber:  o.TrackingNumber,
		Carrier:         o.Carrier,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		Notes:           o.Notes,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		id := it.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		m.Items = append(m.Items, OrderItemModel{
			ID:        id,
			OrderID:   o.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Weight:    it.Weight,
		})
	}
	return m
}
