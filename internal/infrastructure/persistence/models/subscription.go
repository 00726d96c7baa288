package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"gorm.io/datatypes"
)

// SubscriptionModel is the persistence model for subscriptions
type SubscriptionModel struct {
	AggregateModel
	CustomerID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID            *uuid.UUID `gorm:"type:uuid"`
	Status             string     `gorm:"type:varchar(20);not null;index"`
	Type               string     `gorm:"type:varchar(20);not null;default:'product'"`
	Frequency          string     `gorm:"type:varchar(20);not null"`
	IntervalCount      int        `gorm:"not null;default:1"`
	NextBillingDate    time.Time  `gorm:"not null;index"`
	LastBillingDate    *time.Time
	StartedAt          time.Time `gorm:"not null"`
	PausedAt           *time.Time
	ResumeDate         *time.Time
	CancelledAt        *time.Time
	CancellationReason string                                 `gorm:"type:text"`
	Amount             decimal.Decimal                        `gorm:"type:decimal(12,2);not null"`
	Currency           string                                 `gorm:"type:varchar(3);not null;default:'USD'"`
	DiscountPercentage decimal.Decimal                        `gorm:"type:decimal(5,2);not null;default:0"`
	Items              datatypes.JSONSlice[subscription.Item] `gorm:"not null"`
	PaymentMethodID    *uuid.UUID                             `gorm:"type:uuid;index"`
	ShippingAddress    datatypes.JSON
	FailedPaymentCount int    `gorm:"not null;default:0"`
	Notes              string `gorm:"type:text"`
	Metadata           datatypes.JSON
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription
func (m *SubscriptionModel) ToDomain() *subscription.Subscription {
	items := make([]subscription.Item, len(m.Items))
	copy(items, m.Items)
	return &subscription.Subscription{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		CustomerID:         m.CustomerID,
		OrderID:            m.OrderID,
		Status:             subscription.Status(m.Status),
		Type:               subscription.Type(m.Type),
		Frequency:          subscription.Frequency(m.Frequency),
		IntervalCount:      m.IntervalCount,
		NextBillingDate:    m.NextBillingDate,
		LastBillingDate:    m.LastBillingDate,
		StartedAt:          m.StartedAt,
		PausedAt:           m.PausedAt,
		ResumeDate:         m.ResumeDate,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
		Amount:             m.Amount,
		Currency:           m.Currency,
		DiscountPercentage: m.DiscountPercentage,
		Items:              items,
		PaymentMethodID:    m.PaymentMethodID,
		ShippingAddress:    addressFromJSON(m.ShippingAddress),
		FailedPaymentCount: m.FailedPaymentCount,
		Notes:              m.Notes,
		Metadata:           mapFromJSON(m.Metadata),
	}
}

// SubscriptionModelFromDomain converts a domain Subscription to the persistence model
func SubscriptionModelFromDomain(s *subscription.Subscription) *SubscriptionModel {
	m := &SubscriptionModel{
		CustomerID:         s.CustomerID,
		OrderID:            s.OrderID,
		Status:             string(s.Status),
		Type:               string(s.Type),
		Frequency:          string(s.Frequency),
		IntervalCount:      s.IntervalCount,
		NextBillingDate:    s.NextBillingDate,
		LastBillingDate:    s.LastBillingDate,
		StartedAt:          s.StartedAt,
		PausedAt:           s.PausedAt,
		ResumeDate:         s.ResumeDate,
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
		Amount:             s.Amount,
		Currency:           s.Currency,
		DiscountPercentage: s.DiscountPercentage,
		Items:              datatypes.JSONSlice[subscription.Item](s.Items),
		PaymentMethodID:    s.PaymentMethodID,
		ShippingAddress:    addressToJSON(s.ShippingAddress),
		FailedPaymentCount: s.FailedPaymentCount,
		Notes:              s.Notes,
	}
	if len(s.Metadata) > 0 {
		m.Metadata = toJSON(s.Metadata)
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// InvoiceModel is the persistence model for subscription invoices
type InvoiceModel struct {
	BaseModel
	SubscriptionID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_cycle"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID         *uuid.UUID      `gorm:"type:uuid"`
	InvoiceNumber   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Shipping        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	TransactionID   string          `gorm:"type:varchar(100)"`
	BillingDate     time.Time       `gorm:"not null;uniqueIndex:idx_invoice_cycle"`
	DueDate         time.Time       `gorm:"not null"`
	PaidAt          *time.Time
	AttemptCount    int `gorm:"not null;default:0"`
	LastAttemptAt   *time.Time
	NextRetryAt     *time.Time `gorm:"index"`
	FailureReason   string     `gorm:"type:text"`
	Metadata        datatypes.JSON
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "subscription_invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *subscription.Invoice {
	return &subscription.Invoice{
		BaseEntity:      m.BaseModel.ToDomain(),
		SubscriptionID:  m.SubscriptionID,
		CustomerID:      m.CustomerID,
		OrderID:         m.OrderID,
		InvoiceNumber:   m.InvoiceNumber,
		Status:          subscription.InvoiceStatus(m.Status),
		Subtotal:        m.Subtotal,
		Tax:             m.Tax,
		Shipping:        m.Shipping,
		Discount:        m.Discount,
		Total:           m.Total,
		PaymentMethodID: m.PaymentMethodID,
		TransactionID:   m.TransactionID,
		BillingDate:     m.BillingDate,
		DueDate:         m.DueDate,
		PaidAt:          m.PaidAt,
		AttemptCount:    m.AttemptCount,
		LastAttemptAt:   m.LastAttemptAt,
		NextRetryAt:     m.NextRetryAt,
		FailureReason:   m.FailureReason,
		Metadata:        mapFromJSON(m.Metadata),
	}
}

// InvoiceModelFromDomain converts a domain Invoice to the persistence model
func InvoiceModelFromDomain(inv *subscription.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		SubscriptionID:  inv.SubscriptionID,
		CustomerID:      inv.CustomerID,
		OrderID:         inv.OrderID,
		InvoiceNumber:   inv.InvoiceNumber,
		Status:          string(inv.Status),
		Subtotal:        inv.Subtotal,
		Tax:             inv.Tax,
		Shipping:        inv.Shipping,
		Discount:        inv.Discount,
		Total:           inv.Total,
		PaymentMethodID: inv.PaymentMethodID,
		TransactionID:   inv.TransactionID,
		BillingDate:     inv.BillingDate,
		DueDate:         inv.DueDate,
		PaidAt:          inv.PaidAt,
		AttemptCount:    inv.AttemptCount,
		LastAttemptAt:   inv.LastAttemptAt,
		NextRetryAt:     inv.NextRetryAt,
		FailureReason:   inv.FailureReason,
	}
	if len(inv.Metadata) > 0 {
		m.Metadata = toJSON(inv.Metadata)
	}
	m.FromDomainBaseEntity(inv.BaseEntity)
	return m
}

// HistoryModel is one row of the subscription audit trail
type HistoryModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID `gorm:"type:uuid;not null;index"`
	Action         string    `gorm:"type:varchar(30);not null"`
	OldStatus      string    `gorm:"type:varchar(20)"`
	NewStatus      string    `gorm:"type:varchar(20)"`
	ChangedFields  datatypes.JSON
	ActorType      string    `gorm:"type:varchar(20);not null"`
	ActorID        string    `gorm:"type:varchar(100)"`
	Notes          string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (HistoryModel) TableName() string {
	return "subscription_history"
}

// ToDomain converts the row to a domain History
func (m *HistoryModel) ToDomain() *subscription.History {
	return &subscription.History{
		ID:             m.ID,
		SubscriptionID: m.SubscriptionID,
		Action:         subscription.Action(m.Action),
		OldStatus:      subscription.Status(m.OldStatus),
		NewStatus:      subscription.Status(m.NewStatus),
		ChangedFields:  mapFromJSON(m.ChangedFields),
		ActorType:      subscription.ActorType(m.ActorType),
		ActorID:        m.ActorID,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}

// HistoryModelFromDomain converts a domain History to the row
func HistoryModelFromDomain(h *subscription.History) *HistoryModel {
	m := &HistoryModel{
		ID:             h.ID,
		SubscriptionID: h.SubscriptionID,
		Action:         string(h.Action),
		OldStatus:      string(h.OldStatus),
		NewStatus:      string(h.NewStatus),
		ActorType:      string(h.ActorType),
		ActorID:        h.ActorID,
		Notes:          h.Notes,
		CreatedAt:      h.CreatedAt,
	}
	if len(h.ChangedFields) > 0 {
		m.ChangedFields = toJSON(h.ChangedFields)
	}
	return m
}
