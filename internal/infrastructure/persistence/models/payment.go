package models

import (
	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"gorm.io/datatypes"
)

// PaymentMethodModel is a vaulted card reference. Card numbers are never stored.
type PaymentMethodModel struct {
	BaseModel
	CustomerID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider         string    `gorm:"type:varchar(30);not null"`
	ProfileID        string    `gorm:"type:varchar(100);not null"`
	PaymentProfileID string    `gorm:"type:varchar(100);not null"`
	CardType         string    `gorm:"type:varchar(30)"`
	LastFour         string    `gorm:"type:varchar(4)"`
	ExpirationMonth  int
	ExpirationYear   int
	BillingAddress   datatypes.JSON
	IsDefault        bool `gorm:"not null;default:false"`
	IsActive         bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain Method
func (m *PaymentMethodModel) ToDomain() *payment.Method {
	return &payment.Method{
		BaseEntity:       m.BaseModel.ToDomain(),
		CustomerID:       m.CustomerID,
		Provider:         payment.Provider(m.Provider),
		ProfileID:        m.ProfileID,
		PaymentProfileID: m.PaymentProfileID,
		CardType:         payment.CardType(m.CardType),
		LastFour:         m.LastFour,
		ExpirationMonth:  m.ExpirationMonth,
		ExpirationYear:   m.ExpirationYear,
		BillingAddress:   addressFromJSON(m.BillingAddress),
		IsDefault:        m.IsDefault,
		IsActive:         m.IsActive,
	}
}

// PaymentMethodModelFromDomain converts a domain Method to the persistence model
func PaymentMethodModelFromDomain(pm *payment.Method) *PaymentMethodModel {
	m := &PaymentMethodModel{
		CustomerID:       pm.CustomerID,
		Provider:         string(pm.Provider),
		ProfileID:        pm.ProfileID,
		PaymentProfileID: pm.PaymentProfileID,
		CardType:         string(pm.CardType),
		LastFour:         pm.LastFour,
		ExpirationMonth:  pm.ExpirationMonth,
		ExpirationYear:   pm.ExpirationYear,
		BillingAddress:   addressToJSON(pm.BillingAddress),
		IsDefault:        pm.IsDefault,
		IsActive:         pm.IsActive,
	}
	m.FromDomainBaseEntity(pm.BaseEntity)
	return m
}
