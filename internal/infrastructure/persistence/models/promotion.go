package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/promotion"
)

// DiscountModel is the persistence model for discount codes
type DiscountModel struct {
	BaseModel
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description     string          `gorm:"type:text"`
	Type            string          `gorm:"type:varchar(20);not null"`
	Value           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinimumPurchase decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UsageLimit      *int
	UsageCount      int `gorm:"not null;default:0"`
	StartsAt        *time.Time
	ExpiresAt       *time.Time
	IsActive        bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (DiscountModel) TableName() string {
	return "discounts"
}

// ToDomain converts the persistence model to a domain Discount
func (m *DiscountModel) ToDomain() *promotion.Discount {
	return &promotion.Discount{
		BaseEntity:      m.BaseModel.ToDomain(),
		Code:            m.Code,
		Description:     m.Description,
		Type:            promotion.DiscountType(m.Type),
		Value:           m.Value,
		MinimumPurchase: m.MinimumPurchase,
		UsageLimit:      m.UsageLimit,
		UsageCount:      m.UsageCount,
		StartsAt:        m.StartsAt,
		ExpiresAt:       m.ExpiresAt,
		IsActive:        m.IsActive,
	}
}

// DiscountModelFromDomain converts a domain Discount to the persistence model
func DiscountModelFromDomain(d *promotion.Discount) *DiscountModel {
	m := &DiscountModel{
		Code:            d.Code,
		Description:     d.Description,
		Type:            string(d.Type),
		Value:           d.Value,
		MinimumPurchase: d.MinimumPurchase,
		UsageLimit:      d.UsageLimit,
		UsageCount:      d.UsageCount,
		StartsAt:        d.StartsAt,
		ExpiresAt:       d.ExpiresAt,
		IsActive:        d.IsActive,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
