package models

import (
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/tax"
)

// TaxRateModel is the persistence model for sales tax rates
type TaxRateModel struct {
	BaseModel
	StateCode string          `gorm:"type:varchar(2);not null;index"`
	StateName string          `gorm:"type:varchar(100)"`
	County    string          `gorm:"type:varchar(100)"`
	ZipCode   string          `gorm:"type:varchar(10);index"`
	Rate      decimal.Decimal `gorm:"type:decimal(6,5);not null"`
	IsActive  bool            `gorm:"not null;default:true"`
	Notes     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TaxRateModel) TableName() string {
	return "tax_rates"
}

// ToDomain converts the persistence model to a domain Rate
func (m *TaxRateModel) ToDomain() *tax.Rate {
	return &tax.Rate{
		BaseEntity: m.BaseModel.ToDomain(),
		StateCode:  m.StateCode,
		StateName:  m.StateName,
		County:     m.County,
		ZipCode:    m.ZipCode,
		Rate:       m.Rate,
		IsActive:   m.IsActive,
		Notes:      m.Notes,
	}
}

// TaxRateModelFromDomain converts a domain Rate to the persistence model
func TaxRateModelFromDomain(r *tax.Rate) *TaxRateModel {
	m := &TaxRateModel{
		StateCode: r.StateCode,
		StateName: r.StateName,
		County:    r.County,
		ZipCode:   r.ZipCode,
		Rate:      r.Rate,
		IsActive:  r.IsActive,
		Notes:     r.Notes,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
