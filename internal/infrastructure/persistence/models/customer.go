package models

import (
	"time"

	"github.com/wagginmeals/backend/internal/domain/customer"
	"gorm.io/datatypes"
)

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	AggregateModel
	Email                  string `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName              string `gorm:"type:varchar(100)"`
	LastName               string `gorm:"type:varchar(100)"`
	Phone                  string `gorm:"type:varchar(50)"`
	IsGuest                bool   `gorm:"not null;default:false"`
	DefaultShippingAddress datatypes.JSON
	CRMContactID           string                      `gorm:"column:crm_contact_id;type:varchar(100)"`
	CRMTags                datatypes.JSONSlice[string] `gorm:"column:crm_tags"`
	CRMLastSyncAt          *time.Time                  `gorm:"column:crm_last_sync_at"`
	CRMSyncError           string                      `gorm:"column:crm_sync_error;type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BaseAggregateRoot:      m.ToAggregateRoot(),
		Email:                  m.Email,
		FirstName:              m.FirstName,
		LastName:               m.LastName,
		Phone:                  m.Phone,
		IsGuest:                m.IsGuest,
		DefaultShippingAddress: addressFromJSON(m.DefaultShippingAddress),
		CRMContactID:           m.CRMContactID,
		CRMTags:                stringsFrom(m.CRMTags),
		CRMLastSyncAt:          m.CRMLastSyncAt,
		CRMSyncError:           m.CRMSyncError,
	}
}

// CustomerModelFromDomain converts a domain Customer to the persistence model
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{
		Email:                  c.Email,
		FirstName:              c.FirstName,
		LastName:               c.LastName,
		Phone:                  c.Phone,
		IsGuest:                c.IsGuest,
		DefaultShippingAddress: addressToJSON(c.DefaultShippingAddress),
		CRMContactID:           c.CRMContactID,
		CRMTags:                datatypes.JSONSlice[string](c.CRMTags),
		CRMLastSyncAt:          c.CRMLastSyncAt,
		CRMSyncError:           c.CRMSyncError,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
