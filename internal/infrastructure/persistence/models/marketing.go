package models

import (
	"time"

	"github.com/wagginmeals/backend/internal/domain/marketing"
)

// SubscriberModel is a newsletter subscriber row
type SubscriberModel struct {
	BaseModel
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	FirstName      string    `gorm:"type:varchar(100)"`
	Source         string    `gorm:"type:varchar(50);index"`
	Status         string    `gorm:"type:varchar(20);not null;index"`
	SubscribedAt   time.Time `gorm:"not null"`
	UnsubscribedAt *time.Time
}

// TableName returns the table name for GORM
func (SubscriberModel) TableName() string {
	return "newsletter_subscribers"
}

// ToDomain converts the row to a domain Subscriber
func (m *SubscriberModel) ToDomain() *marketing.Subscriber {
	return &marketing.Subscriber{
		BaseEntity:     m.BaseModel.ToDomain(),
		Email:          m.Email,
		FirstName:      m.FirstName,
		Source:         m.Source,
		Status:         marketing.SubscriberStatus(m.Status),
		SubscribedAt:   m.SubscribedAt,
		UnsubscribedAt: m.UnsubscribedAt,
	}
}

// SubscriberModelFromDomain converts a domain Subscriber to the row
func SubscriberModelFromDomain(s *marketing.Subscriber) *SubscriberModel {
	m := &SubscriberModel{
		Email:          s.Email,
		FirstName:      s.FirstName,
		Source:         s.Source,
		Status:         string(s.Status),
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
