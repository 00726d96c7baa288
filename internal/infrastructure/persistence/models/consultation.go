package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/consultation"
	"gorm.io/datatypes"
)

// ConsultationModel is the persistence model for consultation requests
type ConsultationModel struct {
	BaseModel
	FirstName                string                                `gorm:"type:varchar(100);not null"`
	LastName                 string                                `gorm:"type:varchar(100);not null"`
	Email                    string                                `gorm:"type:varchar(255);not null;index"`
	Phone                    string                                `gorm:"type:varchar(50)"`
	City                     string                                `gorm:"type:varchar(100)"`
	State                    string                                `gorm:"type:varchar(50)"`
	Dogs                     datatypes.JSONSlice[consultation.Dog] `gorm:"not null"`
	CurrentDiet              datatypes.JSONType[consultation.Diet]
	HealthInfo               datatypes.JSON
	Goals                    string          `gorm:"type:text"`
	PreferredFormat          string          `gorm:"type:varchar(30)"`
	SpecialRequests          string          `gorm:"type:text"`
	CustomerID               *uuid.UUID      `gorm:"type:uuid;index"`
	Status                   string          `gorm:"type:varchar(30);not null;index"`
	PaymentStatus            string          `gorm:"type:varchar(20);not null"`
	Amount                   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionID            string          `gorm:"type:varchar(100)"`
	PaymentFailureReason     string          `gorm:"type:text"`
	PaidAt                   *time.Time
	QuestionnaireCompletedAt time.Time `gorm:"not null"`
	ScheduledAt              *time.Time
	AdminNotes               string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ConsultationModel) TableName() string {
	return "consultation_requests"
}

// ToDomain converts the persistence model to a domain Consultation
func (m *ConsultationModel) ToDomain() *consultation.Consultation {
	dogs := make([]consultation.Dog, len(m.Dogs))
	copy(dogs, m.Dogs)
	var health *consultation.HealthInfo
	if len(m.HealthInfo) > 0 {
		var h consultation.HealthInfo
		if err := json.Unmarshal(m.HealthInfo, &h); err == nil {
			health = &h
		}
	}
	return &consultation.Consultation{
		BaseEntity: m.BaseModel.ToDomain(),
		Questionnaire: consultation.Questionnaire{
			FirstName:       m.FirstName,
			LastName:        m.LastName,
			Email:           m.Email,
			Phone:           m.Phone,
			City:            m.City,
			State:           m.State,
			Dogs:            dogs,
			CurrentDiet:     m.CurrentDiet.Data(),
			HealthInfo:      health,
			Goals:           m.Goals,
			PreferredFormat: m.PreferredFormat,
			SpecialRequests: m.SpecialRequests,
		},
		CustomerID:               m.CustomerID,
		Status:                   consultation.Status(m.Status),
		PaymentStatus:            consultation.PaymentStatus(m.PaymentStatus),
		Amount:                   m.Amount,
		TransactionID:            m.TransactionID,
		PaymentFailureReason:     m.PaymentFailureReason,
		PaidAt:                   m.PaidAt,
		QuestionnaireCompletedAt: m.QuestionnaireCompletedAt,
		ScheduledAt:              m.ScheduledAt,
		AdminNotes:               m.AdminNotes,
	}
}

// ConsultationModelFromDomain converts a domain Consultation to the persistence model
func ConsultationModelFromDomain(c *consultation.Consultation) *ConsultationModel {
	m := &ConsultationModel{
		FirstName:                c.FirstName,
		LastName:                 c.LastName,
		Email:                    c.Email,
		Phone:                    c.Phone,
		City:                     c.City,
		State:                    c.State,
		Dogs:                     datatypes.JSONSlice[consultation.Dog](c.Dogs),
		CurrentDiet:              datatypes.NewJSONType(c.CurrentDiet),
		Goals:                    c.Goals,
		PreferredFormat:          c.PreferredFormat,
		SpecialRequests:          c.SpecialRequests,
		CustomerID:               c.CustomerID,
		Status:                   string(c.Status),
		PaymentStatus:            string(c.PaymentStatus),
		Amount:                   c.Amount,
		TransactionID:            c.TransactionID,
		PaymentFailureReason:     c.PaymentFailureReason,
		PaidAt:                   c.PaidAt,
		QuestionnaireCompletedAt: c.QuestionnaireCompletedAt,
		ScheduledAt:              c.ScheduledAt,
		AdminNotes:               c.AdminNotes,
	}
	if c.HealthInfo != nil {
		m.HealthInfo = toJSON(c.HealthInfo)
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
