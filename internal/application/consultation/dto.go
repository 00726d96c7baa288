package consultation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	paymentapp "github.com/wagginmeals/backend/internal/application/payment"
	"github.com/wagginmeals/backend/internal/domain/consultation"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// ContactInfo is the owner section of the questionnaire
type ContactInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	State     string `json:"state"`
}

// QuestionnaireRequest is the consultation intake form
type QuestionnaireRequest struct {
	Contact         ContactInfo              `json:"contact"`
	Dogs            []consultation.Dog       `json:"dogs"`
	CurrentDiet     consultation.Diet        `json:"current_diet"`
	HealthInfo      *consultation.HealthInfo `json:"health_info"`
	Goals           string                   `json:"goals"`
	PreferredFormat string                   `json:"preferred_format"`
	SpecialRequests string                   `json:"special_requests"`
}

func (r QuestionnaireRequest) questionnaire() consultation.Questionnaire {
	return consultation.Questionnaire{
		FirstName:       r.Contact.FirstName,
		LastName:        r.Contact.LastName,
		Email:           r.Contact.Email,
		Phone:           r.Contact.Phone,
		City:            r.Contact.City,
		State:           r.Contact.State,
		Dogs:            r.Dogs,
		CurrentDiet:     r.CurrentDiet,
		HealthInfo:      r.HealthInfo,
		Goals:           r.Goals,
		PreferredFormat: r.PreferredFormat,
		SpecialRequests: r.SpecialRequests,
	}
}

// CompletePaymentRequest pays the fee with a stored method or a new card
type CompletePaymentRequest struct {
	ConsultationID  uuid.UUID             `json:"consultation_id" binding:"required"`
	PaymentMethodID *uuid.UUID            `json:"payment_method_id"`
	NewCard         *paymentapp.CardInput `json:"new_card"`
	BillingAddress  *valueobject.Address  `json:"billing_address"`
}

// UpdateRequest is the admin status and notes edit
type UpdateRequest struct {
	Status      string     `json:"status"`
	AdminNotes  *string    `json:"admin_notes"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// ListFilter narrows the admin list
type ListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ConsultationResponse is the consultation view
type ConsultationResponse struct {
	ID                       uuid.UUID                  `json:"id"`
	CustomerID               *uuid.UUID                 `json:"customer_id,omitempty"`
	FirstName                string                     `json:"first_name"`
	LastName                 string                     `json:"last_name"`
	Email                    string                     `json:"email"`
	Phone                    string                     `json:"phone"`
	City                     string                     `json:"city,omitempty"`
	State                    string                     `json:"state,omitempty"`
	Dogs                     []consultation.Dog         `json:"dogs"`
	CurrentDiet              consultation.Diet          `json:"current_diet"`
	HealthInfo               *consultation.HealthInfo   `json:"health_info,omitempty"`
	Goals                    string                     `json:"goals"`
	PreferredFormat          string                     `json:"preferred_format,omitempty"`
	SpecialRequests          string                     `json:"special_requests,omitempty"`
	Status                   consultation.Status        `json:"status"`
	PaymentStatus            consultation.PaymentStatus `json:"payment_status"`
	Amount                   decimal.Decimal            `json:"amount"`
	TransactionID            string                     `json:"transaction_id,omitempty"`
	PaymentFailureReason     string                     `json:"payment_failure_reason,omitempty"`
	PaidAt                   *time.Time                 `json:"paid_at,omitempty"`
	QuestionnaireCompletedAt time.Time                  `json:"questionnaire_completed_at"`
	ScheduledAt              *time.Time                 `json:"scheduled_at,omitempty"`
	AdminNotes               string                     `json:"admin_notes,omitempty"`
	CreatedAt                time.Time                  `json:"created_at"`
}

// ToConsultationResponse maps a consultation
func ToConsultationResponse(c *consultation.Consultation) ConsultationResponse {
	return ConsultationResponse{
		ID:                       c.ID,
		CustomerID:               c.CustomerID,
		FirstName:                c.FirstName,
		LastName:                 c.LastName,
		Email:                    c.Email,
		Phone:                    c.Phone,
		City:                     c.City,
		State:                    c.State,
		Dogs:                     c.Dogs,
		CurrentDiet:              c.CurrentDiet,
		HealthInfo:               c.HealthInfo,
		Goals:                    c.Goals,
		PreferredFormat:          c.PreferredFormat,
		SpecialRequests:          c.SpecialRequests,
		Status:                   c.Status,
		PaymentStatus:            c.PaymentStatus,
		Amount:                   c.Amount,
		TransactionID:            c.TransactionID,
		PaymentFailureReason:     c.PaymentFailureReason,
		PaidAt:                   c.PaidAt,
		QuestionnaireCompletedAt: c.QuestionnaireCompletedAt,
		ScheduledAt:              c.ScheduledAt,
		AdminNotes:               c.AdminNotes,
		CreatedAt:                c.CreatedAt,
	}
}
