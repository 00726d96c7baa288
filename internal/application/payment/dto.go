package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// CardInput is raw card data from a request
type CardInput struct {
	CardNumber      string `json:"card_number" binding:"required"`
	ExpirationMonth int    `json:"expiration_month" binding:"required,min=1,max=12"`
	ExpirationYear  int    `json:"expiration_year" binding:"required"`
	CVV             string `json:"cvv" binding:"required"`
}

// Card converts the input for the gateway
func (c CardInput) Card() payment.Card {
	return payment.Card{
		Number:          c.CardNumber,
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
		CVV:             c.CVV,
	}
}

// AddMethodRequest vaults a card
type AddMethodRequest struct {
	Card           CardInput            `json:"card" binding:"required"`
	BillingAddress *valueobject.Address `json:"billing_address"`
	SetDefault     bool                 `json:"set_default"`
}

// MethodResponse is a masked stored card
type MethodResponse struct {
	ID              uuid.UUID            `json:"id"`
	CardType        payment.CardType     `json:"card_type"`
	LastFour        string               `json:"last_four"`
	ExpirationMonth int                  `json:"expiration_month"`
	ExpirationYear  int                  `json:"expiration_year"`
	BillingAddress  *valueobject.Address `json:"billing_address,omitempty"`
	IsDefault       bool                 `json:"is_default"`
	IsActive        bool                 `json:"is_active"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToMethodResponse maps a method
func ToMethodResponse(m *payment.Method) MethodResponse {
	return MethodResponse{
		ID:              m.ID,
		CardType:        m.CardType,
		LastFour:        m.LastFour,
		ExpirationMonth: m.ExpirationMonth,
		ExpirationYear:  m.ExpirationYear,
		BillingAddress:  m.BillingAddress,
		IsDefault:       m.IsDefault,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
	}
}
