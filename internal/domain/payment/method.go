package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// CardType is the card brand shown to customers
type CardType string

const (
	CardTypeVisa       CardType = "Visa"
	CardTypeMastercard CardType = "Mastercard"
	CardTypeAmex       CardType = "Amex"
	CardTypeDiscover   CardType = "Discover"
	CardTypeUnknown    CardType = ""
)

// DetectCardType infers the brand from the card number prefix
func DetectCardType(number string) CardType {
	d := Card{Number: number}.Digits()
	switch {
	case strings.HasPrefix(d, "4"):
		return CardTypeVisa
	case hasPrefixInRange(d, 2, 51, 55), hasPrefixInRange(d, 4, 2221, 2720):
		return CardTypeMastercard
	case strings.HasPrefix(d, "34"), strings.HasPrefix(d, "37"):
		return CardTypeAmex
	case strings.HasPrefix(d, "6011"), strings.HasPrefix(d, "65"), hasPrefixInRange(d, 3, 644, 649):
		return CardTypeDiscover
	default:
		return CardTypeUnknown
	}
}

func hasPrefixInRange(digits string, n, lo, hi int) bool {
	if len(digits) < n {
		return false
	}
	v := 0
	for _, r := range digits[:n] {
		v = v*10 + int(r-'0')
	}
	return v >= lo && v <= hi
}

// Errors
var (
	ErrMethodNotFound = shared.NewDomainError("NOT_FOUND", "Payment method not found")
	ErrMethodInactive = shared.NewDomainError("INVALID_STATE", "Payment method is not active")
	ErrMethodInUse    = shared.NewDomainError("CONFLICT", "Payment method is used by an active subscription")
)

// Method is a tokenized card held by the gateway. Only masked details are kept here.
type Method struct {
	shared.BaseEntity
	CustomerID       uuid.UUID
	Provider         Provider
	ProfileID        string
	PaymentProfileID string
	CardType         CardType
	LastFour         string
	ExpirationMonth  int
	ExpirationYear   int
	BillingAddress   *valueobject.Address
	IsDefault        bool
	IsActive         bool
}

// NewMethod records a vaulted card
func NewMethod(customerID uuid.UUID, provider Provider, profileID, paymentProfileID string, card Card, billTo *valueobject.Address) *Method {
	return &Method{
		BaseEntity:       shared.NewBaseEntity(),
		CustomerID:       customerID,
		Provider:         provider,
		ProfileID:        profileID,
		PaymentProfileID: paymentProfileID,
		CardType:         DetectCardType(card.Number),
		LastFour:         card.LastFour(),
		ExpirationMonth:  card.ExpirationMonth,
		ExpirationYear:   card.ExpirationYear,
		BillingAddress:   billTo,
		IsActive:         true,
	}
}

// Chargeable reports whether the method can be used for an off-session charge
func (m *Method) Chargeable() bool {
	return m.IsActive && m.ProfileID != "" && m.PaymentProfileID != ""
}

// BelongsTo reports whether the method is owned by the customer
func (m *Method) BelongsTo(customerID uuid.UUID) bool {
	return m.CustomerID == customerID
}

// Deactivate hides the method from future use
func (m *Method) Deactivate() {
	m.IsActive = false
	m.IsDefault = false
	m.Touch()
}

// MethodRepository persists payment methods
type MethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Method, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]Method, error)
	Save(ctx context.Context, m *Method) error
	// SetDefault marks id as the only default method of the customer
	SetDefault(ctx context.Context, customerID, id uuid.UUID) error
}
