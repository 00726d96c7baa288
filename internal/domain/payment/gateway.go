package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// ---------------------------------------------------------------------------
// Gateway Errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidAmount          = errors.New("payment: invalid amount")
	ErrInvalidCard            = errors.New("payment: invalid card details")
	ErrProfileMissing         = errors.New("payment: payment method not properly configured")
	ErrChargeDeclined         = errors.New("payment: charge declined")
	ErrDuplicateProfile       = errors.New("payment: customer profile already exists")
	ErrRefundNotAllowed       = errors.New("payment: refund not allowed")
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
)

// ---------------------------------------------------------------------------
// Gateway types
// ---------------------------------------------------------------------------

// Provider identifies a payment gateway implementation
type Provider string

const (
	ProviderAuthorizeNet Provider = "authorizenet"
	ProviderStripe       Provider = "stripe"
)

// IsValid returns true if the provider is supported
func (p Provider) IsValid() bool {
	switch p {
	case ProviderAuthorizeNet, ProviderStripe:
		return true
	default:
		return false
	}
}

// String returns the string representation of Provider
func (p Provider) String() string {
	return string(p)
}

// Card holds raw card details. It is only ever passed to the gateway, never stored.
type Card struct {
	Number          string
	ExpirationMonth int
	ExpirationYear  int
	CVV             string
}

// Digits returns the card number without spaces or dashes
func (c Card) Digits() string {
	return strings.NewReplacer(" ", "", "-", "").Replace(c.Number)
}

// LastFour returns the last four digits of the card number
func (c Card) LastFour() string {
	d := c.Digits()
	if len(d) < 4 {
		return d
	}
	return d[len(d)-4:]
}

// Validate checks the card shape before it is sent to the gateway
func (c Card) Validate() error {
	d := c.Digits()
	if len(d) < 13 || len(d) > 19 {
		return ErrInvalidCard
	}
	for _, r := range d {
		if r < '0' || r > '9' {
			return ErrInvalidCard
		}
	}
	if c.ExpirationMonth < 1 || c.ExpirationMonth > 12 || c.ExpirationYear < 2000 {
		return ErrInvalidCard
	}
	if len(c.CVV) < 3 || len(c.CVV) > 4 {
		return ErrInvalidCard
	}
	return nil
}

// CreateProfileRequest asks the gateway to create a customer profile
type CreateProfileRequest struct {
	Email       string
	CustomerID  string
	Description string
}

// CreatePaymentProfileRequest asks the gateway to vault a card under a profile
type CreatePaymentProfileRequest struct {
	ProfileID string
	Card      Card
	BillTo    valueobject.Address
	IsDefault bool
}

// ChargeRequest charges a stored payment profile
type ChargeRequest struct {
	ProfileID        string
	PaymentProfileID string
	Amount           decimal.Decimal
	InvoiceNumber    string
	Description      string
	CustomerID       string
	CustomerEmail    string
}

// Validate checks required fields
func (r ChargeRequest) Validate() error {
	if r.ProfileID == "" || r.PaymentProfileID == "" {
		return ErrProfileMissing
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// ChargeResult describes an approved charge
type ChargeResult struct {
	TransactionID string
	AuthCode      string
	ResponseCode  string
	AccountNumber string
	AccountType   string
}

// RefundRequest refunds all or part of a settled transaction
type RefundRequest struct {
	TransactionID string
	Amount        decimal.Decimal
	LastFour      string
}

// Gateway is the port to the external payment processor.
// The processor owns transaction processing; we only send instructions.
type Gateway interface {
	// Provider reports which implementation this is
	Provider() Provider

	// CreateCustomerProfile returns the profile id. A duplicate profile
	// resolves to the existing id instead of failing.
	CreateCustomerProfile(ctx context.Context, req CreateProfileRequest) (string, error)

	// CreatePaymentProfile vaults a card and returns the payment profile id
	CreatePaymentProfile(ctx context.Context, req CreatePaymentProfileRequest) (string, error)

	// ChargeProfile runs an auth-capture against a stored payment profile.
	// A declined charge returns an error wrapping ErrChargeDeclined.
	ChargeProfile(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// Refund returns money for a previous charge
	Refund(ctx context.Context, req RefundRequest) (*ChargeResult, error)

	// TestConnection verifies the credentials
	TestConnection(ctx context.Context) error
}
