package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StripeGateway implements payment.Gateway with Stripe customers, payment
// methods and off-session payment intents.
type StripeGateway struct {
	api      *client.API
	currency string
	logger   *zap.Logger
}

// NewStripeGateway creates the adapter using the default Stripe backends
func NewStripeGateway(cfg config.StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	return newStripeGateway(cfg, nil, logger)
}

func newStripeGateway(cfg config.StripeConfig, backend stripe.Backend, logger *zap.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: stripe secret key is required", payment.ErrGatewayNotConfigured)
	}
	var backends *stripe.Backends
	if backend != nil {
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		api:      client.New(cfg.SecretKey, backends),
		currency: currency,
		logger:   logger,
	}, nil
}

// Provider returns stripe
func (g *StripeGateway) Provider() payment.Provider {
	return payment.ProviderStripe
}

// CreateCustomerProfile reuses a customer with the same email when one exists
func (g *StripeGateway) CreateCustomerProfile(ctx context.Context, req payment.CreateProfileRequest) (string, error) {
	list := &stripe.CustomerListParams{Email: stripe.String(req.Email)}
	list.Context = ctx
	list.Limit = stripe.Int64(1)
	it := g.api.Customers.List(list)
	if it.Next() {
		existing := it.Customer()
		g.logger.Info("Reusing existing Stripe customer",
			zap.String("customer_id", req.CustomerID),
			zap.String("stripe_customer_id", existing.ID))
		return existing.ID, nil
	}
	if err := it.Err(); err != nil {
		return "", g.mapError(err, payment.ErrGatewayRequestFailed)
	}

	description := req.Description
	if description == "" {
		description = "Customer " + req.CustomerID
	}
	params := &stripe.CustomerParams{
		Email:       stripe.String(req.Email),
		Description: stripe.String(description),
		Metadata:    map[string]string{"customer_id": req.CustomerID},
	}
	params.Context = ctx
	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", g.mapError(err, payment.ErrGatewayRequestFailed)
	}
	g.logger.Info("Created Stripe customer",
		zap.String("customer_id", req.CustomerID),
		zap.String("stripe_customer_id", cust.ID))
	return cust.ID, nil
}

// CreatePaymentProfile creates a card payment method and attaches it to the customer
func (g *StripeGateway) CreatePaymentProfile(ctx context.Context, req payment.CreatePaymentProfileRequest) (string, error) {
	if err := req.Card.Validate(); err != nil {
		return "", err
	}
	if req.ProfileID == "" {
		return "", payment.ErrProfileMissing
	}
	bill := req.BillTo.Normalize()
	params := &stripe.PaymentMethodParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(req.Card.Digits()),
			ExpMonth: stripe.Int64(int64(req.Card.ExpirationMonth)),
			ExpYear:  stripe.Int64(int64(req.Card.ExpirationYear)),
			CVC:      stripe.String(req.Card.CVV),
		},
		BillingDetails: &stripe.PaymentMethodBillingDetailsParams{
			Name: stripe.String(strings.TrimSpace(bill.FirstName + " " + bill.LastName)),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(bill.Street),
				Line2:      stripe.String(bill.Street2),
				City:       stripe.String(bill.City),
				State:      stripe.String(bill.State),
				PostalCode: stripe.String(bill.ZipCode),
				Country:    stripe.String(bill.Country),
			},
		},
	}
	params.Context = ctx
	pm, err := g.api.PaymentMethods.New(params)
	if err != nil {
		return "", g.mapError(err, payment.ErrInvalidCard)
	}

	attach := &stripe.PaymentMethodAttachParams{Customer: stripe.String(req.ProfileID)}
	attach.Context = ctx
	if _, err := g.api.PaymentMethods.Attach(pm.ID, attach); err != nil {
		return "", g.mapError(err, payment.ErrInvalidCard)
	}

	if req.IsDefault {
		upd := &stripe.CustomerParams{
			InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
				DefaultPaymentMethod: stripe.String(pm.ID),
			},
		}
		upd.Context = ctx
		if _, err := g.api.Customers.Update(req.ProfileID, upd); err != nil {
			g.logger.Warn("Failed to mark Stripe payment method as default",
				zap.String("payment_method_id", pm.ID),
				zap.Error(err))
		}
	}
	return pm.ID, nil
}

// ChargeProfile confirms an off-session payment intent
func (g *StripeGateway) ChargeProfile(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toCents(req.Amount)),
		Currency:      stripe.String(g.currency),
		Customer:      stripe.String(req.ProfileID),
		PaymentMethod: stripe.String(req.PaymentProfileID),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		Description:   stripe.String(chargeDescription(req)),
		Metadata: map[string]string{
			"invoice_number": req.InvoiceNumber,
			"customer_id":    req.CustomerID,
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddExpand("payment_method")

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, g.mapError(err, payment.ErrChargeDeclined)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent %s is %s", payment.ErrChargeDeclined, pi.ID, pi.Status)
	}

	result := &payment.ChargeResult{
		TransactionID: pi.ID,
		ResponseCode:  string(pi.Status),
	}
	if pi.PaymentMethod != nil && pi.PaymentMethod.Card != nil {
		result.AccountNumber = "XXXX" + pi.PaymentMethod.Card.Last4
		result.AccountType = string(pi.PaymentMethod.Card.Brand)
	}
	return result, nil
}

// Refund refunds a payment intent
func (g *StripeGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.ChargeResult, error) {
	if req.TransactionID == "" {
		return nil, payment.ErrRefundNotAllowed
	}
	if !req.Amount.IsPositive() {
		return nil, payment.ErrInvalidAmount
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.TransactionID),
		Amount:        stripe.Int64(toCents(req.Amount)),
	}
	params.Context = ctx
	ref, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, g.mapError(err, payment.ErrRefundNotAllowed)
	}
	return &payment.ChargeResult{
		TransactionID: ref.ID,
		ResponseCode:  string(ref.Status),
	}, nil
}

// TestConnection reads the account balance
func (g *StripeGateway) TestConnection(ctx context.Context) error {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	if _, err := g.api.Balance.Get(params); err != nil {
		return g.mapError(err, payment.ErrGatewayRequestFailed)
	}
	return nil
}

// mapError turns card errors into cardErr and everything else into a request failure
func (g *StripeGateway) mapError(err error, cardErr error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		g.logger.Warn("Stripe request failed",
			zap.String("type", string(se.Type)),
			zap.String("code", string(se.Code)),
			zap.String("message", se.Msg))
		if se.Type == stripe.ErrorTypeCard {
			return fmt.Errorf("%w: %s", cardErr, se.Msg)
		}
		return fmt.Errorf("%w: %s", payment.ErrGatewayRequestFailed, se.Msg)
	}
	return fmt.Errorf("%w: %v", payment.ErrGatewayRequestFailed, err)
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func chargeDescription(req payment.ChargeRequest) string {
	if req.Description != "" {
		return req.Description
	}
	return "Order " + req.InvoiceNumber
}
