package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// SubscriptionCounter reports how many live subscriptions charge a payment method
type SubscriptionCounter interface {
	CountActiveByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (int64, error)
}

// PaymentMethodService vaults cards with the gateway and manages stored methods
type PaymentMethodService struct {
	gateway       payment.Gateway
	methodRepo    payment.MethodRepository
	customerRepo  customer.Repository
	subscriptions SubscriptionCounter
	logger        *zap.Logger
}

// NewPaymentMethodService creates a new PaymentMethodService
func NewPaymentMethodService(
	gateway payment.Gateway,
	methodRepo payment.MethodRepository,
	customerRepo customer.Repository,
	subscriptions SubscriptionCounter,
	logger *zap.Logger,
) *PaymentMethodService {
	return &PaymentMethodService{
		gateway:       gateway,
		methodRepo:    methodRepo,
		customerRepo:  customerRepo,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// List returns the customer's active payment methods
func (s *PaymentMethodService) List(ctx context.Context, customerID uuid.UUID) ([]MethodResponse, error) {
	methods, err := s.methodRepo.FindByCustomer(ctx, customerID, true)
	if err != nil {
		return nil, err
	}
	out := make([]MethodResponse, len(methods))
	for i := range methods {
		out[i] = ToMethodResponse(&methods[i])
	}
	return out, nil
}

// Add vaults a new card for the customer. The first method becomes the default.
func (s *PaymentMethodService) Add(ctx context.Context, customerID uuid.UUID, req AddMethodRequest) (*MethodResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	m, err := s.VaultCard(ctx, c, req.Card.Card(), req.BillingAddress, req.SetDefault)
	if err != nil {
		return nil, err
	}
	resp := ToMethodResponse(m)
	return &resp, nil
}

// VaultCard creates the gateway profiles for a card and stores the masked method.
// An existing gateway customer profile of the customer is reused.
func (s *PaymentMethodService) VaultCard(ctx context.Context, c *customer.Customer, card payment.Card, billTo *valueobject.Address, makeDefault bool) (*payment.Method, error) {
	if err := card.Validate(); err != nil {
		return nil, shared.WrapDomainError("INVALID_INPUT", "Invalid card details", err)
	}
	existing, err := s.methodRepo.FindByCustomer(ctx, c.ID, false)
	if err != nil {
		return nil, err
	}

	profileID := ""
	for _, m := range existing {
		if m.ProfileID != "" && m.Provider == s.gateway.Provider() {
			profileID = m.ProfileID
			break
		}
	}
	if profileID == "" {
		profileID, err = s.gateway.CreateCustomerProfile(ctx, payment.CreateProfileRequest{
			Email:       c.Email,
			CustomerID:  c.ID.String(),
			Description: c.FullName(),
		})
		if err != nil {
			s.logger.Error("failed to create gateway customer profile",
				zap.String("customer_id", c.ID.String()),
				zap.Error(err),
			)
			return nil, paymentError(err)
		}
	}

	bill := valueobject.Address{}
	if billTo != nil {
		bill = billTo.Normalize()
	} else if c.DefaultShippingAddress != nil {
		bill = *c.DefaultShippingAddress
	}
	paymentProfileID, err := s.gateway.CreatePaymentProfile(ctx, payment.CreatePaymentProfileRequest{
		ProfileID: profileID,
		Card:      card,
		BillTo:    bill,
		IsDefault: makeDefault,
	})
	if err != nil {
		s.logger.Error("failed to create gateway payment profile",
			zap.String("customer_id", c.ID.String()),
			zap.Error(err),
		)
		return nil, paymentError(err)
	}

	var billPtr *valueobject.Address
	if !bill.IsEmpty() {
		billPtr = &bill
	}
	m := payment.NewMethod(c.ID, s.gateway.Provider(), profileID, paymentProfileID, card, billPtr)
	active := 0
	for _, e := range existing {
		if e.IsActive {
			active++
		}
	}
	m.IsDefault = makeDefault || active == 0
	if err := s.methodRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	if m.IsDefault && active > 0 {
		if err := s.methodRepo.SetDefault(ctx, c.ID, m.ID); err != nil {
			return nil, err
		}
	}
	s.logger.Info("payment method stored",
		zap.String("customer_id", c.ID.String()),
		zap.String("payment_method_id", m.ID.String()),
		zap.String("card_type", string(m.CardType)),
	)
	return m, nil
}

// Remove deactivates a method. A method still charged by a live subscription is refused.
func (s *PaymentMethodService) Remove(ctx context.Context, customerID, id uuid.UUID) error {
	m, err := s.owned(ctx, customerID, id)
	if err != nil {
		return err
	}
	n, err := s.subscriptions.CountActiveByPaymentMethod(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return payment.ErrMethodInUse
	}
	m.Deactivate()
	return s.methodRepo.Save(ctx, m)
}

// SetDefault makes the method the customer's default
func (s *PaymentMethodService) SetDefault(ctx context.Context, customerID, id uuid.UUID) error {
	m, err := s.owned(ctx, customerID, id)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return payment.ErrMethodInactive
	}
	return s.methodRepo.SetDefault(ctx, customerID, id)
}

// Resolve returns the customer's method if it can be charged
func (s *PaymentMethodService) Resolve(ctx context.Context, customerID, id uuid.UUID) (*payment.Method, error) {
	m, err := s.owned(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, payment.ErrMethodInactive
	}
	return m, nil
}

// Charge runs a payment against a stored method
func (s *PaymentMethodService) Charge(ctx context.Context, m *payment.Method, c *customer.Customer, amount decimal.Decimal, invoiceNumber, description string) (*payment.ChargeResult, error) {
	req := payment.ChargeRequest{
		ProfileID:        m.ProfileID,
		PaymentProfileID: m.PaymentProfileID,
		Amount:           shared.Round2(amount),
		InvoiceNumber:    invoiceNumber,
		Description:      description,
		CustomerID:       c.ID.String(),
		CustomerEmail:    c.Email,
	}
	if !m.Chargeable() {
		return nil, payment.ErrProfileMissing
	}
	result, err := s.gateway.ChargeProfile(ctx, req)
	if err != nil {
		s.logger.Warn("charge failed",
			zap.String("customer_id", c.ID.String()),
			zap.String("invoice_number", invoiceNumber),
			zap.String("amount", req.Amount.StringFixed(2)),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (s *PaymentMethodService) owned(ctx context.Context, customerID, id uuid.UUID) (*payment.Method, error) {
	m, err := s.methodRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, payment.ErrMethodNotFound
		}
		return nil, err
	}
	if !m.BelongsTo(customerID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Payment method does not belong to this customer")
	}
	return m, nil
}

// FailureMessage turns a gateway error into the text shown to the customer
func FailureMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

func paymentError(err error) error {
	return shared.WrapDomainError("PAYMENT_REQUIRED", fmt.Sprintf("Payment processing failed: %s", err.Error()), err)
}
