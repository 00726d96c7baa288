package consultation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/consultation"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// DefaultFee is the consultation price when none is configured
var DefaultFee = decimal.NewFromInt(395)

// PaymentProcessor vaults cards and charges stored methods
type PaymentProcessor interface {
	Resolve(ctx context.Context, customerID, id uuid.UUID) (*payment.Method, error)
	VaultCard(ctx context.Context, c *customer.Customer, card payment.Card, billTo *valueobject.Address, makeDefault bool) (*payment.Method, error)
	Charge(ctx context.Context, m *payment.Method, c *customer.Customer, amount decimal.Decimal, invoiceNumber, description string) (*payment.ChargeResult, error)
}

// ContactSyncer pushes a contact to the CRM without failing the caller
type ContactSyncer interface {
	SyncQuietly(ctx context.Context, c integration.Contact)
}

// ConsultationServiceConfig contains the dependencies of ConsultationService
type ConsultationServiceConfig struct {
	Repo      consultation.Repository
	Customers customer.Repository
	Payments  PaymentProcessor
	Mailer    integration.Mailer
	Contacts  ContactSyncer
	Fee       decimal.Decimal
	Logger    *zap.Logger
}

// ConsultationService runs the paid consultation intake
type ConsultationService struct {
	repo      consultation.Repository
	customers customer.Repository
	payments  PaymentProcessor
	mailer    integration.Mailer
	contacts  ContactSyncer
	fee       decimal.Decimal
	logger    *zap.Logger
	now       func() time.Time
}

// NewConsultationService creates a new ConsultationService
func NewConsultationService(cfg ConsultationServiceConfig) *ConsultationService {
	fee := cfg.Fee
	if !fee.IsPositive() {
		fee = DefaultFee
	}
	return &ConsultationService{
		repo:      cfg.Repo,
		customers: cfg.Customers,
		payments:  cfg.Payments,
		mailer:    cfg.Mailer,
		contacts:  cfg.Contacts,
		fee:       fee,
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// SubmitQuestionnaire records the intake form awaiting payment
func (s *ConsultationService) SubmitQuestionnaire(ctx context.Context, req QuestionnaireRequest, customerID *uuid.UUID) (*ConsultationResponse, error) {
	c, err := consultation.New(req.questionnaire(), customerID, s.fee, s.now())
	if err != nil {
		return nil, err
	}
	if c.CustomerID == nil {
		if cust, err := s.customers.FindByEmail(ctx, c.Email); err == nil {
			c.CustomerID = &cust.ID
		}
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("consultation questionnaire received",
		zap.String("consultation_id", c.ID.String()),
		zap.String("email", c.Email),
		zap.Int("dogs", len(c.Dogs)),
	)

	if s.mailer != nil {
		dogNames := make([]string, len(c.Dogs))
		for i, d := range c.Dogs {
			dogNames[i] = d.Name
		}
		err := s.mailer.Send(ctx, integration.Email{
			Type: integration.EmailConsultationReceived,
			To:   c.Email,
			Data: map[string]any{
				"FirstName":      c.FirstName,
				"DogNames":       strings.Join(dogNames, ", "),
				"Amount":         c.Amount.StringFixed(2),
				"ConsultationID": c.ID.String(),
			},
		})
		if err != nil {
			s.logger.Warn("failed to send consultation email", zap.String("email", c.Email), zap.Error(err))
		}
	}
	if s.contacts != nil {
		s.contacts.SyncQuietly(ctx, integration.Contact{
			Email:     c.Email,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Phone:     c.Phone,
			Source:    "consultation-questionnaire",
			Tags:      []string{"paid-consultation"},
		})
	}
	resp := ToConsultationResponse(c)
	return &resp, nil
}

// CompletePayment charges the consultation fee. A declined charge is recorded
// on the consultation and returned as PAYMENT_REQUIRED.
func (s *ConsultationService) CompletePayment(ctx context.Context, req CompletePaymentRequest) (*ConsultationResponse, error) {
	if req.PaymentMethodID == nil && req.NewCard == nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Either payment_method_id or new_card is required")
	}
	c, err := s.repo.FindByID(ctx, req.ConsultationID)
	if err != nil {
		return nil, err
	}
	if c.PaymentStatus == consultation.PaymentPaid {
		return nil, consultation.ErrAlreadyPaid
	}

	cust, err := s.customer(ctx, c)
	if err != nil {
		return nil, err
	}
	var pm *payment.Method
	if req.PaymentMethodID != nil {
		pm, err = s.payments.Resolve(ctx, cust.ID, *req.PaymentMethodID)
	} else {
		pm, err = s.payments.VaultCard(ctx, cust, req.NewCard.Card(), req.BillingAddress, false)
	}
	if err != nil {
		return nil, err
	}

	ref := "CONSULT-" + c.ID.String()[:8]
	result, chargeErr := s.payments.Charge(ctx, pm, cust, c.Amount, ref, "Waggin Meals nutrition consultation")
	if chargeErr != nil {
		reason := chargeErr.Error()
		var de *shared.DomainError
		if errors.As(chargeErr, &de) {
			reason = de.Message
		}
		c.MarkPaymentFailed(reason)
		if err := s.repo.Save(ctx, c); err != nil {
			s.logger.Error("failed to record consultation payment failure", zap.Error(err))
		}
		return nil, shared.WrapDomainError("PAYMENT_REQUIRED", "Payment failed: "+reason, chargeErr)
	}

	if err := c.MarkPaid(result.TransactionID, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		s.logger.Error("charge captured but consultation could not be saved",
			zap.String("consultation_id", c.ID.String()),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("consultation paid", zap.String("consultation_id", c.ID.String()), zap.String("transaction_id", result.TransactionID))
	resp := ToConsultationResponse(c)
	return &resp, nil
}

func (s *ConsultationService) customer(ctx context.Context, c *consultation.Consultation) (*customer.Customer, error) {
	if c.CustomerID != nil {
		return s.customers.FindByID(ctx, *c.CustomerID)
	}
	cust, err := s.customers.FindByEmail(ctx, c.Email)
	if err == nil {
		c.CustomerID = &cust.ID
		return cust, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	cust, err = customer.NewGuestCustomer(c.Email, c.FirstName, c.LastName, c.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, err
	}
	c.CustomerID = &cust.ID
	return cust, nil
}

// List returns a page of consultations for the admin view
func (s *ConsultationService) List(ctx context.Context, f ListFilter) ([]ConsultationResponse, int64, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" && f.Status != "all" {
		filter.Filters["status"] = f.Status
	}
	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ConsultationResponse, len(items))
	for i := range items {
		out[i] = ToConsultationResponse(&items[i])
	}
	return out, total, nil
}

// Get returns one consultation
func (s *ConsultationService) Get(ctx context.Context, id uuid.UUID) (*ConsultationResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToConsultationResponse(c)
	return &resp, nil
}

// Update applies an admin status change and notes
func (s *ConsultationService) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*ConsultationResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(consultation.Status(req.Status), req.AdminNotes, req.ScheduledAt); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToConsultationResponse(c)
	return &resp, nil
}
