package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// CRMEventHandler forwards subscription and order events to the CRM webhook.
// Failures are logged and never returned, so the publishing operation is unaffected.
type CRMEventHandler struct {
	crm       integration.CRM
	contacts  *ContactService
	customers customer.Repository
	logger    *zap.Logger
}

// NewCRMEventHandler creates a new CRMEventHandler
func NewCRMEventHandler(crm integration.CRM, contacts *ContactService, customers customer.Repository, logger *zap.Logger) *CRMEventHandler {
	return &CRMEventHandler{crm: crm, contacts: contacts, customers: customers, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CRMEventHandler) EventTypes() []string {
	return []string{
		subscription.EventTypeCreated,
		subscription.EventTypePaymentSucceeded,
		subscription.EventTypePaymentFailed,
		subscription.EventTypePaused,
		subscription.EventTypeResumed,
		subscription.EventTypeCancelled,
		order.EventTypePlaced,
		order.EventTypeShipped,
	}
}

// Handle builds the webhook payload and sends it
func (h *CRMEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		payload *integration.CRMEvent
		err     error
	)
	switch e := event.(type) {
	case *subscription.Event:
		payload, err = h.subscriptionEvent(ctx, e)
	case *order.Event:
		if e.Source == order.SourceSubscription && e.EventType() == order.EventTypePlaced {
			return nil
		}
		payload = orderEvent(e)
		if c, cerr := h.customer(ctx, e.CustomerID); cerr == nil {
			payload.Customer = crmCustomer(c)
		}
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	if err != nil {
		h.logger.Warn("failed to build crm event", zap.String("event_type", event.EventType()), zap.Error(err))
		return nil
	}
	if h.crm == nil {
		return nil
	}

	if err := h.crm.SendEvent(ctx, *payload); err != nil {
		if errors.Is(err, integration.ErrCRMNotConfigured) {
			h.logger.Debug("crm webhook not configured, skipping event", zap.String("event_type", payload.EventType))
			return nil
		}
		h.logger.Warn("failed to send crm event",
			zap.String("event_type", payload.EventType),
			zap.String("email", payload.Customer.Email),
			zap.Error(err),
		)
		return nil
	}
	h.logger.Info("crm event sent", zap.String("event_type", payload.EventType), zap.String("email", payload.Customer.Email))

	if o, ok := event.(*order.Event); ok && o.EventType() == order.EventTypePlaced && h.contacts != nil {
		h.contacts.SyncQuietly(ctx, integration.Contact{
			Email:     o.Email,
			FirstName: payload.Customer.FirstName,
			LastName:  payload.Customer.LastName,
			Phone:     payload.Customer.Phone,
			Source:    "checkout",
			Tags:      []string{"customer", "purchased"},
		})
	}
	return nil
}

func (h *CRMEventHandler) subscriptionEvent(ctx context.Context, e *subscription.Event) (*integration.CRMEvent, error) {
	c, err := h.customer(ctx, e.CustomerID)
	if err != nil {
		return nil, err
	}
	items := make([]integration.CRMLineItem, len(e.Items))
	for i, it := range e.Items {
		items[i] = integration.CRMLineItem{ProductName: it.Name, Quantity: it.Quantity, Price: it.Price.InexactFloat64()}
	}
	payload := &integration.CRMEvent{
		EventType: e.EventType(),
		Timestamp: e.OccurredAt(),
		Customer:  crmCustomer(c),
		Subscription: &integration.CRMSubscription{
			ID:              e.AggregateID().String(),
			Status:          string(e.Status),
			Frequency:       e.Frequency.String(),
			Amount:          e.Amount.InexactFloat64(),
			NextBillingDate: e.NextBillingDate.Format(dateLayout),
			Items:           items,
		},
		Metadata: map[string]any{},
	}
	if e.Reason != "" {
		payload.Metadata["reason"] = e.Reason
	}
	if e.InvoiceNumber != "" {
		p := &integration.CRMPayment{
			InvoiceNumber: e.InvoiceNumber,
			TransactionID: e.TransactionID,
			Amount:        e.Amount.InexactFloat64(),
			AttemptCount:  e.AttemptCount,
			ErrorMessage:  e.FailureReason,
		}
		if e.BillingDate != nil {
			p.BillingDate = e.BillingDate.Format(dateLayout)
		}
		if e.NextRetryAt != nil {
			p.NextRetryDate = e.NextRetryAt.Format(dateLayout)
		}
		payload.Payment = p
	}
	if e.FinalAttempt {
		payload.Metadata["final_attempt"] = true
	}
	return payload, nil
}

func orderEvent(e *order.Event) *integration.CRMEvent {
	return &integration.CRMEvent{
		EventType: e.EventType(),
		Timestamp: e.OccurredAt(),
		Customer:  integration.CRMCustomer{Email: e.Email},
		Order: &integration.CRMOrder{
			OrderNumber:    e.OrderNumber,
			Amount:         e.Total.InexactFloat64(),
			TrackingNumber: e.TrackingNumber,
			Carrier:        e.Carrier,
		},
		Metadata: map[string]any{"source": string(e.Source)},
	}
}

func (h *CRMEventHandler) customer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	if h.customers == nil {
		return nil, fmt.Errorf("no customer repository")
	}
	return h.customers.FindByID(ctx, id)
}

func crmCustomer(c *customer.Customer) integration.CRMCustomer {
	return integration.CRMCustomer{Email: c.Email, FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone}
}

var _ shared.EventHandler = (*CRMEventHandler)(nil)
