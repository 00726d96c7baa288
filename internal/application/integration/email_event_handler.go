package integration

import (
	"context"
	"fmt"

	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// EmailEventHandler sends transactional email for order and subscription events
type EmailEventHandler struct {
	mailer    integration.Mailer
	customers customer.Repository
	orders    order.Repository
	logger    *zap.Logger
}

// NewEmailEventHandler creates a new EmailEventHandler
func NewEmailEventHandler(mailer integration.Mailer, customers customer.Repository, orders order.Repository, logger *zap.Logger) *EmailEventHandler {
	return &EmailEventHandler{mailer: mailer, customers: customers, orders: orders, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *EmailEventHandler) EventTypes() []string {
	return []string{
		order.EventTypePlaced,
		order.EventTypeShipped,
		order.EventTypeStatusChanged,
		subscription.EventTypeCreated,
		subscription.EventTypePaymentSucceeded,
		subscription.EventTypePaymentFailed,
	}
}

// Handle picks the template for the event and sends it. Send failures are logged only.
func (h *EmailEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		email *integration.Email
		err   error
	)
	switch e := event.(type) {
	case *order.Event:
		email, err = h.orderEmail(ctx, e)
	case *subscription.Event:
		email, err = h.subscriptionEmail(ctx, e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	if err != nil {
		h.logger.Warn("failed to prepare email", zap.String("event_type", event.EventType()), zap.Error(err))
		return nil
	}
	if email == nil || h.mailer == nil {
		return nil
	}
	if err := h.mailer.Send(ctx, *email); err != nil {
		h.logger.Warn("failed to send email",
			zap.String("type", string(email.Type)),
			zap.String("to", email.To),
			zap.Error(err),
		)
		return nil
	}
	h.logger.Info("email sent", zap.String("type", string(email.Type)), zap.String("to", email.To))
	return nil
}

// orderEmailType maps an order event to its template. Zero means no email.
func orderEmailType(e *order.Event) integration.EmailType {
	switch e.EventType() {
	case order.EventTypePlaced:
		if e.Source == order.SourceSubscription {
			return ""
		}
		return integration.EmailOrderConfirmation
	case order.EventTypeShipped:
		return integration.EmailOrderShipped
	case order.EventTypeStatusChanged:
		switch e.Status {
		case order.StatusProcessing:
			return integration.EmailOrderProcessing
		case order.StatusOutForDelivery:
			return integration.EmailOrderOutForDelivery
		case order.StatusDelivered:
			return integration.EmailOrderDelivered
		}
	}
	return ""
}

func (h *EmailEventHandler) orderEmail(ctx context.Context, e *order.Event) (*integration.Email, error) {
	t := orderEmailType(e)
	if t == "" {
		return nil, nil
	}
	data := map[string]any{
		"OrderNumber":    e.OrderNumber,
		"Total":          e.Total.StringFixed(2),
		"TrackingNumber": e.TrackingNumber,
		"Carrier":        e.Carrier,
		"CustomerName":   "",
	}
	if h.customers != nil {
		if c, err := h.customers.FindByID(ctx, e.CustomerID); err == nil {
			data["CustomerName"] = c.FirstName
		}
	}
	if h.orders != nil {
		if o, err := h.orders.FindByID(ctx, e.AggregateID()); err == nil {
			data["Items"] = o.Items
			data["Subtotal"] = o.Subtotal.StringFixed(2)
			data["ShippingCost"] = o.ShippingCost.StringFixed(2)
			data["Tax"] = o.Tax.StringFixed(2)
			data["DiscountAmount"] = o.DiscountAmount.StringFixed(2)
			data["ShippingAddress"] = o.ShippingAddress.String()
		}
	}
	return &integration.Email{Type: t, To: e.Email, Data: data}, nil
}

func (h *EmailEventHandler) subscriptionEmail(ctx context.Context, e *subscription.Event) (*integration.Email, error) {
	var t integration.EmailType
	switch e.EventType() {
	case subscription.EventTypeCreated:
		t = integration.EmailSubscriptionCreated
	case subscription.EventTypePaymentSucceeded:
		t = integration.EmailSubscriptionPaymentSuccess
	case subscription.EventTypePaymentFailed:
		t = integration.EmailSubscriptionPaymentFailed
	default:
		return nil, nil
	}
	if h.customers == nil {
		return nil, fmt.Errorf("no customer repository")
	}
	c, err := h.customers.FindByID(ctx, e.CustomerID)
	if err != nil {
		return nil, err
	}
	data := map[string]any{
		"CustomerName":    c.FirstName,
		"Frequency":       e.Frequency.String(),
		"Amount":          e.Amount.StringFixed(2),
		"NextBillingDate": e.NextBillingDate.Format("January 2, 2006"),
		"Items":           e.Items,
		"InvoiceNumber":   e.InvoiceNumber,
		"FailureReason":   e.FailureReason,
		"AttemptCount":    e.AttemptCount,
		"FinalAttempt":    e.FinalAttempt,
	}
	if e.NextRetryAt != nil {
		data["NextRetryDate"] = e.NextRetryAt.Format("January 2, 2006")
	}
	return &integration.Email{Type: t, To: c.Email, Data: data}, nil
}

var _ shared.EventHandler = (*EmailEventHandler)(nil)
