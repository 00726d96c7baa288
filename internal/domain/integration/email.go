package integration

import (
	"context"
	"errors"
)

// EmailType selects a template
type EmailType string

const (
	EmailOrderConfirmation          EmailType = "order_confirmation"
	EmailOrderProcessing            EmailType = "order_processing"
	EmailOrderShipped               EmailType = "order_shipped"
	EmailOrderOutForDelivery        EmailType = "order_out_for_delivery"
	EmailOrderDelivered             EmailType = "order_delivered"
	EmailSubscriptionCreated        EmailType = "subscription_created"
	EmailSubscriptionPaymentSuccess EmailType = "subscription_payment_success"
	EmailSubscriptionPaymentFailed  EmailType = "subscription_payment_failed"
	EmailConsultationReceived       EmailType = "consultation_received"
)

// ErrUnknownEmailType is returned for a type with no template
var ErrUnknownEmailType = errors.New("email: unknown email type")

// Email is a templated message to one recipient
type Email struct {
	Type EmailType
	To   string
	// Data feeds the template
	Data map[string]any
}

// Mailer renders and delivers transactional email
type Mailer interface {
	Send(ctx context.Context, e Email) error
}
