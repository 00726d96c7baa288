package integration

import (
	"context"
	"errors"
	"time"
)

// ErrCRMNotConfigured is returned by adapters with no endpoint or credentials
var ErrCRMNotConfigured = errors.New("crm: not configured")

// CRM event types
const (
	CRMEventSubscriptionCreated        = "subscription.created"
	CRMEventSubscriptionPaymentSuccess = "subscription.payment.success"
	CRMEventSubscriptionPaymentFailed  = "subscription.payment.failed"
	CRMEventSubscriptionPaused         = "subscription.paused"
	CRMEventSubscriptionResumed        = "subscription.resumed"
	CRMEventSubscriptionCancelled      = "subscription.cancelled"
	CRMEventOrderPlaced                = "order.placed"
	CRMEventOrderShipped               = "order.shipped"
)

// CRMCustomer identifies the contact an event is about
type CRMCustomer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// CRMLineItem is one product line in a subscription or order
type CRMLineItem struct {
	ProductName  string  `json:"product_name"`
	VariantTitle string  `json:"variant_title,omitempty"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

// CRMSubscription describes the subscription side of an event
type CRMSubscription struct {
	ID              string        `json:"id"`
	Status          string        `json:"status"`
	Frequency       string        `json:"frequency"`
	Amount          float64       `json:"amount"`
	NextBillingDate string        `json:"next_billing_date"`
	Items           []CRMLineItem `json:"items,omitempty"`
}

// CRMOrder describes the order side of an event
type CRMOrder struct {
	OrderNumber    string  `json:"order_number"`
	Amount         float64 `json:"amount"`
	ShippingMethod string  `json:"shipping_method,omitempty"`
	TrackingNumber string  `json:"tracking_number,omitempty"`
	Carrier        string  `json:"carrier,omitempty"`
}

// CRMPayment describes a charge attempt
type CRMPayment struct {
	InvoiceNumber string  `json:"invoice_number"`
	TransactionID string  `json:"transaction_id,omitempty"`
	Amount        float64 `json:"amount"`
	BillingDate   string  `json:"billing_date"`
	AttemptCount  int     `json:"attempt_count,omitempty"`
	NextRetryDate string  `json:"next_retry_date,omitempty"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// CRMEvent is the webhook payload
type CRMEvent struct {
	EventType    string           `json:"event_type"`
	Timestamp    time.Time        `json:"timestamp"`
	Customer     CRMCustomer      `json:"customer"`
	Subscription *CRMSubscription `json:"subscription,omitempty"`
	Order        *CRMOrder        `json:"order,omitempty"`
	Payment      *CRMPayment      `json:"payment,omitempty"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
}

// Contact is a CRM contact to create or update
type Contact struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Source    string
	Tags      []string
	// CustomFields are CRM custom field values keyed by field key
	CustomFields map[string]string
}

// ContactResult is the CRM's view of the contact after an upsert
type ContactResult struct {
	ContactID string
	Tags      []string
	IsNew     bool
}

// Booking is a request for a calendar appointment
type Booking struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	StartTime time.Time
	EndTime   time.Time
	Title     string
	Notes     string
}

// BookingResult reports the created appointment
type BookingResult struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointment_id,omitempty"`
	ContactID     string `json:"contact_id,omitempty"`
	Placeholder   bool   `json:"placeholder,omitempty"`
	Message       string `json:"message,omitempty"`
}

// CRM is the marketing automation system
type CRM interface {
	// SendEvent posts an event to the workflow webhook. Returns
	// ErrCRMNotConfigured when no webhook is set.
	SendEvent(ctx context.Context, event CRMEvent) error
	// UpsertContact creates or updates a contact, adding tags to the existing ones
	UpsertContact(ctx context.Context, c Contact) (*ContactResult, error)
	// BookAppointment schedules a consultation call
	BookAppointment(ctx context.Context, b Booking) (*BookingResult, error)
}
