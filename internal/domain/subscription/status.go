package subscription

// Status is the lifecycle state of a subscription
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusPastDue   Status = "past_due"
	StatusExpired   Status = "expired"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCancelled, StatusPastDue, StatusExpired:
		return true
	default:
		return false
	}
}

// Billable reports whether the billing job should pick up the subscription
func (s Status) Billable() bool {
	return s == StatusActive || s == StatusPastDue
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Action is what happened to a subscription, as recorded in its history
type Action string

const (
	ActionCreated              Action = "created"
	ActionUpdated              Action = "updated"
	ActionPaused               Action = "paused"
	ActionResumed              Action = "resumed"
	ActionCancelled            Action = "cancelled"
	ActionPaymentFailed        Action = "payment_failed"
	ActionPaymentSucceeded     Action = "payment_succeeded"
	ActionItemsChanged         Action = "items_changed"
	ActionFrequencyChanged     Action = "frequency_changed"
	ActionPaymentMethodChanged Action = "payment_method_changed"
	ActionDeliverySkipped      Action = "delivery_skipped"
	ActionAddressChanged       Action = "address_changed"
)

// ActorType is who caused a change
type ActorType string

const (
	ActorCustomer ActorType = "customer"
	ActorAdmin    ActorType = "admin"
	ActorSystem   ActorType = "system"
)

// Actor identifies who performed an operation
type Actor struct {
	Type ActorType
	ID   string
}

// SystemActor is used by scheduled jobs
var SystemActor = Actor{Type: ActorSystem}
