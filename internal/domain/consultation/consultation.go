package consultation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// Status is the workflow state of a paid consultation
type Status string

const (
	StatusQuestionnairePending Status = "questionnaire_pending"
	StatusPaid                 Status = "paid"
	StatusScheduled            Status = "scheduled"
	StatusCompleted            Status = "completed"
	StatusCancelled            Status = "cancelled"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusQuestionnairePending, StatusPaid, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks the consultation fee
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Errors
var (
	ErrNotFound     = shared.NewDomainError("NOT_FOUND", "Consultation not found")
	ErrAlreadyPaid  = shared.NewDomainError("INVALID_STATE", "Consultation is already paid")
	ErrInvalidState = shared.NewDomainError("INVALID_INPUT", "Invalid consultation status")
)

// Dog is one pet covered by the consultation
type Dog struct {
	Name           string `json:"name"`
	Breed          string `json:"breed"`
	Age            string `json:"age"`
	Weight         string `json:"weight"`
	Gender         string `json:"gender,omitempty"`
	SpayedNeutered string `json:"spayed_neutered,omitempty"`
}

// Diet is what the dogs eat today
type Diet struct {
	CurrentFood      string `json:"current_food"`
	DurationOnDiet   string `json:"duration_on_diet,omitempty"`
	PortionSize      string `json:"portion_size,omitempty"`
	FeedingFrequency string `json:"feeding_frequency,omitempty"`
}

// HealthInfo is optional medical background
type HealthInfo struct {
	Allergies         string `json:"allergies,omitempty"`
	Sensitivities     string `json:"sensitivities,omitempty"`
	ChronicConditions string `json:"chronic_conditions,omitempty"`
	Medications       string `json:"medications,omitempty"`
	RecentVetVisits   string `json:"recent_vet_visits,omitempty"`
}

// Questionnaire is the intake form
type Questionnaire struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	City            string
	State           string
	Dogs            []Dog
	CurrentDiet     Diet
	HealthInfo      *HealthInfo
	Goals           string
	PreferredFormat string
	SpecialRequests string
}

// Problems lists every missing field
func (q Questionnaire) Problems() []string {
	var problems []string
	blank := func(s string) bool { return strings.TrimSpace(s) == "" }
	if blank(q.FirstName) {
		problems = append(problems, "First name is required")
	}
	if blank(q.LastName) {
		problems = append(problems, "Last name is required")
	}
	if blank(q.Email) {
		problems = append(problems, "Email is required")
	} else if customer.ValidateEmail(q.Email) != nil {
		problems = append(problems, "Email is invalid")
	}
	if blank(q.Phone) {
		problems = append(problems, "Phone is required")
	}
	if len(q.Dogs) == 0 {
		problems = append(problems, "At least one dog is required")
	}
	if blank(q.CurrentDiet.CurrentFood) {
		problems = append(problems, "Current diet information is required")
	}
	if blank(q.Goals) {
		problems = append(problems, "Goals are required")
	}
	for i, d := range q.Dogs {
		n := i + 1
		if blank(d.Name) {
			problems = append(problems, fmt.Sprintf("Dog #%d: Name is required", n))
		}
		if blank(d.Breed) {
			problems = append(problems, fmt.Sprintf("Dog #%d: Breed is required", n))
		}
		if blank(d.Age) {
			problems = append(problems, fmt.Sprintf("Dog #%d: Age is required", n))
		}
		if blank(d.Weight) {
			problems = append(problems, fmt.Sprintf("Dog #%d: Weight is required", n))
		}
	}
	return problems
}

// Consultation is a paid nutrition consultation request
type Consultation struct {
	shared.BaseEntity
	Questionnaire
	CustomerID               *uuid.UUID
	Status                   Status
	PaymentStatus            PaymentStatus
	Amount                   decimal.Decimal
	TransactionID            string
	PaymentFailureReason     string
	PaidAt                   *time.Time
	QuestionnaireCompletedAt time.Time
	ScheduledAt              *time.Time
	AdminNotes               string
}

// New records a submitted questionnaire awaiting payment
func New(q Questionnaire, customerID *uuid.UUID, fee decimal.Decimal, now time.Time) (*Consultation, error) {
	if problems := q.Problems(); len(problems) > 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", strings.Join(problems, "; "))
	}
	q.Email = customer.NormalizeEmail(q.Email)
	return &Consultation{
		BaseEntity:               shared.NewBaseEntity(),
		Questionnaire:            q,
		CustomerID:               customerID,
		Status:                   StatusQuestionnairePending,
		PaymentStatus:            PaymentPending,
		Amount:                   fee,
		QuestionnaireCompletedAt: now,
	}, nil
}

// FullName joins first and last name
func (c *Consultation) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// MarkPaid records the captured fee
func (c *Consultation) MarkPaid(transactionID string, now time.Time) error {
	if c.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}
	c.Status = StatusPaid
	c.PaymentStatus = PaymentPaid
	c.TransactionID = transactionID
	c.PaymentFailureReason = ""
	c.PaidAt = &now
	c.Touch()
	return nil
}

// MarkPaymentFailed keeps the status and records the failure
func (c *Consultation) MarkPaymentFailed(reason string) {
	c.PaymentStatus = PaymentFailed
	c.PaymentFailureReason = reason
	c.Touch()
}

// Update applies an admin status change and notes
func (c *Consultation) Update(status Status, notes *string, scheduledAt *time.Time) error {
	if status != "" {
		if !status.IsValid() {
			return ErrInvalidState
		}
		c.Status = status
	}
	if notes != nil {
		c.AdminNotes = *notes
	}
	if scheduledAt != nil {
		c.ScheduledAt = scheduledAt
	}
	c.Touch()
	return nil
}

// Repository persists consultations
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	// FindAll lists consultations. Filters supports "status".
	FindAll(ctx context.Context, filter shared.Filter) ([]Consultation, int64, error)
	Save(ctx context.Context, c *Consultation) error
}
