package integration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultBookingLength is used when a booking has no end time
const DefaultBookingLength = 30 * time.Minute

// ContactService keeps CRM contacts in step with customers and handles the
// public contact and booking forms.
type ContactService struct {
	crm       integration.CRM
	customers customer.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewContactService creates a new ContactService. A nil CRM turns every call into a logged no-op.
func NewContactService(crm integration.CRM, customers customer.Repository, logger *zap.Logger) *ContactService {
	return &ContactService{crm: crm, customers: customers, logger: logger, now: time.Now}
}

// Sync upserts the contact and stores the result on the matching customer, if any
func (s *ContactService) Sync(ctx context.Context, c integration.Contact) (*integration.ContactResult, error) {
	c.Email = customer.NormalizeEmail(c.Email)
	if s.crm == nil {
		s.logger.Debug("crm not configured, skipping contact sync", zap.String("email", c.Email))
		return nil, integration.ErrCRMNotConfigured
	}
	result, err := s.crm.UpsertContact(ctx, c)
	s.recordOnCustomer(ctx, c, result, err)
	if err != nil {
		s.logger.Warn("crm contact sync failed", zap.String("email", c.Email), zap.Error(err))
		return nil, err
	}
	s.logger.Info("crm contact synced",
		zap.String("email", c.Email),
		zap.String("contact_id", result.ContactID),
		zap.Bool("new", result.IsNew),
	)
	return result, nil
}

// SyncQuietly is Sync for callers that never fail on CRM errors
func (s *ContactService) SyncQuietly(ctx context.Context, c integration.Contact) {
	_, _ = s.Sync(ctx, c)
}

func (s *ContactService) recordOnCustomer(ctx context.Context, c integration.Contact, result *integration.ContactResult, syncErr error) {
	if s.customers == nil {
		return
	}
	cust, err := s.customers.FindByEmail(ctx, c.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("failed to load customer for crm sync", zap.String("email", c.Email), zap.Error(err))
		}
		return
	}
	if syncErr != nil {
		cust.RecordCRMSyncError(syncErr.Error(), s.now())
	} else {
		tags := result.Tags
		if len(tags) == 0 {
			tags = c.Tags
		}
		cust.RecordCRMSync(result.ContactID, tags, s.now())
	}
	if err := s.customers.Save(ctx, cust); err != nil {
		s.logger.Warn("failed to store crm sync state", zap.String("customer_id", cust.ID.String()), zap.Error(err))
	}
}

// SubmitContactForm turns a contact form into a tagged CRM contact
func (s *ContactService) SubmitContactForm(ctx context.Context, req ContactFormRequest) (*ContactFormResponse, error) {
	if err := customer.ValidateEmail(req.Email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "contact-form"
	}
	tags := []string{"website-lead", source}
	for _, interest := range req.Interests {
		if t := strings.TrimSpace(interest); t != "" {
			tags = append(tags, "interest-"+strings.ToLower(strings.ReplaceAll(t, " ", "-")))
		}
	}
	fields := map[string]string{}
	if req.Message != "" {
		fields["contact_message"] = req.Message
	}
	if req.DogName != "" {
		fields["dog_name"] = req.DogName
	}
	if req.DogBreed != "" {
		fields["dog_breed"] = req.DogBreed
	}

	result, err := s.Sync(ctx, integration.Contact{
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		Source:       source,
		Tags:         tags,
		CustomFields: fields,
	})
	if errors.Is(err, integration.ErrCRMNotConfigured) {
		return &ContactFormResponse{Success: true, Message: "Thanks! We'll be in touch soon."}, nil
	}
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to submit contact form", err)
	}
	return &ContactFormResponse{Success: true, ContactID: result.ContactID, Message: "Thanks! We'll be in touch soon."}, nil
}

// Book schedules a consultation call through the CRM calendar
func (s *ContactService) Book(ctx context.Context, req BookingRequest) (*integration.BookingResult, error) {
	if err := customer.ValidateEmail(req.Email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if req.StartTime.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "start_time is required")
	}
	end := req.EndTime
	if end.IsZero() {
		end = req.StartTime.Add(DefaultBookingLength)
	}
	if !end.After(req.StartTime) {
		return nil, shared.NewDomainError("INVALID_INPUT", "end_time must be after start_time")
	}
	title := req.Title
	if title == "" {
		title = "Nutrition Consultation"
	}
	if s.crm == nil {
		return &integration.BookingResult{Success: true, Placeholder: true, Message: "Booking recorded, we will confirm by email"}, nil
	}
	result, err := s.crm.BookAppointment(ctx, integration.Booking{
		Email:     customer.NormalizeEmail(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		StartTime: req.StartTime,
		EndTime:   end,
		Title:     title,
		Notes:     req.Notes,
	})
	if err != nil {
		s.logger.Error("crm booking failed", zap.String("email", req.Email), zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to book appointment", err)
	}
	return result, nil
}
