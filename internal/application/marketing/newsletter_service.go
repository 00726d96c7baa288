package marketing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/marketing"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContactSyncer pushes a contact to the CRM without failing the caller
type ContactSyncer interface {
	SyncQuietly(ctx context.Context, c integration.Contact)
}

// SubscribeRequest is the newsletter signup form
type SubscribeRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Source    string `json:"source"`
}

// SubscribeResponse reports the signup outcome
type SubscribeResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	AlreadySubscribed bool   `json:"already_subscribed,omitempty"`
}

// SubscriberResponse is the admin view of a subscriber
type SubscriberResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	SubscribedAt   time.Time  `json:"subscribed_at"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
}

// ListFilter narrows the admin subscriber list
type ListFilter struct {
	Status   string `form:"status"`
	Source   string `form:"source"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// NewsletterService manages newsletter signups
type NewsletterService struct {
	repo     marketing.SubscriberRepository
	contacts ContactSyncer
	logger   *zap.Logger
	now      func() time.Time
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(repo marketing.SubscriberRepository, contacts ContactSyncer, logger *zap.Logger) *NewsletterService {
	return &NewsletterService{repo: repo, contacts: contacts, logger: logger, now: time.Now}
}

// Subscribe adds or re-activates a subscriber and tags them in the CRM
func (s *NewsletterService) Subscribe(ctx context.Context, req SubscribeRequest) (*SubscribeResponse, error) {
	signup, err := marketing.Signup{Email: req.Email, FirstName: req.FirstName, Source: req.Source}.Normalize()
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, signup.Email)
	switch {
	case err == nil:
		if !existing.Resubscribe(signup, s.now()) {
			return &SubscribeResponse{Success: true, AlreadySubscribed: true, Message: "You're already subscribed!"}, nil
		}
		if err := s.repo.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("newsletter subscriber re-activated", zap.String("email", signup.Email), zap.String("source", signup.Source))
	case errors.Is(err, shared.ErrNotFound):
		if err := s.repo.Save(ctx, marketing.NewSubscriber(signup, s.now())); err != nil {
			return nil, err
		}
		s.logger.Info("newsletter subscriber added", zap.String("email", signup.Email), zap.String("source", signup.Source))
	default:
		return nil, err
	}

	if s.contacts != nil {
		s.contacts.SyncQuietly(ctx, integration.Contact{
			Email:     signup.Email,
			FirstName: signup.FirstName,
			Source:    "newsletter-" + signup.Source,
			Tags:      signup.Tags(),
		})
	}
	return &SubscribeResponse{Success: true, Message: "Thanks for subscribing!"}, nil
}

// List returns a page of subscribers for the admin view
func (s *NewsletterService) List(ctx context.Context, f ListFilter) ([]SubscriberResponse, int64, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Status != "" && f.Status != "all" {
		filter.Filters["status"] = f.Status
	}
	if f.Source != "" {
		filter.Filters["source"] = f.Source
	}
	subs, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SubscriberResponse, len(subs))
	for i, sub := range subs {
		out[i] = SubscriberResponse{
			ID:             sub.ID.String(),
			Email:          sub.Email,
			FirstName:      sub.FirstName,
			Source:         sub.Source,
			Status:         string(sub.Status),
			SubscribedAt:   sub.SubscribedAt,
			UnsubscribedAt: sub.UnsubscribedAt,
		}
	}
	return out, total, nil
}
