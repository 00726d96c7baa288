package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/wagginmeals/backend/internal/application/catalog"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// ItemPricer prices a line from the catalog
type ItemPricer interface {
	PriceLine(ctx context.Context, productID, variantID *uuid.UUID) (*catalogapp.PricedLine, error)
}

// SubscriptionService manages subscriptions on behalf of customers and admins.
// Every change is written to the subscription's history with the acting caller.
type SubscriptionService struct {
	repo           subscription.Repository
	invoices       subscription.InvoiceRepository
	history        subscription.HistoryRepository
	methods        payment.MethodRepository
	pricer         ItemPricer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	repo subscription.Repository,
	invoices subscription.InvoiceRepository,
	history subscription.HistoryRepository,
	methods payment.MethodRepository,
	pricer ItemPricer,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		invoices: invoices,
		history:  history,
		methods:  methods,
		pricer:   pricer,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher for lifecycle events
func (s *SubscriptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListMine returns the caller's subscriptions, optionally filtered by status
func (s *SubscriptionService) ListMine(ctx context.Context, customerID uuid.UUID, status string) ([]SubscriptionResponse, error) {
	subs, err := s.repo.FindByCustomer(ctx, customerID, subscription.Status(status))
	if err != nil {
		return nil, err
	}
	return toResponses(subs), nil
}

// List pages through all subscriptions for the admin
func (s *SubscriptionService) List(ctx context.Context, f ListFilter) ([]SubscriptionResponse, int64, error) {
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
	subs, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(subs), total, nil
}

// Create starts a subscription. Customers always create for themselves.
func (s *SubscriptionService) Create(ctx context.Context, actor subscription.Actor, req CreateRequest) (*SubscriptionResponse, error) {
	customerID := req.CustomerID
	if actor.Type == subscription.ActorCustomer {
		id, err := uuid.Parse(actor.ID)
		if err != nil {
			return nil, shared.ErrUnauthorized
		}
		customerID = id
	}
	freq, ok := subscription.ParseFrequency(req.Frequency)
	if !ok {
		return nil, subscription.ErrInvalidFrequency
	}
	if req.PaymentMethodID != nil {
		if err := s.checkMethod(ctx, customerID, *req.PaymentMethodID); err != nil {
			return nil, err
		}
	}
	items, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	discount := decimal.Zero
	if actor.Type == subscription.ActorAdmin {
		discount = req.DiscountPercentage
	} else if !req.DiscountPercentage.IsZero() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only an admin can set a subscription discount")
	}
	start := s.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	sub, err := subscription.New(subscription.NewParams{
		CustomerID:         customerID,
		Type:               subscription.Type(req.Type),
		Frequency:          freq,
		Items:              items,
		DiscountPercentage: discount,
		PaymentMethodID:    req.PaymentMethodID,
		ShippingAddress:    req.ShippingAddress,
		StartDate:          start,
	})
	if err != nil {
		return nil, err
	}
	sub.Notes = req.Notes
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.record(ctx, sub, subscription.ActionCreated, "", actor, "Subscription created", nil)
	s.publish(ctx, sub)
	resp := ToSubscriptionResponse(sub)
	return &resp, nil
}

// Get returns one subscription the caller may see
func (s *SubscriptionService) Get(ctx context.Context, actor subscription.Actor, id uuid.UUID) (*SubscriptionResponse, error) {
	sub, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := ToSubscriptionResponse(sub)
	return &resp, nil
}

// Update applies the given changes in one save
func (s *SubscriptionService) Update(ctx context.Context, actor subscription.Actor, id uuid.UUID, req UpdateRequest) (*SubscriptionResponse, error) {
	sub, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	type change struct {
		action  subscription.Action
		fields  map[string]any
		summary string
	}
	var changes []change

	if req.Frequency != nil {
		freq, ok := subscription.ParseFrequency(*req.Frequency)
		if !ok {
			return nil, subscription.ErrInvalidFrequency
		}
		old := sub.Frequency
		if err := sub.ChangeFrequency(freq); err != nil {
			return nil, err
		}
		changes = append(changes, change{subscription.ActionFrequencyChanged,
			map[string]any{"frequency": map[string]any{"old": old, "new": freq}}, "Frequency changed"})
	}
	if req.Items != nil {
		items, err := s.priceItems(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
		oldAmount := sub.Amount
		if err := sub.SetItems(items); err != nil {
			return nil, err
		}
		changes = append(changes, change{subscription.ActionItemsChanged,
			map[string]any{"amount": map[string]any{"old": oldAmount.StringFixed(2), "new": sub.Amount.StringFixed(2)}}, "Items updated"})
	}
	if req.PaymentMethodID != nil {
		if err := s.checkMethod(ctx, sub.CustomerID, *req.PaymentMethodID); err != nil {
			return nil, err
		}
		if err := sub.SetPaymentMethod(*req.PaymentMethodID); err != nil {
			return nil, err
		}
		changes = append(changes, change{subscription.ActionPaymentMethodChanged,
			map[string]any{"payment_method_id": req.PaymentMethodID.String()}, "Payment method changed"})
	}
	if req.NextBillingDate != nil {
		old := sub.NextBillingDate
		if err := sub.SetNextBillingDate(*req.NextBillingDate, s.now()); err != nil {
			return nil, err
		}
		changes = append(changes, change{subscription.ActionUpdated,
			map[string]any{"next_billing_date": map[string]any{"old": old.Format(dateLayout), "new": sub.NextBillingDate.Format(dateLayout)}}, "Next billing date changed"})
	}
	if req.Notes != nil {
		sub.Notes = *req.Notes
		sub.Touch()
		changes = append(changes, change{subscription.ActionUpdated, map[string]any{"notes": true}, "Notes updated"})
	}
	if len(changes) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No changes provided")
	}

	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	for _, c := range changes {
		s.record(ctx, sub, c.action, sub.Status, actor, c.summary, c.fields)
	}
	resp := ToSubscriptionResponse(sub)
	return &resp, nil
}

// AdminUpdate is Update plus a status transition
func (s *SubscriptionService) AdminUpdate(ctx context.Context, actor subscription.Actor, id uuid.UUID, req AdminUpdateRequest) (*SubscriptionResponse, error) {
	if req.Status != nil {
		var err error
		switch subscription.Status(*req.Status) {
		case subscription.StatusPaused:
			_, err = s.Pause(ctx, actor, id, PauseRequest{Reason: req.Reason})
		case subscription.StatusActive:
			_, err = s.Resume(ctx, actor, id)
		case subscription.StatusCancelled:
			_, err = s.Cancel(ctx, actor, id, CancelRequest{Reason: req.Reason})
		default:
			err = shared.NewDomainError("INVALID_INPUT", "Status must be active, paused or cancelled")
		}
		if err != nil {
			return nil, err
		}
	}
	u := req.UpdateRequest
	if u.Frequency == nil && u.Items == nil && u.PaymentMethodID == nil && u.NextBillingDate == nil && u.Notes == nil {
		return s.Get(ctx, actor, id)
	}
	return s.Update(ctx, actor, id, u)
}

// Cancel ends a subscription
func (s *SubscriptionService) Cancel(ctx context.Context, actor subscription.Actor, id uuid.UUID, req CancelRequest) (*SubscriptionResponse, error) {
	return s.transition(ctx, actor, id, subscription.ActionCancelled, req.Reason, func(sub *subscription.Subscription) error {
		return sub.Cancel(req.Reason, s.now())
	})
}

// Pause stops billing until resumed
func (s *SubscriptionService) Pause(ctx context.Context, actor subscription.Actor, id uuid.UUID, req PauseRequest) (*SubscriptionResponse, error) {
	return s.transition(ctx, actor, id, subscription.ActionPaused, req.Reason, func(sub *subscription.Subscription) error {
		return sub.Pause(req.Reason, req.ResumeDate, s.now())
	})
}

// Resume restarts billing
func (s *SubscriptionService) Resume(ctx context.Context, actor subscription.Actor, id uuid.UUID) (*SubscriptionResponse, error) {
	return s.transition(ctx, actor, id, subscription.ActionResumed, "Subscription resumed", func(sub *subscription.Subscription) error {
		return sub.Resume(s.now())
	})
}

// ChangeFrequency switches the cadence
func (s *SubscriptionService) ChangeFrequency(ctx context.Context, actor subscription.Actor, id uuid.UUID, req ChangeFrequencyRequest) (*SubscriptionResponse, error) {
	return s.Update(ctx, actor, id, UpdateRequest{Frequency: &req.Frequency})
}

// UpdateItems replaces the box contents
func (s *SubscriptionService) UpdateItems(ctx context.Context, actor subscription.Actor, id uuid.UUID, req UpdateItemsRequest) (*SubscriptionResponse, error) {
	return s.Update(ctx, actor, id, UpdateRequest{Items: &req.Items})
}

// SkipNext moves the next delivery out by one cycle
func (s *SubscriptionService) SkipNext(ctx context.Context, actor subscription.Actor, id uuid.UUID, req SkipRequest) (*SubscriptionResponse, error) {
	sub, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	skipped := sub.NextBillingDate
	if err := sub.SkipNext(req.Reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.record(ctx, sub, subscription.ActionDeliverySkipped, sub.Status, actor, req.Reason, map[string]any{
		"skipped_date":      skipped.Format(dateLayout),
		"next_billing_date": sub.NextBillingDate.Format(dateLayout),
	})
	resp := ToSubscriptionResponse(sub)
	return &resp, nil
}

// UpdateAddress sets where future boxes ship
func (s *SubscriptionService) UpdateAddress(ctx context.Context, actor subscription.Actor, id uuid.UUID, req UpdateAddressRequest) (*SubscriptionResponse, error) {
	sub, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := sub.UpdateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.record(ctx, sub, subscription.ActionAddressChanged, sub.Status, actor, "Shipping address updated",
		map[string]any{"shipping_address": sub.ShippingAddress.String()})
	resp := ToSubscriptionResponse(sub)
	return &resp, nil
}

// Invoices lists the billing attempts of a subscription
func (s *SubscriptionService) Invoices(ctx context.Context, actor subscription.Actor, id uuid.UUID) ([]subscription.Invoice, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.invoices.FindBySubscription(ctx, id)
}

// History lists the audit trail of a subscription
func (s *SubscriptionService) History(ctx context.Context, actor subscription.Actor, id uuid.UUID) ([]HistoryResponse, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.history.FindBySubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryResponse, len(entries))
	for i := range entries {
		out[i] = ToHistoryResponse(&entries[i])
	}
	return out, nil
}

func (s *SubscriptionService) transition(
	ctx context.Context,
	actor subscription.Actor,
	id uuid.UUID,
	action subscription.Action,
	notes string,
	apply func(sub *subscription.Subscription) error,
) (*SubscriptionResponse, error) {
	sub, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := sub.Status
	if err := apply(sub); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}
	s.record(ctx, sub, action, old, actor, notes, nil)
	s.publish(ctx, sub)
	resp := ToSubscriptionResponse(sub)
	return &resp, nil
}

// load fetches a subscription and enforces ownership for customers
// priceItems builds box lines from catalog prices and names
func (s *SubscriptionService) priceItems(ctx context.Context, in []ItemInput) ([]subscription.Item, error) {
	out := make([]subscription.Item, len(in))
	for i, it := range in {
		line, err := s.pricer.PriceLine(ctx, it.ProductID, it.VariantID)
		if err != nil {
			return nil, err
		}
		productID := line.ProductID
		out[i] = subscription.Item{
			ProductID: &productID,
			VariantID: line.VariantID,
			BundleID:  it.BundleID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  it.Quantity,
			Weight:    line.Weight,
		}
	}
	return out, nil
}

func (s *SubscriptionService) load(ctx context.Context, actor subscription.Actor, id uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, err
	}
	if actor.Type == subscription.ActorCustomer {
		owner, err := uuid.Parse(actor.ID)
		if err != nil || !sub.IsOwnedBy(owner) {
			return nil, subscription.ErrNotOwner
		}
	}
	return sub, nil
}

func (s *SubscriptionService) checkMethod(ctx context.Context, customerID, methodID uuid.UUID) error {
	m, err := s.methods.FindByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return payment.ErrMethodNotFound
		}
		return err
	}
	if !m.BelongsTo(customerID) {
		return shared.NewDomainError("FORBIDDEN", "Payment method does not belong to this customer")
	}
	if !m.IsActive {
		return payment.ErrMethodInactive
	}
	return nil
}

func (s *SubscriptionService) record(ctx context.Context, sub *subscription.Subscription, action subscription.Action, old subscription.Status, actor subscription.Actor, notes string, fields map[string]any) {
	h := subscription.NewHistory(sub, action, old, actor, notes, fields)
	if err := s.history.Append(ctx, h); err != nil {
		s.logger.Warn("failed to write subscription history",
			zap.String("subscription_id", sub.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (s *SubscriptionService) publish(ctx context.Context, sub *subscription.Subscription) {
	events := sub.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish subscription events",
			zap.String("subscription_id", sub.ID.String()),
			zap.Error(err),
		)
	}
}

func toResponses(subs []subscription.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		out[i] = ToSubscriptionResponse(&subs[i])
	}
	return out
}
