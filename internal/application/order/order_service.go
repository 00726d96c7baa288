package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderService serves order lookups and fulfilment updates
type OrderService struct {
	repo           order.Repository
	pdf            integration.PDFRenderer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService. A nil renderer disables packing slips.
func NewOrderService(repo order.Repository, pdf integration.PDFRenderer, logger *zap.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		pdf:    pdf,
		logger: logger,
		now:    time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// MyOrders lists a customer's orders, newest first
func (s *OrderService) MyOrders(ctx context.Context, customerID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToOrderResponses(orders), nil
}

// List returns a page of orders for the admin view
func (s *OrderService) List(ctx context.Context, f ListFilter) ([]OrderResponse, int64, error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = strings.TrimSpace(f.Search)
	if f.Status != "" && f.Status != "all" {
		if !order.Status(f.Status).IsValid() {
			return nil, 0, order.ErrInvalidStatus
		}
		filter.Filters["status"] = f.Status
	}
	orders, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

// Get returns one order
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// UpdateShipping records tracking details and moves the order through fulfilment.
// Customer notifications hang off the published events.
func (s *OrderService) UpdateShipping(ctx context.Context, id uuid.UUID, req UpdateShippingRequest) (*OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := o.Status
	if err := o.UpdateShipping(order.Status(strings.TrimSpace(req.Status)), strings.TrimSpace(req.TrackingNumber), strings.TrimSpace(req.Carrier), s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, err
	}
	if previous != o.Status {
		s.logger.Info("order status changed",
			zap.String("order_number", o.OrderNumber),
			zap.String("from", string(previous)),
			zap.String("to", string(o.Status)),
		)
	}
	if events := o.PullDomainEvents(); s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish order events", zap.String("order_number", o.OrderNumber), zap.Error(err))
		}
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// PackingSlip renders the order's packing slip as a PDF and returns it with a file name
func (s *OrderService) PackingSlip(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.pdf == nil {
		return nil, "", shared.NewDomainError("INVALID_STATE", "Packing slip rendering is not configured")
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	html, err := RenderPackingSlip(o)
	if err != nil {
		return nil, "", err
	}
	pdf, err := s.pdf.RenderPDF(ctx, html)
	if err != nil {
		return nil, "", shared.WrapDomainError("INTERNAL_ERROR", "Failed to render packing slip", err)
	}
	return pdf, "packing-slip-" + o.OrderNumber + ".pdf", nil
}
