package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

type MockPDFRenderer struct{ mock.Mock }

func (m *MockPDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.New(order.NewParams{
		CustomerID: uuid.New(),
		Email:      "pat@example.com",
		Items: []order.Item{
			{Name: "Chicken & Rice", SKU: "CR-5", Price: decimal.NewFromInt(30), Quantity: 2},
		},
		Totals:          order.Totals{Subtotal: decimal.NewFromInt(60), ShippingMethod: "standard"},
		ShippingAddress: valueobject.Address{FirstName: "Pat", LastName: "Doe", Street: "1 Elm St", City: "Asheville", State: "NC", ZipCode: "28801"},
		Now:             time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return o
}

func TestOrderService_List(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, nil, zap.NewNop())
	ctx := context.Background()

	o := newTestOrder(t)
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Filters["status"] == "shipped"
	})).Return([]order.Order{*o}, int64(11), nil)

	items, total, err := svc.List(ctx, ListFilter{Status: "shipped", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, items, 1)
	assert.Equal(t, "60", items[0].Items[0].Total.String())

	_, _, err = svc.List(ctx, ListFilter{Status: "lost"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
}

func TestOrderService_UpdateShipping(t *testing.T) {
	tests := []struct {
		name       string
		req        UpdateShippingRequest
		wantStatus order.Status
		wantEvents []string
	}{
		{
			name:       "shipped raises shipped and status events",
			req:        UpdateShippingRequest{Status: "shipped", TrackingNumber: "1Z999", Carrier: "UPS"},
			wantStatus: order.StatusShipped,
			wantEvents: []string{order.EventTypeShipped, order.EventTypeStatusChanged},
		},
		{
			name:       "tracking only keeps status",
			req:        UpdateShippingRequest{TrackingNumber: "9400"},
			wantStatus: order.StatusPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			pub := new(MockEventPublisher)
			svc := NewOrderService(repo, nil, zap.NewNop())
			svc.SetEventPublisher(pub)
			ctx := context.Background()
			o := newTestOrder(t)
			o.ClearDomainEvents()

			repo.On("FindByID", ctx, o.ID).Return(o, nil)
			repo.On("Save", ctx, o).Return(nil)
			var published []string
			pub.On("Publish", ctx, mock.Anything).Run(func(args mock.Arguments) {
				for _, e := range args.Get(1).([]shared.DomainEvent) {
					published = append(published, e.EventType())
				}
			}).Return(nil)

			resp, err := svc.UpdateShipping(ctx, o.ID, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.req.TrackingNumber, resp.TrackingNumber)
			assert.Equal(t, tt.wantEvents, published)
			assert.Empty(t, o.GetDomainEvents())
		})
	}
}

func TestOrderService_UpdateShippingInvalidStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := NewOrderService(repo, nil, zap.NewNop())
	o := newTestOrder(t)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := svc.UpdateShipping(context.Background(), o.ID, UpdateShippingRequest{Status: "teleported"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOrderService_PackingSlip(t *testing.T) {
	repo := new(MockOrderRepository)
	pdf := new(MockPDFRenderer)
	svc := NewOrderService(repo, pdf, zap.NewNop())
	ctx := context.Background()
	o := newTestOrder(t)

	repo.On("FindByID", ctx, o.ID).Return(o, nil)
	pdf.On("RenderPDF", ctx, mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, o.OrderNumber) &&
			strings.Contains(html, "Chicken &amp; Rice") &&
			strings.Contains(html, "Asheville, NC 28801")
	})).Return([]byte("%PDF-1.4"), nil)

	body, name, err := svc.PackingSlip(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), body)
	assert.Equal(t, "packing-slip-"+o.OrderNumber+".pdf", name)
}

func TestOrderService_PackingSlipWithoutRenderer(t *testing.T) {
	svc := NewOrderService(new(MockOrderRepository), nil, zap.NewNop())
	_, _, err := svc.PackingSlip(context.Background(), uuid.New())
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
}
