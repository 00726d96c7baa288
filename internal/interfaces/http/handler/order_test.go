package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	orderapp "github.com/wagginmeals/backend/internal/application/order"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) MyOrders(ctx context.Context, customerID uuid.UUID) ([]orderapp.OrderResponse, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]orderapp.OrderResponse), args.Error(1)
}

func (m *mockOrders) List(ctx context.Context, f orderapp.ListFilter) ([]orderapp.OrderResponse, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]orderapp.OrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrders) Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *mockOrders) UpdateShipping(ctx context.Context, id uuid.UUID, req orderapp.UpdateShippingRequest) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *mockOrders) PackingSlip(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func orderRoutes(svc *mockOrders, customerID uuid.UUID) http.Handler {
	h := NewOrderHandler(svc)
	r := newRouter()
	r.GET("/orders/my-orders", asCustomer(customerID), h.MyOrders)
	admin := r.Group("/admin", asAdmin("admin"))
	admin.GET("/orders", h.List)
	admin.GET("/orders/:id", h.Get)
	admin.PATCH("/orders/:id/shipping", h.UpdateShipping)
	admin.GET("/orders/:id/packing-slip", h.PackingSlip)
	return r
}

func TestOrderHandler_MyOrders(t *testing.T) {
	customerID := uuid.New()
	svc := new(mockOrders)
	svc.On("MyOrders", mock.Anything, customerID).Return([]orderapp.OrderResponse{{OrderNumber: "WM1"}, {OrderNumber: "WM2"}}, nil)

	w := doJSON(orderRoutes(svc, customerID), http.MethodGet, "/orders/my-orders", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var orders []orderapp.OrderResponse
	decodeData(t, w, &orders)
	assert.Len(t, orders, 2)
}

func TestOrderHandler_Get(t *testing.T) {
	svc := new(mockOrders)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := doJSON(orderRoutes(svc, uuid.New()), http.MethodGet, "/admin/orders/"+id.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_List(t *testing.T) {
	svc := new(mockOrders)
	svc.On("List", mock.Anything, orderapp.ListFilter{Status: "shipped", Search: "WM12", Page: 1, PageSize: 20}).
		Return([]orderapp.OrderResponse{}, int64(0), nil)

	w := doJSON(orderRoutes(svc, uuid.New()), http.MethodGet, "/admin/orders?status=shipped&search=WM12", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_UpdateShipping(t *testing.T) {
	svc := new(mockOrders)
	id := uuid.New()
	req := orderapp.UpdateShippingRequest{Status: "shipped", TrackingNumber: "1Z999", Carrier: "UPS"}
	svc.On("UpdateShipping", mock.Anything, id, req).Return(&orderapp.OrderResponse{ID: id, Status: order.StatusShipped}, nil)

	w := doJSON(orderRoutes(svc, uuid.New()), http.MethodPatch, "/admin/orders/"+id.String()+"/shipping", req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp orderapp.OrderResponse
	decodeData(t, w, &resp)
	assert.Equal(t, order.StatusShipped, resp.Status)
}

func TestOrderHandler_PackingSlip(t *testing.T) {
	svc := new(mockOrders)
	id := uuid.New()
	pdf := []byte("%PDF-1.4 fake")
	svc.On("PackingSlip", mock.Anything, id).Return(pdf, "packing-slip-WM1.pdf", nil)

	w := doJSON(orderRoutes(svc, uuid.New()), http.MethodGet, "/admin/orders/"+id.String()+"/packing-slip", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="packing-slip-WM1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, pdf, w.Body.Bytes())
}
