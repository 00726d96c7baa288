package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	checkoutapp "github.com/wagginmeals/backend/internal/application/checkout"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
)

type mockCheckout struct {
	mock.Mock
}

func (m *mockCheckout) CreateOrder(ctx context.Context, req checkoutapp.CreateOrderRequest) (*checkoutapp.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.OrderResponse), args.Error(1)
}

func (m *mockCheckout) CreateSubscription(ctx context.Context, req checkoutapp.CreateSubscriptionRequest) (*checkoutapp.SubscriptionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.SubscriptionResponse), args.Error(1)
}

func checkoutRoutes(svc *mockCheckout, mw ...gin.HandlerFunc) http.Handler {
	h := NewCheckoutHandler(svc)
	r := newRouter(mw...)
	r.POST("/checkout/create-order", h.CreateOrder)
	r.POST("/checkout/create-subscription", h.CreateSubscription)
	return r
}

func orderBody() map[string]any {
	return map[string]any{
		"email":      "jane@example.com",
		"first_name": "Jane",
		"items":      []map[string]any{{"variant_id": uuid.NewString(), "quantity": 2}},
		"shipping_address": map[string]string{
			"street": "1 Main St", "city": "Austin", "state": "TX", "zip_code": "78701",
		},
		"payment_method_id": uuid.NewString(),
	}
}

func TestCheckoutHandler_CreateOrder(t *testing.T) {
	t.Run("paid order", func(t *testing.T) {
		svc := new(mockCheckout)
		svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req checkoutapp.CreateOrderRequest) bool {
			return req.Email == "jane@example.com" && len(req.Items) == 1 && req.CustomerID == nil
		})).Return(&checkoutapp.OrderResponse{OrderNumber: "WM00000001", Status: order.StatusPending}, nil)

		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-order", orderBody())

		require.Equal(t, http.StatusCreated, w.Code)
		var resp checkoutapp.OrderResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "WM00000001", resp.OrderNumber)
	})

	t.Run("declined card returns the recorded order", func(t *testing.T) {
		svc := new(mockCheckout)
		declined := &checkoutapp.OrderResponse{OrderNumber: "WM00000002", Status: order.StatusPaymentFailed}
		svc.On("CreateOrder", mock.Anything, mock.Anything).
			Return(declined, shared.WrapDomainError("PAYMENT_REQUIRED", "Payment failed: card declined", shared.ErrPaymentRequired))

		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-order", orderBody())

		require.Equal(t, http.StatusPaymentRequired, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodePaymentRequired, env.Error.Code)
		assert.Equal(t, "Payment failed: card declined", env.Error.Message)
		var resp checkoutapp.OrderResponse
		decodeData(t, w, &resp)
		assert.Equal(t, order.StatusPaymentFailed, resp.Status)
	})

	t.Run("out of stock", func(t *testing.T) {
		svc := new(mockCheckout)
		svc.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, shared.ErrInsufficientStock)

		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-order", orderBody())

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, decode(t, w).Data)
	})

	t.Run("signed in customer overrides body id", func(t *testing.T) {
		customerID := uuid.New()
		svc := new(mockCheckout)
		svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req checkoutapp.CreateOrderRequest) bool {
			return req.CustomerID != nil && *req.CustomerID == customerID
		})).Return(&checkoutapp.OrderResponse{}, nil)

		body := orderBody()
		body["customer_id"] = uuid.NewString()
		w := doJSON(checkoutRoutes(svc, asCustomer(customerID)), http.MethodPost, "/checkout/create-order", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("guest cannot name a customer in the body", func(t *testing.T) {
		svc := new(mockCheckout)
		svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req checkoutapp.CreateOrderRequest) bool {
			return req.CustomerID == nil
		})).Return(&checkoutapp.OrderResponse{}, nil)

		body := orderBody()
		body["customer_id"] = uuid.NewString()
		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-order", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := new(mockCheckout)

		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-order", "{not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckoutHandler_CreateSubscription(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(mockCheckout)
		svc.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(req checkoutapp.CreateSubscriptionRequest) bool {
			return req.Frequency == "weekly"
		})).Return(&checkoutapp.SubscriptionResponse{SubscriptionID: uuid.New(), InvoiceNumber: "INV-1"}, nil)

		body := orderBody()
		body["frequency"] = "weekly"
		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-subscription", body)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("declined creates nothing", func(t *testing.T) {
		svc := new(mockCheckout)
		svc.On("CreateSubscription", mock.Anything, mock.Anything).Return(nil, shared.ErrPaymentRequired)

		w := doJSON(checkoutRoutes(svc), http.MethodPost, "/checkout/create-subscription", orderBody())

		assert.Equal(t, http.StatusPaymentRequired, w.Code)
	})
}
