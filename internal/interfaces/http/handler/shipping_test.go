package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	shippingapp "github.com/wagginmeals/backend/internal/application/shipping"
	"github.com/wagginmeals/backend/internal/domain/shipping"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
)

type mockShipping struct {
	mock.Mock
}

func (m *mockShipping) Calculate(ctx context.Context, req shippingapp.CalculateRequest) (*shipping.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Quote), args.Error(1)
}

func (m *mockShipping) Zones() shippingapp.ZonesResponse {
	return m.Called().Get(0).(shippingapp.ZonesResponse)
}

func shippingRoutes(svc *mockShipping) http.Handler {
	h := NewShippingHandler(svc)
	r := newRouter()
	r.POST("/shipping/calculate", h.Calculate)
	r.GET("/shipping/zones", h.Zones)
	return r
}

func TestShippingHandler_Calculate(t *testing.T) {
	t.Run("normalizes the address and converts items", func(t *testing.T) {
		svc := new(mockShipping)
		svc.On("Calculate", mock.Anything, mock.MatchedBy(func(req shippingapp.CalculateRequest) bool {
			return req.Address.State == "NC" &&
				req.Address.Country == "US" &&
				req.Subtotal.Equal(decimal.RequireFromString("89.50")) &&
				len(req.Items) == 2 && req.Items[0].Weight == "5 lb" && req.Items[1].Quantity == 3 &&
				req.CustomerName == "Sam Lee"
		})).Return(&shipping.Quote{Provider: "zones"}, nil)

		w := doJSON(shippingRoutes(svc), http.MethodPost, "/shipping/calculate", map[string]any{
			"subtotal": "89.50",
			"items":    []map[string]any{{"weight": "5 lb", "quantity": 1}, {"weight": "500g", "quantity": 3}},
			"shipping_address": map[string]string{
				"first_name": "Sam", "last_name": "Lee",
				"street": "12 Oak Ave", "city": "Asheville", "state": " nc ", "zip_code": "28801",
			},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("rejects an incomplete address", func(t *testing.T) {
		svc := new(mockShipping)

		w := doJSON(shippingRoutes(svc), http.MethodPost, "/shipping/calculate", map[string]any{
			"subtotal":         "20",
			"shipping_address": map[string]string{"state": "NC", "zip_code": "abc"},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeInvalidAddress, env.Error.Code)
		require.Len(t, env.Error.Details, 3)
		assert.Equal(t, "Street address is required", env.Error.Details[0].Message)
		svc.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything)
	})
}

func TestShippingHandler_Zones(t *testing.T) {
	svc := new(mockShipping)
	svc.On("Zones").Return(shippingapp.ZonesResponse{
		FreeShippingThreshold: decimal.NewFromInt(165),
		LocalDeliveryCities:   []string{"Asheville"},
	})

	w := doJSON(shippingRoutes(svc), http.MethodGet, "/shipping/zones", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp shippingapp.ZonesResponse
	decodeData(t, w, &resp)
	assert.True(t, resp.FreeShippingThreshold.Equal(decimal.NewFromInt(165)))
	assert.Equal(t, []string{"Asheville"}, resp.LocalDeliveryCities)
}
