package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	taxapp "github.com/wagginmeals/backend/internal/application/tax"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

type mockTax struct {
	mock.Mock
}

func (m *mockTax) Calculate(ctx context.Context, req taxapp.CalculateRequest) (*taxapp.CalculateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxapp.CalculateResponse), args.Error(1)
}

func (m *mockTax) Breakdown(ctx context.Context, req taxapp.BreakdownRequest) (*taxapp.BreakdownResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxapp.BreakdownResponse), args.Error(1)
}

func (m *mockTax) ListRates(ctx context.Context, filter shared.Filter) ([]taxapp.RateResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]taxapp.RateResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockTax) CreateRate(ctx context.Context, req taxapp.RateRequest) (*taxapp.RateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxapp.RateResponse), args.Error(1)
}

func (m *mockTax) UpdateRate(ctx context.Context, id uuid.UUID, req taxapp.RateRequest) (*taxapp.RateResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxapp.RateResponse), args.Error(1)
}

func (m *mockTax) DeleteRate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTax) ImportRates(ctx context.Context, rows []taxapp.RateRequest) (*taxapp.ImportResult, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taxapp.ImportResult), args.Error(1)
}

func taxRoutes(svc *mockTax) http.Handler {
	h := NewTaxHandler(svc)
	r := newRouter()
	r.POST("/tax/calculate", h.Calculate)
	r.POST("/tax/breakdown", h.Breakdown)
	r.GET("/tax/rates", h.ListRates)
	admin := r.Group("", asAdmin("admin"))
	admin.POST("/tax/rates", h.CreateRate)
	admin.PUT("/tax/rates/:id", h.UpdateRate)
	admin.DELETE("/tax/rates/:id", h.DeleteRate)
	admin.POST("/tax/rates/import", h.ImportRates)
	return r
}

func TestTaxHandler_Calculate(t *testing.T) {
	t.Run("computes tax", func(t *testing.T) {
		svc := new(mockTax)
		svc.On("Calculate", mock.Anything, mock.MatchedBy(func(req taxapp.CalculateRequest) bool {
			return req.State == "NC" && req.Amount.Equal(decimal.NewFromInt(100))
		})).Return(&taxapp.CalculateResponse{
			TaxAmount:         decimal.RequireFromString("7.00"),
			TaxRate:           decimal.RequireFromString("0.07"),
			TaxRatePercentage: "7.00%",
		}, nil)

		w := doJSON(taxRoutes(svc), http.MethodPost, "/tax/calculate", map[string]any{"amount": "100", "state": "NC"})

		require.Equal(t, http.StatusOK, w.Code)
		var resp taxapp.CalculateResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "7.00%", resp.TaxRatePercentage)
	})

	t.Run("state is required", func(t *testing.T) {
		svc := new(mockTax)

		w := doJSON(taxRoutes(svc), http.MethodPost, "/tax/calculate", map[string]any{"amount": "100"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTaxHandler_ListRates(t *testing.T) {
	t.Run("active only by default", func(t *testing.T) {
		svc := new(mockTax)
		svc.On("ListRates", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["active"] == true && f.Filters["state_code"] == "tx"
		})).Return([]taxapp.RateResponse{}, int64(0), nil)

		w := doJSON(taxRoutes(svc), http.MethodGet, "/tax/rates?state=tx", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("include inactive", func(t *testing.T) {
		svc := new(mockTax)
		svc.On("ListRates", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			_, ok := f.Filters["active"]
			return !ok
		})).Return([]taxapp.RateResponse{}, int64(0), nil)

		w := doJSON(taxRoutes(svc), http.MethodGet, "/tax/rates?include_inactive=true", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestTaxHandler_RateAdmin(t *testing.T) {
	svc := new(mockTax)
	id := uuid.New()
	svc.On("CreateRate", mock.Anything, mock.Anything).Return(&taxapp.RateResponse{ID: id, StateCode: "NC"}, nil)
	svc.On("UpdateRate", mock.Anything, id, mock.Anything).Return(&taxapp.RateResponse{ID: id}, nil)
	svc.On("DeleteRate", mock.Anything, id).Return(nil)
	r := taxRoutes(svc)
	rate := map[string]any{"state_code": "NC", "tax_rate": "0.0475"}

	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/tax/rates", rate).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodPut, "/tax/rates/"+id.String(), rate).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/tax/rates/"+id.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/tax/rates", map[string]any{"state_code": "North Carolina"}).Code)
	svc.AssertExpectations(t)
}

func TestTaxHandler_ImportRates(t *testing.T) {
	svc := new(mockTax)
	svc.On("ImportRates", mock.Anything, mock.MatchedBy(func(rows []taxapp.RateRequest) bool {
		return len(rows) == 2
	})).Return(&taxapp.ImportResult{Imported: 1, Errors: []taxapp.ImportError{{Row: 2, Error: "invalid state code"}}}, nil)

	w := doJSON(taxRoutes(svc), http.MethodPost, "/tax/rates/import", map[string]any{
		"rates": []map[string]any{
			{"state_code": "NC", "tax_rate": "0.0475"},
			{"state_code": "ZZ", "tax_rate": "0.05"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result taxapp.ImportResult
	decodeData(t, w, &result)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 1)
}
