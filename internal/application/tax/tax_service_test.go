package tax

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/tax"
	"go.uber.org/zap"
)

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) rate(args mock.Arguments) (*tax.Rate, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Rate), args.Error(1)
}

func (m *MockRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Rate, error) {
	return m.rate(m.Called(ctx, id))
}

func (m *MockRateRepository) FindActiveByZip(ctx context.Context, state, zip string) (*tax.Rate, error) {
	return m.rate(m.Called(ctx, state, zip))
}

func (m *MockRateRepository) FindActiveByCounty(ctx context.Context, state, county string) (*tax.Rate, error) {
	return m.rate(m.Called(ctx, state, county))
}

func (m *MockRateRepository) FindActiveStateRate(ctx context.Context, state string) (*tax.Rate, error) {
	return m.rate(m.Called(ctx, state))
}

func (m *MockRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tax.Rate, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]tax.Rate), args.Get(1).(int64), args.Error(2)
}

func (m *MockRateRepository) Save(ctx context.Context, r *tax.Rate) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRateRepository) SaveBatch(ctx context.Context, rates []*tax.Rate) error {
	return m.Called(ctx, rates).Error(0)
}

func mustRate(t *testing.T, state, county, zip, rate string) *tax.Rate {
	t.Helper()
	r, err := tax.NewRate(tax.RateParams{StateCode: state, County: county, ZipCode: zip, Rate: decimal.RequireFromString(rate)})
	require.NoError(t, err)
	return r
}

func TestTaxService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("zip rate wins", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("FindActiveByZip", ctx, "NC", "28801").Return(mustRate(t, "NC", "", "28801", "0.07"), nil)
		svc := NewTaxService(repo, zap.NewNop())

		rate, src, err := svc.Lookup(ctx, "nc", "28801", "Buncombe")
		require.NoError(t, err)
		assert.Equal(t, "0.07", rate.String())
		assert.Equal(t, "28801", src.ZipCode)
		repo.AssertNotCalled(t, "FindActiveByCounty", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("falls through to county then state", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("FindActiveByZip", ctx, "NC", "28801").Return(nil, shared.ErrNotFound)
		repo.On("FindActiveByCounty", ctx, "NC", "Buncombe").Return(nil, shared.ErrNotFound)
		repo.On("FindActiveStateRate", ctx, "NC").Return(mustRate(t, "NC", "", "", "0.0475"), nil)
		svc := NewTaxService(repo, zap.NewNop())

		rate, _, err := svc.Lookup(ctx, "NC", "28801", "Buncombe")
		require.NoError(t, err)
		assert.Equal(t, "0.0475", rate.String())
		repo.AssertExpectations(t)
	})

	t.Run("no match is zero", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("FindActiveStateRate", ctx, "OR").Return(nil, shared.ErrNotFound)
		svc := NewTaxService(repo, zap.NewNop())

		rate, src, err := svc.Lookup(ctx, "OR", "", "")
		require.NoError(t, err)
		assert.True(t, rate.IsZero())
		assert.Nil(t, src)
	})

	t.Run("repository error surfaces", func(t *testing.T) {
		repo := new(MockRateRepository)
		repo.On("FindActiveByZip", ctx, "NC", "28801").Return(nil, errors.New("db down"))
		svc := NewTaxService(repo, zap.NewNop())

		_, _, err := svc.Lookup(ctx, "NC", "28801", "")
		assert.Error(t, err)
		assert.True(t, svc.TaxFor(ctx, decimal.NewFromInt(100), "NC", "28801").IsZero())
	})
}

func TestTaxService_Calculate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	repo.On("FindActiveStateRate", ctx, "CA").Return(mustRate(t, "CA", "", "", "0.0725"), nil)
	svc := NewTaxService(repo, zap.NewNop())

	resp, err := svc.Calculate(ctx, CalculateRequest{Amount: decimal.RequireFromString("49.99"), State: "CA"})
	require.NoError(t, err)
	assert.Equal(t, "3.62", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "7.25%", resp.TaxRatePercentage)

	_, err = svc.Calculate(ctx, CalculateRequest{Amount: decimal.NewFromInt(1)})
	assert.Error(t, err)
}

func TestTaxService_Breakdown(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	repo.On("FindActiveStateRate", ctx, "NC").Return(mustRate(t, "NC", "", "", "0.10"), nil)
	svc := NewTaxService(repo, zap.NewNop())

	exempt := false
	resp, err := svc.Breakdown(ctx, BreakdownRequest{
		State: "NC",
		Items: []BreakdownLine{
			{Title: "Food", Price: decimal.NewFromInt(20), Quantity: 2},
			{Title: "Gift card", Price: decimal.NewFromInt(25), Quantity: 1, IsTaxable: &exempt},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "65.00", resp.Subtotal.StringFixed(2))
	assert.Equal(t, "4.00", resp.TaxAmount.StringFixed(2))
	assert.Equal(t, "69.00", resp.Total.StringFixed(2))
	assert.False(t, resp.Items[1].IsTaxable)
	assert.True(t, resp.Items[1].ItemTax.IsZero())
}

func TestTaxService_ImportRates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	svc := NewTaxService(repo, zap.NewNop())

	result, err := svc.ImportRates(ctx, []RateRequest{
		{StateCode: "NC", TaxRate: decimal.RequireFromString("0.0475")},
		{StateCode: "ZZ", TaxRate: decimal.RequireFromString("0.05")},
	})
	assert.Error(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	repo.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)

	repo.On("SaveBatch", ctx, mock.AnythingOfType("[]*tax.Rate")).Return(nil)
	result, err = svc.ImportRates(ctx, []RateRequest{{StateCode: "SC", TaxRate: decimal.RequireFromString("0.06")}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestTaxService_DeleteRate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRateRepository)
	r := mustRate(t, "NC", "", "", "0.0475")
	repo.On("FindByID", ctx, r.ID).Return(r, nil)
	repo.On("Save", ctx, r).Return(nil)
	svc := NewTaxService(repo, zap.NewNop())

	require.NoError(t, svc.DeleteRate(ctx, r.ID))
	assert.False(t, r.IsActive)
}
