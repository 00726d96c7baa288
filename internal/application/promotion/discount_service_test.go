package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/promotion"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Discount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindByCode(ctx context.Context, code string) (*promotion.Discount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*promotion.Discount), args.Error(1)
}

func (m *MockDiscountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Discount, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]promotion.Discount), args.Get(1).(int64), args.Error(2)
}

func (m *MockDiscountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDiscountRepository) Save(ctx context.Context, d *promotion.Discount) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDiscountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestDiscountService_Validate(t *testing.T) {
	ctx := context.Background()
	d, err := promotion.NewDiscount(promotion.DiscountParams{Code: "WELCOME10", Type: promotion.DiscountPercentage, Value: decimal.NewFromInt(10), IsActive: true})
	require.NoError(t, err)

	repo := new(MockDiscountRepository)
	repo.On("FindByCode", ctx, "WELCOME10").Return(d, nil)
	repo.On("FindByCode", ctx, "NOPE").Return(nil, shared.ErrNotFound)
	svc := NewDiscountService(repo)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	resp, err := svc.Validate(ctx, " welcome10 ", decimal.RequireFromString("80"))
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "8.00", resp.DiscountAmount.StringFixed(2))

	_, err = svc.Validate(ctx, "nope", decimal.NewFromInt(10))
	assert.Equal(t, promotion.ErrInvalidCode, err)

	_, err = svc.Validate(ctx, "", decimal.NewFromInt(10))
	assert.Error(t, err)
}

func TestDiscountService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDiscountRepository)
	repo.On("FindByCode", ctx, "SPRING").Return(nil, shared.ErrNotFound).Once()
	repo.On("Save", ctx, mock.AnythingOfType("*promotion.Discount")).Return(nil)
	svc := NewDiscountService(repo)

	resp, err := svc.Create(ctx, DiscountRequest{Code: "spring", DiscountType: promotion.DiscountFixed, DiscountValue: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", resp.Code)
	assert.True(t, resp.IsActive)

	existing := &promotion.Discount{BaseEntity: shared.NewBaseEntity(), Code: "SPRING"}
	repo.On("FindByCode", ctx, "SPRING").Return(existing, nil)
	_, err = svc.Create(ctx, DiscountRequest{Code: "spring", DiscountType: promotion.DiscountFixed})
	assert.ErrorIs(t, err, promotion.ErrCodeTaken)
}
