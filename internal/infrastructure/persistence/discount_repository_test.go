package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/promotion"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

func TestGormDiscountRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDiscountRepository(db)
	ctx := context.Background()

	d, err := promotion.NewDiscount(promotion.DiscountParams{
		Code:     "woof10",
		Type:     promotion.DiscountPercentage,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, d))

	t.Run("find by code ignores case", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, " Woof10 ")
		require.NoError(t, err)
		assert.Equal(t, d.ID, found.ID)
	})

	t.Run("increment usage", func(t *testing.T) {
		require.NoError(t, repo.IncrementUsage(ctx, d.ID))
		require.NoError(t, repo.IncrementUsage(ctx, d.ID))

		found, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.UsageCount)

		assert.ErrorIs(t, repo.IncrementUsage(ctx, uuid.New()), shared.ErrNotFound)
	})

	t.Run("duplicate code", func(t *testing.T) {
		dup, err := promotion.NewDiscount(promotion.DiscountParams{
			Code:  "WOOF10",
			Type:  promotion.DiscountFixed,
			Value: decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, dup), promotion.ErrCodeTaken)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, d.ID))
		_, err := repo.FindByCode(ctx, "WOOF10")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
