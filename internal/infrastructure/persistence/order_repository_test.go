package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

func newTestOrder(number string, customerID uuid.UUID, status order.Status) *order.Order {
	price := decimal.RequireFromString("24.99")
	return &order.Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       number,
		CustomerID:        customerID,
		Email:             "pup@example.com",
		Status:            status,
		PaymentStatus:     order.PaymentPaid,
		Source:            order.SourceCheckout,
		Items: []order.Item{
			{ID: uuid.New(), Name: "Beef Bowl", SKU: "BB-2", Price: price, Quantity: 2},
		},
		Subtotal:        decimal.RequireFromString("49.98"),
		Total:           decimal.RequireFromString("49.98"),
		ShippingAddress: valueobject.Address{Street: "1 Bark St", City: "Austin", State: "TX", ZipCode: "78701"},
	}
}

func TestGormOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	customerID := uuid.New()

	first := newTestOrder("WM-1001", customerID, order.StatusPending)
	second := newTestOrder("WM-1002", customerID, order.StatusShipped)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	t.Run("loads items and address", func(t *testing.T) {
		found, err := repo.FindByNumber(ctx, "WM-1001")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "BB-2", found.Items[0].SKU)
		assert.Equal(t, "78701", found.ShippingAddress.ZipCode)
	})

	t.Run("save replaces items", func(t *testing.T) {
		first.Items = append(first.Items, order.Item{
			ID: uuid.New(), Name: "Chicken Bowl", Price: decimal.RequireFromString("21.99"), Quantity: 1,
		})
		require.NoError(t, repo.Save(ctx, first))

		found, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Len(t, found.Items, 2)
	})

	t.Run("duplicate order number", func(t *testing.T) {
		dup := newTestOrder("WM-1001", customerID, order.StatusPending)
		err := repo.Save(ctx, dup)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("filters by status and searches numbers", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = "shipped"
		found, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, second.ID, found[0].ID)

		filter = shared.DefaultFilter()
		filter.Search = "wm-1002"
		_, total, err = repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("find by customer", func(t *testing.T) {
		found, err := repo.FindByCustomer(ctx, customerID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}
