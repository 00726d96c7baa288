package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/subscription"
)

func newTestSubscription(customerID uuid.UUID, status subscription.Status, next time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Status:            status,
		Type:              subscription.TypeProduct,
		Frequency:         subscription.FrequencyMonthly,
		IntervalCount:     1,
		NextBillingDate:   next,
		StartedAt:         next.AddDate(0, -1, 0),
		Amount:            decimal.RequireFromString("49.98"),
		Currency:          "USD",
		Items: []subscription.Item{
			{Name: "Beef Bowl", Price: decimal.RequireFromString("24.99"), Quantity: 2},
		},
		ShippingAddress: &valueobject.Address{Street: "1 Bark St", City: "Austin", State: "TX", ZipCode: "78701"},
		Metadata:        map[string]any{"source": "checkout"},
	}
}

func TestGormSubscriptionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSubscriptionRepository(db)
	ctx := context.Background()
	customerID := uuid.New()
	asOf := day(2026, 3, 10)

	due := newTestSubscription(customerID, subscription.StatusActive, day(2026, 3, 9))
	pastDue := newTestSubscription(customerID, subscription.StatusPastDue, day(2026, 3, 10))
	future := newTestSubscription(customerID, subscription.StatusActive, day(2026, 4, 1))
	paused := newTestSubscription(uuid.New(), subscription.StatusPaused, day(2026, 3, 1))
	for _, s := range []*subscription.Subscription{due, pastDue, future, paused} {
		require.NoError(t, repo.Save(ctx, s))
	}

	t.Run("round trips items, address and metadata", func(t *testing.T) {
		found, err := repo.FindByID(ctx, due.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Beef Bowl", found.Items[0].Name)
		assert.Equal(t, 2, found.Items[0].Quantity)
		require.NotNil(t, found.ShippingAddress)
		assert.Equal(t, "78701", found.ShippingAddress.ZipCode)
		assert.Equal(t, "checkout", found.Metadata["source"])
	})

	t.Run("find due picks billable subscriptions on or before the date", func(t *testing.T) {
		found, err := repo.FindDue(ctx, asOf)
		require.NoError(t, err)
		ids := []uuid.UUID{}
		for _, s := range found {
			ids = append(ids, s.ID)
		}
		assert.ElementsMatch(t, []uuid.UUID{due.ID, pastDue.ID}, ids)
	})

	t.Run("find by customer with status", func(t *testing.T) {
		all, err := repo.FindByCustomer(ctx, customerID, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)

		active, err := repo.FindByCustomer(ctx, customerID, subscription.StatusActive)
		require.NoError(t, err)
		assert.Len(t, active, 2)
	})

	t.Run("find all filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = "paused"
		found, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, paused.ID, found[0].ID)
	})

	t.Run("counts subscriptions using a payment method", func(t *testing.T) {
		methodID := uuid.New()
		using := newTestSubscription(customerID, subscription.StatusActive, day(2026, 5, 1))
		using.PaymentMethodID = &methodID
		cancelled := newTestSubscription(customerID, subscription.StatusCancelled, day(2026, 5, 1))
		cancelled.PaymentMethodID = &methodID
		require.NoError(t, repo.Save(ctx, using))
		require.NoError(t, repo.Save(ctx, cancelled))

		count, err := repo.CountActiveByPaymentMethod(ctx, methodID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func newTestInvoice(sub *subscription.Subscription, billing time.Time, status subscription.InvoiceStatus) *subscription.Invoice {
	return &subscription.Invoice{
		BaseEntity:     shared.NewBaseEntity(),
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		InvoiceNumber:  "INV-" + uuid.NewString()[:8],
		Status:         status,
		Subtotal:       sub.Amount,
		Total:          sub.Amount,
		BillingDate:    billing,
		DueDate:        billing,
	}
}

func TestGormInvoiceRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	sub := newTestSubscription(uuid.New(), subscription.StatusActive, day(2026, 3, 1))
	march := day(2026, 3, 1)

	inv := newTestInvoice(sub, march, subscription.InvoiceStatusPending)
	require.NoError(t, repo.Save(ctx, inv))

	t.Run("finds the invoice of a cycle", func(t *testing.T) {
		found, err := repo.FindByCycle(ctx, sub.ID, march)
		require.NoError(t, err)
		assert.Equal(t, inv.ID, found.ID)

		_, err = repo.FindByCycle(ctx, sub.ID, day(2026, 4, 1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects a second invoice for the same cycle", func(t *testing.T) {
		dup := newTestInvoice(sub, march, subscription.InvoiceStatusPending)
		err := repo.Save(ctx, dup)
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CONFLICT", de.Code)
	})

	t.Run("retryable invoices respect attempts and retry time", func(t *testing.T) {
		now := day(2026, 3, 5)
		ready := newTestInvoice(sub, day(2026, 2, 1), subscription.InvoiceStatusFailed)
		ready.AttemptCount = 1
		retryAt := now.Add(-time.Hour)
		ready.NextRetryAt = &retryAt

		exhausted := newTestInvoice(sub, day(2026, 1, 1), subscription.InvoiceStatusFailed)
		exhausted.AttemptCount = 3
		exhausted.NextRetryAt = &retryAt

		later := newTestInvoice(sub, day(2025, 12, 1), subscription.InvoiceStatusFailed)
		laterAt := now.Add(24 * time.Hour)
		later.NextRetryAt = &laterAt

		for _, i := range []*subscription.Invoice{ready, exhausted, later} {
			require.NoError(t, repo.Save(ctx, i))
		}

		found, err := repo.FindRetryable(ctx, now, 3)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, ready.ID, found[0].ID)

		failed, total, err := repo.FindFailed(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, failed, 3)
	})

	t.Run("lists a subscription's invoices newest first", func(t *testing.T) {
		found, err := repo.FindBySubscription(ctx, sub.ID)
		require.NoError(t, err)
		require.Len(t, found, 4)
		assert.Equal(t, march, found[0].BillingDate.UTC())
	})
}

func TestGormSubscriptionHistoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSubscriptionHistoryRepository(db)
	ctx := context.Background()
	sub := newTestSubscription(uuid.New(), subscription.StatusPaused, day(2026, 3, 1))

	first := subscription.NewHistory(sub, subscription.ActionPaused, subscription.StatusActive,
		subscription.Actor{Type: subscription.ActorCustomer, ID: sub.CustomerID.String()}, "vacation", map[string]any{"resume_date": "2026-04-01"})
	first.CreatedAt = day(2026, 3, 1)
	second := subscription.NewHistory(sub, subscription.ActionResumed, subscription.StatusPaused,
		subscription.Actor{Type: subscription.ActorSystem}, "", nil)
	second.CreatedAt = day(2026, 4, 1)
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))

	entries, err := repo.FindBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, "2026-04-01", entries[1].ChangedFields["resume_date"])
	assert.Equal(t, subscription.StatusActive, entries[1].OldStatus)
}
