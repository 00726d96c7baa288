package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

func TestGormCustomerRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	c := &customer.Customer{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		Email:                  "pup@example.com",
		FirstName:              "Rex",
		LastName:               "Barker",
		DefaultShippingAddress: &valueobject.Address{Street: "1 Bark St", City: "Austin", State: "TX", ZipCode: "78701"},
		CRMTags:                []string{"customer", "subscriber"},
	}
	require.NoError(t, repo.Save(ctx, c))

	t.Run("find by email normalizes", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "  PUP@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, c.ID, found.ID)
		assert.Equal(t, []string{"customer", "subscriber"}, found.CRMTags)
		require.NotNil(t, found.DefaultShippingAddress)
		assert.Equal(t, "TX", found.DefaultShippingAddress.State)
	})

	t.Run("empty email is invalid", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, " ")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_INPUT", de.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("save updates in place", func(t *testing.T) {
		c.CRMContactID = "ghl-123"
		require.NoError(t, repo.Save(ctx, c))

		found, err := repo.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "ghl-123", found.CRMContactID)
	})
}
