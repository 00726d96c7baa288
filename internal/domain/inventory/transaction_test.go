package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

func tracked(qty int) *catalog.Variant {
	return &catalog.Variant{BaseEntity: shared.NewBaseEntity(), SKU: "CHK-5", TrackInventory: true, InventoryQuantity: qty}
}

func TestDecrement(t *testing.T) {
	v := tracked(5)
	tx, err := Decrement(v, 2, TransactionSale, "WM12345678", "system")
	require.NoError(t, err)
	assert.Equal(t, 3, v.InventoryQuantity)
	assert.Equal(t, -2, tx.QuantityChange)
	assert.Equal(t, 5, tx.QuantityBefore)
	assert.Equal(t, 3, tx.QuantityAfter)
	assert.Equal(t, "WM12345678", tx.Reference)

	_, err = Decrement(v, 4, TransactionSubscription, "", "system")
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 3, v.InventoryQuantity)

	v.AllowBackorder = true
	_, err = Decrement(v, 4, TransactionSubscription, "", "system")
	require.NoError(t, err)
	assert.Equal(t, -1, v.InventoryQuantity)

	_, err = Decrement(v, 1, TransactionRestock, "", "")
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = Decrement(v, 0, TransactionSale, "", "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestDecrement_Untracked(t *testing.T) {
	v := &catalog.Variant{InventoryQuantity: 0}
	tx, err := Decrement(v, 10, TransactionSale, "", "")
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.Equal(t, 0, v.InventoryQuantity)
}

func TestIncrementAndAdjust(t *testing.T) {
	v := tracked(1)
	_, err := Increment(v, 9, TransactionRestock, "PO-1", "", "admin")
	require.NoError(t, err)
	assert.Equal(t, 10, v.InventoryQuantity)

	tx, err := Adjust(v, 4, true, "", "count", "admin")
	require.NoError(t, err)
	assert.Equal(t, TransactionAdjustment, tx.Type)
	assert.Equal(t, -6, tx.QuantityChange)

	_, err = Adjust(v, -1, false, TransactionDamage, "torn bag", "admin")
	require.NoError(t, err)
	assert.Equal(t, 3, v.InventoryQuantity)

	_, err = Adjust(v, -10, false, TransactionDamage, "", "admin")
	assert.Error(t, err)

	_, err = Adjust(v, 3, true, "", "", "admin")
	assert.Error(t, err)

	_, err = Adjust(v, 1, false, TransactionSale, "", "admin")
	assert.ErrorIs(t, err, ErrInvalidType)
}
