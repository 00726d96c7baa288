package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// TransactionType classifies a stock movement
type TransactionType string

const (
	TransactionSale         TransactionType = "sale"
	TransactionRestock      TransactionType = "restock"
	TransactionReturn       TransactionType = "return"
	TransactionAdjustment   TransactionType = "adjustment"
	TransactionDamage       TransactionType = "damage"
	TransactionSubscription TransactionType = "subscription"
)

// IsValid returns true if the type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionSale, TransactionRestock, TransactionReturn,
		TransactionAdjustment, TransactionDamage, TransactionSubscription:
		return true
	}
	return false
}

// Errors
var (
	ErrInvalidType     = shared.NewDomainError("INVALID_INPUT", "Invalid inventory transaction type")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
)

// Transaction is an append-only record of one stock movement
type Transaction struct {
	ID             uuid.UUID
	VariantID      uuid.UUID
	Type           TransactionType
	QuantityChange int
	QuantityBefore int
	QuantityAfter  int
	Reference      string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}

func record(v *catalog.Variant, t TransactionType, after int, ref, notes, by string) *Transaction {
	before := v.InventoryQuantity
	v.SetQuantity(after)
	return &Transaction{
		ID:             uuid.New(),
		VariantID:      v.ID,
		Type:           t,
		QuantityChange: after - before,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reference:      ref,
		Notes:          notes,
		CreatedBy:      by,
		CreatedAt:      time.Now(),
	}
}

// Decrement takes qty units out of stock for a sale or subscription shipment.
// Untracked variants are left alone and nil is returned.
func Decrement(v *catalog.Variant, qty int, t TransactionType, ref, by string) (*Transaction, error) {
	if t != TransactionSale && t != TransactionSubscription {
		return nil, ErrInvalidType
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !v.TrackInventory {
		return nil, nil
	}
	if !v.CanFulfil(qty) {
		return nil, shared.WrapDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Only %d units of %s available", v.InventoryQuantity, v.SKU), shared.ErrInsufficientStock)
	}
	return record(v, t, v.InventoryQuantity-qty, ref, "", by), nil
}

// Increment puts qty units back for a restock or return
func Increment(v *catalog.Variant, qty int, t TransactionType, ref, notes, by string) (*Transaction, error) {
	if t != TransactionRestock && t != TransactionReturn {
		return nil, ErrInvalidType
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	return record(v, t, v.InventoryQuantity+qty, ref, notes, by), nil
}

// Adjust corrects the count. With absolute set, qty is the new count;
// otherwise it is added to the current count.
func Adjust(v *catalog.Variant, qty int, absolute bool, t TransactionType, reason, by string) (*Transaction, error) {
	if t == "" {
		t = TransactionAdjustment
	}
	if t != TransactionAdjustment && t != TransactionDamage {
		return nil, ErrInvalidType
	}
	after := v.InventoryQuantity + qty
	if absolute {
		after = qty
	}
	if after < 0 && !v.AllowBackorder {
		return nil, shared.NewDomainError("INVALID_INPUT", "Inventory cannot go below zero")
	}
	if after == v.InventoryQuantity {
		return nil, shared.NewDomainError("INVALID_INPUT", "Adjustment does not change the quantity")
	}
	return record(v, t, after, "", reason, by), nil
}

// TransactionRepository stores stock movements
type TransactionRepository interface {
	Append(ctx context.Context, t *Transaction) error
	FindByVariant(ctx context.Context, variantID uuid.UUID, limit int) ([]Transaction, error)
	// FindAll lists movements. Filters supports "type" and "variant_id".
	FindAll(ctx context.Context, filter shared.Filter) ([]Transaction, int64, error)
}

// EventTypeStockLow is raised when a movement leaves a tracked variant at or below its threshold
const EventTypeStockLow = "inventory.stock_low"

// StockLowEvent reports a variant that needs restocking
type StockLowEvent struct {
	shared.BaseDomainEvent
	VariantID uuid.UUID
	SKU       string
	Quantity  int
	Threshold int
}

// NewStockLowEvent builds the event for v's current quantity
func NewStockLowEvent(v *catalog.Variant) *StockLowEvent {
	return &StockLowEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockLow, "Variant", v.ID),
		VariantID:       v.ID,
		SKU:             v.SKU,
		Quantity:        v.InventoryQuantity,
		Threshold:       v.LowStockThreshold,
	}
}
