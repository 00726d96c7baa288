package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/inventory"
)

// StockItem is one variant and quantity in a cart or shipment
type StockItem struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// MovementRequest moves stock for one variant
type MovementRequest struct {
	VariantID uuid.UUID                 `json:"variant_id" binding:"required"`
	Quantity  int                       `json:"quantity" binding:"required,min=1"`
	Type      inventory.TransactionType `json:"transaction_type"`
	Reference string                    `json:"reference"`
	Notes     string                    `json:"notes"`
}

// AdjustRequest corrects the count of a variant. Quantity is the new
// count when Absolute is set, otherwise a signed delta.
type AdjustRequest struct {
	Quantity int                       `json:"quantity"`
	Absolute bool                      `json:"absolute"`
	Type     inventory.TransactionType `json:"transaction_type"`
	Reason   string                    `json:"reason" binding:"required"`
}

// BulkUpdateItem sets one variant's absolute count
type BulkUpdateItem struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"min=0"`
}

// BulkUpdateRequest sets many counts at once
type BulkUpdateRequest struct {
	Updates []BulkUpdateItem `json:"updates" binding:"required,min=1,dive"`
	Reason  string           `json:"reason"`
}

// BulkUpdateError reports one failed row
type BulkUpdateError struct {
	VariantID uuid.UUID `json:"variant_id"`
	Error     string    `json:"error"`
}

// BulkUpdateResult summarizes a bulk update
type BulkUpdateResult struct {
	Updated   int               `json:"updated"`
	Unchanged int               `json:"unchanged"`
	Errors    []BulkUpdateError `json:"errors"`
}

// StockCheckResult is the availability of one requested item
type StockCheckResult struct {
	VariantID uuid.UUID           `json:"variant_id"`
	Requested int                 `json:"requested"`
	Available bool                `json:"available"`
	Quantity  int                 `json:"quantity_available"`
	Status    catalog.StockStatus `json:"stock_status,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// CheckStockResponse reports whether a whole cart can ship
type CheckStockResponse struct {
	Available bool               `json:"available"`
	Items     []StockCheckResult `json:"items"`
}

// VariantStockResponse is a variant's stock position
type VariantStockResponse struct {
	VariantID         uuid.UUID           `json:"variant_id"`
	ProductID         uuid.UUID           `json:"product_id"`
	SKU               string              `json:"sku"`
	Title             string              `json:"title"`
	InventoryQuantity int                 `json:"inventory_quantity"`
	LowStockThreshold int                 `json:"low_stock_threshold"`
	Status            catalog.StockStatus `json:"stock_status"`
}

// ToVariantStockResponse maps a variant
func ToVariantStockResponse(v *catalog.Variant) VariantStockResponse {
	return VariantStockResponse{
		VariantID:         v.ID,
		ProductID:         v.ProductID,
		SKU:               v.SKU,
		Title:             v.Title,
		InventoryQuantity: v.InventoryQuantity,
		LowStockThreshold: v.LowStockThreshold,
		Status:            v.StockStatus(),
	}
}

// TransactionResponse is one stock movement
type TransactionResponse struct {
	ID             uuid.UUID                 `json:"id"`
	VariantID      uuid.UUID                 `json:"variant_id"`
	Type           inventory.TransactionType `json:"transaction_type"`
	QuantityChange int                       `json:"quantity_change"`
	QuantityBefore int                       `json:"quantity_before"`
	QuantityAfter  int                       `json:"quantity_after"`
	Reference      string                    `json:"reference,omitempty"`
	Notes          string                    `json:"notes,omitempty"`
	CreatedBy      string                    `json:"created_by,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
}

// ToTransactionResponse maps a movement
func ToTransactionResponse(t *inventory.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		VariantID:      t.VariantID,
		Type:           t.Type,
		QuantityChange: t.QuantityChange,
		QuantityBefore: t.QuantityBefore,
		QuantityAfter:  t.QuantityAfter,
		Reference:      t.Reference,
		Notes:          t.Notes,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
	}
}
