package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// DefaultLowStockThreshold applies when a variant sets none
const DefaultLowStockThreshold = 10

// StockStatus summarizes a variant's inventory position
type StockStatus string

const (
	StockUnlimited StockStatus = "unlimited"
	StockOut       StockStatus = "out_of_stock"
	StockLow       StockStatus = "low_stock"
	StockIn        StockStatus = "in_stock"
)

// Variant is a purchasable size or flavour of a product
type Variant struct {
	shared.BaseEntity
	ProductID         uuid.UUID
	SKU               string
	Title             string
	Price             decimal.Decimal
	Weight            string
	InventoryQuantity int
	TrackInventory    bool
	AllowBackorder    bool
	LowStockThreshold int
	IsAvailable       bool
}

// VariantParams are the editable fields of a variant
type VariantParams struct {
	SKU               string
	Title             string
	Price             decimal.Decimal
	Weight            string
	InventoryQuantity int
	TrackInventory    bool
	AllowBackorder    bool
	LowStockThreshold int
	IsAvailable       bool
}

// NewVariant creates a variant for a product
func NewVariant(productID uuid.UUID, p VariantParams) (*Variant, error) {
	v := &Variant{BaseEntity: shared.NewBaseEntity(), ProductID: productID}
	if err := v.Update(p); err != nil {
		return nil, err
	}
	v.InventoryQuantity = p.InventoryQuantity
	return v, nil
}

// Update changes everything but the stock count, which only moves through
// inventory transactions.
func (v *Variant) Update(p VariantParams) error {
	sku := strings.ToUpper(strings.TrimSpace(p.SKU))
	if sku == "" {
		return shared.NewDomainError("INVALID_INPUT", "SKU is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Variant title is required")
	}
	if p.Price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Variant price cannot be negative")
	}
	if p.LowStockThreshold < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Low stock threshold cannot be negative")
	}
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = DefaultLowStockThreshold
	}
	v.SKU = sku
	v.Title = strings.TrimSpace(p.Title)
	v.Price = p.Price
	v.Weight = p.Weight
	v.TrackInventory = p.TrackInventory
	v.AllowBackorder = p.AllowBackorder
	v.LowStockThreshold = p.LowStockThreshold
	v.IsAvailable = p.IsAvailable
	v.Touch()
	return nil
}

// StockStatus classifies the current quantity
func (v *Variant) StockStatus() StockStatus {
	switch {
	case !v.TrackInventory:
		return StockUnlimited
	case v.InventoryQuantity <= 0:
		return StockOut
	case v.InventoryQuantity <= v.LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// CanFulfil reports whether qty units can be sold right now
func (v *Variant) CanFulfil(qty int) bool {
	if !v.TrackInventory {
		return true
	}
	return v.InventoryQuantity >= qty || v.AllowBackorder
}

// SetQuantity overwrites the stock count. Only inventory operations call it.
func (v *Variant) SetQuantity(qty int) {
	v.InventoryQuantity = qty
	v.Touch()
}

// VariantRepository persists variants
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Variant, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Variant, error)
	ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error)
	// FindLowStock returns tracked variants at or below their threshold
	FindLowStock(ctx context.Context) ([]Variant, error)
	Save(ctx context.Context, v *Variant) error
	Delete(ctx context.Context, id uuid.UUID) error
}
