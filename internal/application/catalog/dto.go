package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/catalog"
)

// ProductRequest creates or replaces a product
type ProductRequest struct {
	Handle      string          `json:"handle"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Weight      string          `json:"weight"`
	IsActive    *bool           `json:"is_active"`
}

// VariantRequest creates or replaces a variant
type VariantRequest struct {
	SKU               string          `json:"sku" binding:"required"`
	Title             string          `json:"title" binding:"required"`
	Price             decimal.Decimal `json:"price"`
	Weight            string          `json:"weight"`
	InventoryQuantity int             `json:"inventory_quantity"`
	TrackInventory    *bool           `json:"track_inventory"`
	AllowBackorder    bool            `json:"allow_backorder"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	IsAvailable       *bool           `json:"is_available"`
}

func (r VariantRequest) params() catalog.VariantParams {
	return catalog.VariantParams{
		SKU:               r.SKU,
		Title:             r.Title,
		Price:             r.Price,
		Weight:            r.Weight,
		InventoryQuantity: r.InventoryQuantity,
		TrackInventory:    boolOr(r.TrackInventory, true),
		AllowBackorder:    r.AllowBackorder,
		LowStockThreshold: r.LowStockThreshold,
		IsAvailable:       boolOr(r.IsAvailable, true),
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// ProductListFilter narrows product lists
type ProductListFilter struct {
	Search          string `form:"search"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
	IncludeArchived bool   `form:"include_archived"`
}

// VariantResponse is the variant view with its stock status
type VariantResponse struct {
	ID                uuid.UUID           `json:"id"`
	ProductID         uuid.UUID           `json:"product_id"`
	SKU               string              `json:"sku"`
	Title             string              `json:"title"`
	Price             decimal.Decimal     `json:"price"`
	Weight            string              `json:"weight,omitempty"`
	InventoryQuantity int                 `json:"inventory_quantity"`
	TrackInventory    bool                `json:"track_inventory"`
	AllowBackorder    bool                `json:"allow_backorder"`
	LowStockThreshold int                 `json:"low_stock_threshold"`
	IsAvailable       bool                `json:"is_available"`
	StockStatus       catalog.StockStatus `json:"stock_status"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ToVariantResponse maps a variant
func ToVariantResponse(v *catalog.Variant) VariantResponse {
	return VariantResponse{
		ID:                v.ID,
		ProductID:         v.ProductID,
		SKU:               v.SKU,
		Title:             v.Title,
		Price:             v.Price,
		Weight:            v.Weight,
		InventoryQuantity: v.InventoryQuantity,
		TrackInventory:    v.TrackInventory,
		AllowBackorder:    v.AllowBackorder,
		LowStockThreshold: v.LowStockThreshold,
		IsAvailable:       v.IsAvailable,
		StockStatus:       v.StockStatus(),
		UpdatedAt:         v.UpdatedAt,
	}
}

// ToVariantResponses maps a slice of variants
func ToVariantResponses(variants []catalog.Variant) []VariantResponse {
	out := make([]VariantResponse, len(variants))
	for i := range variants {
		out[i] = ToVariantResponse(&variants[i])
	}
	return out
}

// ProductResponse is the product view, with variants when loaded
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Handle      string            `json:"handle"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	ImageURL    string            `json:"image_url,omitempty"`
	Weight      string            `json:"weight,omitempty"`
	IsActive    bool              `json:"is_active"`
	Archived    bool              `json:"archived"`
	Variants    []VariantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToProductResponse maps a product
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		IsActive:    p.IsActive,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
