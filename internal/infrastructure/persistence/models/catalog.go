package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for products
type ProductModel struct {
	AggregateModel
	Handle      string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ImageURL    string          `gorm:"type:text"`
	Weight      string          `gorm:"type:varchar(50)"`
	IsActive    bool            `gorm:"not null;default:true;index"`
	Archived    bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Handle:            m.Handle,
		Title:             m.Title,
		Description:       m.Description,
		Price:             m.Price,
		ImageURL:          m.ImageURL,
		Weight:            m.Weight,
		IsActive:          m.IsActive,
		Archived:          m.Archived,
	}
}

// ProductModelFromDomain converts a domain Product to the persistence model
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Handle:      p.Handle,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		IsActive:    p.IsActive,
		Archived:    p.Archived,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// VariantModel is the persistence model for product variants
type VariantModel struct {
	BaseModel
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU               string          `gorm:"column:sku;type:varchar(100);index"`
	Title             string          `gorm:"type:varchar(255)"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Weight            string          `gorm:"type:varchar(50)"`
	InventoryQuantity int             `gorm:"not null;default:0"`
	TrackInventory    bool            `gorm:"not null;default:true"`
	AllowBackorder    bool            `gorm:"not null;default:false"`
	LowStockThreshold int             `gorm:"not null;default:5"`
	IsAvailable       bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain Variant
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{
		BaseEntity:        m.BaseModel.ToDomain(),
		ProductID:         m.ProductID,
		SKU:               m.SKU,
		Title:             m.Title,
		Price:             m.Price,
		Weight:            m.Weight,
		InventoryQuantity: m.InventoryQuantity,
		TrackInventory:    m.TrackInventory,
		AllowBackorder:    m.AllowBackorder,
		LowStockThreshold: m.LowStockThreshold,
		IsAvailable:       m.IsAvailable,
	}
}

// VariantModelFromDomain converts a domain Variant to the persistence model
func VariantModelFromDomain(v *catalog.Variant) *VariantModel {
	m := &VariantModel{
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
	}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}
