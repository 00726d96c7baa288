package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// PricedLine is a cart or box line priced from the catalog
type PricedLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Name      string
	SKU       string
	Price     decimal.Decimal
	Weight    string
}

// Pricer looks up what a line costs. Prices and names sent by clients are
// never trusted.
type Pricer struct {
	products catalog.ProductRepository
	variants catalog.VariantRepository
}

// NewPricer creates a new Pricer
func NewPricer(products catalog.ProductRepository, variants catalog.VariantRepository) *Pricer {
	return &Pricer{products: products, variants: variants}
}

// PriceLine prices one line. A variant wins over its product; when both ids
// are given the variant must belong to the product.
func (p *Pricer) PriceLine(ctx context.Context, productID, variantID *uuid.UUID) (*PricedLine, error) {
	if variantID != nil {
		return p.priceVariant(ctx, productID, *variantID)
	}
	if productID == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Each item needs a product_id or variant_id")
	}
	prod, err := p.product(ctx, *productID)
	if err != nil {
		return nil, err
	}
	return &PricedLine{
		ProductID: prod.ID,
		Name:      prod.Title,
		Price:     prod.Price,
		Weight:    prod.Weight,
	}, nil
}

func (p *Pricer) priceVariant(ctx context.Context, productID *uuid.UUID, variantID uuid.UUID) (*PricedLine, error) {
	v, err := p.variants.FindByID(ctx, variantID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Variant not found: %s", variantID))
	}
	if err != nil {
		return nil, err
	}
	if productID != nil && *productID != v.ProductID {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Variant %s does not belong to product %s", variantID, *productID))
	}
	prod, err := p.product(ctx, v.ProductID)
	if err != nil {
		return nil, err
	}

	name := prod.Title
	if v.Title != "" && v.Title != prod.Title {
		name = prod.Title + " - " + v.Title
	}
	weight := v.Weight
	if weight == "" {
		weight = prod.Weight
	}
	id := v.ID
	return &PricedLine{
		ProductID: prod.ID,
		VariantID: &id,
		Name:      name,
		SKU:       v.SKU,
		Price:     v.Price,
		Weight:    weight,
	}, nil
}

// product returns a product shoppers can buy
func (p *Pricer) product(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	prod, err := p.products.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && !prod.Visible()) {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Product not found: %s", id))
	}
	if err != nil {
		return nil, err
	}
	return prod, nil
}
