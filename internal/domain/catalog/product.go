package catalog

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// AggregateTypeProduct is the aggregate name for products
const AggregateTypeProduct = "Product"

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Errors
var (
	ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
	ErrVariantNotFound = shared.NewDomainError("NOT_FOUND", "Variant not found")
	ErrHandleTaken     = shared.NewDomainError("ALREADY_EXISTS", "A product with this handle already exists")
	ErrSKUTaken        = shared.NewDomainError("ALREADY_EXISTS", "A variant with this SKU already exists")
)

// Slugify lowercases s and collapses every run of non-alphanumerics into "-"
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// Product is a sellable item in the storefront
type Product struct {
	shared.BaseAggregateRoot
	Handle      string
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Weight      string
	IsActive    bool
	Archived    bool
}

// NewProduct creates an active product. An empty handle is derived from the title.
func NewProduct(handle, title string, price decimal.Decimal) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		IsActive:          true,
	}
	if err := p.Update(handle, title, "", price); err != nil {
		return nil, err
	}
	return p, nil
}

// Update changes the product's storefront fields
func (p *Product) Update(handle, title, description string, price decimal.Decimal) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product title is required")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Product price cannot be negative")
	}
	handle = Slugify(handle)
	if handle == "" {
		handle = Slugify(title)
	}
	if handle == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product handle is required")
	}
	p.Handle = handle
	p.Title = title
	p.Description = description
	p.Price = price
	p.Touch()
	p.IncrementVersion()
	return nil
}

// Visible reports whether shoppers can see the product
func (p *Product) Visible() bool {
	return p.IsActive && !p.Archived
}

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByHandle(ctx context.Context, handle string) (*Product, error)
	// FindAll lists products. Filters supports "active" (bool) and "archived" (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, int64, error)
	ExistsByHandle(ctx context.Context, handle string, excludeID *uuid.UUID) (bool, error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
