package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles products and their variants
type ProductService struct {
	productRepo catalog.ProductRepository
	variantRepo catalog.VariantRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, variantRepo catalog.VariantRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		variantRepo: variantRepo,
		logger:      logger,
	}
}

// ListPublic returns active, unarchived products
func (s *ProductService) ListPublic(ctx context.Context, f ProductListFilter) ([]ProductResponse, int64, error) {
	filter := toFilter(f)
	filter.Filters["active"] = true
	filter.Filters["archived"] = false
	return s.list(ctx, filter)
}

// List returns products for the admin view
func (s *ProductService) List(ctx context.Context, f ProductListFilter) ([]ProductResponse, int64, error) {
	filter := toFilter(f)
	if !f.IncludeArchived {
		filter.Filters["archived"] = false
	}
	return s.list(ctx, filter)
}

func (s *ProductService) list(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, total, nil
}

// GetByHandle returns a visible product with its variants
func (s *ProductService) GetByHandle(ctx context.Context, handle string) (*ProductResponse, error) {
	p, err := s.visibleProduct(ctx, handle)
	if err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.FindByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	resp.Variants = ToVariantResponses(variants)
	return &resp, nil
}

// VariantsByHandle lists the variants of a visible product
func (s *ProductService) VariantsByHandle(ctx context.Context, handle string) ([]VariantResponse, error) {
	p, err := s.visibleProduct(ctx, handle)
	if err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.FindByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return ToVariantResponses(variants), nil
}

func (s *ProductService) visibleProduct(ctx context.Context, handle string) (*catalog.Product, error) {
	p, err := s.productRepo.FindByHandle(ctx, strings.ToLower(strings.TrimSpace(handle)))
	if err != nil {
		return nil, err
	}
	if !p.Visible() {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

// Create adds a product
func (s *ProductService) Create(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	p, err := catalog.NewProduct(req.Handle, req.Title, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("product_id", p.ID.String()), zap.String("handle", p.Handle))
	resp := ToProductResponse(p)
	return &resp, nil
}

// Update replaces a product's fields
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Update(req.Handle, req.Title, req.Description, req.Price); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

func (s *ProductService) apply(ctx context.Context, p *catalog.Product, req ProductRequest) error {
	exists, err := s.productRepo.ExistsByHandle(ctx, p.Handle, &p.ID)
	if err != nil {
		return err
	}
	if exists {
		return catalog.ErrHandleTaken
	}
	p.Description = req.Description
	p.ImageURL = strings.TrimSpace(req.ImageURL)
	p.Weight = strings.TrimSpace(req.Weight)
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return s.productRepo.Save(ctx, p)
}

// Delete removes a product and its variants
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListVariants lists a product's variants for the admin view
func (s *ProductService) ListVariants(ctx context.Context, productID uuid.UUID) ([]VariantResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	variants, err := s.variantRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToVariantResponses(variants), nil
}

// CreateVariant adds a variant to a product
func (s *ProductService) CreateVariant(ctx context.Context, productID uuid.UUID, req VariantRequest) (*VariantResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if req.InventoryQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Inventory quantity cannot be negative")
	}
	v, err := catalog.NewVariant(productID, req.params())
	if err != nil {
		return nil, err
	}
	if err := s.ensureSKUFree(ctx, v.SKU, nil); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Save(ctx, v); err != nil {
		return nil, err
	}
	resp := ToVariantResponse(v)
	return &resp, nil
}

// UpdateVariant replaces a variant's fields. The stock count is left alone.
func (s *ProductService) UpdateVariant(ctx context.Context, id uuid.UUID, req VariantRequest) (*VariantResponse, error) {
	v, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := v.Update(req.params()); err != nil {
		return nil, err
	}
	if err := s.ensureSKUFree(ctx, v.SKU, &v.ID); err != nil {
		return nil, err
	}
	if err := s.variantRepo.Save(ctx, v); err != nil {
		return nil, err
	}
	resp := ToVariantResponse(v)
	return &resp, nil
}

// DeleteVariant removes a variant
func (s *ProductService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	if _, err := s.variantRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.variantRepo.Delete(ctx, id)
}

func (s *ProductService) ensureSKUFree(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	exists, err := s.variantRepo.ExistsBySKU(ctx, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return catalog.ErrSKUTaken
	}
	return nil
}

func toFilter(f ProductListFilter) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.Search = strings.TrimSpace(f.Search)
	return filter
}
