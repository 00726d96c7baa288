package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type MockProductRepository struct{ mock.Mock }

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByHandle(ctx context.Context, handle string) (*catalog.Product, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ExistsByHandle(ctx context.Context, handle string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, handle, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockVariantRepository struct{ mock.Mock }

func (m *MockVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVariantRepository) FindLowStock(ctx context.Context) ([]catalog.Variant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Variant), args.Error(1)
}

func (m *MockVariantRepository) Save(ctx context.Context, v *catalog.Variant) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setupProductService() (*ProductService, *MockProductRepository, *MockVariantRepository) {
	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	return NewProductService(products, variants, zap.NewNop()), products, variants
}

func TestProductService_Create(t *testing.T) {
	svc, products, _ := setupProductService()
	ctx := context.Background()

	products.On("ExistsByHandle", ctx, "turkey-pumpkin-feast", mock.Anything).Return(false, nil)
	products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	resp, err := svc.Create(ctx, ProductRequest{
		Title:    "Turkey & Pumpkin Feast",
		Price:    decimal.RequireFromString("24.99"),
		ImageURL: " https://cdn.example.com/turkey.jpg ",
	})
	require.NoError(t, err)
	assert.Equal(t, "turkey-pumpkin-feast", resp.Handle)
	assert.Equal(t, "https://cdn.example.com/turkey.jpg", resp.ImageURL)
	assert.True(t, resp.IsActive)
}

func TestProductService_CreateHandleTaken(t *testing.T) {
	svc, products, _ := setupProductService()
	ctx := context.Background()
	products.On("ExistsByHandle", ctx, "beef-box", mock.Anything).Return(true, nil)

	_, err := svc.Create(ctx, ProductRequest{Handle: "Beef Box", Title: "Beef", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, catalog.ErrHandleTaken)
	products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_GetByHandle(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		active  bool
		archive bool
		wantErr error
	}{
		{name: "visible", active: true},
		{name: "inactive is hidden", active: false, wantErr: catalog.ErrProductNotFound},
		{name: "archived is hidden", active: true, archive: true, wantErr: catalog.ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, products, variants := setupProductService()
			p, err := catalog.NewProduct("lamb-box", "Lamb Box", decimal.NewFromInt(40))
			require.NoError(t, err)
			p.IsActive = tt.active
			p.Archived = tt.archive
			v, err := catalog.NewVariant(p.ID, catalog.VariantParams{SKU: "lb-5", Title: "5 lb", Price: decimal.NewFromInt(40), TrackInventory: true, InventoryQuantity: 4})
			require.NoError(t, err)

			products.On("FindByHandle", ctx, "lamb-box").Return(p, nil)
			variants.On("FindByProduct", ctx, p.ID).Return([]catalog.Variant{*v}, nil)

			resp, err := svc.GetByHandle(ctx, " Lamb-Box ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, resp.Variants, 1)
			assert.Equal(t, "LB-5", resp.Variants[0].SKU)
			assert.Equal(t, catalog.StockLow, resp.Variants[0].StockStatus)
		})
	}
}

func TestProductService_CreateVariant(t *testing.T) {
	svc, products, variants := setupProductService()
	ctx := context.Background()
	productID := uuid.New()
	products.On("FindByID", ctx, productID).Return(&catalog.Product{}, nil)
	variants.On("ExistsBySKU", ctx, "SAL-2", (*uuid.UUID)(nil)).Return(false, nil)
	variants.On("Save", ctx, mock.AnythingOfType("*catalog.Variant")).Return(nil)

	resp, err := svc.CreateVariant(ctx, productID, VariantRequest{SKU: "sal-2", Title: "2 lb", Price: decimal.NewFromInt(18), InventoryQuantity: 25})
	require.NoError(t, err)
	assert.Equal(t, 25, resp.InventoryQuantity)
	assert.True(t, resp.TrackInventory)
	assert.True(t, resp.IsAvailable)
	assert.Equal(t, catalog.DefaultLowStockThreshold, resp.LowStockThreshold)
	assert.Equal(t, catalog.StockIn, resp.StockStatus)

	_, err = svc.CreateVariant(ctx, productID, VariantRequest{SKU: "x", Title: "x", InventoryQuantity: -1})
	assert.Error(t, err)
}

func TestProductService_UpdateVariantKeepsStock(t *testing.T) {
	svc, _, variants := setupProductService()
	ctx := context.Background()
	v, err := catalog.NewVariant(uuid.New(), catalog.VariantParams{SKU: "CK-1", Title: "1 lb", Price: decimal.NewFromInt(9), TrackInventory: true, InventoryQuantity: 30})
	require.NoError(t, err)
	variants.On("FindByID", ctx, v.ID).Return(v, nil)
	variants.On("ExistsBySKU", ctx, "CK-1", &v.ID).Return(false, nil)
	variants.On("Save", ctx, v).Return(nil)

	resp, err := svc.UpdateVariant(ctx, v.ID, VariantRequest{SKU: "ck-1", Title: "1 lb bag", Price: decimal.NewFromInt(10), InventoryQuantity: 999})
	require.NoError(t, err)
	assert.Equal(t, 30, resp.InventoryQuantity)
	assert.Equal(t, "1 lb bag", resp.Title)
}
