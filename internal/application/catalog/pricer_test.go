package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

func newPricerFixture(t *testing.T) (*Pricer, *MockProductRepository, *MockVariantRepository, *catalog.Product, *catalog.Variant) {
	t.Helper()
	prod, err := catalog.NewProduct("", "Beef Feast", decimal.RequireFromString("89.99"))
	require.NoError(t, err)
	prod.Weight = "5 lb"
	v, err := catalog.NewVariant(prod.ID, catalog.VariantParams{
		SKU:   "beef-10",
		Title: "10 lb",
		Price: decimal.RequireFromString("159.99"),
	})
	require.NoError(t, err)

	products := new(MockProductRepository)
	variants := new(MockVariantRepository)
	products.On("FindByID", mock.Anything, prod.ID).Return(prod, nil)
	variants.On("FindByID", mock.Anything, v.ID).Return(v, nil)
	return NewPricer(products, variants), products, variants, prod, v
}

func TestPricer_ProductLine(t *testing.T) {
	p, _, _, prod, _ := newPricerFixture(t)

	line, err := p.PriceLine(context.Background(), &prod.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Beef Feast", line.Name)
	assert.True(t, decimal.RequireFromString("89.99").Equal(line.Price))
	assert.Equal(t, "5 lb", line.Weight)
	assert.Nil(t, line.VariantID)
}

func TestPricer_VariantLine(t *testing.T) {
	p, _, _, prod, v := newPricerFixture(t)

	line, err := p.PriceLine(context.Background(), nil, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, prod.ID, line.ProductID)
	require.NotNil(t, line.VariantID)
	assert.Equal(t, v.ID, *line.VariantID)
	assert.Equal(t, "Beef Feast - 10 lb", line.Name)
	assert.Equal(t, "BEEF-10", line.SKU)
	assert.True(t, decimal.RequireFromString("159.99").Equal(line.Price))
	assert.Equal(t, "5 lb", line.Weight)

	line, err = p.PriceLine(context.Background(), &prod.ID, &v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, *line.VariantID)
}

func TestPricer_Rejects(t *testing.T) {
	unknown := uuid.New()
	other := uuid.New()

	tests := []struct {
		name    string
		setup   func(products *MockProductRepository, variants *MockVariantRepository, prod *catalog.Product)
		product func(prod *catalog.Product) *uuid.UUID
		variant func(v *catalog.Variant) *uuid.UUID
		wantMsg string
	}{
		{
			name:    "no ids",
			product: func(*catalog.Product) *uuid.UUID { return nil },
			variant: func(*catalog.Variant) *uuid.UUID { return nil },
			wantMsg: "Each item needs a product_id or variant_id",
		},
		{
			name: "unknown product",
			setup: func(products *MockProductRepository, _ *MockVariantRepository, _ *catalog.Product) {
				products.On("FindByID", mock.Anything, unknown).Return(nil, catalog.ErrProductNotFound)
			},
			product: func(*catalog.Product) *uuid.UUID { return &unknown },
			variant: func(*catalog.Variant) *uuid.UUID { return nil },
			wantMsg: "Product not found: " + unknown.String(),
		},
		{
			name: "unknown variant",
			setup: func(_ *MockProductRepository, variants *MockVariantRepository, _ *catalog.Product) {
				variants.On("FindByID", mock.Anything, unknown).Return(nil, catalog.ErrVariantNotFound)
			},
			product: func(*catalog.Product) *uuid.UUID { return nil },
			variant: func(*catalog.Variant) *uuid.UUID { return &unknown },
			wantMsg: "Variant not found: " + unknown.String(),
		},
		{
			name:    "variant of another product",
			product: func(*catalog.Product) *uuid.UUID { return &other },
			variant: func(v *catalog.Variant) *uuid.UUID { return &v.ID },
			wantMsg: "does not belong to product",
		},
		{
			name: "archived product",
			setup: func(_ *MockProductRepository, _ *MockVariantRepository, prod *catalog.Product) {
				prod.Archived = true
			},
			product: func(prod *catalog.Product) *uuid.UUID { return &prod.ID },
			variant: func(*catalog.Variant) *uuid.UUID { return nil },
			wantMsg: "Product not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, products, variants, prod, v := newPricerFixture(t)
			if tt.setup != nil {
				tt.setup(products, variants, prod)
			}

			_, err := p.PriceLine(context.Background(), tt.product(prod), tt.variant(v))

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_INPUT", de.Code)
			assert.Contains(t, de.Message, tt.wantMsg)
		})
	}
}

func TestPricer_RepositoryError(t *testing.T) {
	p, products, _, _, _ := newPricerFixture(t)
	id := uuid.New()
	boom := errors.New("connection reset")
	products.On("FindByID", mock.Anything, id).Return(nil, boom)

	_, err := p.PriceLine(context.Background(), &id, nil)
	assert.ErrorIs(t, err, boom)
}
