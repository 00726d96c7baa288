package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByID finds a variant by its ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs loads several variants at once. Missing IDs are skipped.
func (r *GormVariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Variant, error) {
	if len(ids) == 0 {
		return []catalog.Variant{}, nil
	}
	var rows []models.VariantModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return variantsToDomain(rows), nil
}

// FindByProduct lists the variants of a product
func (r *GormVariantRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.Variant, error) {
	var rows []models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return variantsToDomain(rows), nil
}

// ExistsBySKU reports whether another variant already uses the SKU
func (r *GormVariantRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.VariantModel{}).Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindLowStock returns tracked variants at or below their threshold
func (r *GormVariantRepository) FindLowStock(ctx context.Context) ([]catalog.Variant, error) {
	var rows []models.VariantModel
	if err := r.db.WithContext(ctx).
		Where("track_inventory = ? AND inventory_quantity <= low_stock_threshold", true).
		Order("inventory_quantity ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return variantsToDomain(rows), nil
}

// Save creates or updates a variant
func (r *GormVariantRepository) Save(ctx context.Context, v *catalog.Variant) error {
	return r.db.WithContext(ctx).Save(models.VariantModelFromDomain(v)).Error
}

// Delete removes a variant
func (r *GormVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.VariantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

func variantsToDomain(rows []models.VariantModel) []catalog.Variant {
	variants := make([]catalog.Variant, len(rows))
	for i, model := range rows {
		variants[i] = *model.ToDomain()
	}
	return variants
}

var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
