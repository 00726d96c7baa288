package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/promotion"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDiscountRepository implements promotion.Repository using GORM
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository
func NewGormDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// FindByID finds a discount by its ID
func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, promotion.ErrDiscountMissing
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a discount by code, ignoring case
func (r *GormDiscountRepository) FindByCode(ctx context.Context, code string) (*promotion.Discount, error) {
	var model models.DiscountModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", promotion.NormalizeCode(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists discounts
func (r *GormDiscountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]promotion.Discount, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DiscountModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(code) LIKE ?", likePattern(filter.Search))
	}
	if active, ok := filter.Filters["active"]; ok {
		query = query.Where("is_active = ?", active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DiscountModel
	if err := paginate(query, filter, DiscountSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	discounts := make([]promotion.Discount, len(rows))
	for i, model := range rows {
		discounts[i] = *model.ToDomain()
	}
	return discounts, total, nil
}

// IncrementUsage bumps usage_count in a single UPDATE
func (r *GormDiscountRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.DiscountModel{}).
		Where("id = ?", id).
		Update("usage_count", gorm.Expr("usage_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return promotion.ErrDiscountMissing
	}
	return nil
}

// Save creates or updates a discount
func (r *GormDiscountRepository) Save(ctx context.Context, d *promotion.Discount) error {
	err := r.db.WithContext(ctx).Save(models.DiscountModelFromDomain(d)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return promotion.ErrCodeTaken
	}
	return err
}

// Delete removes a discount
func (r *GormDiscountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DiscountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return promotion.ErrDiscountMissing
	}
	return nil
}

var _ promotion.Repository = (*GormDiscountRepository)(nil)
