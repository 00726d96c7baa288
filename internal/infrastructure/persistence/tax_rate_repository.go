package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/tax"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaxRateRepository implements tax.Repository using GORM
type GormTaxRateRepository struct {
	db *gorm.DB
}

// NewGormTaxRateRepository creates a new GormTaxRateRepository
func NewGormTaxRateRepository(db *gorm.DB) *GormTaxRateRepository {
	return &GormTaxRateRepository{db: db}
}

// FindByID finds a rate by its ID
func (r *GormTaxRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Rate, error) {
	var model models.TaxRateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tax.ErrRateNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByZip finds the active ZIP-level rate
func (r *GormTaxRateRepository) FindActiveByZip(ctx context.Context, stateCode, zip string) (*tax.Rate, error) {
	return r.findActive(ctx, r.db.WithContext(ctx).
		Where("state_code = ? AND zip_code = ?", strings.ToUpper(stateCode), zip))
}

// FindActiveByCounty finds the active county-level rate, ignoring case
func (r *GormTaxRateRepository) FindActiveByCounty(ctx context.Context, stateCode, county string) (*tax.Rate, error) {
	return r.findActive(ctx, r.db.WithContext(ctx).
		Where("state_code = ? AND LOWER(county) = ?", strings.ToUpper(stateCode), strings.ToLower(strings.TrimSpace(county))).
		Where("zip_code = '' OR zip_code IS NULL"))
}

// FindActiveStateRate returns the rate with neither county nor ZIP set
func (r *GormTaxRateRepository) FindActiveStateRate(ctx context.Context, stateCode string) (*tax.Rate, error) {
	return r.findActive(ctx, r.db.WithContext(ctx).
		Where("state_code = ?", strings.ToUpper(stateCode)).
		Where("county = '' OR county IS NULL").
		Where("zip_code = '' OR zip_code IS NULL"))
}

func (r *GormTaxRateRepository) findActive(_ context.Context, query *gorm.DB) (*tax.Rate, error) {
	var model models.TaxRateModel
	if err := query.Where("is_active = ?", true).Order("updated_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists rates. Filters supports "state_code" and "active".
func (r *GormTaxRateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]tax.Rate, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TaxRateModel{})
	for key, value := range filter.Filters {
		switch key {
		case "state_code":
			if s, ok := value.(string); ok {
				value = strings.ToUpper(s)
			}
			query = query.Where("state_code = ?", value)
		case "active":
			query = query.Where("is_active = ?", value)
		}
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(state_name) LIKE ? OR LOWER(county) LIKE ? OR zip_code LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TaxRateModel
	if err := paginate(query, filter, TaxRateSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	rates := make([]tax.Rate, len(rows))
	for i, model := range rows {
		rates[i] = *model.ToDomain()
	}
	return rates, total, nil
}

// Save creates or updates a rate
func (r *GormTaxRateRepository) Save(ctx context.Context, rate *tax.Rate) error {
	return r.db.WithContext(ctx).Save(models.TaxRateModelFromDomain(rate)).Error
}

// SaveBatch writes every rate in one transaction
func (r *GormTaxRateRepository) SaveBatch(ctx context.Context, rates []*tax.Rate) error {
	if len(rates) == 0 {
		return nil
	}
	rows := make([]*models.TaxRateModel, len(rates))
	for i, rate := range rates {
		rows[i] = models.TaxRateModelFromDomain(rate)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(rows).Error
	})
}

var _ tax.Repository = (*GormTaxRateRepository)(nil)
