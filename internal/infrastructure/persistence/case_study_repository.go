package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCaseStudyRepository implements content.CaseStudyRepository using GORM
type GormCaseStudyRepository struct {
	db *gorm.DB
}

// NewGormCaseStudyRepository creates a new GormCaseStudyRepository
func NewGormCaseStudyRepository(db *gorm.DB) *GormCaseStudyRepository {
	return &GormCaseStudyRepository{db: db}
}

// FindByID finds a case study by its ID
func (r *GormCaseStudyRepository) FindByID(ctx context.Context, id uuid.UUID) (*content.CaseStudy, error) {
	var model models.CaseStudyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, content.ErrCaseStudyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a case study by slug
func (r *GormCaseStudyRepository) FindBySlug(ctx context.Context, slug string) (*content.CaseStudy, error) {
	var model models.CaseStudyModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, content.ErrCaseStudyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SlugExists reports whether the slug is taken
func (r *GormCaseStudyRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CaseStudyModel{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists case studies that are not archived. Filters supports "published".
func (r *GormCaseStudyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]content.CaseStudy, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CaseStudyModel{}).Where("archived = ?", false)
	if published, ok := filter.Filters["published"]; ok {
		query = query.Where("published = ?", published)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(dog_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CaseStudyModel
	if err := paginate(query, filter, CaseStudySortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]content.CaseStudy, len(rows))
	for i, model := range rows {
		out[i] = *model.ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a case study
func (r *GormCaseStudyRepository) Save(ctx context.Context, c *content.CaseStudy) error {
	return r.db.WithContext(ctx).Save(models.CaseStudyModelFromDomain(c)).Error
}

// Delete removes a case study
func (r *GormCaseStudyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CaseStudyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return content.ErrCaseStudyNotFound
	}
	return nil
}

var _ content.CaseStudyRepository = (*GormCaseStudyRepository)(nil)
