package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/consultation"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormConsultationRepository implements consultation.Repository using GORM
type GormConsultationRepository struct {
	db *gorm.DB
}

// NewGormConsultationRepository creates a new GormConsultationRepository
func NewGormConsultationRepository(db *gorm.DB) *GormConsultationRepository {
	return &GormConsultationRepository{db: db}
}

// FindByID finds a consultation by its ID
func (r *GormConsultationRepository) FindByID(ctx context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	var model models.ConsultationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, consultation.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists consultations. Filters supports "status".
func (r *GormConsultationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]consultation.Consultation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ConsultationModel{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(email) LIKE ? OR LOWER(last_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ConsultationModel
	if err := paginate(query, filter, ConsultationSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]consultation.Consultation, len(rows))
	for i, model := range rows {
		out[i] = *model.ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a consultation
func (r *GormConsultationRepository) Save(ctx context.Context, c *consultation.Consultation) error {
	return r.db.WithContext(ctx).Save(models.ConsultationModelFromDomain(c)).Error
}

var _ consultation.Repository = (*GormConsultationRepository)(nil)
