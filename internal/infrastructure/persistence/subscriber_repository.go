package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/marketing"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubscriberRepository implements marketing.SubscriberRepository using GORM
type GormSubscriberRepository struct {
	db *gorm.DB
}

// NewGormSubscriberRepository creates a new GormSubscriberRepository
func NewGormSubscriberRepository(db *gorm.DB) *GormSubscriberRepository {
	return &GormSubscriberRepository{db: db}
}

// FindByID finds a subscriber by its ID
func (r *GormSubscriberRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketing.Subscriber, error) {
	var model models.SubscriberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a subscriber by normalized email
func (r *GormSubscriberRepository) FindByEmail(ctx context.Context, email string) (*marketing.Subscriber, error) {
	var model models.SubscriberModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", customer.NormalizeEmail(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists subscribers. Filters supports "status" and "source".
func (r *GormSubscriberRepository) FindAll(ctx context.Context, filter shared.Filter) ([]marketing.Subscriber, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SubscriberModel{})
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "source":
			query = query.Where("source = ?", value)
		}
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SubscriberModel
	if err := paginate(query, filter, SubscriberSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	subs := make([]marketing.Subscriber, len(rows))
	for i, model := range rows {
		subs[i] = *model.ToDomain()
	}
	return subs, total, nil
}

// Save creates or updates a subscriber
func (r *GormSubscriberRepository) Save(ctx context.Context, s *marketing.Subscriber) error {
	return r.db.WithContext(ctx).Save(models.SubscriberModelFromDomain(s)).Error
}

var _ marketing.SubscriberRepository = (*GormSubscriberRepository)(nil)
