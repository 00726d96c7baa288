package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubscriptionHistoryRepository stores the append-only subscription audit trail
type GormSubscriptionHistoryRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionHistoryRepository creates a new GormSubscriptionHistoryRepository
func NewGormSubscriptionHistoryRepository(db *gorm.DB) *GormSubscriptionHistoryRepository {
	return &GormSubscriptionHistoryRepository{db: db}
}

// Append inserts an entry. Entries are never updated.
func (r *GormSubscriptionHistoryRepository) Append(ctx context.Context, h *subscription.History) error {
	return r.db.WithContext(ctx).Create(models.HistoryModelFromDomain(h)).Error
}

// FindBySubscription returns the trail, newest first
func (r *GormSubscriptionHistoryRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]subscription.History, error) {
	var rows []models.HistoryModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]subscription.History, len(rows))
	for i, model := range rows {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

var _ subscription.HistoryRepository = (*GormSubscriptionHistoryRepository)(nil)
