package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubscriptionRepository implements subscription.Repository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's subscriptions, newest first. An empty status lists all.
func (r *GormSubscriptionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, status subscription.Status) ([]subscription.Subscription, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []models.SubscriptionModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return subscriptionsToDomain(rows), nil
}

// FindAll lists subscriptions. Filters supports "status".
func (r *GormSubscriptionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]subscription.Subscription, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SubscriptionModel{})
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SubscriptionModel
	if err := paginate(query, filter, SubscriptionSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return subscriptionsToDomain(rows), total, nil
}

// FindDue returns billable subscriptions whose next billing date is on or before asOf
func (r *GormSubscriptionRepository) FindDue(ctx context.Context, asOf time.Time) ([]subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(subscription.StatusActive), string(subscription.StatusPastDue)}).
		Where("next_billing_date <= ?", asOf).
		Order("next_billing_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return subscriptionsToDomain(rows), nil
}

// CountActiveByPaymentMethod counts non-cancelled subscriptions charging the method
func (r *GormSubscriptionRepository) CountActiveByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("payment_method_id = ? AND status NOT IN ?", paymentMethodID,
			[]string{string(subscription.StatusCancelled), string(subscription.StatusExpired)}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	return r.db.WithContext(ctx).Save(models.SubscriptionModelFromDomain(s)).Error
}

func subscriptionsToDomain(rows []models.SubscriptionModel) []subscription.Subscription {
	subs := make([]subscription.Subscription, len(rows))
	for i, model := range rows {
		subs[i] = *model.ToDomain()
	}
	return subs
}

var _ subscription.Repository = (*GormSubscriptionRepository)(nil)
