package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentMethodRepository implements payment.MethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByID finds a payment method by its ID
func (r *GormPaymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Method, error) {
	var model models.PaymentMethodModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrMethodNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists a customer's cards with the default first
func (r *GormPaymentMethodRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]payment.Method, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.PaymentMethodModel
	if err := query.Order("is_default DESC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	methods := make([]payment.Method, len(rows))
	for i, model := range rows {
		methods[i] = *model.ToDomain()
	}
	return methods, nil
}

// Save creates or updates a payment method
func (r *GormPaymentMethodRepository) Save(ctx context.Context, m *payment.Method) error {
	return r.db.WithContext(ctx).Save(models.PaymentMethodModelFromDomain(m)).Error
}

// SetDefault clears the customer's other defaults and marks id as default
func (r *GormPaymentMethodRepository) SetDefault(ctx context.Context, customerID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentMethodModel{}).
			Where("customer_id = ? AND id <> ?", customerID, id).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.PaymentMethodModel{}).
			Where("customer_id = ? AND id = ? AND is_active = ?", customerID, id, true).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return payment.ErrMethodNotFound
		}
		return nil
	})
}

var _ payment.MethodRepository = (*GormPaymentMethodRepository)(nil)
