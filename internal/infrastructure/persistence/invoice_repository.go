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

// GormInvoiceRepository implements subscription.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCycle returns the invoice for the subscription's billing date
func (r *GormInvoiceRepository) FindByCycle(ctx context.Context, subscriptionID uuid.UUID, billingDate time.Time) (*subscription.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND billing_date = ?", subscriptionID, billingDate).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySubscription lists a subscription's invoices, newest billing date first
func (r *GormInvoiceRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]subscription.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("billing_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindRetryable returns failed invoices with attempts left whose retry time has come
func (r *GormInvoiceRepository) FindRetryable(ctx context.Context, asOf time.Time, maxAttempts int) ([]subscription.Invoice, error) {
	var rows []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND attempt_count < ?", string(subscription.InvoiceStatusFailed), maxAttempts).
		Where("next_retry_at IS NOT NULL AND next_retry_at <= ?", asOf).
		Order("next_retry_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindFailed lists failed invoices for the admin dashboard
func (r *GormInvoiceRepository) FindFailed(ctx context.Context, filter shared.Filter) ([]subscription.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("status = ?", string(subscription.InvoiceStatusFailed))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvoiceModel
	if err := paginate(query, filter, InvoiceSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return invoicesToDomain(rows), total, nil
}

// Save creates or updates an invoice. A second invoice for the same cycle
// violates the unique (subscription_id, billing_date) index.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *subscription.Invoice) error {
	err := r.db.WithContext(ctx).Save(models.InvoiceModelFromDomain(inv)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.WrapDomainError("CONFLICT", "An invoice already exists for this billing cycle", err)
	}
	return err
}

func invoicesToDomain(rows []models.InvoiceModel) []subscription.Invoice {
	invoices := make([]subscription.Invoice, len(rows))
	for i, model := range rows {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}

var _ subscription.InvoiceRepository = (*GormInvoiceRepository)(nil)
