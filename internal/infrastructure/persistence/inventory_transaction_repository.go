package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/inventory"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository stores stock movements
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// Append inserts a movement
func (r *GormInventoryTransactionRepository) Append(ctx context.Context, t *inventory.Transaction) error {
	return r.db.WithContext(ctx).Create(models.InventoryTransactionModelFromDomain(t)).Error
}

// FindByVariant returns the latest movements of a variant. A limit of zero returns all.
func (r *GormInventoryTransactionRepository) FindByVariant(ctx context.Context, variantID uuid.UUID, limit int) ([]inventory.Transaction, error) {
	query := r.db.WithContext(ctx).Where("variant_id = ?", variantID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.InventoryTransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return inventoryTransactionsToDomain(rows), nil
}

// FindAll lists movements. Filters supports "type" and "variant_id".
func (r *GormInventoryTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryTransactionModel{})
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "variant_id":
			query = query.Where("variant_id = ?", value)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InventoryTransactionModel
	if err := paginate(query, filter, InventoryTransactionSortFields).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return inventoryTransactionsToDomain(rows), total, nil
}

func inventoryTransactionsToDomain(rows []models.InventoryTransactionModel) []inventory.Transaction {
	out := make([]inventory.Transaction, len(rows))
	for i, model := range rows {
		out[i] = *model.ToDomain()
	}
	return out
}

var _ inventory.TransactionRepository = (*GormInventoryTransactionRepository)(nil)
