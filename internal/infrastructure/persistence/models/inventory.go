package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/inventory"
)

// InventoryTransactionModel is an append-only stock movement row
type InventoryTransactionModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	VariantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type           string    `gorm:"type:varchar(20);not null;index"`
	QuantityChange int       `gorm:"not null"`
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	Reference      string    `gorm:"type:varchar(100)"`
	Notes          string    `gorm:"type:text"`
	CreatedBy      string    `gorm:"type:varchar(100)"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (InventoryTransactionModel) TableName() string {
	return "inventory_transactions"
}

// ToDomain converts the row to a domain Transaction
func (m *InventoryTransactionModel) ToDomain() *inventory.Transaction {
	return &inventory.Transaction{
		ID:             m.ID,
		VariantID:      m.VariantID,
		Type:           inventory.TransactionType(m.Type),
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reference:      m.Reference,
		Notes:          m.Notes,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

// InventoryTransactionModelFromDomain converts a domain Transaction to the row
func InventoryTransactionModelFromDomain(t *inventory.Transaction) *InventoryTransactionModel {
	return &InventoryTransactionModel{
		ID:             t.ID,
		VariantID:      t.VariantID,
		Type:           string(t.Type),
		QuantityChange: t.QuantityChange,
		QuantityBefore: t.QuantityBefore,
		QuantityAfter:  t.QuantityAfter,
		Reference:      t.Reference,
		Notes:          t.Notes,
		CreatedBy:      t.CreatedBy,
		CreatedAt:      t.CreatedAt,
	}
}
