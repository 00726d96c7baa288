package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
	"github.com/wagginmeals/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormArchiveRepository moves products and case studies in and out of the archive
type GormArchiveRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormArchiveRepository creates a new GormArchiveRepository
func NewGormArchiveRepository(db *gorm.DB) *GormArchiveRepository {
	return &GormArchiveRepository{db: db, now: time.Now}
}

func archiveTable(t content.Type) (string, error) {
	switch t {
	case content.TypeProduct:
		return models.ProductModel{}.TableName(), nil
	case content.TypeCaseStudy:
		return models.CaseStudyModel{}.TableName(), nil
	}
	return "", content.ErrUnsupportedType
}

// Archive snapshots the row as JSON and sets archived=true in one transaction
func (r *GormArchiveRepository) Archive(ctx context.Context, t content.Type, id uuid.UUID, reason, by string) (*content.Snapshot, error) {
	table, err := archiveTable(t)
	if err != nil {
		return nil, err
	}

	var snap *content.Snapshot
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, table, id)
		if err != nil {
			return err
		}
		if truthy(row["archived"]) {
			return content.ErrAlreadyArchived
		}

		data, err := json.Marshal(normalizeRow(row))
		if err != nil {
			return err
		}
		snap = content.NewSnapshot(t, id, data, reason, by)
		snap.ArchivedAt = r.now()
		if err := tx.Create(models.ArchiveSnapshotModelFromDomain(snap)).Error; err != nil {
			return err
		}

		result := tx.Table(table).
			Where("id = ? AND archived = ?", id, false).
			Updates(map[string]any{"archived": true, "updated_at": snap.ArchivedAt})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return content.ErrAlreadyArchived
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore clears archived and marks the latest open snapshot restored
func (r *GormArchiveRepository) Restore(ctx context.Context, t content.Type, id uuid.UUID, by string) (*content.Snapshot, error) {
	table, err := archiveTable(t)
	if err != nil {
		return nil, err
	}

	var snap *content.Snapshot
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := loadRow(tx, table, id)
		if err != nil {
			return err
		}
		if !truthy(row["archived"]) {
			return content.ErrNotArchived
		}

		var model models.ArchiveSnapshotModel
		if err := tx.Where("content_type = ? AND content_id = ? AND restored = ?", string(t), id, false).
			Order("archived_at DESC").
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return content.ErrSnapshotNotFound
			}
			return err
		}

		now := r.now()
		if err := tx.Table(table).Where("id = ?", id).
			Updates(map[string]any{"archived": false, "updated_at": now}).Error; err != nil {
			return err
		}
		model.Restored = true
		model.RestoredAt = &now
		model.RestoredBy = by
		if err := tx.Model(&model).
			Select("restored", "restored_at", "restored_by").
			Updates(&model).Error; err != nil {
			return err
		}
		snap = model.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns snapshots, newest first. An empty type lists all.
func (r *GormArchiveRepository) List(ctx context.Context, t content.Type) ([]content.Snapshot, error) {
	query := r.db.WithContext(ctx).Order("archived_at DESC")
	if t != "" {
		query = query.Where("content_type = ?", string(t))
	}
	var rows []models.ArchiveSnapshotModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]content.Snapshot, len(rows))
	for i, model := range rows {
		out[i] = *model.ToDomain()
	}
	return out, nil
}

func loadRow(tx *gorm.DB, table string, id uuid.UUID) (map[string]any, error) {
	row := map[string]any{}
	if err := tx.Table(table).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, content.ErrContentNotFound
		}
		return nil, err
	}
	return row, nil
}

// normalizeRow keeps JSON columns as JSON instead of base64 bytes
func normalizeRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			if json.Valid(b) {
				out[k] = json.RawMessage(b)
			} else {
				out[k] = string(b)
			}
			continue
		}
		out[k] = v
	}
	return out
}

// truthy reads a boolean column across drivers
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int:
		return b != 0
	case []byte:
		return string(b) == "1" || string(b) == "true"
	case string:
		return b == "1" || b == "true"
	}
	return false
}

var _ content.ArchiveRepository = (*GormArchiveRepository)(nil)
