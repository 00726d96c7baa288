package content

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
	"go.uber.org/zap"
)

// ArchiveService archives and restores products and case studies
type ArchiveService struct {
	repo   content.ArchiveRepository
	logger *zap.Logger
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(repo content.ArchiveRepository, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{repo: repo, logger: logger}
}

// Archive snapshots the row and hides it
func (s *ArchiveService) Archive(ctx context.Context, req ArchiveRequest, by string) (*SnapshotResponse, error) {
	t, err := storedType(req.ContentType)
	if err != nil {
		return nil, err
	}
	snap, err := s.repo.Archive(ctx, t, req.ContentID, req.Reason, by)
	if err != nil {
		return nil, err
	}
	s.logger.Info("content archived",
		zap.String("content_type", string(t)),
		zap.String("content_id", req.ContentID.String()),
		zap.String("by", by),
	)
	resp := toSnapshotResponse(snap)
	return &resp, nil
}

// Restore brings an archived row back
func (s *ArchiveService) Restore(ctx context.Context, contentType string, id uuid.UUID, by string) (*SnapshotResponse, error) {
	t, err := storedType(contentType)
	if err != nil {
		return nil, err
	}
	snap, err := s.repo.Restore(ctx, t, id, by)
	if err != nil {
		return nil, err
	}
	s.logger.Info("content restored", zap.String("content_type", string(t)), zap.String("content_id", id.String()))
	resp := toSnapshotResponse(snap)
	return &resp, nil
}

// List returns archived snapshots, optionally of one type
func (s *ArchiveService) List(ctx context.Context, contentType string) ([]SnapshotResponse, error) {
	t := content.Type(contentType)
	if contentType != "" && !t.IsValid() {
		return nil, content.ErrInvalidType
	}
	snaps, err := s.repo.List(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]SnapshotResponse, len(snaps))
	for i := range snaps {
		out[i] = toSnapshotResponse(&snaps[i])
	}
	return out, nil
}

func storedType(raw string) (content.Type, error) {
	t := content.Type(raw)
	if !t.IsValid() {
		return "", content.ErrInvalidType
	}
	if !t.Stored() {
		return "", content.ErrUnsupportedType
	}
	return t, nil
}

func toSnapshotResponse(s *content.Snapshot) SnapshotResponse {
	var data any
	if len(s.Data) > 0 {
		if err := json.Unmarshal(s.Data, &data); err != nil {
			data = string(s.Data)
		}
	}
	return SnapshotResponse{
		ID:          s.ID,
		ContentType: s.ContentType,
		ContentID:   s.ContentID,
		Data:        data,
		Reason:      s.Reason,
		ArchivedBy:  s.ArchivedBy,
		ArchivedAt:  s.ArchivedAt,
		Restored:    s.Restored,
		RestoredAt:  s.RestoredAt,
		RestoredBy:  s.RestoredBy,
	}
}
