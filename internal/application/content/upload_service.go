package content

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 5 << 20

// DefaultUploadFolder is used when the form names none
const DefaultUploadFolder = "uploads"

// UploadService stores admin images in object storage
type UploadService struct {
	storage integration.ObjectStorage
	logger  *zap.Logger
}

// NewUploadService creates a new UploadService
func NewUploadService(storage integration.ObjectStorage, logger *zap.Logger) *UploadService {
	return &UploadService{storage: storage, logger: logger}
}

// UploadImage validates and stores one image under <folder>/<uuid><ext>
func (s *UploadService) UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader, folder string) (*content.Upload, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Image storage is not configured")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, shared.NewDomainError("INVALID_INPUT", "Only image files are allowed")
	}
	if size > MaxImageSize {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("File too large. Maximum size is %dMB", MaxImageSize>>20))
	}
	key := fmt.Sprintf("%s/%s%s", cleanFolder(folder), uuid.New(), strings.ToLower(filepath.Ext(filename)))
	if err := s.storage.Upload(ctx, key, body, size, contentType); err != nil {
		s.logger.Error("image upload failed", zap.String("key", key), zap.Error(err))
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to upload image", err)
	}
	return &content.Upload{
		Key:         key,
		URL:         s.storage.PublicURL(key),
		ContentType: contentType,
		Size:        size,
	}, nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" || strings.Contains(folder, "..") {
		return DefaultUploadFolder
	}
	return folder
}
