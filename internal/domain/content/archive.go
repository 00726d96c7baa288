package content

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// Type is a kind of archivable content
type Type string

const (
	TypeBlogPost    Type = "blog_post"
	TypeProduct     Type = "product"
	TypeVideo       Type = "video"
	TypeTestimonial Type = "testimonial"
	TypeCaseStudy   Type = "case_study"
	TypeEvent       Type = "event"
)

// AllTypes lists every content type the archive understands
var AllTypes = []Type{TypeBlogPost, TypeProduct, TypeVideo, TypeTestimonial, TypeCaseStudy, TypeEvent}

// IsValid returns true for a known content type
func (t Type) IsValid() bool {
	for _, v := range AllTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Stored reports whether rows of this type live in this service
func (t Type) Stored() bool {
	return t == TypeProduct || t == TypeCaseStudy
}

// Errors
var (
	ErrInvalidType      = shared.NewDomainError("INVALID_INPUT", "Invalid content type")
	ErrUnsupportedType  = shared.NewDomainError("INVALID_INPUT", "unsupported content type")
	ErrAlreadyArchived  = shared.NewDomainError("ALREADY_ARCHIVED", "Content is already archived")
	ErrNotArchived      = shared.NewDomainError("INVALID_STATE", "Content is not archived")
	ErrContentNotFound  = shared.NewDomainError("NOT_FOUND", "Content not found")
	ErrSnapshotNotFound = shared.NewDomainError("NOT_FOUND", "Archived content not found")
)

// Snapshot is a JSON copy of a row taken when it was archived
type Snapshot struct {
	ID          uuid.UUID
	ContentType Type
	ContentID   uuid.UUID
	Data        []byte
	Reason      string
	ArchivedBy  string
	ArchivedAt  time.Time
	Restored    bool
	RestoredAt  *time.Time
	RestoredBy  string
}

// NewSnapshot captures data for the given row
func NewSnapshot(t Type, id uuid.UUID, data []byte, reason, by string) *Snapshot {
	return &Snapshot{
		ID:          uuid.New(),
		ContentType: t,
		ContentID:   id,
		Data:        data,
		Reason:      reason,
		ArchivedBy:  by,
		ArchivedAt:  time.Now(),
	}
}

// ArchiveRepository moves rows in and out of the archive. Archive and
// Restore each run in a single transaction.
type ArchiveRepository interface {
	// Archive snapshots the row and sets archived=true. Returns
	// ErrContentNotFound or ErrAlreadyArchived.
	Archive(ctx context.Context, t Type, id uuid.UUID, reason, by string) (*Snapshot, error)
	// Restore clears archived and marks the latest open snapshot restored
	Restore(ctx context.Context, t Type, id uuid.UUID, by string) (*Snapshot, error)
	// List returns snapshots, newest first. An empty type lists all.
	List(ctx context.Context, t Type) ([]Snapshot, error)
}

// Upload is a stored image
type Upload struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
