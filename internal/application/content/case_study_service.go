package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultCaseStudyLimit is the admin page size when none is given
const DefaultCaseStudyLimit = 50

// CaseStudyService manages case studies for the admin CMS
type CaseStudyService struct {
	repo   content.CaseStudyRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewCaseStudyService creates a new CaseStudyService
func NewCaseStudyService(repo content.CaseStudyRepository, logger *zap.Logger) *CaseStudyService {
	return &CaseStudyService{repo: repo, logger: logger, now: time.Now}
}

// List returns a page of case studies
func (s *CaseStudyService) List(ctx context.Context, f CaseStudyFilter) ([]CaseStudyResponse, int64, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = DefaultCaseStudyLimit
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.Limit > 0 {
		filter.PageSize = f.Limit
	}
	filter.OrderBy = "created_at"
	filter.OrderDir = "desc"
	switch strings.ToLower(f.Status) {
	case "", "all":
	case "published":
		filter.Filters["published"] = true
	case "draft":
		filter.Filters["published"] = false
	default:
		return nil, 0, shared.NewDomainError("INVALID_INPUT", "Status must be published, draft or all")
	}
	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CaseStudyResponse, len(items))
	for i := range items {
		out[i] = ToCaseStudyResponse(&items[i])
	}
	return out, total, nil
}

// Get returns one case study
func (s *CaseStudyService) Get(ctx context.Context, id uuid.UUID) (*CaseStudyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCaseStudyResponse(c)
	return &resp, nil
}

// Create adds a case study with a slug derived from its title
func (s *CaseStudyService) Create(ctx context.Context, req CaseStudyRequest) (*CaseStudyResponse, error) {
	c := &content.CaseStudy{BaseEntity: shared.NewBaseEntity()}
	req.applyTo(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	slug, err := content.UniqueSlug(ctx, c.Title, s.repo.SlugExists)
	if err != nil {
		return nil, err
	}
	c.Slug = slug
	c.SetPublished(req.Published, s.now())
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("case study created", zap.String("slug", c.Slug), zap.String("status", c.Status()))
	resp := ToCaseStudyResponse(c)
	return &resp, nil
}

// Update replaces a case study. The slug is kept.
func (s *CaseStudyService) Update(ctx context.Context, id uuid.UUID, req CaseStudyRequest) (*CaseStudyResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.applyTo(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.SetPublished(req.Published, s.now())
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCaseStudyResponse(c)
	return &resp, nil
}

// Delete removes a case study
func (s *CaseStudyService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
