package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// Errors
var (
	ErrCaseStudyNotFound = shared.NewDomainError("NOT_FOUND", "Case study not found")
)

// CaseStudy is a published customer success story
type CaseStudy struct {
	shared.BaseEntity
	Slug            string
	DogName         string
	Breed           string
	Age             float64
	Weight          float64
	Sex             string
	OwnerName       string
	Location        string
	Title           string
	Summary         string
	HealthIssues    []string
	Symptoms        []string
	Diagnosis       string
	ProblemDuration string
	TimeToResults   string
	ProductsUsed    []string
	ServicesUsed    []string
	ResultsAchieved []string
	FullStory       string
	OwnerQuote      string
	ExpertNotes     string
	BeforePhotos    []string
	AfterPhotos     []string
	HeroImage       string
	Category        string
	Tags            []string
	Featured        bool
	Published       bool
	PublishedAt     *time.Time
	Archived        bool
	SEOTitle        string
	SEODescription  string
}

// Validate returns an error naming the first missing required field
func (c *CaseStudy) Validate() error {
	required := []struct {
		name  string
		empty bool
	}{
		{"dog_name", strings.TrimSpace(c.DogName) == ""},
		{"breed", strings.TrimSpace(c.Breed) == ""},
		{"age", c.Age <= 0},
		{"weight", c.Weight <= 0},
		{"sex", strings.TrimSpace(c.Sex) == ""},
		{"owner_name", strings.TrimSpace(c.OwnerName) == ""},
		{"location", strings.TrimSpace(c.Location) == ""},
		{"title", strings.TrimSpace(c.Title) == ""},
		{"summary", strings.TrimSpace(c.Summary) == ""},
		{"full_story", strings.TrimSpace(c.FullStory) == ""},
		{"owner_quote", strings.TrimSpace(c.OwnerQuote) == ""},
	}
	for _, f := range required {
		if f.empty {
			return shared.NewDomainError("INVALID_INPUT", "Missing required field: "+f.name)
		}
	}
	return nil
}

// SetPublished flips the status, stamping the first publication time
func (c *CaseStudy) SetPublished(published bool, now time.Time) {
	if published && c.PublishedAt == nil {
		c.PublishedAt = &now
	}
	c.Published = published
	c.Touch()
}

// Status is "published" or "draft"
func (c *CaseStudy) Status() string {
	if c.Published {
		return "published"
	}
	return "draft"
}

// UniqueSlug derives a slug from base and appends -1, -2, … until taken
// reports it free.
func UniqueSlug(ctx context.Context, base string, taken func(ctx context.Context, slug string) (bool, error)) (string, error) {
	slug := catalog.Slugify(base)
	if slug == "" {
		return "", shared.NewDomainError("INVALID_INPUT", "Cannot derive a slug from an empty title")
	}
	candidate := slug
	for n := 1; ; n++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
}

// CaseStudyRepository persists case studies
type CaseStudyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CaseStudy, error)
	FindBySlug(ctx context.Context, slug string) (*CaseStudy, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// FindAll lists case studies. Filters supports "published" (bool).
	FindAll(ctx context.Context, filter shared.Filter) ([]CaseStudy, int64, error)
	Save(ctx context.Context, c *CaseStudy) error
	Delete(ctx context.Context, id uuid.UUID) error
}
