package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
)

// CaseStudyRequest creates or replaces a case study
type CaseStudyRequest struct {
	DogName         string   `json:"dog_name"`
	Breed           string   `json:"breed"`
	Age             float64  `json:"age"`
	Weight          float64  `json:"weight"`
	Sex             string   `json:"sex"`
	OwnerName       string   `json:"owner_name"`
	Location        string   `json:"location"`
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	HealthIssues    []string `json:"health_issues"`
	Symptoms        []string `json:"symptoms"`
	Diagnosis       string   `json:"diagnosis"`
	ProblemDuration string   `json:"problem_duration"`
	TimeToResults   string   `json:"time_to_results"`
	ProductsUsed    []string `json:"products_used"`
	ServicesUsed    []string `json:"services_used"`
	ResultsAchieved []string `json:"results_achieved"`
	FullStory       string   `json:"full_story"`
	OwnerQuote      string   `json:"owner_quote"`
	ExpertNotes     string   `json:"expert_notes"`
	BeforePhotos    []string `json:"before_photos"`
	AfterPhotos     []string `json:"after_photos"`
	HeroImage       string   `json:"hero_image"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Featured        bool     `json:"featured"`
	Published       bool     `json:"published"`
	SEOTitle        string   `json:"seo_title"`
	SEODescription  string   `json:"seo_description"`
}

func (r CaseStudyRequest) applyTo(c *content.CaseStudy) {
	c.DogName = r.DogName
	c.Breed = r.Breed
	c.Age = r.Age
	c.Weight = r.Weight
	c.Sex = r.Sex
	c.OwnerName = r.OwnerName
	c.Location = r.Location
	c.Title = r.Title
	c.Summary = r.Summary
	c.HealthIssues = r.HealthIssues
	c.Symptoms = r.Symptoms
	c.Diagnosis = r.Diagnosis
	c.ProblemDuration = r.ProblemDuration
	c.TimeToResults = r.TimeToResults
	c.ProductsUsed = r.ProductsUsed
	c.ServicesUsed = r.ServicesUsed
	c.ResultsAchieved = r.ResultsAchieved
	c.FullStory = r.FullStory
	c.OwnerQuote = r.OwnerQuote
	c.ExpertNotes = r.ExpertNotes
	c.BeforePhotos = r.BeforePhotos
	c.AfterPhotos = r.AfterPhotos
	c.HeroImage = r.HeroImage
	c.Category = r.Category
	c.Tags = r.Tags
	c.Featured = r.Featured
	c.SEOTitle = r.SEOTitle
	c.SEODescription = r.SEODescription
}

// CaseStudyFilter narrows the admin list. Status is published, draft or all.
type CaseStudyFilter struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// CaseStudyResponse is the case study view
type CaseStudyResponse struct {
	ID              uuid.UUID  `json:"id"`
	Slug            string     `json:"slug"`
	Status          string     `json:"status"`
	DogName         string     `json:"dog_name"`
	Breed           string     `json:"breed"`
	Age             float64    `json:"age"`
	Weight          float64    `json:"weight"`
	Sex             string     `json:"sex"`
	OwnerName       string     `json:"owner_name"`
	Location        string     `json:"location"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	HealthIssues    []string   `json:"health_issues"`
	Symptoms        []string   `json:"symptoms"`
	Diagnosis       string     `json:"diagnosis,omitempty"`
	ProblemDuration string     `json:"problem_duration,omitempty"`
	TimeToResults   string     `json:"time_to_results,omitempty"`
	ProductsUsed    []string   `json:"products_used"`
	ServicesUsed    []string   `json:"services_used"`
	ResultsAchieved []string   `json:"results_achieved"`
	FullStory       string     `json:"full_story"`
	OwnerQuote      string     `json:"owner_quote"`
	ExpertNotes     string     `json:"expert_notes,omitempty"`
	BeforePhotos    []string   `json:"before_photos"`
	AfterPhotos     []string   `json:"after_photos"`
	HeroImage       string     `json:"hero_image,omitempty"`
	Category        string     `json:"category,omitempty"`
	Tags            []string   `json:"tags"`
	Featured        bool       `json:"featured"`
	Published       bool       `json:"published"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	SEOTitle        string     `json:"seo_title,omitempty"`
	SEODescription  string     `json:"seo_description,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToCaseStudyResponse maps a case study
func ToCaseStudyResponse(c *content.CaseStudy) CaseStudyResponse {
	return CaseStudyResponse{
		ID:              c.ID,
		Slug:            c.Slug,
		Status:          c.Status(),
		DogName:         c.DogName,
		Breed:           c.Breed,
		Age:             c.Age,
		Weight:          c.Weight,
		Sex:             c.Sex,
		OwnerName:       c.OwnerName,
		Location:        c.Location,
		Title:           c.Title,
		Summary:         c.Summary,
		HealthIssues:    c.HealthIssues,
		Symptoms:        c.Symptoms,
		Diagnosis:       c.Diagnosis,
		ProblemDuration: c.ProblemDuration,
		TimeToResults:   c.TimeToResults,
		ProductsUsed:    c.ProductsUsed,
		ServicesUsed:    c.ServicesUsed,
		ResultsAchieved: c.ResultsAchieved,
		FullStory:       c.FullStory,
		OwnerQuote:      c.OwnerQuote,
		ExpertNotes:     c.ExpertNotes,
		BeforePhotos:    c.BeforePhotos,
		AfterPhotos:     c.AfterPhotos,
		HeroImage:       c.HeroImage,
		Category:        c.Category,
		Tags:            c.Tags,
		Featured:        c.Featured,
		Published:       c.Published,
		PublishedAt:     c.PublishedAt,
		SEOTitle:        c.SEOTitle,
		SEODescription:  c.SEODescription,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ArchiveRequest archives or restores one row
type ArchiveRequest struct {
	ContentType string    `json:"content_type" binding:"required"`
	ContentID   uuid.UUID `json:"content_id" binding:"required"`
	Reason      string    `json:"reason"`
}

// SnapshotResponse is an archived content record
type SnapshotResponse struct {
	ID          uuid.UUID    `json:"id"`
	ContentType content.Type `json:"content_type"`
	ContentID   uuid.UUID    `json:"content_id"`
	Data        any          `json:"data"`
	Reason      string       `json:"reason,omitempty"`
	ArchivedBy  string       `json:"archived_by"`
	ArchivedAt  time.Time    `json:"archived_at"`
	Restored    bool         `json:"restored"`
	RestoredAt  *time.Time   `json:"restored_at,omitempty"`
	RestoredBy  string       `json:"restored_by,omitempty"`
}
