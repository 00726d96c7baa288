package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/content"
	"gorm.io/datatypes"
)

// CaseStudyModel is the persistence model for case studies
type CaseStudyModel struct {
	BaseModel
	Slug            string  `gorm:"type:varchar(200);not null;uniqueIndex"`
	DogName         string  `gorm:"type:varchar(100);not null"`
	Breed           string  `gorm:"type:varchar(100)"`
	Age             float64 `gorm:"type:decimal(4,1)"`
	Weight          float64 `gorm:"type:decimal(6,1)"`
	Sex             string  `gorm:"type:varchar(20)"`
	OwnerName       string  `gorm:"type:varchar(100)"`
	Location        string  `gorm:"type:varchar(100)"`
	Title           string  `gorm:"type:varchar(255);not null"`
	Summary         string  `gorm:"type:text"`
	HealthIssues    datatypes.JSONSlice[string]
	Symptoms        datatypes.JSONSlice[string]
	Diagnosis       string `gorm:"type:text"`
	ProblemDuration string `gorm:"type:varchar(100)"`
	TimeToResults   string `gorm:"type:varchar(100)"`
	ProductsUsed    datatypes.JSONSlice[string]
	ServicesUsed    datatypes.JSONSlice[string]
	ResultsAchieved datatypes.JSONSlice[string]
	FullStory       string `gorm:"type:text"`
	OwnerQuote      string `gorm:"type:text"`
	ExpertNotes     string `gorm:"type:text"`
	BeforePhotos    datatypes.JSONSlice[string]
	AfterPhotos     datatypes.JSONSlice[string]
	HeroImage       string `gorm:"type:text"`
	Category        string `gorm:"type:varchar(100)"`
	Tags            datatypes.JSONSlice[string]
	Featured        bool `gorm:"not null;default:false"`
	Published       bool `gorm:"not null;default:false;index"`
	PublishedAt     *time.Time
	Archived        bool   `gorm:"not null;default:false;index"`
	SEOTitle        string `gorm:"column:seo_title;type:varchar(255)"`
	SEODescription  string `gorm:"column:seo_description;type:text"`
}

// TableName returns the table name for GORM
func (CaseStudyModel) TableName() string {
	return "case_studies"
}

// ToDomain converts the persistence model to a domain CaseStudy
func (m *CaseStudyModel) ToDomain() *content.CaseStudy {
	return &content.CaseStudy{
		BaseEntity:      m.BaseModel.ToDomain(),
		Slug:            m.Slug,
		DogName:         m.DogName,
		Breed:           m.Breed,
		Age:             m.Age,
		Weight:          m.Weight,
		Sex:             m.Sex,
		OwnerName:       m.OwnerName,
		Location:        m.Location,
		Title:           m.Title,
		Summary:         m.Summary,
		HealthIssues:    stringsFrom(m.HealthIssues),
		Symptoms:        stringsFrom(m.Symptoms),
		Diagnosis:       m.Diagnosis,
		ProblemDuration: m.ProblemDuration,
		TimeToResults:   m.TimeToResults,
		ProductsUsed:    stringsFrom(m.ProductsUsed),
		ServicesUsed:    stringsFrom(m.ServicesUsed),
		ResultsAchieved: stringsFrom(m.ResultsAchieved),
		FullStory:       m.FullStory,
		OwnerQuote:      m.OwnerQuote,
		ExpertNotes:     m.ExpertNotes,
		BeforePhotos:    stringsFrom(m.BeforePhotos),
		AfterPhotos:     stringsFrom(m.AfterPhotos),
		HeroImage:       m.HeroImage,
		Category:        m.Category,
		Tags:            stringsFrom(m.Tags),
		Featured:        m.Featured,
		Published:       m.Published,
		PublishedAt:     m.PublishedAt,
		Archived:        m.Archived,
		SEOTitle:        m.SEOTitle,
		SEODescription:  m.SEODescription,
	}
}

// CaseStudyModelFromDomain converts a domain CaseStudy to the persistence model
func CaseStudyModelFromDomain(c *content.CaseStudy) *CaseStudyModel {
	m := &CaseStudyModel{
		Slug:            c.Slug,
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
		Archived:        c.Archived,
		SEOTitle:        c.SEOTitle,
		SEODescription:  c.SEODescription,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// ArchiveSnapshotModel is a JSON copy of a row taken when it was archived
type ArchiveSnapshotModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ContentType string         `gorm:"type:varchar(30);not null;index:idx_archive_content"`
	ContentID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_archive_content"`
	Data        datatypes.JSON `gorm:"not null"`
	Reason      string         `gorm:"type:text"`
	ArchivedBy  string         `gorm:"type:varchar(100)"`
	ArchivedAt  time.Time      `gorm:"not null;index"`
	Restored    bool           `gorm:"not null;default:false"`
	RestoredAt  *time.Time
	RestoredBy  string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ArchiveSnapshotModel) TableName() string {
	return "archived_content"
}

// ToDomain converts the row to a domain Snapshot
func (m *ArchiveSnapshotModel) ToDomain() *content.Snapshot {
	return &content.Snapshot{
		ID:          m.ID,
		ContentType: content.Type(m.ContentType),
		ContentID:   m.ContentID,
		Data:        []byte(m.Data),
		Reason:      m.Reason,
		ArchivedBy:  m.ArchivedBy,
		ArchivedAt:  m.ArchivedAt,
		Restored:    m.Restored,
		RestoredAt:  m.RestoredAt,
		RestoredBy:  m.RestoredBy,
	}
}

// ArchiveSnapshotModelFromDomain converts a domain Snapshot to the row
func ArchiveSnapshotModelFromDomain(s *content.Snapshot) *ArchiveSnapshotModel {
	return &ArchiveSnapshotModel{
		ID:          s.ID,
		ContentType: string(s.ContentType),
		ContentID:   s.ContentID,
		Data:        datatypes.JSON(s.Data),
		Reason:      s.Reason,
		ArchivedBy:  s.ArchivedBy,
		ArchivedAt:  s.ArchivedAt,
		Restored:    s.Restored,
		RestoredAt:  s.RestoredAt,
		RestoredBy:  s.RestoredBy,
	}
}
