package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	contentapp "github.com/wagginmeals/backend/internal/application/content"
	"github.com/wagginmeals/backend/internal/domain/content"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
)

// CaseStudyEditor is the case study use case surface
type CaseStudyEditor interface {
	List(ctx context.Context, f contentapp.CaseStudyFilter) ([]contentapp.CaseStudyResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*contentapp.CaseStudyResponse, error)
	Create(ctx context.Context, req contentapp.CaseStudyRequest) (*contentapp.CaseStudyResponse, error)
	Update(ctx context.Context, id uuid.UUID, req contentapp.CaseStudyRequest) (*contentapp.CaseStudyResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Archiver snapshots and restores content
type Archiver interface {
	Archive(ctx context.Context, req contentapp.ArchiveRequest, by string) (*contentapp.SnapshotResponse, error)
	Restore(ctx context.Context, contentType string, id uuid.UUID, by string) (*contentapp.SnapshotResponse, error)
	List(ctx context.Context, contentType string) ([]contentapp.SnapshotResponse, error)
}

// ImageUploader stores images in object storage
type ImageUploader interface {
	UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader, folder string) (*content.Upload, error)
}

// ContentHandler handles the admin content tools
type ContentHandler struct {
	BaseHandler
	caseStudies CaseStudyEditor
	archive     Archiver
	uploads     ImageUploader
}

// NewContentHandler creates a new content handler
func NewContentHandler(caseStudies CaseStudyEditor, archive Archiver, uploads ImageUploader) *ContentHandler {
	return &ContentHandler{caseStudies: caseStudies, archive: archive, uploads: uploads}
}

// RestoreRequest names the archived row to bring back
type RestoreRequest struct {
	ContentType string    `json:"content_type" binding:"required"`
	ContentID   uuid.UUID `json:"content_id" binding:"required"`
}

// ListCaseStudies godoc
//
//	@ID			adminListCaseStudies
//	@Summary	List case studies
//	@Tags		admin-content
//	@Produce	json
//	@Param		status	query		string	false	"published, draft or all"
//	@Param		page	query		int		false	"Page"
//	@Param		limit	query		int		false	"Page size"
//	@Success	200		{object}	APIResponse[[]contentapp.CaseStudyResponse]
//	@Router		/admin/case-studies [get]
func (h *ContentHandler) ListCaseStudies(c *gin.Context) {
	var f contentapp.CaseStudyFilter
	if !h.bindQuery(c, &f) {
		return
	}
	h.listCaseStudies(c, f)
}

// PublishedCaseStudies godoc
//
//	@ID			listPublishedCaseStudies
//	@Summary	List published case studies
//	@Tags		content
//	@Produce	json
//	@Param		page	query		int	false	"Page"
//	@Param		limit	query		int	false	"Page size"
//	@Success	200		{object}	APIResponse[[]contentapp.CaseStudyResponse]
//	@Router		/case-studies [get]
func (h *ContentHandler) PublishedCaseStudies(c *gin.Context) {
	var f contentapp.CaseStudyFilter
	if !h.bindQuery(c, &f) {
		return
	}
	f.Status = "published"
	h.listCaseStudies(c, f)
}

func (h *ContentHandler) listCaseStudies(c *gin.Context, f contentapp.CaseStudyFilter) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	list, total, err := h.caseStudies.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, f.Page, f.Limit)
}

// GetCaseStudy godoc
//
//	@ID			adminGetCaseStudy
//	@Summary	Get a case study
//	@Tags		admin-content
//	@Produce	json
//	@Param		id	path		string	true	"Case study ID"
//	@Success	200	{object}	APIResponse[contentapp.CaseStudyResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/case-studies/{id} [get]
func (h *ContentHandler) GetCaseStudy(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	cs, err := h.caseStudies.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cs)
}

// CreateCaseStudy godoc
//
//	@ID			adminCreateCaseStudy
//	@Summary	Create a case study
//	@Tags		admin-content
//	@Accept		json
//	@Produce	json
//	@Param		request	body		contentapp.CaseStudyRequest	true	"Case study"
//	@Success	201		{object}	APIResponse[contentapp.CaseStudyResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/case-studies [post]
func (h *ContentHandler) CreateCaseStudy(c *gin.Context) {
	var req contentapp.CaseStudyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cs, err := h.caseStudies.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cs)
}

// UpdateCaseStudy godoc
//
//	@ID			adminUpdateCaseStudy
//	@Summary	Update a case study
//	@Tags		admin-content
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Case study ID"
//	@Param		request	body		contentapp.CaseStudyRequest	true	"Case study"
//	@Success	200		{object}	APIResponse[contentapp.CaseStudyResponse]
//	@Router		/admin/case-studies/{id} [put]
func (h *ContentHandler) UpdateCaseStudy(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req contentapp.CaseStudyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cs, err := h.caseStudies.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cs)
}

// DeleteCaseStudy godoc
//
//	@ID			adminDeleteCaseStudy
//	@Summary	Delete a case study
//	@Tags		admin-content
//	@Produce	json
//	@Param		id	path		string	true	"Case study ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Router		/admin/case-studies/{id} [delete]
func (h *ContentHandler) DeleteCaseStudy(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.caseStudies.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Case study deleted"})
}

// Archive godoc
//
//	@ID			adminArchiveContent
//	@Summary	Archive a product or case study
//	@Tags		admin-content
//	@Accept		json
//	@Produce	json
//	@Param		request	body		contentapp.ArchiveRequest	true	"Content"
//	@Success	200		{object}	APIResponse[contentapp.SnapshotResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/archive [post]
func (h *ContentHandler) Archive(c *gin.Context) {
	var req contentapp.ArchiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	snap, err := h.archive.Archive(c.Request.Context(), req, actorName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snap)
}

// Restore godoc
//
//	@ID			adminRestoreContent
//	@Summary	Restore archived content
//	@Tags		admin-content
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RestoreRequest	true	"Content"
//	@Success	200		{object}	APIResponse[contentapp.SnapshotResponse]
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/archive/restore [post]
func (h *ContentHandler) Restore(c *gin.Context) {
	var req RestoreRequest
	if !h.bindJSON(c, &req) {
		return
	}
	snap, err := h.archive.Restore(c.Request.Context(), req.ContentType, req.ContentID, actorName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snap)
}

// ListArchived godoc
//
//	@ID			adminListArchived
//	@Summary	List archived content snapshots
//	@Tags		admin-content
//	@Produce	json
//	@Param		type	query		string	false	"Content type"
//	@Success	200		{object}	APIResponse[[]contentapp.SnapshotResponse]
//	@Router		/admin/archive [get]
func (h *ContentHandler) ListArchived(c *gin.Context) {
	snaps, err := h.archive.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snaps)
}

// UploadImage godoc
//
//	@ID			adminUploadImage
//	@Summary	Upload an image to object storage
//	@Tags		admin-content
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		image	formData	file	true	"Image file"
//	@Param		folder	formData	string	false	"Target folder"
//	@Success	201		{object}	APIResponse[content.Upload]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	413		{object}	ErrorResponse
//	@Router		/admin/upload-image [post]
func (h *ContentHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, contentapp.MaxImageSize+(1<<20))
	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, dto.ErrCodeTooLarge, "File too large. Maximum size is 5MB")
			return
		}
		h.BadRequest(c, "No image file provided")
		return
	}
	if header.Size > contentapp.MaxImageSize {
		h.Error(c, dto.ErrCodeTooLarge, "File too large. Maximum size is 5MB")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	upload, err := h.uploads.UploadImage(
		c.Request.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
		c.PostForm("folder"),
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}
