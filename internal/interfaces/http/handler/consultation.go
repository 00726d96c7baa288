package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	consultationapp "github.com/wagginmeals/backend/internal/application/consultation"
	"github.com/wagginmeals/backend/internal/interfaces/http/middleware"
)

// ConsultationDesk is the paid consultation use case surface
type ConsultationDesk interface {
	SubmitQuestionnaire(ctx context.Context, req consultationapp.QuestionnaireRequest, customerID *uuid.UUID) (*consultationapp.ConsultationResponse, error)
	CompletePayment(ctx context.Context, req consultationapp.CompletePaymentRequest) (*consultationapp.ConsultationResponse, error)
	List(ctx context.Context, f consultationapp.ListFilter) ([]consultationapp.ConsultationResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*consultationapp.ConsultationResponse, error)
	Update(ctx context.Context, id uuid.UUID, req consultationapp.UpdateRequest) (*consultationapp.ConsultationResponse, error)
}

// ConsultationHandler handles the nutrition consultation flow
type ConsultationHandler struct {
	BaseHandler
	service ConsultationDesk
}

// NewConsultationHandler creates a new consultation handler
func NewConsultationHandler(service ConsultationDesk) *ConsultationHandler {
	return &ConsultationHandler{service: service}
}

// SubmitQuestionnaire godoc
//
//	@ID			submitQuestionnaire
//	@Summary	Submit the consultation questionnaire
//	@Tags		consultations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		consultationapp.QuestionnaireRequest	true	"Questionnaire"
//	@Success	201		{object}	APIResponse[consultationapp.ConsultationResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/consultations/questionnaire [post]
func (h *ConsultationHandler) SubmitQuestionnaire(c *gin.Context) {
	var req consultationapp.QuestionnaireRequest
	if !h.bindJSON(c, &req) {
		return
	}
	var customerID *uuid.UUID
	if id, ok := middleware.GetCustomerID(c); ok {
		customerID = &id
	}
	resp, err := h.service.SubmitQuestionnaire(c.Request.Context(), req, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CompletePayment godoc
//
//	@ID			completeConsultationPayment
//	@Summary	Pay the consultation fee
//	@Tags		consultations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		consultationapp.CompletePaymentRequest	true	"Payment"
//	@Success	200		{object}	APIResponse[consultationapp.ConsultationResponse]
//	@Failure	402		{object}	ErrorResponse
//	@Router		/consultations/complete-payment [post]
func (h *ConsultationHandler) CompletePayment(c *gin.Context) {
	var req consultationapp.CompletePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.CompletePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID			adminListConsultations
//	@Summary	List consultations
//	@Tags		admin-consultations
//	@Produce	json
//	@Param		status		query		string	false	"Status"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]consultationapp.ConsultationResponse]
//	@Router		/admin/consultations [get]
func (h *ConsultationHandler) List(c *gin.Context) {
	var f consultationapp.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	list, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, list, total, f.Page, f.PageSize)
}

// Get godoc
//
//	@ID			adminGetConsultation
//	@Summary	Get a consultation
//	@Tags		admin-consultations
//	@Produce	json
//	@Param		id	path		string	true	"Consultation ID"
//	@Success	200	{object}	APIResponse[consultationapp.ConsultationResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/consultations/{id} [get]
func (h *ConsultationHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
//
//	@ID			adminUpdateConsultation
//	@Summary	Update consultation status and notes
//	@Tags		admin-consultations
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Consultation ID"
//	@Param		request	body		consultationapp.UpdateRequest	true	"Changes"
//	@Success	200		{object}	APIResponse[consultationapp.ConsultationResponse]
//	@Router		/admin/consultations/{id} [patch]
func (h *ConsultationHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req consultationapp.UpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
