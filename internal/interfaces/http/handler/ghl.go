package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	integrationapp "github.com/wagginmeals/backend/internal/application/integration"
	"github.com/wagginmeals/backend/internal/domain/integration"
)

// ContactCenter forwards storefront leads to the CRM
type ContactCenter interface {
	SubmitContactForm(ctx context.Context, req integrationapp.ContactFormRequest) (*integrationapp.ContactFormResponse, error)
	Book(ctx context.Context, req integrationapp.BookingRequest) (*integration.BookingResult, error)
}

// GHLHandler handles the contact form and consultation booking
type GHLHandler struct {
	BaseHandler
	service ContactCenter
}

// NewGHLHandler creates a new GoHighLevel handler
func NewGHLHandler(service ContactCenter) *GHLHandler {
	return &GHLHandler{service: service}
}

// Contact godoc
//
//	@ID			ghlContact
//	@Summary	Submit the contact form to the CRM
//	@Tags		crm
//	@Accept		json
//	@Produce	json
//	@Param		request	body		integrationapp.ContactFormRequest	true	"Contact form"
//	@Success	200		{object}	APIResponse[integrationapp.ContactFormResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/ghl/contact [post]
func (h *GHLHandler) Contact(c *gin.Context) {
	var req integrationapp.ContactFormRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.SubmitContactForm(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Booking godoc
//
//	@ID			ghlBooking
//	@Summary	Book a consultation call
//	@Tags		crm
//	@Accept		json
//	@Produce	json
//	@Param		request	body		integrationapp.BookingRequest	true	"Booking"
//	@Success	200		{object}	APIResponse[integration.BookingResult]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/ghl/booking [post]
func (h *GHLHandler) Booking(c *gin.Context) {
	var req integrationapp.BookingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
