package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	marketingapp "github.com/wagginmeals/backend/internal/application/marketing"
)

// NewsletterSignup handles newsletter subscribers
type NewsletterSignup interface {
	Subscribe(ctx context.Context, req marketingapp.SubscribeRequest) (*marketingapp.SubscribeResponse, error)
	List(ctx context.Context, f marketingapp.ListFilter) ([]marketingapp.SubscriberResponse, int64, error)
}

// NewsletterHandler handles newsletter signups
type NewsletterHandler struct {
	BaseHandler
	service NewsletterSignup
}

// NewNewsletterHandler creates a new newsletter handler
func NewNewsletterHandler(service NewsletterSignup) *NewsletterHandler {
	return &NewsletterHandler{service: service}
}

// Subscribe godoc
//
//	@ID			newsletterSubscribe
//	@Summary	Subscribe to the newsletter
//	@Tags		newsletter
//	@Accept		json
//	@Produce	json
//	@Param		request	body		marketingapp.SubscribeRequest	true	"Signup"
//	@Success	200		{object}	APIResponse[marketingapp.SubscribeResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/newsletter/subscribe [post]
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req marketingapp.SubscribeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Subscribe(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID			adminListSubscribers
//	@Summary	List newsletter subscribers
//	@Tags		admin-newsletter
//	@Produce	json
//	@Param		status		query		string	false	"active or unsubscribed"
//	@Param		source		query		string	false	"Signup source"
//	@Param		search		query		string	false	"Email or name"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]marketingapp.SubscriberResponse]
//	@Router		/admin/newsletter [get]
func (h *NewsletterHandler) List(c *gin.Context) {
	var f marketingapp.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 50
	}
	subs, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, subs, total, f.Page, f.PageSize)
}
