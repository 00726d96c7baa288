package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	promotionapp "github.com/wagginmeals/backend/internal/application/promotion"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// DiscountManager is the discount code use case surface
type DiscountManager interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*promotionapp.ValidateResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]promotionapp.DiscountResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*promotionapp.DiscountResponse, error)
	Create(ctx context.Context, req promotionapp.DiscountRequest) (*promotionapp.DiscountResponse, error)
	Update(ctx context.Context, id uuid.UUID, req promotionapp.DiscountRequest) (*promotionapp.DiscountResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DiscountHandler handles discount codes
type DiscountHandler struct {
	BaseHandler
	service DiscountManager
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(service DiscountManager) *DiscountHandler {
	return &DiscountHandler{service: service}
}

// Validate godoc
//
//	@ID			validateDiscount
//	@Summary	Price a discount code against a subtotal
//	@Tags		discounts
//	@Accept		json
//	@Produce	json
//	@Param		request	body		promotionapp.ValidateRequest	true	"Code and subtotal"
//	@Success	200		{object}	APIResponse[promotionapp.ValidateResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/discounts/validate [post]
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req promotionapp.ValidateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Validate(c.Request.Context(), req.Code, req.Subtotal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List godoc
//
//	@ID			adminListDiscounts
//	@Summary	List discount codes
//	@Tags		admin-discounts
//	@Produce	json
//	@Param		search		query		string	false	"Code search"
//	@Param		active		query		bool	false	"Active only"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]promotionapp.DiscountResponse]
//	@Router		/admin/discounts [get]
func (h *DiscountHandler) List(c *gin.Context) {
	f := pageParams(c)
	switch c.Query("active") {
	case "true":
		f.Filters["active"] = true
	case "false":
		f.Filters["active"] = false
	}
	discounts, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, discounts, total, f.Page, f.PageSize)
}

// Get godoc
//
//	@ID			adminGetDiscount
//	@Summary	Get a discount code
//	@Tags		admin-discounts
//	@Produce	json
//	@Param		id	path		string	true	"Discount ID"
//	@Success	200	{object}	APIResponse[promotionapp.DiscountResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/discounts/{id} [get]
func (h *DiscountHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Create godoc
//
//	@ID			adminCreateDiscount
//	@Summary	Create a discount code
//	@Tags		admin-discounts
//	@Accept		json
//	@Produce	json
//	@Param		request	body		promotionapp.DiscountRequest	true	"Discount"
//	@Success	201		{object}	APIResponse[promotionapp.DiscountResponse]
//	@Failure	409		{object}	ErrorResponse
//	@Router		/admin/discounts [post]
func (h *DiscountHandler) Create(c *gin.Context) {
	var req promotionapp.DiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	d, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, d)
}

// Update godoc
//
//	@ID			adminUpdateDiscount
//	@Summary	Update a discount code
//	@Tags		admin-discounts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Discount ID"
//	@Param		request	body		promotionapp.DiscountRequest	true	"Discount"
//	@Success	200		{object}	APIResponse[promotionapp.DiscountResponse]
//	@Router		/admin/discounts/{id} [put]
func (h *DiscountHandler) Update(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req promotionapp.DiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	d, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Delete godoc
//
//	@ID			adminDeleteDiscount
//	@Summary	Delete a discount code
//	@Tags		admin-discounts
//	@Produce	json
//	@Param		id	path		string	true	"Discount ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Router		/admin/discounts/{id} [delete]
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Discount deleted"})
}
