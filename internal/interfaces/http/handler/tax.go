package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	taxapp "github.com/wagginmeals/backend/internal/application/tax"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// TaxCalculator is the tax use case surface
type TaxCalculator interface {
	Calculate(ctx context.Context, req taxapp.CalculateRequest) (*taxapp.CalculateResponse, error)
	Breakdown(ctx context.Context, req taxapp.BreakdownRequest) (*taxapp.BreakdownResponse, error)
	ListRates(ctx context.Context, filter shared.Filter) ([]taxapp.RateResponse, int64, error)
	CreateRate(ctx context.Context, req taxapp.RateRequest) (*taxapp.RateResponse, error)
	UpdateRate(ctx context.Context, id uuid.UUID, req taxapp.RateRequest) (*taxapp.RateResponse, error)
	DeleteRate(ctx context.Context, id uuid.UUID) error
	ImportRates(ctx context.Context, rows []taxapp.RateRequest) (*taxapp.ImportResult, error)
}

// TaxHandler handles sales tax lookups and the rate table
type TaxHandler struct {
	BaseHandler
	service TaxCalculator
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(service TaxCalculator) *TaxHandler {
	return &TaxHandler{service: service}
}

// ImportRatesRequest is a bulk rate upload
type ImportRatesRequest struct {
	Rates []taxapp.RateRequest `json:"rates" binding:"required,min=1"`
}

// Calculate godoc
//
//	@ID			calculateTax
//	@Summary	Calculate sales tax on an amount
//	@Tags		tax
//	@Accept		json
//	@Produce	json
//	@Param		request	body		taxapp.CalculateRequest	true	"Amount and location"
//	@Success	200		{object}	APIResponse[taxapp.CalculateResponse]
//	@Router		/tax/calculate [post]
func (h *TaxHandler) Calculate(c *gin.Context) {
	var req taxapp.CalculateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Calculate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Breakdown godoc
//
//	@ID			taxBreakdown
//	@Summary	Itemized tax for a cart
//	@Tags		tax
//	@Accept		json
//	@Produce	json
//	@Param		request	body		taxapp.BreakdownRequest	true	"Cart"
//	@Success	200		{object}	APIResponse[taxapp.BreakdownResponse]
//	@Router		/tax/breakdown [post]
func (h *TaxHandler) Breakdown(c *gin.Context) {
	var req taxapp.BreakdownRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Breakdown(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListRates godoc
//
//	@ID			listTaxRates
//	@Summary	List active tax rates
//	@Tags		tax
//	@Produce	json
//	@Param		state		query		string	false	"State code"
//	@Param		search		query		string	false	"Search"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]taxapp.RateResponse]
//	@Router		/tax/rates [get]
func (h *TaxHandler) ListRates(c *gin.Context) {
	f := pageParams(c)
	if state := c.Query("state"); state != "" {
		f.Filters["state_code"] = state
	}
	if c.Query("include_inactive") != "true" {
		f.Filters["active"] = true
	}
	rates, total, err := h.service.ListRates(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rates, total, f.Page, f.PageSize)
}

// CreateRate godoc
//
//	@ID			adminCreateTaxRate
//	@Summary	Create a tax rate
//	@Tags		admin-tax
//	@Accept		json
//	@Produce	json
//	@Param		request	body		taxapp.RateRequest	true	"Rate"
//	@Success	201		{object}	APIResponse[taxapp.RateResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/tax/rates [post]
func (h *TaxHandler) CreateRate(c *gin.Context) {
	var req taxapp.RateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rate, err := h.service.CreateRate(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}

// UpdateRate godoc
//
//	@ID			adminUpdateTaxRate
//	@Summary	Update a tax rate
//	@Tags		admin-tax
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Rate ID"
//	@Param		request	body		taxapp.RateRequest	true	"Rate"
//	@Success	200		{object}	APIResponse[taxapp.RateResponse]
//	@Router		/tax/rates/{id} [put]
func (h *TaxHandler) UpdateRate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req taxapp.RateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rate, err := h.service.UpdateRate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// DeleteRate godoc
//
//	@ID			adminDeleteTaxRate
//	@Summary	Deactivate a tax rate
//	@Tags		admin-tax
//	@Produce	json
//	@Param		id	path		string	true	"Rate ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Router		/tax/rates/{id} [delete]
func (h *TaxHandler) DeleteRate(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteRate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Tax rate deactivated"})
}

// ImportRates godoc
//
//	@ID			adminImportTaxRates
//	@Summary	Import many tax rates
//	@Tags		admin-tax
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ImportRatesRequest	true	"Rates"
//	@Success	200		{object}	APIResponse[taxapp.ImportResult]
//	@Router		/tax/rates/import [post]
func (h *TaxHandler) ImportRates(c *gin.Context) {
	var req ImportRatesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.ImportRates(c.Request.Context(), req.Rates)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
