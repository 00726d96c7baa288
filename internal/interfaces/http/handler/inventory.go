package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/wagginmeals/backend/internal/application/inventory"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// StockKeeper is the inventory use case surface
type StockKeeper interface {
	Adjust(ctx context.Context, variantID uuid.UUID, req inventoryapp.AdjustRequest, actor string) (*inventoryapp.TransactionResponse, error)
	BulkUpdate(ctx context.Context, req inventoryapp.BulkUpdateRequest, actor string) *inventoryapp.BulkUpdateResult
	LowStock(ctx context.Context) ([]inventoryapp.VariantStockResponse, error)
	History(ctx context.Context, filter shared.Filter) ([]inventoryapp.TransactionResponse, int64, error)
	VariantHistory(ctx context.Context, variantID uuid.UUID, limit int) ([]inventoryapp.TransactionResponse, error)
	CheckStock(ctx context.Context, items []inventoryapp.StockItem) *inventoryapp.CheckStockResponse
}

// InventoryHandler handles stock checks and adjustments
type InventoryHandler struct {
	BaseHandler
	service StockKeeper
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service StockKeeper) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// CheckStockRequest lists the items to check
type CheckStockRequest struct {
	Items []inventoryapp.StockItem `json:"items" binding:"required,min=1,dive"`
}

// CheckStock godoc
//
//	@ID			checkStock
//	@Summary	Check availability of cart items
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CheckStockRequest	true	"Items"
//	@Success	200		{object}	APIResponse[inventoryapp.CheckStockResponse]
//	@Router		/variants/check-stock [post]
func (h *InventoryHandler) CheckStock(c *gin.Context) {
	var req CheckStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, h.service.CheckStock(c.Request.Context(), req.Items))
}

// Adjust godoc
//
//	@ID			adminAdjustInventory
//	@Summary	Adjust a variant's stock
//	@Tags		admin-inventory
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Variant ID"
//	@Param		request	body		inventoryapp.AdjustRequest	true	"Adjustment"
//	@Success	200		{object}	APIResponse[inventoryapp.TransactionResponse]
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/variants/{id}/adjust-inventory [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AdjustRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tx, err := h.service.Adjust(c.Request.Context(), id, req, actorName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Adjustments godoc
//
//	@ID			adminVariantAdjustments
//	@Summary	List recent stock movements of a variant
//	@Tags		admin-inventory
//	@Produce	json
//	@Param		id		path		string	true	"Variant ID"
//	@Param		limit	query		int		false	"Max entries"
//	@Success	200		{object}	APIResponse[[]inventoryapp.TransactionResponse]
//	@Router		/admin/variants/{id}/adjustments [get]
func (h *InventoryHandler) Adjustments(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	txs, err := h.service.VariantHistory(c.Request.Context(), id, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, txs)
}

// BulkUpdate godoc
//
//	@ID			adminBulkUpdateInventory
//	@Summary	Set stock counts for many variants
//	@Tags		admin-inventory
//	@Accept		json
//	@Produce	json
//	@Param		request	body		inventoryapp.BulkUpdateRequest	true	"Updates"
//	@Success	200		{object}	APIResponse[inventoryapp.BulkUpdateResult]
//	@Router		/admin/inventory/bulk-update [post]
func (h *InventoryHandler) BulkUpdate(c *gin.Context) {
	var req inventoryapp.BulkUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Success(c, h.service.BulkUpdate(c.Request.Context(), req, actorName(c)))
}

// LowStock godoc
//
//	@ID			adminLowStock
//	@Summary	List tracked variants at or below their threshold
//	@Tags		admin-inventory
//	@Produce	json
//	@Success	200	{object}	APIResponse[[]inventoryapp.VariantStockResponse]
//	@Router		/admin/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	variants, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variants)
}

// History godoc
//
//	@ID			adminInventoryHistory
//	@Summary	List stock movements
//	@Tags		admin-inventory
//	@Produce	json
//	@Param		transaction_type	query		string	false	"Movement type"
//	@Param		variant_id			query		string	false	"Variant ID"
//	@Param		page				query		int		false	"Page"
//	@Param		page_size			query		int		false	"Page size"
//	@Success	200					{object}	APIResponse[[]inventoryapp.TransactionResponse]
//	@Router		/admin/inventory/history [get]
func (h *InventoryHandler) History(c *gin.Context) {
	f := pageParams(c)
	if t := c.Query("transaction_type"); t != "" {
		f.Filters["type"] = t
	}
	if v, err := uuid.Parse(c.Query("variant_id")); err == nil {
		f.Filters["variant_id"] = v
	}
	txs, total, err := h.service.History(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, txs, total, f.Page, f.PageSize)
}
