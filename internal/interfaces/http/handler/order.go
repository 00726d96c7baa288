package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/wagginmeals/backend/internal/application/order"
)

// OrderReader is the order use case surface used over HTTP
type OrderReader interface {
	MyOrders(ctx context.Context, customerID uuid.UUID) ([]orderapp.OrderResponse, error)
	List(ctx context.Context, f orderapp.ListFilter) ([]orderapp.OrderResponse, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)
	UpdateShipping(ctx context.Context, id uuid.UUID, req orderapp.UpdateShippingRequest) (*orderapp.OrderResponse, error)
	PackingSlip(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// OrderHandler handles order queries and fulfilment
type OrderHandler struct {
	BaseHandler
	service OrderReader
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service OrderReader) *OrderHandler {
	return &OrderHandler{service: service}
}

// MyOrders godoc
//
//	@ID			listMyOrders
//	@Summary	List the customer's orders
//	@Tags		orders
//	@Produce	json
//	@Success	200	{object}	APIResponse[[]orderapp.OrderResponse]
//	@Security	BearerAuth
//	@Router		/orders/my-orders [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	orders, err := h.service.MyOrders(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// List godoc
//
//	@ID			adminListOrders
//	@Summary	List orders
//	@Tags		admin-orders
//	@Produce	json
//	@Param		status		query		string	false	"Status"
//	@Param		search		query		string	false	"Order number or email"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]orderapp.OrderResponse]
//	@Router		/admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var f orderapp.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	orders, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, f.Page, f.PageSize)
}

// Get godoc
//
//	@ID			adminGetOrder
//	@Summary	Get an order
//	@Tags		admin-orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	APIResponse[orderapp.OrderResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	ord, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ord)
}

// UpdateShipping godoc
//
//	@ID			adminUpdateOrderShipping
//	@Summary	Set tracking details and move the order on
//	@Tags		admin-orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Order ID"
//	@Param		request	body		orderapp.UpdateShippingRequest	true	"Shipping"
//	@Success	200		{object}	APIResponse[orderapp.OrderResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/admin/orders/{id}/shipping [patch]
func (h *OrderHandler) UpdateShipping(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req orderapp.UpdateShippingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ord, err := h.service.UpdateShipping(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ord)
}

// PackingSlip godoc
//
//	@ID			adminOrderPackingSlip
//	@Summary	Render the packing slip PDF
//	@Tags		admin-orders
//	@Produce	application/pdf
//	@Param		id	path	string	true	"Order ID"
//	@Success	200	{file}	binary
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/orders/{id}/packing-slip [get]
func (h *OrderHandler) PackingSlip(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.service.PackingSlip(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
