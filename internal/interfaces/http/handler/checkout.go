package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/wagginmeals/backend/internal/application/checkout"
	"github.com/wagginmeals/backend/internal/interfaces/http/middleware"
)

// Checkout places orders and starts paid subscriptions
type Checkout interface {
	CreateOrder(ctx context.Context, req checkoutapp.CreateOrderRequest) (*checkoutapp.OrderResponse, error)
	CreateSubscription(ctx context.Context, req checkoutapp.CreateSubscriptionRequest) (*checkoutapp.SubscriptionResponse, error)
}

// CheckoutHandler handles the storefront checkout
type CheckoutHandler struct {
	BaseHandler
	service Checkout
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service Checkout) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// CreateOrder godoc
//
//	@ID				createOrder
//	@Summary		Place a one-time order
//	@Description	A declined card still records the order as payment_failed and answers 402 with it
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		checkoutapp.CreateOrderRequest	true	"Order"
//	@Success		201		{object}	APIResponse[checkoutapp.OrderResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		402		{object}	APIResponse[checkoutapp.OrderResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/checkout/create-order [post]
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	var req checkoutapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if id, ok := middleware.GetCustomerID(c); ok {
		req.CustomerID = &id
	}
	resp, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		if resp != nil {
			h.HandleErrorWithData(c, err, resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateSubscription godoc
//
//	@ID			createCheckoutSubscription
//	@Summary	Start a subscription and charge the first cycle
//	@Tags		checkout
//	@Accept		json
//	@Produce	json
//	@Param		request	body		checkoutapp.CreateSubscriptionRequest	true	"Subscription"
//	@Success	201		{object}	APIResponse[checkoutapp.SubscriptionResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	402		{object}	ErrorResponse
//	@Router		/checkout/create-subscription [post]
func (h *CheckoutHandler) CreateSubscription(c *gin.Context) {
	var req checkoutapp.CreateSubscriptionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if id, ok := middleware.GetCustomerID(c); ok {
		req.CustomerID = &id
	}
	resp, err := h.service.CreateSubscription(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
