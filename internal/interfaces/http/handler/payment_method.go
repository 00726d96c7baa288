package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	paymentapp "github.com/wagginmeals/backend/internal/application/payment"
)

// PaymentMethodStore manages a customer's saved cards
type PaymentMethodStore interface {
	List(ctx context.Context, customerID uuid.UUID) ([]paymentapp.MethodResponse, error)
	Add(ctx context.Context, customerID uuid.UUID, req paymentapp.AddMethodRequest) (*paymentapp.MethodResponse, error)
	Remove(ctx context.Context, customerID, id uuid.UUID) error
	SetDefault(ctx context.Context, customerID, id uuid.UUID) error
}

// PaymentMethodHandler handles saved payment methods
type PaymentMethodHandler struct {
	BaseHandler
	service PaymentMethodStore
}

// NewPaymentMethodHandler creates a new payment method handler
func NewPaymentMethodHandler(service PaymentMethodStore) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: service}
}

// List godoc
//
//	@ID			listPaymentMethods
//	@Summary	List saved payment methods
//	@Tags		payment-methods
//	@Produce	json
//	@Success	200	{object}	APIResponse[[]paymentapp.MethodResponse]
//	@Security	BearerAuth
//	@Router		/payment-methods [get]
func (h *PaymentMethodHandler) List(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	methods, err := h.service.List(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// Add godoc
//
//	@ID			addPaymentMethod
//	@Summary	Save a card with the payment gateway
//	@Tags		payment-methods
//	@Accept		json
//	@Produce	json
//	@Param		request	body		paymentapp.AddMethodRequest	true	"Card"
//	@Success	201		{object}	APIResponse[paymentapp.MethodResponse]
//	@Failure	402		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/payment-methods [post]
func (h *PaymentMethodHandler) Add(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req paymentapp.AddMethodRequest
	if !h.bindJSON(c, &req) {
		return
	}
	method, err := h.service.Add(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, method)
}

// Remove godoc
//
//	@ID			removePaymentMethod
//	@Summary	Deactivate a payment method
//	@Tags		payment-methods
//	@Produce	json
//	@Param		id	path		string	true	"Payment method ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Failure	409	{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/payment-methods/{id} [delete]
func (h *PaymentMethodHandler) Remove(c *gin.Context) {
	h.mutate(c, h.service.Remove, "Payment method removed")
}

// SetDefault godoc
//
//	@ID			setDefaultPaymentMethod
//	@Summary	Make a payment method the default
//	@Tags		payment-methods
//	@Produce	json
//	@Param		id	path		string	true	"Payment method ID"
//	@Success	200	{object}	APIResponse[MessageData]
//	@Security	BearerAuth
//	@Router		/payment-methods/{id}/default [post]
func (h *PaymentMethodHandler) SetDefault(c *gin.Context) {
	h.mutate(c, h.service.SetDefault, "Default payment method updated")
}

func (h *PaymentMethodHandler) mutate(c *gin.Context, op func(context.Context, uuid.UUID, uuid.UUID) error, message string) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := op(c.Request.Context(), customerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: message})
}
