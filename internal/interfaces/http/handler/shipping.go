package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	shippingapp "github.com/wagginmeals/backend/internal/application/shipping"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/shipping"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
	"github.com/wagginmeals/backend/internal/interfaces/http/middleware"
)

// ShippingQuoter prices shipping for a cart
type ShippingQuoter interface {
	Calculate(ctx context.Context, req shippingapp.CalculateRequest) (*shipping.Quote, error)
	Zones() shippingapp.ZonesResponse
}

// ShippingHandler handles shipping quotes
type ShippingHandler struct {
	BaseHandler
	service ShippingQuoter
}

// NewShippingHandler creates a new shipping handler
func NewShippingHandler(service ShippingQuoter) *ShippingHandler {
	return &ShippingHandler{service: service}
}

// ShippingItem is a cart line with its weight label
type ShippingItem struct {
	Weight   string `json:"weight" example:"5 lb"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// CalculateShippingRequest is the body of a shipping quote
type CalculateShippingRequest struct {
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Items           []ShippingItem      `json:"items"`
	ShippingAddress valueobject.Address `json:"shipping_address"`
	CustomerName    string              `json:"customer_name"`
}

// Calculate godoc
//
//	@ID			calculateShipping
//	@Summary	Quote shipping methods for a cart
//	@Description	Carrier rates when available, otherwise the zone table. Free shipping above the threshold.
//	@Tags		shipping
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CalculateShippingRequest	true	"Cart and address"
//	@Success	200		{object}	APIResponse[shipping.Quote]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/shipping/calculate [post]
func (h *ShippingHandler) Calculate(c *gin.Context) {
	var req CalculateShippingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	addr := req.ShippingAddress.Normalize()
	if problems := addr.Problems(); len(problems) > 0 {
		details := make([]dto.ValidationDetail, len(problems))
		for i, p := range problems {
			details[i] = dto.ValidationDetail{Field: "shipping_address", Message: p}
		}
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidAddress, "Invalid shipping address", middleware.GetRequestID(c))
		resp.Error.Details = details
		c.JSON(dto.GetHTTPStatus(dto.ErrCodeInvalidAddress), resp)
		return
	}

	items := make([]shipping.WeightedItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = shipping.WeightedItem{Weight: it.Weight, Quantity: it.Quantity}
	}
	name := req.CustomerName
	if name == "" {
		name = addr.FullName()
	}
	quote, err := h.service.Calculate(c.Request.Context(), shippingapp.CalculateRequest{
		Subtotal:     req.Subtotal,
		Items:        items,
		Address:      addr,
		CustomerName: name,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Zones godoc
//
//	@ID			shippingZones
//	@Summary	List shipping zones and the free shipping threshold
//	@Tags		shipping
//	@Produce	json
//	@Success	200	{object}	APIResponse[shippingapp.ZonesResponse]
//	@Router		/shipping/zones [get]
func (h *ShippingHandler) Zones(c *gin.Context) {
	h.Success(c, h.service.Zones())
}
