package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	subscriptionapp "github.com/wagginmeals/backend/internal/application/subscription"
	"github.com/wagginmeals/backend/internal/domain/subscription"
)

// SubscriptionManager is the subscription use case surface used over HTTP
type SubscriptionManager interface {
	ListMine(ctx context.Context, customerID uuid.UUID, status string) ([]subscriptionapp.SubscriptionResponse, error)
	List(ctx context.Context, f subscriptionapp.ListFilter) ([]subscriptionapp.SubscriptionResponse, int64, error)
	Create(ctx context.Context, actor subscription.Actor, req subscriptionapp.CreateRequest) (*subscriptionapp.SubscriptionResponse, error)
	Get(ctx context.Context, actor subscription.Actor, id uuid.UUID) (*subscriptionapp.SubscriptionResponse, error)
	Update(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.UpdateRequest) (*subscriptionapp.SubscriptionResponse, error)
	AdminUpdate(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.AdminUpdateRequest) (*subscriptionapp.SubscriptionResponse, error)
	Cancel(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.CancelRequest) (*subscriptionapp.SubscriptionResponse, error)
	Pause(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.PauseRequest) (*subscriptionapp.SubscriptionResponse, error)
	Resume(ctx context.Context, actor subscription.Actor, id uuid.UUID) (*subscriptionapp.SubscriptionResponse, error)
	ChangeFrequency(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.ChangeFrequencyRequest) (*subscriptionapp.SubscriptionResponse, error)
	UpdateItems(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.UpdateItemsRequest) (*subscriptionapp.SubscriptionResponse, error)
	SkipNext(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.SkipRequest) (*subscriptionapp.SubscriptionResponse, error)
	UpdateAddress(ctx context.Context, actor subscription.Actor, id uuid.UUID, req subscriptionapp.UpdateAddressRequest) (*subscriptionapp.SubscriptionResponse, error)
	Invoices(ctx context.Context, actor subscription.Actor, id uuid.UUID) ([]subscription.Invoice, error)
	History(ctx context.Context, actor subscription.Actor, id uuid.UUID) ([]subscriptionapp.HistoryResponse, error)
}

// SubscriptionHandler serves customers and admins. Ownership is enforced by
// the service from the caller's actor.
type SubscriptionHandler struct {
	BaseHandler
	service SubscriptionManager
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service SubscriptionManager) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// ListMine godoc
//
//	@ID			listMySubscriptions
//	@Summary	List the caller's subscriptions
//	@Tags		subscriptions
//	@Produce	json
//	@Param		status	query		string	false	"Status filter"
//	@Success	200		{object}	APIResponse[[]subscriptionapp.SubscriptionResponse]
//	@Failure	401		{object}	ErrorResponse
//	@Security	BearerAuth
//	@Router		/subscriptions [get]
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	subs, err := h.service.ListMine(c.Request.Context(), customerID, c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subs)
}

// List godoc
//
//	@ID			adminListSubscriptions
//	@Summary	List all subscriptions
//	@Tags		admin-subscriptions
//	@Produce	json
//	@Param		status		query		string	false	"Status filter"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]subscriptionapp.SubscriptionResponse]
//	@Router		/admin/subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	var f subscriptionapp.ListFilter
	if !h.bindQuery(c, &f) {
		return
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	subs, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, subs, total, f.Page, f.PageSize)
}

// Create godoc
//
//	@ID			createSubscription
//	@Summary	Create a subscription without charging
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		subscriptionapp.CreateRequest	true	"Subscription"
//	@Success	201		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Router		/subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req subscriptionapp.CreateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	a := actor(c)
	if a.Type == subscription.ActorAdmin && req.CustomerID == uuid.Nil {
		h.BadRequest(c, "customer_id is required")
		return
	}
	sub, err := h.service.Create(c.Request.Context(), a, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// Get godoc
//
//	@ID			getSubscription
//	@Summary	Get a subscription
//	@Tags		subscriptions
//	@Produce	json
//	@Param		id	path		string	true	"Subscription ID"
//	@Success	200	{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Failure	403	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/subscriptions/{id} [get]
func (h *SubscriptionHandler) Get(c *gin.Context) {
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.Get(ctx, a, id)
	})
}

// Update godoc
//
//	@ID			updateSubscription
//	@Summary	Update frequency, items, payment method or next billing date
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Subscription ID"
//	@Param		request	body		subscriptionapp.UpdateRequest	true	"Changes"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id} [patch]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	var req subscriptionapp.UpdateRequest
	bindAndRun(h, c, &req, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.Update(ctx, a, id, req)
	})
}

// AdminUpdate godoc
//
//	@ID			adminUpdateSubscription
//	@Summary	Update a subscription including its status
//	@Tags		admin-subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Subscription ID"
//	@Param		request	body		subscriptionapp.AdminUpdateRequest	true	"Changes"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/admin/subscriptions/{id} [patch]
func (h *SubscriptionHandler) AdminUpdate(c *gin.Context) {
	var req subscriptionapp.AdminUpdateRequest
	bindAndRun(h, c, &req, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.AdminUpdate(ctx, a, id, req)
	})
}

// Cancel godoc
//
//	@ID			cancelSubscription
//	@Summary	Cancel a subscription
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Subscription ID"
//	@Param		request	body		subscriptionapp.CancelRequest	false	"Reason"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id} [delete]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req subscriptionapp.CancelRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	if req.Reason == "" {
		req.Reason = c.Query("reason")
	}
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.Cancel(ctx, a, id, req)
	})
}

// Pause godoc
//
//	@ID			pauseSubscription
//	@Summary	Pause a subscription
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Subscription ID"
//	@Param		request	body		subscriptionapp.PauseRequest	false	"Reason and resume date"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id}/pause [post]
func (h *SubscriptionHandler) Pause(c *gin.Context) {
	var req subscriptionapp.PauseRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.Pause(ctx, a, id, req)
	})
}

// Resume godoc
//
//	@ID			resumeSubscription
//	@Summary	Resume a paused subscription
//	@Tags		subscriptions
//	@Produce	json
//	@Param		id	path		string	true	"Subscription ID"
//	@Success	200	{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id}/resume [post]
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.Resume(ctx, a, id)
	})
}

// ChangeFrequency godoc
//
//	@ID			changeSubscriptionFrequency
//	@Summary	Change the delivery frequency
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string									true	"Subscription ID"
//	@Param		request	body		subscriptionapp.ChangeFrequencyRequest	true	"Frequency"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id}/change-frequency [post]
func (h *SubscriptionHandler) ChangeFrequency(c *gin.Context) {
	var req subscriptionapp.ChangeFrequencyRequest
	bindAndRun(h, c, &req, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.ChangeFrequency(ctx, a, id, req)
	})
}

// SkipNext godoc
//
//	@ID			skipNextDelivery
//	@Summary	Skip the next delivery
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Subscription ID"
//	@Param		request	body		subscriptionapp.SkipRequest	false	"Reason"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id}/skip-next [post]
func (h *SubscriptionHandler) SkipNext(c *gin.Context) {
	var req subscriptionapp.SkipRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.SkipNext(ctx, a, id, req)
	})
}

// UpdateItems godoc
//
//	@ID			updateSubscriptionItems
//	@Summary	Replace the box contents
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Subscription ID"
//	@Param		request	body		subscriptionapp.UpdateItemsRequest	true	"Items"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id}/items [put]
func (h *SubscriptionHandler) UpdateItems(c *gin.Context) {
	var req subscriptionapp.UpdateItemsRequest
	bindAndRun(h, c, &req, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.UpdateItems(ctx, a, id, req)
	})
}

// UpdateAddress godoc
//
//	@ID			updateSubscriptionAddress
//	@Summary	Set the shipping address
//	@Tags		subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string								true	"Subscription ID"
//	@Param		request	body		subscriptionapp.UpdateAddressRequest	true	"Address"
//	@Success	200		{object}	APIResponse[subscriptionapp.SubscriptionResponse]
//	@Router		/subscriptions/{id}/address [put]
func (h *SubscriptionHandler) UpdateAddress(c *gin.Context) {
	var req subscriptionapp.UpdateAddressRequest
	bindAndRun(h, c, &req, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.UpdateAddress(ctx, a, id, req)
	})
}

// Invoices godoc
//
//	@ID			listSubscriptionInvoices
//	@Summary	List invoices of a subscription
//	@Tags		subscriptions
//	@Produce	json
//	@Param		id	path		string	true	"Subscription ID"
//	@Success	200	{object}	APIResponse[[]subscription.Invoice]
//	@Router		/subscriptions/{id}/invoices [get]
func (h *SubscriptionHandler) Invoices(c *gin.Context) {
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.Invoices(ctx, a, id)
	})
}

// History godoc
//
//	@ID			listSubscriptionHistory
//	@Summary	List history entries of a subscription
//	@Tags		subscriptions
//	@Produce	json
//	@Param		id	path		string	true	"Subscription ID"
//	@Success	200	{object}	APIResponse[[]subscriptionapp.HistoryResponse]
//	@Router		/subscriptions/{id}/history [get]
func (h *SubscriptionHandler) History(c *gin.Context) {
	h.withID(c, func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error) {
		return h.service.History(ctx, a, id)
	})
}

type subscriptionCall func(ctx context.Context, a subscription.Actor, id uuid.UUID) (any, error)

func (h *SubscriptionHandler) withID(c *gin.Context, call subscriptionCall) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := call(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func bindAndRun[T any](h *SubscriptionHandler, c *gin.Context, req *T, call subscriptionCall) {
	if !h.bindJSON(c, req) {
		return
	}
	h.withID(c, call)
}
