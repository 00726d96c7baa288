package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/wagginmeals/backend/internal/application/billing"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"github.com/wagginmeals/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// BillingRunner runs recurring billing
type BillingRunner interface {
	RunDueBilling(ctx context.Context, asOf time.Time) (*billingapp.BatchResult, error)
	RetryFailedPayments(ctx context.Context, asOf time.Time) (*billingapp.BatchResult, error)
	BillSubscription(ctx context.Context, id uuid.UUID, actor subscription.Actor) (*billingapp.Outcome, error)
	ListFailedInvoices(ctx context.Context, filter shared.Filter) ([]billingapp.InvoiceResponse, int64, error)
}

// BillingHandler exposes the billing batch to the cron caller and admins
type BillingHandler struct {
	BaseHandler
	service BillingRunner
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(service BillingRunner) *BillingHandler {
	return &BillingHandler{service: service}
}

// ProcessBilling godoc
//
//	@ID			cronProcessBilling
//	@Summary	Bill every due subscription
//	@Tags		cron
//	@Produce	json
//	@Success	200	{object}	APIResponse[billingapp.BatchResult]
//	@Failure	401	{object}	ErrorResponse
//	@Security	CronAuth
//	@Router		/cron/process-billing [post]
func (h *BillingHandler) ProcessBilling(c *gin.Context) {
	h.runBatch(c, "billing", h.service.RunDueBilling)
}

// RetryFailedPayments godoc
//
//	@ID			cronRetryFailedPayments
//	@Summary	Retry failed invoices whose retry time has come
//	@Tags		cron
//	@Produce	json
//	@Success	200	{object}	APIResponse[billingapp.BatchResult]
//	@Failure	401	{object}	ErrorResponse
//	@Security	CronAuth
//	@Router		/cron/retry-failed-payments [post]
func (h *BillingHandler) RetryFailedPayments(c *gin.Context) {
	h.runBatch(c, "retry", h.service.RetryFailedPayments)
}

func (h *BillingHandler) runBatch(c *gin.Context, name string, run func(context.Context, time.Time) (*billingapp.BatchResult, error)) {
	result, err := run(c.Request.Context(), timeNow())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Info("Billing batch finished",
		zap.String("batch", name),
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	h.Success(c, result)
}

// ManualBilling godoc
//
//	@ID			adminManualBilling
//	@Summary	Bill one subscription now
//	@Tags		admin-subscriptions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		billingapp.ManualBillingRequest	true	"Subscription"
//	@Success	200		{object}	APIResponse[billingapp.Outcome]
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/subscriptions/manual-billing [post]
func (h *BillingHandler) ManualBilling(c *gin.Context) {
	var req billingapp.ManualBillingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	outcome, err := h.service.BillSubscription(c.Request.Context(), req.SubscriptionID, actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, outcome)
}

// FailedInvoices godoc
//
//	@ID			adminFailedInvoices
//	@Summary	List failed subscription invoices
//	@Tags		admin-subscriptions
//	@Produce	json
//	@Param		page		query		int	false	"Page"
//	@Param		page_size	query		int	false	"Page size"
//	@Success	200			{object}	APIResponse[[]billingapp.InvoiceResponse]
//	@Router		/admin/invoices/failed [get]
func (h *BillingHandler) FailedInvoices(c *gin.Context) {
	f := pageParams(c)
	invoices, total, err := h.service.ListFailedInvoices(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, f.Page, f.PageSize)
}
