package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	inventoryapp "github.com/wagginmeals/backend/internal/application/inventory"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/inventory"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// DefaultLockTTL bounds how long one cycle charge may hold its lock
const DefaultLockTTL = 5 * time.Minute

// TaxCalculator prices tax for a destination. It never fails; unknown means zero.
type TaxCalculator interface {
	TaxFor(ctx context.Context, amount decimal.Decimal, state, zip string) decimal.Decimal
}

// StockDecrementer takes shipped units out of inventory
type StockDecrementer interface {
	DecrementItems(ctx context.Context, items []inventoryapp.StockItem, t inventory.TransactionType, reference, actor string) error
}

// Metrics counts billing activity
type Metrics interface {
	RecordOutcome(ctx context.Context, job, status string)
	RecordCharge(ctx context.Context, amount decimal.Decimal)
	RecordRun(ctx context.Context, job string, elapsed time.Duration)
}

// Billing jobs as reported to Metrics
const (
	JobDue    = "due"
	JobRetry  = "retry"
	JobManual = "manual"
)

type nopMetrics struct{}

func (nopMetrics) RecordOutcome(context.Context, string, string)    {}
func (nopMetrics) RecordCharge(context.Context, decimal.Decimal)    {}
func (nopMetrics) RecordRun(context.Context, string, time.Duration) {}

// BillingService charges subscriptions for their billing cycles.
// Each cycle is guarded by a lock and the (subscription, billing date) invoice,
// so a cycle is charged at most once.
type BillingService struct {
	subscriptions  subscription.Repository
	invoices       subscription.InvoiceRepository
	history        subscription.HistoryRepository
	orders         order.Repository
	customers      customer.Repository
	methods        payment.MethodRepository
	gateway        payment.Gateway
	tax            TaxCalculator
	stock          StockDecrementer
	locks          shared.LockStore
	eventPublisher shared.EventPublisher
	metrics        Metrics
	maxAttempts    int
	lockTTL        time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

// BillingServiceConfig contains the dependencies of BillingService
type BillingServiceConfig struct {
	Subscriptions  subscription.Repository
	Invoices       subscription.InvoiceRepository
	History        subscription.HistoryRepository
	Orders         order.Repository
	Customers      customer.Repository
	Methods        payment.MethodRepository
	Gateway        payment.Gateway
	Tax            TaxCalculator
	Stock          StockDecrementer
	Locks          shared.LockStore
	EventPublisher shared.EventPublisher
	Metrics        Metrics
	MaxAttempts    int
	LockTTL        time.Duration
	Logger         *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(cfg BillingServiceConfig) *BillingService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = subscription.DefaultMaxPaymentAttempts
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &BillingService{
		subscriptions:  cfg.Subscriptions,
		invoices:       cfg.Invoices,
		history:        cfg.History,
		orders:         cfg.Orders,
		customers:      cfg.Customers,
		methods:        cfg.Methods,
		gateway:        cfg.Gateway,
		tax:            cfg.Tax,
		stock:          cfg.Stock,
		locks:          cfg.Locks,
		eventPublisher: cfg.EventPublisher,
		metrics:        cfg.Metrics,
		maxAttempts:    cfg.MaxAttempts,
		lockTTL:        cfg.LockTTL,
		logger:         cfg.Logger,
		now:            time.Now,
	}
}

// RunDueBilling charges every active or past-due subscription whose next
// billing date is on or before asOf. Subscriptions are processed one at a time.
func (s *BillingService) RunDueBilling(ctx context.Context, asOf time.Time) (*BatchResult, error) {
	due, err := s.subscriptions.FindDue(ctx, subscription.DateOf(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to load due subscriptions: %w", err)
	}
	s.logger.Info("billing run started",
		zap.Time("as_of", asOf),
		zap.Int("due", len(due)),
	)
	started := time.Now()
	defer func() { s.metrics.RecordRun(ctx, JobDue, time.Since(started)) }()

	result := newBatchResult()
	for i := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sub := &due[i]
		s.tally(ctx, JobDue, result, s.bill(ctx, sub, sub.NextBillingDate, subscription.SystemActor))
	}

	s.logger.Info("billing run finished",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// RetryFailedPayments re-charges failed invoices whose retry time has come
func (s *BillingService) RetryFailedPayments(ctx context.Context, asOf time.Time) (*BatchResult, error) {
	retryable, err := s.invoices.FindRetryable(ctx, asOf, s.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to load retryable invoices: %w", err)
	}
	s.logger.Info("payment retry run started",
		zap.Time("as_of", asOf),
		zap.Int("invoices", len(retryable)),
	)
	started := time.Now()
	defer func() { s.metrics.RecordRun(ctx, JobRetry, time.Since(started)) }()

	result := newBatchResult()
	for _, inv := range retryable {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sub, err := s.subscriptions.FindByID(ctx, inv.SubscriptionID)
		if err != nil {
			s.tally(ctx, JobRetry, result, Outcome{SubscriptionID: inv.SubscriptionID, InvoiceID: &inv.ID, Status: OutcomeError, Reason: err.Error()})
			continue
		}
		if !sub.Status.Billable() {
			s.tally(ctx, JobRetry, result, skipped(sub.ID, "subscription is "+sub.Status.String()))
			continue
		}
		s.tally(ctx, JobRetry, result, s.bill(ctx, sub, inv.BillingDate, subscription.SystemActor))
	}

	s.logger.Info("payment retry run finished",
		zap.Int("total", result.Total),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// BillSubscription charges one subscription for its current cycle, whatever the date
func (s *BillingService) BillSubscription(ctx context.Context, id uuid.UUID, actor subscription.Actor) (*Outcome, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.Status.Billable() {
		return nil, subscription.ErrNotBillable
	}
	outcome := s.bill(ctx, sub, sub.NextBillingDate, actor)
	s.metrics.RecordOutcome(ctx, JobManual, string(outcome.Status))
	return &outcome, nil
}

// ListFailedInvoices pages through failed invoices for the admin
func (s *BillingService) ListFailedInvoices(ctx context.Context, filter shared.Filter) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoices.FindFailed(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out, total, nil
}

func (s *BillingService) tally(ctx context.Context, job string, result *BatchResult, o Outcome) {
	result.add(o)
	s.metrics.RecordOutcome(ctx, job, string(o.Status))
}

// bill runs one charge attempt for the cycle starting on cycle
func (s *BillingService) bill(ctx context.Context, sub *subscription.Subscription, cycle time.Time, actor subscription.Actor) Outcome {
	cycle = subscription.DateOf(cycle)
	log := s.logger.With(
		zap.String("subscription_id", sub.ID.String()),
		zap.String("cycle", cycle.Format("2006-01-02")),
	)

	key := LockKey(sub.ID, cycle)
	acquired, err := s.locks.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		log.Error("failed to acquire billing lock", zap.Error(err))
		return errored(sub.ID, nil, err)
	}
	if !acquired {
		log.Info("billing cycle locked by another run, skipping")
		return skipped(sub.ID, "cycle is being billed by another run")
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), key); err != nil {
			log.Warn("failed to release billing lock", zap.Error(err))
		}
	}()

	cust, err := s.customers.FindByID(ctx, sub.CustomerID)
	if err != nil {
		log.Error("failed to load customer", zap.Error(err))
		return errored(sub.ID, nil, err)
	}

	inv, err := s.invoiceFor(ctx, sub, cust, cycle)
	if err != nil {
		log.Error("failed to prepare invoice", zap.Error(err))
		return errored(sub.ID, nil, err)
	}
	if reason := inv.SkipReason(s.now(), s.maxAttempts); reason != "" {
		log.Info("skipping billing cycle", zap.String("reason", reason))
		return skipped(sub.ID, reason)
	}

	result, chargeErr := s.charge(ctx, sub, cust, inv)
	if chargeErr != nil {
		return s.recordFailure(ctx, log, sub, inv, chargeErr, actor)
	}
	return s.recordSuccess(ctx, log, sub, cust, inv, result, actor)
}

// invoiceFor returns the cycle's invoice, opening a pending one if none exists
func (s *BillingService) invoiceFor(ctx context.Context, sub *subscription.Subscription, cust *customer.Customer, cycle time.Time) (*subscription.Invoice, error) {
	inv, err := s.invoices.FindByCycle(ctx, sub.ID, cycle)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	tax := decimal.Zero
	if addr := taxAddress(sub, cust); addr != nil {
		tax = s.tax.TaxFor(ctx, sub.Amount, addr.State, addr.ZipCode)
	}
	inv = subscription.NewInvoice(sub, cycle, tax)
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *BillingService) charge(ctx context.Context, sub *subscription.Subscription, cust *customer.Customer, inv *subscription.Invoice) (*payment.ChargeResult, error) {
	if sub.PaymentMethodID == nil {
		return nil, payment.ErrProfileMissing
	}
	method, err := s.methods.FindByID(ctx, *sub.PaymentMethodID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, payment.ErrProfileMissing
		}
		return nil, err
	}
	if !method.Chargeable() {
		return nil, payment.ErrProfileMissing
	}
	if !inv.Total.IsPositive() {
		return nil, fmt.Errorf("%w: invoice total %s", payment.ErrInvalidAmount, inv.Total.StringFixed(2))
	}
	return s.gateway.ChargeProfile(ctx, payment.ChargeRequest{
		ProfileID:        method.ProfileID,
		PaymentProfileID: method.PaymentProfileID,
		Amount:           inv.Total,
		InvoiceNumber:    inv.InvoiceNumber,
		Description:      fmt.Sprintf("Waggin Meals %s subscription", sub.Frequency),
		CustomerID:       cust.ID.String(),
		CustomerEmail:    cust.Email,
	})
}

func (s *BillingService) recordSuccess(
	ctx context.Context,
	log *zap.Logger,
	sub *subscription.Subscription,
	cust *customer.Customer,
	inv *subscription.Invoice,
	result *payment.ChargeResult,
	actor subscription.Actor,
) Outcome {
	s.metrics.RecordCharge(ctx, inv.Total)
	now := s.now()
	inv.MarkPaid(result.TransactionID, now)
	if err := s.invoices.Save(ctx, inv); err != nil {
		log.Error("charge captured but invoice could not be saved",
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err),
		)
		return errored(sub.ID, &inv.ID, err)
	}

	ord, err := s.createOrder(ctx, sub, cust, inv, now)
	if err != nil {
		log.Error("failed to create subscription order", zap.Error(err))
	} else {
		inv.AttachOrder(ord.ID)
		if err := s.invoices.Save(ctx, inv); err != nil {
			log.Warn("failed to link order to invoice", zap.Error(err))
		}
	}

	oldStatus := sub.Status
	cycle := inv.BillingDate
	if err := sub.RecordPaymentSuccess(cycle, inv); err != nil {
		return errored(sub.ID, &inv.ID, err)
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		log.Error("failed to advance subscription after payment", zap.Error(err))
		return errored(sub.ID, &inv.ID, err)
	}
	s.appendHistory(ctx, log, subscription.NewHistory(sub, subscription.ActionPaymentSucceeded, oldStatus, actor,
		"Payment of $"+inv.Total.StringFixed(2)+" succeeded",
		map[string]any{
			"invoice_number":    inv.InvoiceNumber,
			"transaction_id":    result.TransactionID,
			"last_billing_date": cycle.Format("2006-01-02"),
			"next_billing_date": sub.NextBillingDate.Format("2006-01-02"),
		}))

	if ord != nil {
		s.decrementStock(ctx, log, sub, ord.OrderNumber)
	}
	s.publish(ctx, log, sub.PullDomainEvents()...)
	if ord != nil {
		s.publish(ctx, log, ord.PullDomainEvents()...)
	}

	log.Info("subscription charged",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("transaction_id", result.TransactionID),
		zap.String("amount", inv.Total.StringFixed(2)),
		zap.Time("next_billing_date", sub.NextBillingDate),
	)
	outcome := Outcome{
		SubscriptionID:  sub.ID,
		InvoiceID:       &inv.ID,
		Status:          OutcomeSucceeded,
		TransactionID:   result.TransactionID,
		NextBillingDate: &sub.NextBillingDate,
	}
	if ord != nil {
		outcome.OrderNumber = ord.OrderNumber
	}
	return outcome
}

func (s *BillingService) recordFailure(
	ctx context.Context,
	log *zap.Logger,
	sub *subscription.Subscription,
	inv *subscription.Invoice,
	chargeErr error,
	actor subscription.Actor,
) Outcome {
	reason := failureReason(chargeErr)
	now := s.now()
	inv.MarkFailed(reason, now)
	if err := s.invoices.Save(ctx, inv); err != nil {
		log.Error("failed to record failed attempt", zap.Error(err))
		return errored(sub.ID, &inv.ID, err)
	}

	oldStatus := sub.Status
	paused, err := sub.RecordPaymentFailure(inv, reason, s.maxAttempts, now)
	if err != nil {
		return errored(sub.ID, &inv.ID, err)
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		log.Error("failed to save subscription after failed payment", zap.Error(err))
		return errored(sub.ID, &inv.ID, err)
	}

	changed := map[string]any{
		"invoice_number":       inv.InvoiceNumber,
		"failed_payment_count": sub.FailedPaymentCount,
	}
	if inv.NextRetryAt != nil && !paused {
		changed["next_retry_at"] = inv.NextRetryAt.UTC().Format(time.RFC3339)
	}
	s.appendHistory(ctx, log, subscription.NewHistory(sub, subscription.ActionPaymentFailed, oldStatus, actor, reason, changed))
	if paused {
		s.appendHistory(ctx, log, subscription.NewHistory(sub, subscription.ActionPaused, subscription.StatusPastDue, subscription.SystemActor,
			fmt.Sprintf("Paused after %d failed payments", sub.FailedPaymentCount), nil))
	}
	s.publish(ctx, log, sub.PullDomainEvents()...)

	log.Warn("subscription charge failed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("reason", reason),
		zap.Int("attempt", inv.AttemptCount),
		zap.Int("failed_payment_count", sub.FailedPaymentCount),
		zap.Bool("paused", paused),
	)
	return Outcome{
		SubscriptionID: sub.ID,
		InvoiceID:      &inv.ID,
		Status:         OutcomeFailed,
		Reason:         reason,
		Paused:         paused,
		NextRetryAt:    inv.NextRetryAt,
	}
}

func (s *BillingService) createOrder(ctx context.Context, sub *subscription.Subscription, cust *customer.Customer, inv *subscription.Invoice, now time.Time) (*order.Order, error) {
	items := make([]order.Item, len(sub.Items))
	for i, it := range sub.Items {
		items[i] = order.Item{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Weight:    it.Weight,
		}
	}
	var ship valueobject.Address
	if addr := taxAddress(sub, cust); addr != nil {
		ship = *addr
	}
	subID := sub.ID
	ord, err := order.New(order.NewParams{
		CustomerID:     sub.CustomerID,
		Email:          cust.Email,
		Source:         order.SourceSubscription,
		SubscriptionID: &subID,
		Items:          items,
		Totals: order.Totals{
			Subtotal:       inv.Subtotal,
			DiscountAmount: inv.Discount,
			ShippingMethod: "subscription",
			ShippingCost:   inv.Shipping,
			Tax:            inv.Tax,
		},
		ShippingAddress: ship,
		PaymentMethodID: sub.PaymentMethodID,
		Notes:           "Subscription order for invoice " + inv.InvoiceNumber,
		Now:             now,
	})
	if err != nil {
		return nil, err
	}
	ord.MarkPaid(inv.TransactionID)
	if err := s.orders.Save(ctx, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

func (s *BillingService) decrementStock(ctx context.Context, log *zap.Logger, sub *subscription.Subscription, reference string) {
	if s.stock == nil {
		return
	}
	lines := make([]inventoryapp.StockItem, 0, len(sub.Items))
	for _, it := range sub.Items {
		if it.VariantID != nil {
			lines = append(lines, inventoryapp.StockItem{VariantID: *it.VariantID, Quantity: it.Quantity})
		}
	}
	if len(lines) == 0 {
		return
	}
	if err := s.stock.DecrementItems(ctx, lines, inventory.TransactionSubscription, reference, "system"); err != nil {
		log.Warn("failed to decrement inventory for subscription order",
			zap.String("order_number", reference),
			zap.Error(err),
		)
	}
}

func (s *BillingService) appendHistory(ctx context.Context, log *zap.Logger, h *subscription.History) {
	if err := s.history.Append(ctx, h); err != nil {
		log.Warn("failed to write subscription history",
			zap.String("action", string(h.Action)),
			zap.Error(err),
		)
	}
}

func (s *BillingService) publish(ctx context.Context, log *zap.Logger, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		log.Warn("failed to publish billing events", zap.Error(err))
	}
}

// LockKey names the lock for one subscription cycle
func LockKey(subscriptionID uuid.UUID, cycle time.Time) string {
	return fmt.Sprintf("billing:%s:%s", subscriptionID, subscription.DateOf(cycle).Format("2006-01-02"))
}

// taxAddress is where the box ships: the customer's default address, else the subscription's own
func taxAddress(sub *subscription.Subscription, cust *customer.Customer) *valueobject.Address {
	if cust != nil && cust.DefaultShippingAddress != nil && !cust.DefaultShippingAddress.IsEmpty() {
		return cust.DefaultShippingAddress
	}
	if sub.ShippingAddress != nil && !sub.ShippingAddress.IsEmpty() {
		return sub.ShippingAddress
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, payment.ErrProfileMissing):
		return "payment method not properly configured"
	case errors.Is(err, payment.ErrInvalidAmount):
		return "invoice total must be positive"
	default:
		return err.Error()
	}
}
