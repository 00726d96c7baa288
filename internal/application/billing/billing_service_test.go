package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

// In-memory stores keep state across billing runs, which the scenarios below rely on.

type memSubscriptions struct {
	items map[uuid.UUID]subscription.Subscription
}

func (m *memSubscriptions) FindByID(_ context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (m *memSubscriptions) FindByCustomer(_ context.Context, customerID uuid.UUID, _ subscription.Status) ([]subscription.Subscription, error) {
	var out []subscription.Subscription
	for _, s := range m.items {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubscriptions) FindAll(_ context.Context, _ shared.Filter) ([]subscription.Subscription, int64, error) {
	return nil, 0, nil
}

func (m *memSubscriptions) FindDue(_ context.Context, asOf time.Time) ([]subscription.Subscription, error) {
	var out []subscription.Subscription
	for _, s := range m.items {
		if s.Status.Billable() && !s.NextBillingDate.After(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSubscriptions) CountActiveByPaymentMethod(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (m *memSubscriptions) Save(_ context.Context, s *subscription.Subscription) error {
	m.items[s.ID] = *s
	return nil
}

type memInvoices struct {
	items map[uuid.UUID]subscription.Invoice
}

func (m *memInvoices) FindByID(_ context.Context, id uuid.UUID) (*subscription.Invoice, error) {
	inv, ok := m.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &inv, nil
}

func (m *memInvoices) FindByCycle(_ context.Context, subID uuid.UUID, date time.Time) (*subscription.Invoice, error) {
	for _, inv := range m.items {
		if inv.SubscriptionID == subID && inv.BillingDate.Equal(subscription.DateOf(date)) {
			return &inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memInvoices) FindBySubscription(_ context.Context, subID uuid.UUID) ([]subscription.Invoice, error) {
	var out []subscription.Invoice
	for _, inv := range m.items {
		if inv.SubscriptionID == subID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) FindRetryable(_ context.Context, asOf time.Time, maxAttempts int) ([]subscription.Invoice, error) {
	var out []subscription.Invoice
	for _, inv := range m.items {
		if inv.Status == subscription.InvoiceStatusFailed && inv.AttemptCount < maxAttempts &&
			inv.NextRetryAt != nil && !inv.NextRetryAt.After(asOf) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) FindFailed(_ context.Context, _ shared.Filter) ([]subscription.Invoice, int64, error) {
	var out []subscription.Invoice
	for _, inv := range m.items {
		if inv.Status == subscription.InvoiceStatusFailed {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memInvoices) Save(_ context.Context, inv *subscription.Invoice) error {
	for id, existing := range m.items {
		if id != inv.ID && existing.SubscriptionID == inv.SubscriptionID && existing.BillingDate.Equal(inv.BillingDate) {
			return shared.ErrAlreadyExists
		}
	}
	m.items[inv.ID] = *inv
	return nil
}

type memHistory struct {
	entries []subscription.History
}

func (m *memHistory) Append(_ context.Context, h *subscription.History) error {
	m.entries = append(m.entries, *h)
	return nil
}

func (m *memHistory) FindBySubscription(_ context.Context, _ uuid.UUID) ([]subscription.History, error) {
	return m.entries, nil
}

func (m *memHistory) actions() []subscription.Action {
	out := make([]subscription.Action, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type memOrders struct {
	saved []order.Order
}

func (m *memOrders) FindByID(_ context.Context, _ uuid.UUID) (*order.Order, error) {
	return nil, shared.ErrNotFound
}
func (m *memOrders) FindByNumber(_ context.Context, _ string) (*order.Order, error) {
	return nil, shared.ErrNotFound
}
func (m *memOrders) FindByCustomer(_ context.Context, _ uuid.UUID) ([]order.Order, error) {
	return m.saved, nil
}
func (m *memOrders) FindAll(_ context.Context, _ shared.Filter) ([]order.Order, int64, error) {
	return m.saved, int64(len(m.saved)), nil
}
func (m *memOrders) Save(_ context.Context, o *order.Order) error {
	m.saved = append(m.saved, *o)
	return nil
}

type memCustomers struct {
	c *customer.Customer
}

func (m *memCustomers) FindByID(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	if m.c == nil || m.c.ID != id {
		return nil, shared.ErrNotFound
	}
	return m.c, nil
}
func (m *memCustomers) FindByEmail(_ context.Context, _ string) (*customer.Customer, error) {
	return nil, shared.ErrNotFound
}
func (m *memCustomers) Save(_ context.Context, _ *customer.Customer) error { return nil }

type memMethods struct {
	m *payment.Method
}

func (m *memMethods) FindByID(_ context.Context, id uuid.UUID) (*payment.Method, error) {
	if m.m == nil || m.m.ID != id {
		return nil, shared.ErrNotFound
	}
	return m.m, nil
}
func (m *memMethods) FindByCustomer(_ context.Context, _ uuid.UUID, _ bool) ([]payment.Method, error) {
	return nil, nil
}
func (m *memMethods) Save(_ context.Context, _ *payment.Method) error { return nil }
func (m *memMethods) SetDefault(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

type memLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func (m *memLocks) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *memLocks) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

func (m *memLocks) Close() error { return nil }

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Provider() payment.Provider { return payment.ProviderAuthorizeNet }
func (m *MockGateway) CreateCustomerProfile(ctx context.Context, req payment.CreateProfileRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *MockGateway) CreatePaymentProfile(ctx context.Context, req payment.CreatePaymentProfileRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *MockGateway) ChargeProfile(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}
func (m *MockGateway) Refund(ctx context.Context, req payment.RefundRequest) (*payment.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ChargeResult), args.Error(1)
}
func (m *MockGateway) TestConnection(ctx context.Context) error { return m.Called(ctx).Error(0) }

type MockTaxCalculator struct {
	mock.Mock
}

func (m *MockTaxCalculator) TaxFor(ctx context.Context, amount decimal.Decimal, state, zip string) decimal.Decimal {
	return m.Called(ctx, amount, state, zip).Get(0).(decimal.Decimal)
}

type MockStock struct {
	mock.Mock
}

func (m *MockStock) DecrementItems(ctx context.Context, items []inventoryapp.StockItem, t inventory.TransactionType, ref, actor string) error {
	return m.Called(ctx, items, t, ref, actor).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type billingFixture struct {
	svc       *BillingService
	subs      *memSubscriptions
	invoices  *memInvoices
	history   *memHistory
	orders    *memOrders
	locks     *memLocks
	gateway   *MockGateway
	stock     *MockStock
	publisher *MockEventPublisher
	sub       *subscription.Subscription
	clock     time.Time
}

var cycleDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	cust, err := customer.NewCustomer("owner@example.com", "Dana", "Reed", "")
	require.NoError(t, err)
	cust.SetDefaultShippingAddress(valueobject.Address{Street: "1 Main St", City: "Raleigh", State: "NC", ZipCode: "27601"})

	method := &payment.Method{BaseEntity: shared.NewBaseEntity(), CustomerID: cust.ID, ProfileID: "p-1", PaymentProfileID: "pp-1", IsActive: true}
	variantID := uuid.New()
	sub, err := subscription.New(subscription.NewParams{
		CustomerID:      cust.ID,
		Frequency:       subscription.FrequencyMonthly,
		Items:           []subscription.Item{{VariantID: &variantID, Name: "Beef Box", Price: decimal.NewFromInt(25), Quantity: 2}},
		PaymentMethodID: &method.ID,
		StartDate:       cycleDate,
	})
	require.NoError(t, err)
	sub.ClearDomainEvents()

	f := &billingFixture{
		subs:      &memSubscriptions{items: map[uuid.UUID]subscription.Subscription{sub.ID: *sub}},
		invoices:  &memInvoices{items: map[uuid.UUID]subscription.Invoice{}},
		history:   &memHistory{},
		orders:    &memOrders{},
		locks:     &memLocks{held: map[string]bool{}},
		gateway:   new(MockGateway),
		stock:     new(MockStock),
		publisher: new(MockEventPublisher),
		sub:       sub,
		clock:     cycleDate.Add(6 * time.Hour),
	}
	tax := new(MockTaxCalculator)
	tax.On("TaxFor", mock.Anything, mock.Anything, "NC", "27601").Return(decimal.RequireFromString("3.63"))
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.stock.On("DecrementItems", mock.Anything, mock.Anything, inventory.TransactionSubscription, mock.Anything, "system").Return(nil)

	f.svc = NewBillingService(BillingServiceConfig{
		Subscriptions:  f.subs,
		Invoices:       f.invoices,
		History:        f.history,
		Orders:         f.orders,
		Customers:      &memCustomers{c: cust},
		Methods:        &memMethods{m: method},
		Gateway:        f.gateway,
		Tax:            tax,
		Stock:          f.stock,
		Locks:          f.locks,
		EventPublisher: f.publisher,
		Logger:         zap.NewNop(),
	})
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *billingFixture) current(t *testing.T) *subscription.Subscription {
	t.Helper()
	s, err := f.subs.FindByID(context.Background(), f.sub.ID)
	require.NoError(t, err)
	return s
}

func TestBillingService_RunDueBilling_Success(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	f.gateway.On("ChargeProfile", ctx, mock.MatchedBy(func(r payment.ChargeRequest) bool {
		return r.Amount.Equal(decimal.RequireFromString("53.63")) && r.InvoiceNumber == subscription.InvoiceNumberFor(f.sub.ID, cycleDate)
	})).Return(&payment.ChargeResult{TransactionID: "tx-100"}, nil).Once()

	result, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Successful)
	assert.Empty(t, result.Errors)

	s := f.current(t)
	assert.Equal(t, subscription.StatusActive, s.Status)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), s.NextBillingDate)
	require.NotNil(t, s.LastBillingDate)
	assert.Equal(t, cycleDate, *s.LastBillingDate)

	inv, err := f.invoices.FindByCycle(ctx, f.sub.ID, cycleDate)
	require.NoError(t, err)
	assert.Equal(t, subscription.InvoiceStatusPaid, inv.Status)
	assert.Equal(t, "tx-100", inv.TransactionID)
	assert.Equal(t, "3.63", inv.Tax.StringFixed(2))
	require.NotNil(t, inv.OrderID)

	require.Len(t, f.orders.saved, 1)
	assert.Equal(t, order.StatusProcessing, f.orders.saved[0].Status)
	assert.Equal(t, order.SourceSubscription, f.orders.saved[0].Source)
	assert.Regexp(t, `^WM\d{8}$`, f.orders.saved[0].OrderNumber)

	assert.Equal(t, []subscription.Action{subscription.ActionPaymentSucceeded}, f.history.actions())
	f.stock.AssertNumberOfCalls(t, "DecrementItems", 1)
	assert.Empty(t, f.locks.held)
}

func TestBillingService_NeverChargesACycleTwice(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	f.gateway.On("ChargeProfile", ctx, mock.Anything).Return(&payment.ChargeResult{TransactionID: "tx-1"}, nil).Once()

	_, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)

	// Manually billing the same, already paid cycle again is a no-op.
	s := f.current(t)
	s.NextBillingDate = cycleDate
	require.NoError(t, f.subs.Save(ctx, s))

	outcome, err := f.svc.BillSubscription(ctx, f.sub.ID, subscription.Actor{Type: subscription.ActorAdmin})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome.Status)
	assert.Equal(t, "cycle already paid", outcome.Reason)
	f.gateway.AssertNumberOfCalls(t, "ChargeProfile", 1)
}

func TestBillingService_SkipsLockedCycle(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	f.locks.held[LockKey(f.sub.ID, cycleDate)] = true

	result, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	f.gateway.AssertNotCalled(t, "ChargeProfile", mock.Anything, mock.Anything)
	assert.Empty(t, f.invoices.items)
}

func TestBillingService_RetriesThenPauses(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	declined := fmt.Errorf("%w: This transaction has been declined.", payment.ErrChargeDeclined)
	f.gateway.On("ChargeProfile", ctx, mock.Anything).Return(nil, declined)

	// Attempt 1 on the billing date.
	result, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error, "declined")
	s := f.current(t)
	assert.Equal(t, subscription.StatusPastDue, s.Status)
	assert.Equal(t, 1, s.FailedPaymentCount)
	assert.Equal(t, cycleDate, s.NextBillingDate)

	// The next daily run finds the subscription still due but the retry not yet due.
	f.clock = f.clock.Add(24 * time.Hour)
	result, err = f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	// Attempt 2 three days after the first.
	f.clock = cycleDate.Add(6*time.Hour + 3*24*time.Hour)
	result, err = f.svc.RetryFailedPayments(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, f.current(t).FailedPaymentCount)

	// Attempt 3 seven days after the second pauses the subscription.
	f.clock = f.clock.Add(7 * 24 * time.Hour)
	result, err = f.svc.RetryFailedPayments(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)

	s = f.current(t)
	assert.Equal(t, subscription.StatusPaused, s.Status)
	assert.Equal(t, 3, s.FailedPaymentCount)
	require.NotNil(t, s.PausedAt)

	inv, err := f.invoices.FindByCycle(ctx, f.sub.ID, cycleDate)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.AttemptCount)
	assert.Equal(t, subscription.InvoiceStatusFailed, inv.Status)

	assert.Equal(t, []subscription.Action{
		subscription.ActionPaymentFailed,
		subscription.ActionPaymentFailed,
		subscription.ActionPaymentFailed,
		subscription.ActionPaused,
	}, f.history.actions())

	// Nothing is left to retry and the paused subscription is not due.
	f.clock = f.clock.Add(30 * 24 * time.Hour)
	result, err = f.svc.RetryFailedPayments(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	result, err = f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	f.gateway.AssertNumberOfCalls(t, "ChargeProfile", 3)
	assert.Empty(t, f.orders.saved)
}

func TestBillingService_MissingPaymentMethod(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	s := f.current(t)
	s.PaymentMethodID = nil
	require.NoError(t, f.subs.Save(ctx, s))

	result, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "payment method not properly configured", result.Errors[0].Error)
	f.gateway.AssertNotCalled(t, "ChargeProfile", mock.Anything, mock.Anything)
}

func TestBillingService_RefusesZeroTotal(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	s := f.current(t)
	s.Items[0].Price = decimal.Zero
	s.Amount = decimal.Zero
	require.NoError(t, f.subs.Save(ctx, s))
	f.svc.tax = zeroTax{}

	result, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, "invoice total must be positive", result.Errors[0].Error)
	f.gateway.AssertNotCalled(t, "ChargeProfile", mock.Anything, mock.Anything)
	assert.Empty(t, f.orders.saved)
	assert.Equal(t, subscription.StatusPastDue, f.current(t).Status)
}

type zeroTax struct{}

func (zeroTax) TaxFor(context.Context, decimal.Decimal, string, string) decimal.Decimal {
	return decimal.Zero
}

func TestBillingService_BillSubscriptionRejectsPaused(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	s := f.current(t)
	require.NoError(t, s.Pause("vacation", nil, f.clock))
	require.NoError(t, f.subs.Save(ctx, s))

	_, err := f.svc.BillSubscription(ctx, f.sub.ID, subscription.Actor{Type: subscription.ActorAdmin})
	assert.True(t, errors.Is(err, subscription.ErrNotBillable))
}

type recordingMetrics struct {
	outcomes []string
	charged  decimal.Decimal
	runs     []string
}

func (m *recordingMetrics) RecordOutcome(_ context.Context, job, status string) {
	m.outcomes = append(m.outcomes, job+"/"+status)
}

func (m *recordingMetrics) RecordCharge(_ context.Context, amount decimal.Decimal) {
	m.charged = m.charged.Add(amount)
}

func (m *recordingMetrics) RecordRun(_ context.Context, job string, _ time.Duration) {
	m.runs = append(m.runs, job)
}

func TestBillingService_ReportsMetrics(t *testing.T) {
	ctx := context.Background()
	f := newBillingFixture(t)
	rec := &recordingMetrics{}
	f.svc.metrics = rec
	declined := fmt.Errorf("%w: declined", payment.ErrChargeDeclined)
	f.gateway.On("ChargeProfile", ctx, mock.Anything).Return(nil, declined).Once()
	f.gateway.On("ChargeProfile", ctx, mock.Anything).Return(&payment.ChargeResult{TransactionID: "tx-7"}, nil).Once()

	_, err := f.svc.RunDueBilling(ctx, f.clock)
	require.NoError(t, err)

	f.clock = cycleDate.Add(6*time.Hour + 3*24*time.Hour)
	_, err = f.svc.RetryFailedPayments(ctx, f.clock)
	require.NoError(t, err)

	assert.Equal(t, []string{JobDue + "/" + string(OutcomeFailed), JobRetry + "/" + string(OutcomeSucceeded)}, rec.outcomes)
	assert.Equal(t, []string{JobDue, JobRetry}, rec.runs)
	assert.Equal(t, "53.63", rec.charged.StringFixed(2))
}
