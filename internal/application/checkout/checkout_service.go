package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/wagginmeals/backend/internal/application/catalog"
	inventoryapp "github.com/wagginmeals/backend/internal/application/inventory"
	promotionapp "github.com/wagginmeals/backend/internal/application/promotion"
	shippingapp "github.com/wagginmeals/backend/internal/application/shipping"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/inventory"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/shipping"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// PaymentProcessor vaults cards and charges stored methods
type PaymentProcessor interface {
	Resolve(ctx context.Context, customerID, id uuid.UUID) (*payment.Method, error)
	VaultCard(ctx context.Context, c *customer.Customer, card payment.Card, billTo *valueobject.Address, makeDefault bool) (*payment.Method, error)
	Charge(ctx context.Context, m *payment.Method, c *customer.Customer, amount decimal.Decimal, invoiceNumber, description string) (*payment.ChargeResult, error)
}

// ShippingQuoter prices a cart for a destination
type ShippingQuoter interface {
	Select(ctx context.Context, req shippingapp.CalculateRequest, preferredID string) (shipping.Method, *shipping.Quote, error)
}

// TaxCalculator prices tax for a destination
type TaxCalculator interface {
	TaxFor(ctx context.Context, amount decimal.Decimal, state, zip string) decimal.Decimal
}

// DiscountValidator checks and redeems discount codes
type DiscountValidator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*promotionapp.ValidateResponse, error)
	Redeem(ctx context.Context, id uuid.UUID) error
}

// ItemPricer prices a line from the catalog
type ItemPricer interface {
	PriceLine(ctx context.Context, productID, variantID *uuid.UUID) (*catalogapp.PricedLine, error)
}

// StockKeeper checks and takes inventory
type StockKeeper interface {
	CheckStock(ctx context.Context, items []inventoryapp.StockItem) *inventoryapp.CheckStockResponse
	DecrementItems(ctx context.Context, items []inventoryapp.StockItem, t inventory.TransactionType, reference, actor string) error
}

// CheckoutService turns carts into paid orders and subscriptions
type CheckoutService struct {
	customers      customer.Repository
	orders         order.Repository
	subscriptions  subscription.Repository
	invoices       subscription.InvoiceRepository
	history        subscription.HistoryRepository
	payments       PaymentProcessor
	shipping       ShippingQuoter
	tax            TaxCalculator
	discounts      DiscountValidator
	stock          StockKeeper
	catalog        ItemPricer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// CheckoutServiceConfig contains the dependencies of CheckoutService
type CheckoutServiceConfig struct {
	Customers      customer.Repository
	Orders         order.Repository
	Subscriptions  subscription.Repository
	Invoices       subscription.InvoiceRepository
	History        subscription.HistoryRepository
	Payments       PaymentProcessor
	Shipping       ShippingQuoter
	Tax            TaxCalculator
	Discounts      DiscountValidator
	Stock          StockKeeper
	Catalog        ItemPricer
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	return &CheckoutService{
		customers:      cfg.Customers,
		orders:         cfg.Orders,
		subscriptions:  cfg.Subscriptions,
		invoices:       cfg.Invoices,
		history:        cfg.History,
		payments:       cfg.Payments,
		shipping:       cfg.Shipping,
		tax:            cfg.Tax,
		discounts:      cfg.Discounts,
		stock:          cfg.Stock,
		catalog:        cfg.Catalog,
		eventPublisher: cfg.EventPublisher,
		logger:         cfg.Logger,
		now:            time.Now,
	}
}

// CreateOrder prices, charges and records a one-time order.
// A declined charge still records the order as payment_failed and returns a
// PAYMENT_REQUIRED error alongside it.
func (s *CheckoutService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	items, err := s.priceCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	addr := req.ShippingAddress.Normalize()
	if err := validateCart(req.Contact, req.PaymentInput, req.CustomerID, items, addr); err != nil {
		return nil, err
	}
	if err := s.checkStock(ctx, items); err != nil {
		return nil, err
	}

	cust, err := s.resolveCustomer(ctx, req.CustomerID, req.Contact, addr)
	if err != nil {
		return nil, err
	}

	totals := order.Totals{Subtotal: order.Subtotal(items)}
	var discountID *uuid.UUID
	if code := strings.TrimSpace(req.DiscountCode); code != "" {
		d, err := s.discounts.Validate(ctx, code, totals.Subtotal)
		if err != nil {
			return nil, err
		}
		totals.DiscountCode = d.Code
		totals.DiscountAmount = d.DiscountAmount
		discountID = &d.DiscountID
	}

	method, _, err := s.shipping.Select(ctx, shippingapp.CalculateRequest{
		Subtotal:     totals.Subtotal,
		Items:        weightedItems(items),
		Address:      addr,
		CustomerName: cust.FullName(),
	}, req.ShippingMethod)
	if err != nil {
		return nil, err
	}
	totals.ShippingMethod = method.ID
	totals.ShippingCost = method.Price
	totals.Tax = s.tax.TaxFor(ctx, totals.Subtotal.Sub(totals.DiscountAmount), addr.State, addr.ZipCode)

	pm, err := s.paymentMethod(ctx, cust, req.PaymentInput, addr, false)
	if err != nil {
		return nil, err
	}

	ord, err := order.New(order.NewParams{
		CustomerID:      cust.ID,
		Email:           cust.Email,
		Source:          order.SourceCheckout,
		Items:           items,
		Totals:          totals,
		ShippingAddress: addr,
		PaymentMethodID: &pm.ID,
		Notes:           req.Notes,
		Now:             s.now(),
	})
	if err != nil {
		return nil, err
	}

	result, chargeErr := s.payments.Charge(ctx, pm, cust, ord.Total, ord.OrderNumber, "Waggin Meals order "+ord.OrderNumber)
	if chargeErr != nil {
		ord.MarkPaymentFailed()
		if err := s.orders.Save(ctx, ord); err != nil {
			s.logger.Error("failed to record declined order", zap.String("order_number", ord.OrderNumber), zap.Error(err))
		}
		resp := ToOrderResponse(ord)
		return &resp, paymentRequired(chargeErr)
	}

	ord.MarkPaid(result.TransactionID)
	if err := s.orders.Save(ctx, ord); err != nil {
		s.logger.Error("charge captured but order could not be saved",
			zap.String("order_number", ord.OrderNumber),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err),
		)
		return nil, err
	}

	if discountID != nil {
		if err := s.discounts.Redeem(ctx, *discountID); err != nil {
			s.logger.Warn("failed to count discount use", zap.String("code", totals.DiscountCode), zap.Error(err))
		}
	}
	s.decrementStock(ctx, items, inventory.TransactionSale, ord.OrderNumber)
	s.publish(ctx, ord.PullDomainEvents()...)

	s.logger.Info("order placed",
		zap.String("order_number", ord.OrderNumber),
		zap.String("customer_id", cust.ID.String()),
		zap.String("total", ord.Total.StringFixed(2)),
	)
	resp := ToOrderResponse(ord)
	return &resp, nil
}

// CreateSubscription saves the card, charges the first cycle and starts the
// subscription. Nothing is created when the charge fails.
func (s *CheckoutService) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*SubscriptionResponse, error) {
	items, err := s.priceCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	addr := req.ShippingAddress.Normalize()
	if err := validateCart(req.Contact, req.PaymentInput, req.CustomerID, items, addr); err != nil {
		return nil, err
	}
	freq, ok := subscription.ParseFrequency(req.Frequency)
	if !ok {
		return nil, subscription.ErrInvalidFrequency
	}
	if err := s.checkStock(ctx, items); err != nil {
		return nil, err
	}

	cust, err := s.resolveCustomer(ctx, req.CustomerID, req.Contact, addr)
	if err != nil {
		return nil, err
	}
	pm, err := s.paymentMethod(ctx, cust, req.PaymentInput, addr, req.CustomerID != nil)
	if err != nil {
		return nil, err
	}

	start := s.now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	sub, err := subscription.New(subscription.NewParams{
		CustomerID:      cust.ID,
		Type:            subscription.Type(req.Type),
		Frequency:       freq,
		Items:           toSubscriptionItems(items),
		PaymentMethodID: &pm.ID,
		ShippingAddress: &addr,
		StartDate:       start,
	})
	if err != nil {
		return nil, err
	}

	cycle := sub.NextBillingDate
	inv := subscription.NewInvoice(sub, cycle, s.tax.TaxFor(ctx, sub.Amount, addr.State, addr.ZipCode))
	result, chargeErr := s.payments.Charge(ctx, pm, cust, inv.Total, inv.InvoiceNumber,
		fmt.Sprintf("Waggin Meals %s subscription", freq))
	if chargeErr != nil {
		return nil, paymentRequired(chargeErr)
	}

	now := s.now()
	inv.MarkPaid(result.TransactionID, now)
	sub.MarkInitialCyclePaid(cycle)
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		s.logger.Error("charge captured but subscription could not be saved",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.String("transaction_id", result.TransactionID),
			zap.Error(err),
		)
		return nil, err
	}

	ord, err := order.New(order.NewParams{
		CustomerID:      cust.ID,
		Email:           cust.Email,
		Source:          order.SourceSubscription,
		SubscriptionID:  &sub.ID,
		Items:           items,
		Totals:          order.Totals{Subtotal: inv.Subtotal, ShippingMethod: "subscription", Tax: inv.Tax},
		ShippingAddress: addr,
		PaymentMethodID: &pm.ID,
		Now:             now,
	})
	if err == nil {
		ord.MarkPaid(result.TransactionID)
		ord.ClearDomainEvents()
		if err = s.orders.Save(ctx, ord); err == nil {
			inv.AttachOrder(ord.ID)
			sub.OrderID = &ord.ID
			if err := s.subscriptions.Save(ctx, sub); err != nil {
				s.logger.Warn("failed to link first order to subscription", zap.Error(err))
			}
		}
	}
	if err != nil {
		s.logger.Error("failed to create first subscription order", zap.String("subscription_id", sub.ID.String()), zap.Error(err))
		ord = nil
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		s.logger.Error("failed to save first invoice", zap.String("invoice_number", inv.InvoiceNumber), zap.Error(err))
	}
	h := subscription.NewHistory(sub, subscription.ActionCreated, "", subscription.Actor{Type: subscription.ActorCustomer, ID: cust.ID.String()},
		"Subscription created at checkout", map[string]any{"invoice_number": inv.InvoiceNumber, "transaction_id": result.TransactionID})
	if err := s.history.Append(ctx, h); err != nil {
		s.logger.Warn("failed to write subscription history", zap.Error(err))
	}

	resp := &SubscriptionResponse{
		SubscriptionID:  sub.ID,
		CustomerID:      cust.ID,
		Status:          sub.Status,
		Frequency:       sub.Frequency,
		Amount:          sub.Amount,
		NextBillingDate: sub.NextBillingDate.Format("2006-01-02"),
		InvoiceNumber:   inv.InvoiceNumber,
		Total:           inv.Total,
		TransactionID:   result.TransactionID,
		PaymentMethodID: pm.ID,
	}
	if ord != nil {
		resp.OrderNumber = ord.OrderNumber
		s.decrementStock(ctx, items, inventory.TransactionSubscription, ord.OrderNumber)
	}
	s.publish(ctx, sub.PullDomainEvents()...)

	s.logger.Info("subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("customer_id", cust.ID.String()),
		zap.String("frequency", freq.String()),
		zap.String("total", inv.Total.StringFixed(2)),
	)
	return resp, nil
}

// resolveCustomer loads the signed-in buyer. Guests are matched by email or
// recorded as a new guest customer.
func (s *CheckoutService) resolveCustomer(ctx context.Context, id *uuid.UUID, contact Contact, addr valueobject.Address) (*customer.Customer, error) {
	var (
		cust *customer.Customer
		err  error
	)
	if id != nil {
		cust, err = s.customers.FindByID(ctx, *id)
	} else {
		cust, err = s.customers.FindByEmail(ctx, customer.NormalizeEmail(contact.Email))
	}
	switch {
	case err == nil:
		if cust.DefaultShippingAddress == nil {
			cust.SetDefaultShippingAddress(addr)
			if err := s.customers.Save(ctx, cust); err != nil {
				return nil, err
			}
		}
		return cust, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	case id != nil:
		return nil, shared.NewDomainError("NOT_FOUND", "Customer not found")
	}

	first, last := contact.FirstName, contact.LastName
	if first == "" {
		first, last = addr.FirstName, addr.LastName
	}
	cust, err = customer.NewGuestCustomer(contact.Email, first, last, contact.Phone)
	if err != nil {
		return nil, err
	}
	cust.SetDefaultShippingAddress(addr)
	if err := s.customers.Save(ctx, cust); err != nil {
		return nil, err
	}
	return cust, nil
}

func (s *CheckoutService) paymentMethod(ctx context.Context, cust *customer.Customer, in PaymentInput, addr valueobject.Address, makeDefault bool) (*payment.Method, error) {
	if in.PaymentMethodID != nil {
		return s.payments.Resolve(ctx, cust.ID, *in.PaymentMethodID)
	}
	billTo := in.BillingAddress
	if billTo == nil {
		billTo = &addr
	}
	m, err := s.payments.VaultCard(ctx, cust, in.NewCard.Card(), billTo, makeDefault)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// priceCart builds order lines from catalog prices and names
func (s *CheckoutService) priceCart(ctx context.Context, in []CartItem) ([]order.Item, error) {
	out := make([]order.Item, len(in))
	for i, it := range in {
		line, err := s.catalog.PriceLine(ctx, it.ProductID, it.VariantID)
		if err != nil {
			return nil, err
		}
		productID := line.ProductID
		out[i] = order.Item{
			ProductID: &productID,
			VariantID: line.VariantID,
			Name:      line.Name,
			SKU:       line.SKU,
			Price:     line.Price,
			Quantity:  it.Quantity,
			Weight:    line.Weight,
		}
	}
	return out, nil
}

func (s *CheckoutService) checkStock(ctx context.Context, items []order.Item) error {
	lines := stockLines(items)
	if len(lines) == 0 {
		return nil
	}
	resp := s.stock.CheckStock(ctx, lines)
	if resp.Available {
		return nil
	}
	var problems []string
	for _, r := range resp.Items {
		if !r.Available {
			problems = append(problems, r.Message)
		}
	}
	return shared.WrapDomainError("INSUFFICIENT_STOCK", strings.Join(problems, "; "), shared.ErrInsufficientStock)
}

func (s *CheckoutService) decrementStock(ctx context.Context, items []order.Item, t inventory.TransactionType, reference string) {
	lines := stockLines(items)
	if len(lines) == 0 {
		return
	}
	if err := s.stock.DecrementItems(ctx, lines, t, reference, "system"); err != nil {
		s.logger.Warn("failed to decrement inventory",
			zap.String("order_number", reference),
			zap.Error(err),
		)
	}
}

func (s *CheckoutService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish checkout events", zap.Error(err))
	}
}

// validateCart collects every problem with the request into one VALIDATION_ERROR
func validateCart(contact Contact, pay PaymentInput, customerID *uuid.UUID, items []order.Item, addr valueobject.Address) error {
	var problems []string
	if strings.TrimSpace(contact.Email) == "" {
		problems = append(problems, "Email is required")
	} else if customer.ValidateEmail(contact.Email) != nil {
		problems = append(problems, "Invalid email format")
	}
	problems = append(problems, addr.Problems()...)
	if err := order.ValidateItems(items); err != nil {
		var de *shared.DomainError
		if errors.As(err, &de) {
			problems = append(problems, de.Message)
		}
	}
	switch {
	case pay.PaymentMethodID == nil && pay.NewCard == nil:
		problems = append(problems, "Either payment_method_id or new_card is required")
	case pay.PaymentMethodID != nil && customerID == nil:
		problems = append(problems, "Sign in to pay with a saved card")
	}
	if len(problems) > 0 {
		return shared.NewDomainError("VALIDATION_ERROR", strings.Join(problems, "; "))
	}
	return nil
}

func paymentRequired(err error) error {
	reason := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		if de.Code == "PAYMENT_REQUIRED" {
			return err
		}
		reason = de.Message
	}
	return shared.WrapDomainError("PAYMENT_REQUIRED", "Payment failed: "+reason, err)
}

func toSubscriptionItems(in []order.Item) []subscription.Item {
	out := make([]subscription.Item, len(in))
	for i, it := range in {
		out[i] = subscription.Item{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Weight:    it.Weight,
		}
	}
	return out
}

func weightedItems(items []order.Item) []shipping.WeightedItem {
	out := make([]shipping.WeightedItem, len(items))
	for i, it := range items {
		out[i] = shipping.WeightedItem{Weight: it.Weight, Quantity: it.Quantity}
	}
	return out
}

func stockLines(items []order.Item) []inventoryapp.StockItem {
	lines := make([]inventoryapp.StockItem, 0, len(items))
	for _, it := range items {
		if it.VariantID != nil {
			lines = append(lines, inventoryapp.StockItem{VariantID: *it.VariantID, Quantity: it.Quantity})
		}
	}
	return lines
}
