package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/catalog"
	"github.com/wagginmeals/backend/internal/domain/inventory"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultHistoryLimit caps per-variant movement history
const DefaultHistoryLimit = 50

// InventoryService moves variant stock and records every movement
type InventoryService struct {
	scope           TransactionScope
	variantRepo     catalog.VariantRepository
	transactionRepo inventory.TransactionRepository
	eventPublisher  shared.EventPublisher
	logger          *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	scope TransactionScope,
	variantRepo catalog.VariantRepository,
	transactionRepo inventory.TransactionRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		scope:           scope,
		variantRepo:     variantRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// SetEventPublisher sets the publisher for low-stock events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Decrement takes stock out for a sale or subscription shipment.
// It returns nil for untracked variants.
func (s *InventoryService) Decrement(ctx context.Context, req MovementRequest, actor string) (*TransactionResponse, error) {
	if req.Type == "" {
		req.Type = inventory.TransactionSale
	}
	return s.move(ctx, req.VariantID, func(v *catalog.Variant) (*inventory.Transaction, error) {
		return inventory.Decrement(v, req.Quantity, req.Type, req.Reference, actor)
	})
}

// DecrementItems takes stock for every item of an order in one transaction.
// Either all items are decremented or none are.
func (s *InventoryService) DecrementItems(ctx context.Context, items []StockItem, t inventory.TransactionType, reference, actor string) error {
	var low []*catalog.Variant
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		low = low[:0]
		for _, item := range items {
			v, err := repos.LockVariant(ctx, item.VariantID)
			if err != nil {
				return err
			}
			tx, err := inventory.Decrement(v, item.Quantity, t, reference, actor)
			if err != nil {
				return err
			}
			if tx == nil {
				continue
			}
			if err := s.persist(ctx, repos, v, tx); err != nil {
				return err
			}
			if isLow(v) {
				low = append(low, v)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publishLow(ctx, low...)
	return nil
}

// Increment puts stock back for a restock or return
func (s *InventoryService) Increment(ctx context.Context, req MovementRequest, actor string) (*TransactionResponse, error) {
	if req.Type == "" {
		req.Type = inventory.TransactionRestock
	}
	return s.move(ctx, req.VariantID, func(v *catalog.Variant) (*inventory.Transaction, error) {
		return inventory.Increment(v, req.Quantity, req.Type, req.Reference, req.Notes, actor)
	})
}

// Adjust corrects a variant's count with a reason
func (s *InventoryService) Adjust(ctx context.Context, variantID uuid.UUID, req AdjustRequest, actor string) (*TransactionResponse, error) {
	return s.move(ctx, variantID, func(v *catalog.Variant) (*inventory.Transaction, error) {
		return inventory.Adjust(v, req.Quantity, req.Absolute, req.Type, req.Reason, actor)
	})
}

// BulkUpdate sets absolute counts row by row. A failing row does not stop the others.
func (s *InventoryService) BulkUpdate(ctx context.Context, req BulkUpdateRequest, actor string) *BulkUpdateResult {
	reason := req.Reason
	if reason == "" {
		reason = "Bulk inventory update"
	}
	result := &BulkUpdateResult{Errors: []BulkUpdateError{}}
	for _, u := range req.Updates {
		var unchanged bool
		_, err := s.move(ctx, u.VariantID, func(v *catalog.Variant) (*inventory.Transaction, error) {
			if v.InventoryQuantity == u.Quantity {
				unchanged = true
				return nil, nil
			}
			return inventory.Adjust(v, u.Quantity, true, inventory.TransactionAdjustment, reason, actor)
		})
		switch {
		case err != nil:
			result.Errors = append(result.Errors, BulkUpdateError{VariantID: u.VariantID, Error: err.Error()})
		case unchanged:
			result.Unchanged++
		default:
			result.Updated++
		}
	}
	s.logger.Info("bulk inventory update",
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("errors", len(result.Errors)),
		zap.String("actor", actor),
	)
	return result
}

// LowStock lists tracked variants at or below their threshold
func (s *InventoryService) LowStock(ctx context.Context) ([]VariantStockResponse, error) {
	variants, err := s.variantRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]VariantStockResponse, len(variants))
	for i := range variants {
		out[i] = ToVariantStockResponse(&variants[i])
	}
	return out, nil
}

// History lists stock movements across variants
func (s *InventoryService) History(ctx context.Context, filter shared.Filter) ([]TransactionResponse, int64, error) {
	txs, total, err := s.transactionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toTransactionResponses(txs), total, nil
}

// VariantHistory lists the latest movements of one variant
func (s *InventoryService) VariantHistory(ctx context.Context, variantID uuid.UUID, limit int) ([]TransactionResponse, error) {
	if _, err := s.variantRepo.FindByID(ctx, variantID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	txs, err := s.transactionRepo.FindByVariant(ctx, variantID, limit)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(txs), nil
}

// CheckStock reports availability per item. Lookup errors count as unavailable.
func (s *InventoryService) CheckStock(ctx context.Context, items []StockItem) *CheckStockResponse {
	resp := &CheckStockResponse{Available: true, Items: make([]StockCheckResult, 0, len(items))}
	for _, item := range items {
		r := StockCheckResult{VariantID: item.VariantID, Requested: item.Quantity}
		v, err := s.variantRepo.FindByID(ctx, item.VariantID)
		switch {
		case err != nil:
			if !errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("stock check lookup failed",
					zap.String("variant_id", item.VariantID.String()),
					zap.Error(err),
				)
			}
			r.Message = "Variant not found"
		case !v.IsAvailable:
			r.Status = v.StockStatus()
			r.Quantity = v.InventoryQuantity
			r.Message = v.SKU + " is not available"
		default:
			r.Status = v.StockStatus()
			r.Quantity = v.InventoryQuantity
			r.Available = v.CanFulfil(item.Quantity)
			if !r.Available {
				r.Message = "Insufficient stock for " + v.SKU
			}
		}
		if !r.Available {
			resp.Available = false
		}
		resp.Items = append(resp.Items, r)
	}
	return resp
}

func (s *InventoryService) move(ctx context.Context, variantID uuid.UUID, apply func(v *catalog.Variant) (*inventory.Transaction, error)) (*TransactionResponse, error) {
	var (
		tx      *inventory.Transaction
		variant *catalog.Variant
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		v, err := repos.LockVariant(ctx, variantID)
		if err != nil {
			return err
		}
		tx, err = apply(v)
		if err != nil || tx == nil {
			return err
		}
		variant = v
		return s.persist(ctx, repos, v, tx)
	})
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}
	if isLow(variant) {
		s.publishLow(ctx, variant)
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

func (s *InventoryService) persist(ctx context.Context, repos TransactionalRepositories, v *catalog.Variant, tx *inventory.Transaction) error {
	if err := repos.VariantRepo().Save(ctx, v); err != nil {
		return err
	}
	return repos.TransactionRepo().Append(ctx, tx)
}

func (s *InventoryService) publishLow(ctx context.Context, variants ...*catalog.Variant) {
	if s.eventPublisher == nil || len(variants) == 0 {
		return
	}
	events := make([]shared.DomainEvent, len(variants))
	for i, v := range variants {
		events[i] = inventory.NewStockLowEvent(v)
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock low events", zap.Error(err))
	}
}

func isLow(v *catalog.Variant) bool {
	status := v.StockStatus()
	return status == catalog.StockLow || status == catalog.StockOut
}

func toTransactionResponses(txs []inventory.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}
