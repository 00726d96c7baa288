package inventory

import (
	"context"
	"fmt"

	"github.com/wagginmeals/backend/internal/domain/inventory"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockLowHandler logs variants that dropped to or below their restock threshold
type StockLowHandler struct {
	logger *zap.Logger
}

// NewStockLowHandler creates a new StockLowHandler
func NewStockLowHandler(logger *zap.Logger) *StockLowHandler {
	return &StockLowHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StockLowHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockLow}
}

// Handle logs the low-stock alert
func (h *StockLowHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	low, ok := event.(*inventory.StockLowEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", inventory.EventTypeStockLow, event.EventType())
	}
	if low.Quantity <= 0 {
		h.logger.Warn("variant out of stock",
			zap.String("variant_id", low.VariantID.String()),
			zap.String("sku", low.SKU),
			zap.Int("quantity", low.Quantity),
		)
		return nil
	}
	h.logger.Warn("variant stock low",
		zap.String("variant_id", low.VariantID.String()),
		zap.String("sku", low.SKU),
		zap.Int("quantity", low.Quantity),
		zap.Int("threshold", low.Threshold),
	)
	return nil
}

var _ shared.EventHandler = (*StockLowHandler)(nil)
