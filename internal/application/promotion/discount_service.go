package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/promotion"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// DiscountService validates and administers discount codes
type DiscountService struct {
	repo promotion.Repository
	now  func() time.Time
}

// NewDiscountService creates a new DiscountService
func NewDiscountService(repo promotion.Repository) *DiscountService {
	return &DiscountService{repo: repo, now: time.Now}
}

// Validate checks a code against a subtotal and prices it
func (s *DiscountService) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*ValidateResponse, error) {
	code = promotion.NormalizeCode(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Discount code is required")
	}
	d, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, promotion.ErrInvalidCode
		}
		return nil, err
	}
	if err := d.Check(subtotal, s.now()); err != nil {
		return nil, err
	}
	return &ValidateResponse{
		Valid:          true,
		DiscountID:     d.ID,
		Code:           d.Code,
		DiscountType:   d.Type,
		DiscountValue:  d.Value,
		DiscountAmount: d.AmountFor(subtotal),
	}, nil
}

// Redeem counts one use of a validated discount
func (s *DiscountService) Redeem(ctx context.Context, id uuid.UUID) error {
	return s.repo.IncrementUsage(ctx, id)
}

// List returns discounts for the admin
func (s *DiscountService) List(ctx context.Context, filter shared.Filter) ([]DiscountResponse, int64, error) {
	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]DiscountResponse, len(items))
	for i := range items {
		out[i] = ToDiscountResponse(&items[i])
	}
	return out, total, nil
}

// Get returns one discount
func (s *DiscountService) Get(ctx context.Context, id uuid.UUID) (*DiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToDiscountResponse(d)
	return &resp, nil
}

// Create adds a discount code
func (s *DiscountService) Create(ctx context.Context, req DiscountRequest) (*DiscountResponse, error) {
	if err := s.ensureCodeFree(ctx, req.Code, nil); err != nil {
		return nil, err
	}
	d, err := promotion.NewDiscount(req.params())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDiscountResponse(d)
	return &resp, nil
}

// Update replaces a discount's fields
func (s *DiscountService) Update(ctx context.Context, id uuid.UUID, req DiscountRequest) (*DiscountResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, req.Code, &id); err != nil {
		return nil, err
	}
	if err := d.Update(req.params()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}
	resp := ToDiscountResponse(d)
	return &resp, nil
}

// Delete removes a discount code
func (s *DiscountService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *DiscountService) ensureCodeFree(ctx context.Context, code string, self *uuid.UUID) error {
	existing, err := s.repo.FindByCode(ctx, promotion.NormalizeCode(code))
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if self != nil && existing.ID == *self {
		return nil
	}
	return promotion.ErrCodeTaken
}
