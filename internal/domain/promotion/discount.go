package promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

// DiscountType says how Value is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Errors
var (
	ErrInvalidCode     = shared.NewDomainError("INVALID_DISCOUNT", "Invalid discount code")
	ErrNotYetActive    = shared.NewDomainError("INVALID_DISCOUNT", "This discount code is not yet active")
	ErrExpired         = shared.NewDomainError("INVALID_DISCOUNT", "This discount code has expired")
	ErrUsageLimit      = shared.NewDomainError("INVALID_DISCOUNT", "This discount code has reached its usage limit")
	ErrCodeTaken       = shared.NewDomainError("ALREADY_EXISTS", "A discount with this code already exists")
	ErrDiscountMissing = shared.NewDomainError("NOT_FOUND", "Discount not found")
)

var hundred = decimal.NewFromInt(100)

// Discount is a promotional code
type Discount struct {
	shared.BaseEntity
	Code            string
	Description     string
	Type            DiscountType
	Value           decimal.Decimal
	MinimumPurchase decimal.Decimal
	UsageLimit      *int
	UsageCount      int
	StartsAt        *time.Time
	ExpiresAt       *time.Time
	IsActive        bool
}

// DiscountParams are the editable fields of a discount
type DiscountParams struct {
	Code            string
	Description     string
	Type            DiscountType
	Value           decimal.Decimal
	MinimumPurchase decimal.Decimal
	UsageLimit      *int
	StartsAt        *time.Time
	ExpiresAt       *time.Time
	IsActive        bool
}

// NormalizeCode upper-cases and trims a code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewDiscount validates and creates a discount
func NewDiscount(p DiscountParams) (*Discount, error) {
	d := &Discount{BaseEntity: shared.NewBaseEntity()}
	if err := d.Update(p); err != nil {
		return nil, err
	}
	return d, nil
}

// Update replaces the discount's fields. The usage count is kept.
func (d *Discount) Update(p DiscountParams) error {
	code := NormalizeCode(p.Code)
	if code == "" {
		return shared.NewDomainError("INVALID_INPUT", "Discount code is required")
	}
	switch p.Type {
	case DiscountPercentage:
		if p.Value.IsNegative() || p.Value.GreaterThan(hundred) {
			return shared.NewDomainError("INVALID_INPUT", "Percentage discounts must be between 0 and 100")
		}
	case DiscountFixed:
		if p.Value.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "Discount value cannot be negative")
		}
	default:
		return shared.NewDomainError("INVALID_INPUT", "Discount type must be percentage or fixed")
	}
	if p.MinimumPurchase.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Minimum purchase cannot be negative")
	}
	if p.UsageLimit != nil && *p.UsageLimit < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Usage limit cannot be negative")
	}
	if p.StartsAt != nil && p.ExpiresAt != nil && p.ExpiresAt.Before(*p.StartsAt) {
		return shared.NewDomainError("INVALID_INPUT", "Expiry must be after the start date")
	}
	d.Code = code
	d.Description = p.Description
	d.Type = p.Type
	d.Value = p.Value
	d.MinimumPurchase = p.MinimumPurchase
	d.UsageLimit = p.UsageLimit
	d.StartsAt = p.StartsAt
	d.ExpiresAt = p.ExpiresAt
	d.IsActive = p.IsActive
	d.Touch()
	return nil
}

// Check returns why the code cannot be applied to subtotal at now, or nil
func (d *Discount) Check(subtotal decimal.Decimal, now time.Time) error {
	if !d.IsActive {
		return ErrInvalidCode
	}
	if d.StartsAt != nil && d.StartsAt.After(now) {
		return ErrNotYetActive
	}
	if d.ExpiresAt != nil && d.ExpiresAt.Before(now) {
		return ErrExpired
	}
	if d.UsageLimit != nil && *d.UsageLimit > 0 && d.UsageCount >= *d.UsageLimit {
		return ErrUsageLimit
	}
	if d.MinimumPurchase.IsPositive() && subtotal.LessThan(d.MinimumPurchase) {
		return shared.NewDomainError("INVALID_DISCOUNT",
			fmt.Sprintf("Minimum purchase of $%s required for this discount code", d.MinimumPurchase.StringFixed(2)))
	}
	return nil
}

// AmountFor is the discount on subtotal, capped at the subtotal and rounded to cents
func (d *Discount) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	amount := d.Value
	if d.Type == DiscountPercentage {
		amount = subtotal.Mul(d.Value).Div(hundred)
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return shared.Round2(amount)
}

// RecordUse counts one redemption
func (d *Discount) RecordUse() {
	d.UsageCount++
	d.Touch()
}

// Repository persists discounts
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Discount, error)
	FindByCode(ctx context.Context, code string) (*Discount, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Discount, int64, error)
	// IncrementUsage bumps usage_count atomically
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	Save(ctx context.Context, d *Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
}
