package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/promotion"
)

// ValidateRequest is the public code check
type ValidateRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ValidateResponse prices a valid code
type ValidateResponse struct {
	Valid          bool                   `json:"valid"`
	DiscountID     uuid.UUID              `json:"-"`
	Code           string                 `json:"code"`
	DiscountType   promotion.DiscountType `json:"discount_type"`
	DiscountValue  decimal.Decimal        `json:"discount_value"`
	DiscountAmount decimal.Decimal        `json:"discount_amount"`
}

// DiscountRequest creates or updates a discount
type DiscountRequest struct {
	Code            string                 `json:"code" binding:"required,max=50"`
	Description     string                 `json:"description"`
	DiscountType    promotion.DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue   decimal.Decimal        `json:"discount_value"`
	MinimumPurchase decimal.Decimal        `json:"minimum_purchase"`
	UsageLimit      *int                   `json:"usage_limit"`
	StartsAt        *time.Time             `json:"starts_at"`
	ExpiresAt       *time.Time             `json:"expires_at"`
	IsActive        *bool                  `json:"is_active"`
}

func (r DiscountRequest) params() promotion.DiscountParams {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return promotion.DiscountParams{
		Code:            r.Code,
		Description:     r.Description,
		Type:            r.DiscountType,
		Value:           r.DiscountValue,
		MinimumPurchase: r.MinimumPurchase,
		UsageLimit:      r.UsageLimit,
		StartsAt:        r.StartsAt,
		ExpiresAt:       r.ExpiresAt,
		IsActive:        active,
	}
}

// DiscountResponse is a discount as returned to the admin
type DiscountResponse struct {
	ID              uuid.UUID              `json:"id"`
	Code            string                 `json:"code"`
	Description     string                 `json:"description,omitempty"`
	DiscountType    promotion.DiscountType `json:"discount_type"`
	DiscountValue   decimal.Decimal        `json:"discount_value"`
	MinimumPurchase decimal.Decimal        `json:"minimum_purchase"`
	UsageLimit      *int                   `json:"usage_limit"`
	UsageCount      int                    `json:"usage_count"`
	StartsAt        *time.Time             `json:"starts_at"`
	ExpiresAt       *time.Time             `json:"expires_at"`
	IsActive        bool                   `json:"is_active"`
	CreatedAt       time.Time              `json:"created_at"`
}

// ToDiscountResponse maps a domain discount
func ToDiscountResponse(d *promotion.Discount) DiscountResponse {
	return DiscountResponse{
		ID:              d.ID,
		Code:            d.Code,
		Description:     d.Description,
		DiscountType:    d.Type,
		DiscountValue:   d.Value,
		MinimumPurchase: d.MinimumPurchase,
		UsageLimit:      d.UsageLimit,
		UsageCount:      d.UsageCount,
		StartsAt:        d.StartsAt,
		ExpiresAt:       d.ExpiresAt,
		IsActive:        d.IsActive,
		CreatedAt:       d.CreatedAt,
	}
}
