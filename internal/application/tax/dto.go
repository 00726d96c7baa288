package tax

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/tax"
)

// CalculateRequest asks for tax on an amount
type CalculateRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	State   string          `json:"state" binding:"required"`
	ZipCode string          `json:"zip_code"`
	County  string          `json:"county"`
}

// CalculateResponse is the tax on the amount
type CalculateResponse struct {
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxRatePercentage string          `json:"tax_rate_percentage"`
}

// BreakdownLine is a cart line for itemized tax
type BreakdownLine struct {
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	IsTaxable *bool           `json:"is_taxable"`
}

// BreakdownRequest asks for itemized tax
type BreakdownRequest struct {
	Items   []BreakdownLine `json:"items"`
	State   string          `json:"state"`
	ZipCode string          `json:"zip_code"`
	County  string          `json:"county"`
}

// BreakdownItem is one line of the breakdown
type BreakdownItem struct {
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ItemSubtotal decimal.Decimal `json:"item_subtotal"`
	ItemTax      decimal.Decimal `json:"item_tax"`
	IsTaxable    bool            `json:"is_taxable"`
}

// AppliedRate names the rate that was used
type AppliedRate struct {
	State   string          `json:"state"`
	County  string          `json:"county,omitempty"`
	ZipCode string          `json:"zip_code,omitempty"`
	Rate    decimal.Decimal `json:"rate"`
}

// BreakdownResponse is itemized tax for a cart
type BreakdownResponse struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxRatePercentage string          `json:"tax_rate_percentage"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	Items             []BreakdownItem `json:"items"`
	AppliedRate       AppliedRate     `json:"applied_tax_rate"`
}

// RateRequest creates or updates a rate
type RateRequest struct {
	StateCode string          `json:"state_code" binding:"required,len=2"`
	County    string          `json:"county"`
	ZipCode   string          `json:"zip_code"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	IsActive  *bool           `json:"is_active"`
	Notes     string          `json:"notes"`
}

func (r RateRequest) params(active bool) tax.RateParams {
	return tax.RateParams{
		StateCode: r.StateCode,
		County:    r.County,
		ZipCode:   r.ZipCode,
		Rate:      r.TaxRate,
		IsActive:  active,
		Notes:     r.Notes,
	}
}

// RateResponse is a rate as returned by the API
type RateResponse struct {
	ID        uuid.UUID       `json:"id"`
	StateCode string          `json:"state_code"`
	StateName string          `json:"state_name"`
	County    string          `json:"county,omitempty"`
	ZipCode   string          `json:"zip_code,omitempty"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	IsActive  bool            `json:"is_active"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToRateResponse maps a domain rate
func ToRateResponse(r *tax.Rate) RateResponse {
	return RateResponse{
		ID:        r.ID,
		StateCode: r.StateCode,
		StateName: r.StateName,
		County:    r.County,
		ZipCode:   r.ZipCode,
		TaxRate:   r.Rate,
		IsActive:  r.IsActive,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ImportError reports one rejected row
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk import
type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors,omitempty"`
}
