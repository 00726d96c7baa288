package tax

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
)

var states = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "DC": "District of Columbia",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho", "IL": "Illinois",
	"IN": "Indiana", "IA": "Iowa", "KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana",
	"ME": "Maine", "MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon",
	"PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota",
	"TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont", "VA": "Virginia",
	"WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

// Errors
var (
	ErrRateNotFound = shared.NewDomainError("NOT_FOUND", "Tax rate not found")
	ErrInvalidState = shared.NewDomainError("INVALID_INPUT", "Invalid state code")
	ErrInvalidRate  = shared.NewDomainError("INVALID_INPUT", "Tax rate must be between 0 and 1")
)

// StateName returns the full name for a two-letter code
func StateName(code string) (string, bool) {
	name, ok := states[strings.ToUpper(strings.TrimSpace(code))]
	return name, ok
}

// Rate is a sales tax rate for a state, county or ZIP code.
// Rate is a fraction, 0.0725 means 7.25%.
type Rate struct {
	shared.BaseEntity
	StateCode string
	StateName string
	County    string
	ZipCode   string
	Rate      decimal.Decimal
	IsActive  bool
	Notes     string
}

// RateParams are the editable fields of a rate
type RateParams struct {
	StateCode string
	County    string
	ZipCode   string
	Rate      decimal.Decimal
	IsActive  bool
	Notes     string
}

// NewRate validates and creates an active rate
func NewRate(p RateParams) (*Rate, error) {
	r := &Rate{BaseEntity: shared.NewBaseEntity()}
	p.IsActive = true
	if err := r.Update(p); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the rate's fields
func (r *Rate) Update(p RateParams) error {
	code := strings.ToUpper(strings.TrimSpace(p.StateCode))
	name, ok := states[code]
	if !ok {
		return ErrInvalidState
	}
	if p.Rate.IsNegative() || p.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return ErrInvalidRate
	}
	r.StateCode = code
	r.StateName = name
	r.County = strings.TrimSpace(p.County)
	r.ZipCode = strings.TrimSpace(p.ZipCode)
	r.Rate = p.Rate
	r.IsActive = p.IsActive
	r.Notes = p.Notes
	r.Touch()
	return nil
}

// Deactivate soft-deletes the rate
func (r *Rate) Deactivate() {
	r.IsActive = false
	r.Touch()
}

// Amount is round2(amount × rate)
func Amount(amount, rate decimal.Decimal) decimal.Decimal {
	return shared.Round2(amount.Mul(rate))
}

// Percentage formats a rate fraction as "7.25%"
func Percentage(rate decimal.Decimal) string {
	return fmt.Sprintf("%s%%", rate.Mul(decimal.NewFromInt(100)).StringFixed(2))
}

// Repository persists tax rates
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Rate, error)
	// FindActiveByZip, FindActiveByCounty and FindActiveStateRate return shared.ErrNotFound on a miss
	FindActiveByZip(ctx context.Context, stateCode, zip string) (*Rate, error)
	FindActiveByCounty(ctx context.Context, stateCode, county string) (*Rate, error)
	// FindActiveStateRate returns the rate with neither county nor ZIP set
	FindActiveStateRate(ctx context.Context, stateCode string) (*Rate, error)
	// FindAll lists rates. Filters supports "state_code" and "active".
	FindAll(ctx context.Context, filter shared.Filter) ([]Rate, int64, error)
	Save(ctx context.Context, r *Rate) error
	SaveBatch(ctx context.Context, rates []*Rate) error
}
