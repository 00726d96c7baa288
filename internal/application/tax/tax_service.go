package tax

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/tax"
	"go.uber.org/zap"
)

// TaxService looks up rates and calculates sales tax
type TaxService struct {
	repo   tax.Repository
	logger *zap.Logger
}

// NewTaxService creates a new TaxService
func NewTaxService(repo tax.Repository, logger *zap.Logger) *TaxService {
	return &TaxService{repo: repo, logger: logger}
}

// Lookup finds the most specific active rate: ZIP, then county, then state.
// With no match the rate is zero and source is nil.
func (s *TaxService) Lookup(ctx context.Context, state, zip, county string) (decimal.Decimal, *tax.Rate, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	try := func(find func() (*tax.Rate, error)) (*tax.Rate, error) {
		r, err := find()
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return r, err
	}

	if zip = strings.TrimSpace(zip); zip != "" {
		r, err := try(func() (*tax.Rate, error) { return s.repo.FindActiveByZip(ctx, state, zip) })
		if err != nil || r != nil {
			return rateOf(r), r, err
		}
	}
	if county = strings.TrimSpace(county); county != "" {
		r, err := try(func() (*tax.Rate, error) { return s.repo.FindActiveByCounty(ctx, state, county) })
		if err != nil || r != nil {
			return rateOf(r), r, err
		}
	}
	r, err := try(func() (*tax.Rate, error) { return s.repo.FindActiveStateRate(ctx, state) })
	if err != nil {
		return decimal.Zero, nil, err
	}
	if r == nil {
		s.logger.Warn("no tax rate found", zap.String("state", state), zap.String("zip", zip))
	}
	return rateOf(r), r, nil
}

func rateOf(r *tax.Rate) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return r.Rate
}

// Calculate returns the tax on amount for a destination
func (s *TaxService) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error) {
	if strings.TrimSpace(req.State) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "State is required for tax calculation")
	}
	rate, _, err := s.Lookup(ctx, req.State, req.ZipCode, req.County)
	if err != nil {
		return nil, err
	}
	return &CalculateResponse{
		TaxAmount:         tax.Amount(req.Amount, rate),
		TaxRate:           rate,
		TaxRatePercentage: tax.Percentage(rate),
	}, nil
}

// TaxFor is the tax on amount shipped to state/zip. Lookup failures count as
// no tax and are logged.
func (s *TaxService) TaxFor(ctx context.Context, amount decimal.Decimal, state, zip string) decimal.Decimal {
	if strings.TrimSpace(state) == "" {
		return decimal.Zero
	}
	rate, _, err := s.Lookup(ctx, state, zip, "")
	if err != nil {
		s.logger.Warn("tax lookup failed, charging no tax",
			zap.String("state", state), zap.String("zip", zip), zap.Error(err))
		return decimal.Zero
	}
	return tax.Amount(amount, rate)
}

// Breakdown itemizes tax per line
func (s *TaxService) Breakdown(ctx context.Context, req BreakdownRequest) (*BreakdownResponse, error) {
	rate, source, err := s.Lookup(ctx, req.State, req.ZipCode, req.County)
	if err != nil {
		return nil, err
	}
	resp := &BreakdownResponse{
		TaxRate:           rate,
		TaxRatePercentage: tax.Percentage(rate),
		AppliedRate:       AppliedRate{State: strings.ToUpper(req.State), Rate: rate},
	}
	if source != nil {
		resp.AppliedRate.County = source.County
		resp.AppliedRate.ZipCode = source.ZipCode
	}
	subtotal, taxTotal := decimal.Zero, decimal.Zero
	for _, it := range req.Items {
		taxable := it.IsTaxable == nil || *it.IsTaxable
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lineTax := decimal.Zero
		if taxable {
			lineTax = tax.Amount(line, rate)
		}
		subtotal = subtotal.Add(line)
		taxTotal = taxTotal.Add(lineTax)
		resp.Items = append(resp.Items, BreakdownItem{
			Title:        it.Title,
			Price:        it.Price,
			Quantity:     it.Quantity,
			ItemSubtotal: shared.Round2(line),
			ItemTax:      lineTax,
			IsTaxable:    taxable,
		})
	}
	resp.Subtotal = shared.Round2(subtotal)
	resp.TaxAmount = shared.Round2(taxTotal)
	resp.Total = shared.Round2(subtotal.Add(taxTotal))
	return resp, nil
}

// ListRates returns rates matching the filter
func (s *TaxService) ListRates(ctx context.Context, filter shared.Filter) ([]RateResponse, int64, error) {
	rates, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RateResponse, len(rates))
	for i := range rates {
		out[i] = ToRateResponse(&rates[i])
	}
	return out, total, nil
}

// CreateRate adds a rate
func (s *TaxService) CreateRate(ctx context.Context, req RateRequest) (*RateResponse, error) {
	r, err := tax.NewRate(req.params(true))
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToRateResponse(r)
	return &resp, nil
}

// UpdateRate replaces a rate's fields
func (s *TaxService) UpdateRate(ctx context.Context, id uuid.UUID, req RateRequest) (*RateResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	active := r.IsActive
	if req.IsActive != nil {
		active = *req.IsActive
	}
	if err := r.Update(req.params(active)); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	resp := ToRateResponse(r)
	return &resp, nil
}

// DeleteRate soft-deletes a rate
func (s *TaxService) DeleteRate(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	r.Deactivate()
	return s.repo.Save(ctx, r)
}

// ImportRates validates every row first and stores them all, or none
func (s *TaxService) ImportRates(ctx context.Context, rows []RateRequest) (*ImportResult, error) {
	result := &ImportResult{}
	rates := make([]*tax.Rate, 0, len(rows))
	for i, row := range rows {
		r, err := tax.NewRate(row.params(true))
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Row: i + 1, Error: err.Error()})
			continue
		}
		rates = append(rates, r)
	}
	if len(result.Errors) > 0 {
		return result, shared.NewDomainError("VALIDATION_ERROR", "Some rows are invalid; nothing was imported")
	}
	if err := s.repo.SaveBatch(ctx, rates); err != nil {
		return nil, err
	}
	result.Imported = len(rates)
	return result, nil
}
