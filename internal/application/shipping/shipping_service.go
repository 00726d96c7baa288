package shipping

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

var errNoUsableRates = errors.New("shipping: vendor returned no usable rates")

// ShippingService prices shipping with a live vendor and falls back to the zone table
type ShippingService struct {
	provider shipping.RateProvider
	logger   *zap.Logger
}

// NewShippingService creates a new ShippingService. A nil provider means
// zone-based rates only.
func NewShippingService(provider shipping.RateProvider, logger *zap.Logger) *ShippingService {
	return &ShippingService{provider: provider, logger: logger}
}

// Calculate quotes every available method for a cart and destination
func (s *ShippingService) Calculate(ctx context.Context, req CalculateRequest) (*shipping.Quote, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Items array is required")
	}
	addr := req.Address.Normalize()
	if addr.State == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipping address with state is required")
	}
	weight := shipping.TotalWeight(req.Items)
	methods, provider := s.rates(ctx, req.Subtotal, weight, addr, req.CustomerName)
	return &shipping.Quote{
		Subtotal:                req.Subtotal,
		Weight:                  weight,
		Address:                 addr,
		Methods:                 methods,
		FreeShippingThreshold:   shipping.FreeShippingThreshold,
		AmountUntilFreeShipping: shipping.AmountUntilFree(req.Subtotal),
		QualifiesForFree:        shipping.QualifiesForFree(req.Subtotal),
		Provider:                provider,
	}, nil
}

// Select quotes the cart and picks the preferred method, or the cheapest
// one that is not local pickup.
func (s *ShippingService) Select(ctx context.Context, req CalculateRequest, preferredID string) (shipping.Method, *shipping.Quote, error) {
	quote, err := s.Calculate(ctx, req)
	if err != nil {
		return shipping.Method{}, nil, err
	}
	m, ok := shipping.SelectMethod(quote.Methods, preferredID)
	if !ok {
		return shipping.Method{}, nil, shared.NewDomainError("INVALID_INPUT", "No shipping method available")
	}
	return m, quote, nil
}

func (s *ShippingService) rates(ctx context.Context, subtotal decimal.Decimal, weight float64, addr valueobject.Address, name string) ([]shipping.Method, string) {
	if s.provider != nil {
		rates, err := s.provider.Rates(ctx, shipping.RateRequest{Destination: addr, WeightPounds: weight, CustomerName: name})
		if err == nil {
			methods := shipping.CarrierMethods(rates, subtotal)
			// local pickup alone means the vendor gave us nothing
			if len(methods) > 1 {
				return methods, shipping.ProviderShippo
			}
			err = errNoUsableRates
		}
		s.logger.Warn("carrier rates unavailable, falling back to zone-based rates",
			zap.String("state", addr.State),
			zap.Float64("weight_lb", weight),
			zap.Error(err),
		)
	}
	return shipping.FallbackMethods(subtotal, weight, addr), shipping.ProviderZoneBased
}

// Zones describes the static rate table
func (s *ShippingService) Zones() ZonesResponse {
	return ZonesResponse{
		Zones:                 shipping.Zones,
		FreeShippingThreshold: shipping.FreeShippingThreshold,
		LocalDeliveryCities:   shipping.LocalDeliveryCities,
	}
}

// ValidateAddress lists the problems with a shipping address
func ValidateAddress(addr valueobject.Address) []string {
	return addr.Problems()
}
