package shipping

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
)

// Method ids with special meaning
const (
	MethodLocalPickup   = "local-pickup"
	MethodLocalDelivery = "local-delivery"
	MethodStandard      = "standard"
)

// Providers reported on a quote
const (
	ProviderShippo    = "shippo"
	ProviderZoneBased = "zone-based"
)

var (
	// FreeShippingThreshold is the subtotal at which standard shipping is free
	FreeShippingThreshold = decimal.RequireFromString("165.00")
	flatRateSmall         = decimal.RequireFromString("9.99")
	flatRateMedium        = decimal.RequireFromString("12.99")
	whitespace            = regexp.MustCompile(`\s+`)
)

const (
	weightSmall  = 2.0
	weightMedium = 5.0
)

// Method is one shipping option offered to the shopper
type Method struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	EstimatedDays string          `json:"estimated_days"`
	Price         decimal.Decimal `json:"price"`
	IsFree        bool            `json:"is_free"`
}

// Quote is the full result of a rate calculation
type Quote struct {
	Subtotal                decimal.Decimal     `json:"subtotal"`
	Weight                  float64             `json:"weight"`
	Address                 valueobject.Address `json:"address"`
	Methods                 []Method            `json:"available_methods"`
	FreeShippingThreshold   decimal.Decimal     `json:"free_shipping_threshold"`
	AmountUntilFreeShipping decimal.Decimal     `json:"amount_until_free_shipping"`
	QualifiesForFree        bool                `json:"qualifies_for_free_shipping"`
	Provider                string              `json:"provider"`
}

// QualifiesForFree reports whether the subtotal earns free shipping
func QualifiesForFree(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(FreeShippingThreshold)
}

// AmountUntilFree is how much more the shopper must spend, never negative
func AmountUntilFree(subtotal decimal.Decimal) decimal.Decimal {
	left := FreeShippingThreshold.Sub(subtotal)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}

// LocalPickup is always on offer
func LocalPickup() Method {
	return Method{
		ID:            MethodLocalPickup,
		Name:          "Local Pickup",
		Description:   "Pick up at our Asheville location",
		EstimatedDays: "Same day / Next day",
		Price:         decimal.Zero,
		IsFree:        true,
	}
}

// StandardRate prices standard shipping with the hybrid model: flat rates for
// light parcels, zone base plus a per-pound charge above 5 lb.
func StandardRate(subtotal decimal.Decimal, weight float64, zone Zone) (decimal.Decimal, string) {
	switch {
	case QualifiesForFree(subtotal):
		return decimal.Zero, "Free shipping on orders $165+"
	case weight < weightSmall:
		return flatRateSmall, "Flat rate for small items (< 2 lbs)"
	case weight < weightMedium:
		return flatRateMedium, "Flat rate for medium items (2-5 lbs)"
	}
	extra := decimal.NewFromFloat(weight - weightMedium).Mul(zone.PerPoundRate)
	return zone.BaseRate.Add(extra).Round(2), "Zone-based pricing to " + zone.Name
}

// FallbackMethods builds the zone-table options for a destination
func FallbackMethods(subtotal decimal.Decimal, weight float64, addr valueobject.Address) []Method {
	free := QualifiesForFree(subtotal)
	zone := ZoneFor(addr.State, addr.City)

	methods := []Method{LocalPickup()}
	if IsLocal(addr.State, addr.City) {
		methods = append(methods, Method{
			ID:            MethodLocalDelivery,
			Name:          "Local Delivery",
			Description:   "Free delivery in Asheville area",
			EstimatedDays: "1-2 business days",
			Price:         decimal.Zero,
			IsFree:        true,
		})
	}

	price, desc := StandardRate(subtotal, weight, zone)
	name := "Standard Shipping"
	if free {
		name = "Standard Shipping (FREE!)"
	}
	methods = append(methods, Method{
		ID:            MethodStandard,
		Name:          name,
		Description:   desc,
		EstimatedDays: EstimatedDays(zone.ID),
		Price:         price,
		IsFree:        free,
	})
	return methods
}

// CarrierRate is one priced service returned by a rate vendor
type CarrierRate struct {
	Carrier       string
	Service       string
	Price         decimal.Decimal
	EstimatedDays int
}

// MethodID is "<carrier>-<service>", lowercased with whitespace runs turned into "-"
func (r CarrierRate) MethodID() string {
	return whitespace.ReplaceAllString(strings.ToLower(r.Carrier+"-"+r.Service), "-")
}

// CarrierMethods maps vendor rates to methods: positive prices only, cheapest
// first, zero priced when free shipping applies, local pickup in front.
func CarrierMethods(rates []CarrierRate, subtotal decimal.Decimal) []Method {
	usable := make([]CarrierRate, 0, len(rates))
	for _, r := range rates {
		if r.Price.IsPositive() {
			usable = append(usable, r)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Price.LessThan(usable[j].Price) })

	free := QualifiesForFree(subtotal)
	methods := make([]Method, 0, len(usable)+1)
	methods = append(methods, LocalPickup())
	for _, r := range usable {
		days := r.EstimatedDays
		if days <= 0 {
			days = 7
		}
		price := r.Price
		if free {
			price = decimal.Zero
		}
		methods = append(methods, Method{
			ID:            r.MethodID(),
			Name:          r.Carrier + " " + r.Service,
			Description:   "Delivery via " + r.Carrier,
			EstimatedDays: fmt.Sprintf("%d business days", days),
			Price:         price,
			IsFree:        free,
		})
	}
	return methods
}

// SelectMethod picks the preferred method when offered, otherwise the
// cheapest method that is not local pickup.
func SelectMethod(methods []Method, preferredID string) (Method, bool) {
	if len(methods) == 0 {
		return Method{}, false
	}
	if preferredID != "" {
		for _, m := range methods {
			if m.ID == preferredID {
				return m, true
			}
		}
	}
	var best *Method
	for i := range methods {
		m := &methods[i]
		if m.ID == MethodLocalPickup {
			continue
		}
		if best == nil || m.Price.LessThan(best.Price) {
			best = m
		}
	}
	if best == nil {
		return methods[0], true
	}
	return *best, true
}

// RateRequest is what a vendor needs to price a parcel
type RateRequest struct {
	Destination  valueobject.Address
	WeightPounds float64
	CustomerName string
}

// RateProvider is a real-time carrier rate vendor
type RateProvider interface {
	Rates(ctx context.Context, req RateRequest) ([]CarrierRate, error)
}
