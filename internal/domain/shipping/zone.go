package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zone is a regional rate band
type Zone struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	States       []string        `json:"states"`
	BaseRate     decimal.Decimal `json:"base_rate"`
	PerPoundRate decimal.Decimal `json:"per_pound_rate"`
}

const (
	ZoneLocal = "local"
)

// Zones is the static rate table, local area first and the most expensive zone last
var Zones = []Zone{
	{ID: ZoneLocal, Name: "Local (Asheville Area)", States: []string{"NC"}, BaseRate: decimal.Zero, PerPoundRate: decimal.Zero},
	{ID: "zone-1", Name: "Zone 1 (Southeast)", States: []string{"NC", "SC", "GA", "TN", "VA", "WV", "KY", "FL", "AL", "MS"},
		BaseRate: decimal.RequireFromString("9.99"), PerPoundRate: decimal.RequireFromString("0.50")},
	{ID: "zone-2", Name: "Zone 2 (Mid-Atlantic & Midwest)", States: []string{"MD", "DE", "PA", "NJ", "NY", "OH", "IN", "IL", "MI", "WI", "MN", "IA", "MO"},
		BaseRate: decimal.RequireFromString("12.99"), PerPoundRate: decimal.RequireFromString("0.75")},
	{ID: "zone-3", Name: "Zone 3 (Northeast & Plains)", States: []string{"CT", "RI", "MA", "VT", "NH", "ME", "ND", "SD", "NE", "KS", "OK", "AR", "LA", "TX"},
		BaseRate: decimal.RequireFromString("14.99"), PerPoundRate: decimal.RequireFromString("1.00")},
	{ID: "zone-4", Name: "Zone 4 (West)", States: []string{"MT", "WY", "CO", "NM", "AZ", "UT", "ID", "NV", "CA", "OR", "WA"},
		BaseRate: decimal.RequireFromString("17.99"), PerPoundRate: decimal.RequireFromString("1.25")},
	{ID: "zone-5", Name: "Zone 5 (Alaska & Hawaii)", States: []string{"AK", "HI"},
		BaseRate: decimal.RequireFromString("29.99"), PerPoundRate: decimal.RequireFromString("2.00")},
}

// LocalDeliveryCities are the NC towns we deliver to ourselves
var LocalDeliveryCities = []string{
	"asheville", "hendersonville", "fletcher", "arden", "black mountain",
	"weaverville", "candler", "fairview", "swannanoa", "leicester",
}

// IsLocal reports whether the address is inside the local delivery area.
// Either city name containing the other counts as a match.
func IsLocal(state, city string) bool {
	if strings.ToUpper(strings.TrimSpace(state)) != "NC" {
		return false
	}
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return false
	}
	for _, local := range LocalDeliveryCities {
		if strings.Contains(city, local) || strings.Contains(local, city) {
			return true
		}
	}
	return false
}

// ZoneFor finds the zone for a destination. Unknown states fall into the last zone.
func ZoneFor(state, city string) Zone {
	if IsLocal(state, city) {
		return Zones[0]
	}
	state = strings.ToUpper(strings.TrimSpace(state))
	for _, z := range Zones[1:] {
		for _, s := range z.States {
			if s == state {
				return z
			}
		}
	}
	return Zones[len(Zones)-1]
}

// EstimatedDays is the delivery window shown for a zone
func EstimatedDays(zoneID string) string {
	switch zoneID {
	case ZoneLocal:
		return "1-2 business days"
	case "zone-1":
		return "2-4 business days"
	case "zone-2":
		return "3-5 business days"
	case "zone-3":
		return "4-6 business days"
	case "zone-5":
		return "7-10 business days"
	default:
		return "5-7 business days"
	}
}
