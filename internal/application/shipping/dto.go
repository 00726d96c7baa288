package shipping

import (
	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shared/valueobject"
	"github.com/wagginmeals/backend/internal/domain/shipping"
)

// CalculateRequest is a cart and destination to price
type CalculateRequest struct {
	Subtotal     decimal.Decimal
	Items        []shipping.WeightedItem
	Address      valueobject.Address
	CustomerName string
}

// ZonesResponse is the public zone table
type ZonesResponse struct {
	Zones                 []shipping.Zone `json:"zones"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	LocalDeliveryCities   []string        `json:"local_delivery_cities"`
}
