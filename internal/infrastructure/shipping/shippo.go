// Package shipping holds the real-time carrier rate adapter.
package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wagginmeals/backend/internal/domain/shipping"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no Shippo API key is set
var ErrNotConfigured = errors.New("shippo: api key not configured")

const defaultEstimatedDays = 7

type shippoAddress struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type shippoParcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

type shippoShipmentRequest struct {
	AddressFrom shippoAddress  `json:"address_from"`
	AddressTo   shippoAddress  `json:"address_to"`
	Parcels     []shippoParcel `json:"parcels"`
	Async       bool           `json:"async"`
}

type shippoRate struct {
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Provider      string `json:"provider"`
	EstimatedDays int    `json:"estimated_days"`
	ServiceLevel  struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	} `json:"servicelevel"`
}

type shippoShipmentResponse struct {
	Rates    []shippoRate `json:"rates"`
	Messages []struct {
		Source string `json:"source"`
		Code   string `json:"code"`
		Text   string `json:"text"`
	} `json:"messages"`
}

// ShippoClient implements shipping.RateProvider with the Shippo shipments API
type ShippoClient struct {
	apiKey     string
	baseURL    string
	origin     shippoAddress
	httpClient *http.Client
	logger     *zap.Logger
}

var _ shipping.RateProvider = (*ShippoClient)(nil)

// NewShippoClient creates the adapter
func NewShippoClient(cfg config.ShippoConfig, logger *zap.Logger) (*ShippoClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.goshippo.com"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	country := cfg.OriginCountry
	if country == "" {
		country = "US"
	}
	return &ShippoClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		origin: shippoAddress{
			Name:    cfg.OriginName,
			Street1: cfg.OriginStreet,
			City:    cfg.OriginCity,
			State:   cfg.OriginState,
			Zip:     cfg.OriginZip,
			Country: country,
			Phone:   cfg.OriginPhone,
			Email:   cfg.OriginEmail,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Rates quotes a single 12x10x8 in parcel to the destination
func (c *ShippoClient) Rates(ctx context.Context, req shipping.RateRequest) ([]shipping.CarrierRate, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		name = "Customer"
	}
	dest := req.Destination.Normalize()
	body, err := json.Marshal(shippoShipmentRequest{
		AddressFrom: c.origin,
		AddressTo: shippoAddress{
			Name:    name,
			Street1: dest.Street,
			Street2: dest.Street2,
			City:    dest.City,
			State:   dest.State,
			Zip:     dest.ZipCode,
			Country: dest.Country,
		},
		Parcels: []shippoParcel{{
			Length:       "12",
			Width:        "10",
			Height:       "8",
			DistanceUnit: "in",
			Weight:       fmt.Sprintf("%.2f", req.WeightPounds),
			MassUnit:     "lb",
		}},
		Async: false,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shipments/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "ShippoToken "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("shippo: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("shippo: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("shippo: api error %d: %s", resp.StatusCode, truncate(string(raw), 300))
	}

	var out shippoShipmentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("shippo: invalid response: %w", err)
	}
	for _, m := range out.Messages {
		if m.Source == "Shippo" {
			c.logger.Warn("Shippo message", zap.String("code", m.Code), zap.String("text", m.Text))
		}
	}

	rates := make([]shipping.CarrierRate, 0, len(out.Rates))
	for _, r := range out.Rates {
		price, err := decimal.NewFromString(r.Amount)
		if err != nil || !price.IsPositive() {
			continue
		}
		days := r.EstimatedDays
		if days <= 0 {
			days = defaultEstimatedDays
		}
		rates = append(rates, shipping.CarrierRate{
			Carrier:       r.Provider,
			Service:       r.ServiceLevel.Name,
			Price:         price,
			EstimatedDays: days,
		})
	}
	c.logger.Debug("Shippo rates fetched",
		zap.String("zip", dest.ZipCode),
		zap.Float64("weight_lb", req.WeightPounds),
		zap.Int("rates", len(rates)))
	return rates, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
