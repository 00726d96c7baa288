package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

type stripeCall struct {
	method string
	path   string
}

// mockBackend answers Stripe API calls from a handler keyed on method and path
type mockBackend struct {
	handler func(method, path string) (any, error)
	calls   []stripeCall
}

func (m *mockBackend) respond(method, path string, v any) error {
	m.calls = append(m.calls, stripeCall{method, path})
	resp, err := m.handler(method, path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	return m.respond(method, path, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return m.respond(method, path, v)
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func newStripeTestGateway(t *testing.T, handler func(method, path string) (any, error)) (*StripeGateway, *mockBackend) {
	t.Helper()
	mock := &mockBackend{handler: handler}
	g, err := newStripeGateway(config.StripeConfig{SecretKey: "sk_test_123"}, mock, zap.NewNop())
	require.NoError(t, err)
	return g, mock
}

func emptyList() map[string]any {
	return map[string]any{"object": "list", "data": []any{}, "has_more": false}
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway(config.StripeConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, payment.ErrGatewayNotConfigured)
}

func TestStripe_CreateCustomerProfile(t *testing.T) {
	t.Run("creates when no customer has the email", func(t *testing.T) {
		g, mock := newStripeTestGateway(t, func(method, path string) (any, error) {
			switch {
			case method == http.MethodGet && path == "/v1/customers":
				return emptyList(), nil
			case method == http.MethodPost && path == "/v1/customers":
				return &stripe.Customer{ID: "cus_new"}, nil
			}
			return nil, fmt.Errorf("unexpected call: %s %s", method, path)
		})

		id, err := g.CreateCustomerProfile(context.Background(), payment.CreateProfileRequest{Email: "pup@example.com", CustomerID: "c1"})

		require.NoError(t, err)
		assert.Equal(t, "cus_new", id)
		assert.Len(t, mock.calls, 2)
	})

	t.Run("reuses an existing customer", func(t *testing.T) {
		g, mock := newStripeTestGateway(t, func(method, path string) (any, error) {
			if method == http.MethodGet && path == "/v1/customers" {
				return map[string]any{"object": "list", "data": []any{map[string]any{"id": "cus_old"}}}, nil
			}
			return nil, fmt.Errorf("unexpected call: %s %s", method, path)
		})

		id, err := g.CreateCustomerProfile(context.Background(), payment.CreateProfileRequest{Email: "pup@example.com", CustomerID: "c1"})

		require.NoError(t, err)
		assert.Equal(t, "cus_old", id)
		assert.Len(t, mock.calls, 1)
	})
}

func TestStripe_CreatePaymentProfile(t *testing.T) {
	card := payment.Card{Number: "4242424242424242", ExpirationMonth: 12, ExpirationYear: 2030, CVV: "123"}

	t.Run("attaches and marks default", func(t *testing.T) {
		g, mock := newStripeTestGateway(t, func(method, path string) (any, error) {
			switch path {
			case "/v1/payment_methods":
				return &stripe.PaymentMethod{ID: "pm_1"}, nil
			case "/v1/payment_methods/pm_1/attach":
				return &stripe.PaymentMethod{ID: "pm_1"}, nil
			case "/v1/customers/cus_1":
				return &stripe.Customer{ID: "cus_1"}, nil
			}
			return nil, fmt.Errorf("unexpected call: %s %s", method, path)
		})

		id, err := g.CreatePaymentProfile(context.Background(), payment.CreatePaymentProfileRequest{ProfileID: "cus_1", Card: card, IsDefault: true})

		require.NoError(t, err)
		assert.Equal(t, "pm_1", id)
		assert.Equal(t, []stripeCall{
			{http.MethodPost, "/v1/payment_methods"},
			{http.MethodPost, "/v1/payment_methods/pm_1/attach"},
			{http.MethodPost, "/v1/customers/cus_1"},
		}, mock.calls)
	})

	t.Run("card error maps to invalid card", func(t *testing.T) {
		g, _ := newStripeTestGateway(t, func(method, path string) (any, error) {
			return nil, &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card number is incorrect."}
		})

		_, err := g.CreatePaymentProfile(context.Background(), payment.CreatePaymentProfileRequest{ProfileID: "cus_1", Card: card})

		assert.ErrorIs(t, err, payment.ErrInvalidCard)
	})
}

func TestStripe_ChargeProfile(t *testing.T) {
	req := payment.ChargeRequest{
		ProfileID:        "cus_1",
		PaymentProfileID: "pm_1",
		Amount:           decimal.RequireFromString("59.99"),
		InvoiceNumber:    "SUB-1",
	}

	tests := []struct {
		name    string
		resp    any
		err     error
		wantErr error
	}{
		{
			name: "succeeded",
			resp: map[string]any{
				"id":     "pi_1",
				"status": "succeeded",
				"payment_method": map[string]any{
					"id":   "pm_1",
					"card": map[string]any{"last4": "4242", "brand": "visa"},
				},
			},
		},
		{
			name:    "requires action",
			resp:    map[string]any{"id": "pi_2", "status": "requires_action"},
			wantErr: payment.ErrChargeDeclined,
		},
		{
			name:    "card declined",
			err:     &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "Your card was declined."},
			wantErr: payment.ErrChargeDeclined,
		},
		{
			name:    "api error",
			err:     &stripe.Error{Type: stripe.ErrorTypeAPI, Msg: "boom"},
			wantErr: payment.ErrGatewayRequestFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newStripeTestGateway(t, func(method, path string) (any, error) {
				require.Equal(t, "/v1/payment_intents", path)
				return tt.resp, tt.err
			})

			res, err := g.ChargeProfile(context.Background(), req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pi_1", res.TransactionID)
			assert.Equal(t, "XXXX4242", res.AccountNumber)
			assert.Equal(t, "visa", res.AccountType)
		})
	}
}

func TestStripe_Refund(t *testing.T) {
	g, _ := newStripeTestGateway(t, func(method, path string) (any, error) {
		if path == "/v1/refunds" {
			return &stripe.Refund{ID: "re_1", Status: stripe.RefundStatusSucceeded}, nil
		}
		return nil, fmt.Errorf("unexpected call: %s %s", method, path)
	})

	res, err := g.Refund(context.Background(), payment.RefundRequest{TransactionID: "pi_1", Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, "re_1", res.TransactionID)

	_, err = g.Refund(context.Background(), payment.RefundRequest{Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, payment.ErrRefundNotAllowed)
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(5999), toCents(decimal.RequireFromString("59.99")))
	assert.Equal(t, int64(1000), toCents(decimal.RequireFromString("10")))
	assert.Equal(t, int64(13), toCents(decimal.RequireFromString("0.125")))
}

func TestNewGateway_Provider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		want    payment.Provider
		wantErr bool
	}{
		{
			name: "defaults to authorize.net",
			cfg:  config.Config{AuthorizeNet: config.AuthorizeNetConfig{LoginID: "l", TransactionKey: "k"}},
			want: payment.ProviderAuthorizeNet,
		},
		{
			name: "stripe",
			cfg:  config.Config{Payment: config.PaymentConfig{Provider: "stripe"}, Stripe: config.StripeConfig{SecretKey: "sk_test_1"}},
			want: payment.ProviderStripe,
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{Payment: config.PaymentConfig{Provider: "paypal"}},
			wantErr: true,
		},
		{
			name:    "missing credentials",
			cfg:     config.Config{Payment: config.PaymentConfig{Provider: "authorizenet"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := NewGateway(&tt.cfg, zap.NewNop())
			if tt.wantErr {
				assert.ErrorIs(t, err, payment.ErrGatewayNotConfigured)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, gw.Provider())
		})
	}
}
