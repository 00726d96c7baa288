package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestNewGateway(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
		want    any
	}{
		{
			name: "defaults to authorize.net",
			cfg: config.Config{AuthorizeNet: config.AuthorizeNetConfig{
				Environment: "sandbox", LoginID: "login", TransactionKey: "key",
			}},
			want: &AuthorizeNetGateway{},
		},
		{
			name: "stripe",
			cfg: config.Config{
				Payment: config.PaymentConfig{Provider: "stripe"},
				Stripe:  config.StripeConfig{SecretKey: "sk_test_123"},
			},
			want: &StripeGateway{},
		},
		{
			name:    "authorize.net without credentials",
			cfg:     config.Config{},
			wantErr: true,
		},
		{
			name:    "stripe without key",
			cfg:     config.Config{Payment: config.PaymentConfig{Provider: "stripe"}},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{Payment: config.PaymentConfig{Provider: "paypal"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, err := NewGateway(&tt.cfg, zap.NewNop())
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, payment.ErrGatewayNotConfigured)
				assert.Nil(t, gw)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, gw)
		})
	}
}
