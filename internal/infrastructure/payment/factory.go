package payment

import (
	"fmt"

	"github.com/wagginmeals/backend/internal/domain/payment"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewGateway builds the gateway selected by payment.provider
func NewGateway(cfg *config.Config, logger *zap.Logger) (payment.Gateway, error) {
	provider := payment.Provider(cfg.Payment.Provider)
	if provider == "" {
		provider = payment.ProviderAuthorizeNet
	}
	logger = logger.With(zap.String("payment_provider", provider.String()))

	switch provider {
	case payment.ProviderAuthorizeNet:
		gw, err := NewAuthorizeNetGateway(cfg.AuthorizeNet, logger)
		if err != nil {
			return nil, err
		}
		return gw, nil
	case payment.ProviderStripe:
		gw, err := NewStripeGateway(cfg.Stripe, logger)
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", payment.ErrGatewayNotConfigured, provider)
	}
}
