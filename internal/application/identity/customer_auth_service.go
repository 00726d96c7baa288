package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// CustomerTokenVerifier checks hosted auth provider access tokens
type CustomerTokenVerifier interface {
	ValidateCustomerToken(token string) (*auth.CustomerClaims, error)
}

// CustomerPrincipal is the signed-in storefront customer behind a request
type CustomerPrincipal struct {
	CustomerID uuid.UUID
	Email      string
	AuthUserID string
}

// CustomerAuthService maps a verified sign-in to the customer record with the
// same email. The first sign-in creates the record, or claims the guest
// record left behind by an earlier checkout.
type CustomerAuthService struct {
	tokens    CustomerTokenVerifier
	customers customer.Repository
	logger    *zap.Logger
}

// NewCustomerAuthService creates a new CustomerAuthService
func NewCustomerAuthService(tokens CustomerTokenVerifier, customers customer.Repository, logger *zap.Logger) *CustomerAuthService {
	return &CustomerAuthService{tokens: tokens, customers: customers, logger: logger}
}

// AuthenticateCustomer verifies token and resolves its customer
func (s *CustomerAuthService) AuthenticateCustomer(ctx context.Context, token string) (*CustomerPrincipal, error) {
	claims, err := s.tokens.ValidateCustomerToken(token)
	if err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByEmail(ctx, claims.Email)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		cust, err = customer.NewCustomer(claims.Email, "", "", "")
		if err != nil {
			return nil, err
		}
		if err := s.customers.Save(ctx, cust); err != nil {
			return nil, err
		}
		s.logger.Info("customer record created on first sign-in",
			zap.String("customer_id", cust.ID.String()),
			zap.String("auth_user_id", claims.Subject),
		)
	case err != nil:
		return nil, err
	case cust.IsGuest:
		cust.ClaimAccount()
		if err := s.customers.Save(ctx, cust); err != nil {
			return nil, err
		}
		s.logger.Info("guest customer claimed by sign-in",
			zap.String("customer_id", cust.ID.String()),
			zap.String("auth_user_id", claims.Subject),
		)
	}

	return &CustomerPrincipal{CustomerID: cust.ID, Email: cust.Email, AuthUserID: claims.Subject}, nil
}
