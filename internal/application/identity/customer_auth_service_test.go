package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/customer"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/auth"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const providerSecret = "hosted-provider-secret-32-characters"

type MockCustomerRepository struct{ mock.Mock }

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func newCustomerAuth(t *testing.T) (*CustomerAuthService, *MockCustomerRepository) {
	t.Helper()
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:           "admin-secret-key-at-least-32-chars",
		Issuer:           "test",
		CustomerSecret:   providerSecret,
		CustomerAudience: auth.RoleAuthenticated,
	})
	repo := new(MockCustomerRepository)
	return NewCustomerAuthService(jwtSvc, repo, zap.NewNop()), repo
}

func providerToken(t *testing.T, email string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.CustomerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth-user-1",
			Audience:  jwt.ClaimStrings{auth.RoleAuthenticated},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: email,
		Role:  auth.RoleAuthenticated,
	}).SignedString([]byte(providerSecret))
	require.NoError(t, err)
	return token
}

func TestCustomerAuthService_ExistingCustomer(t *testing.T) {
	svc, repo := newCustomerAuth(t)
	existing, err := customer.NewCustomer("pup@example.com", "Rex", "Dog", "")
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "pup@example.com").Return(existing, nil)

	p, err := svc.AuthenticateCustomer(context.Background(), providerToken(t, "pup@example.com"))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, p.CustomerID)
	assert.Equal(t, "pup@example.com", p.Email)
	assert.Equal(t, "auth-user-1", p.AuthUserID)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerAuthService_FirstSignInCreatesCustomer(t *testing.T) {
	svc, repo := newCustomerAuth(t)
	repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, shared.ErrNotFound)
	var saved *customer.Customer
	repo.On("Save", mock.Anything, mock.AnythingOfType("*customer.Customer")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*customer.Customer) }).
		Return(nil)

	p, err := svc.AuthenticateCustomer(context.Background(), providerToken(t, "new@example.com"))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, saved.ID, p.CustomerID)
	assert.False(t, saved.IsGuest)
}

func TestCustomerAuthService_ClaimsGuestRecord(t *testing.T) {
	svc, repo := newCustomerAuth(t)
	guest, err := customer.NewGuestCustomer("guest@example.com", "", "", "")
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "guest@example.com").Return(guest, nil)
	repo.On("Save", mock.Anything, guest).Return(nil)

	p, err := svc.AuthenticateCustomer(context.Background(), providerToken(t, "guest@example.com"))
	require.NoError(t, err)
	assert.Equal(t, guest.ID, p.CustomerID)
	assert.False(t, guest.IsGuest)
	repo.AssertExpectations(t)
}

func TestCustomerAuthService_Failures(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		svc, repo := newCustomerAuth(t)
		_, err := svc.AuthenticateCustomer(context.Background(), "not-a-token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("lookup error", func(t *testing.T) {
		svc, repo := newCustomerAuth(t)
		boom := errors.New("connection reset")
		repo.On("FindByEmail", mock.Anything, "pup@example.com").Return(nil, boom)

		_, err := svc.AuthenticateCustomer(context.Background(), providerToken(t, "pup@example.com"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("save error", func(t *testing.T) {
		svc, repo := newCustomerAuth(t)
		boom := errors.New("disk full")
		repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.Anything).Return(boom)

		_, err := svc.AuthenticateCustomer(context.Background(), providerToken(t, "new@example.com"))
		assert.ErrorIs(t, err, boom)
	})
}
