package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
)

const (
	testSecret         = "test-secret-key-at-least-32-chars"
	testCustomerSecret = "hosted-auth-secret-at-least-32-chars"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 testSecret,
		Issuer:                 "test-issuer",
		AdminSessionExpiration: 24 * time.Hour,
		CustomerSecret:         testCustomerSecret,
		CustomerIssuer:         "https://auth.example.com/auth/v1",
	})
}

// signProviderToken mints a token shaped like the hosted auth provider's
func signProviderToken(t *testing.T, secret string, mutate func(*CustomerClaims)) string {
	t.Helper()
	now := time.Now()
	claims := &CustomerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://auth.example.com/auth/v1",
			Subject:   "6f1d8a52-90f4-4c57-a7f4-3b2c1d0e9a11",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email: "pup@example.com",
		Role:  RoleAuthenticated,
	}
	if mutate != nil {
		mutate(claims)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewJWTService_Defaults(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s"})

	assert.Equal(t, 24*time.Hour, svc.AdminSessionExpiration())
	assert.Equal(t, []byte("s"), svc.customerSecret)
	assert.Equal(t, RoleAuthenticated, svc.customerAudience)
}

func TestAdminToken_RoundTrip(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.GenerateAdminToken("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := svc.ValidateAdminToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)
	assert.Greater(t, claims.GetRemainingTTL(), 23*time.Hour)
}

func TestValidateCustomerToken_ProviderShape(t *testing.T) {
	svc := newTestJWTService()

	claims, err := svc.ValidateCustomerToken(signProviderToken(t, testCustomerSecret, nil))
	require.NoError(t, err)
	assert.Equal(t, "pup@example.com", claims.Email)
	assert.Equal(t, "6f1d8a52-90f4-4c57-a7f4-3b2c1d0e9a11", claims.Subject)
}

func TestValidateCustomerToken_Rejects(t *testing.T) {
	svc := newTestJWTService()
	admin, err := svc.GenerateAdminToken("admin")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"admin session", admin.Token, ErrInvalidToken},
		{"anonymous role", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) { c.Role = "anon" }), ErrInvalidTokenType},
		{"no email", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) { c.Email = "" }), ErrMissingEmail},
		{"no subject", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) { c.Subject = "" }), ErrInvalidClaims},
		{"wrong audience", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) { c.Audience = jwt.ClaimStrings{"service_role"} }), ErrInvalidToken},
		{"wrong issuer", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) { c.Issuer = "https://evil.example.com" }), ErrInvalidToken},
		{"no expiry", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) { c.ExpiresAt = nil }), ErrInvalidToken},
		{"expired", signProviderToken(t, testCustomerSecret, func(c *CustomerClaims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		}), ErrExpiredToken},
		{"signed with admin secret", signProviderToken(t, testSecret, nil), ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateCustomerToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAdminToken_Rejects(t *testing.T) {
	svc := newTestJWTService()

	otherSecret := NewJWTService(config.JWTConfig{Secret: "a-different-secret-key-32-characters", Issuer: "test-issuer"})
	foreign, err := otherSecret.GenerateAdminToken("admin")
	require.NoError(t, err)

	otherIssuer := NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "staging"})
	staging, err := otherIssuer.GenerateAdminToken("admin")
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"customer token", signProviderToken(t, testSecret, nil), ErrInvalidToken},
		{"wrong signing secret", foreign.Token, ErrInvalidToken},
		{"same secret, other issuer", staging.Token, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAdminToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	issuedAt := time.Now().Add(-48 * time.Hour)
	svc.now = func() time.Time { return issuedAt }
	issued, err := svc.GenerateAdminToken("admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAdminToken(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
