package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
)

// TokenType represents the type of JWT token
type TokenType string

const TokenTypeAdminSession TokenType = "admin_session"

// Roles carried in the token
const (
	RoleAdmin = "admin"
	// RoleAuthenticated is what the hosted auth provider stamps on signed-in users
	RoleAuthenticated = "authenticated"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingEmail     = errors.New("missing email in claims")
	ErrNotAdmin         = errors.New("token does not carry the admin role")
	ErrTokenBlacklisted = errors.New("token has been revoked")
)

// Claims are the admin session claims issued by this service
type Claims struct {
	jwt.RegisteredClaims
	Role      string    `json:"role"`
	Username  string    `json:"username,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// CustomerClaims are the hosted auth provider's access token claims. Subject
// is the provider's user id; the customer record is matched by Email.
type CustomerClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IssuedToken is a signed token with its expiry
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // Bearer
}

// JWTService signs admin sessions and verifies admin and customer tokens
type JWTService struct {
	secret           []byte
	adminExpiration  time.Duration
	issuer           string
	customerSecret   []byte
	customerIssuer   string
	customerAudience string
	now              func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	adminExpiration := cfg.AdminSessionExpiration
	if adminExpiration == 0 {
		adminExpiration = 24 * time.Hour
	}
	customerSecret := cfg.CustomerSecret
	if customerSecret == "" {
		customerSecret = cfg.Secret
	}
	audience := cfg.CustomerAudience
	if audience == "" {
		audience = RoleAuthenticated
	}
	return &JWTService{
		secret:           []byte(cfg.Secret),
		adminExpiration:  adminExpiration,
		issuer:           cfg.Issuer,
		customerSecret:   []byte(customerSecret),
		customerIssuer:   cfg.CustomerIssuer,
		customerAudience: audience,
		now:              time.Now,
	}
}

// GenerateAdminToken issues the session token stored in the admin cookie
func (s *JWTService) GenerateAdminToken(username string) (*IssuedToken, error) {
	now := s.now()
	expiresAt := now.Add(s.adminExpiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role:      RoleAdmin,
		Username:  username,
		TokenType: TokenTypeAdminSession,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// ValidateAdminToken validates an admin session token
func (s *JWTService) ValidateAdminToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithIssuer(s.issuer), jwt.WithAudience(s.issuer)}
	if err := s.parse(tokenString, claims, s.secret, opts...); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAdminSession {
		return nil, ErrInvalidTokenType
	}
	if claims.Role != RoleAdmin {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

// ValidateCustomerToken verifies a hosted auth provider access token. The
// token must be for a signed-in user and name both the user and its email.
func (s *JWTService) ValidateCustomerToken(tokenString string) (*CustomerClaims, error) {
	claims := &CustomerClaims{}
	opts := []jwt.ParserOption{jwt.WithAudience(s.customerAudience), jwt.WithExpirationRequired()}
	if s.customerIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.customerIssuer))
	}
	if err := s.parse(tokenString, claims, s.customerSecret, opts...); err != nil {
		return nil, err
	}
	if claims.Role != RoleAuthenticated {
		return nil, ErrInvalidTokenType
	}
	if claims.Subject == "" {
		return nil, ErrInvalidClaims
	}
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, key []byte, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	case err != nil:
		return ErrInvalidToken
	case !token.Valid:
		return ErrInvalidClaims
	}
	return nil
}

// IsAdmin reports whether the claims carry the admin role
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// GetRemainingTTL returns the remaining time until the token expires
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AdminSessionExpiration returns how long an admin session lasts
func (s *JWTService) AdminSessionExpiration() time.Duration {
	return s.adminExpiration
}
