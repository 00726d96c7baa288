package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wagginmeals/backend/internal/application/identity"
	"github.com/wagginmeals/backend/internal/infrastructure/auth"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
)

// AdminAuthenticator verifies admin session tokens, including revocation
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// CustomerAuthenticator resolves a hosted auth provider token to a customer
type CustomerAuthenticator interface {
	AuthenticateCustomer(ctx context.Context, token string) (*identity.CustomerPrincipal, error)
}

// BearerToken returns the token from the Authorization header, or ""
func BearerToken(c *gin.Context) string {
	h := c.GetHeader(AuthHeaderKey)
	if len(h) <= len(BearerPrefix) || !strings.EqualFold(h[:len(BearerPrefix)], BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(BearerPrefix):])
}

// AdminSessionToken reads the session cookie, falling back to a bearer token
func AdminSessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	return BearerToken(c)
}

// AdminAuth admits only callers with a live admin session
func AdminAuth(authn AdminAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AdminSessionToken(c, cookieName)
		if token == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Admin authentication required")
			return
		}
		claims, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, tokenErrorCode(err), "Invalid or expired admin session")
			return
		}
		setAdmin(c, claims)
		c.Next()
	}
}

// CustomerAuth admits only signed-in customers
func CustomerAuth(authn CustomerAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		principal, err := authn.AuthenticateCustomer(c.Request.Context(), token)
		if err != nil {
			abortCustomerAuth(c, err)
			return
		}
		setCustomer(c, principal)
		c.Next()
	}
}

// OptionalCustomer attaches the customer when a valid token is present and
// lets anonymous requests through.
func OptionalCustomer(authn CustomerAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			if principal, err := authn.AuthenticateCustomer(c.Request.Context(), token); err == nil {
				setCustomer(c, principal)
			}
		}
		c.Next()
	}
}

// CallerAuth admits an admin (cookie or bearer) or a signed-in customer (bearer)
func CallerAuth(admins AdminAuthenticator, cookieName string, customers CustomerAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := AdminSessionToken(c, cookieName); token != "" {
			if claims, err := admins.Authenticate(c.Request.Context(), token); err == nil {
				setAdmin(c, claims)
				c.Next()
				return
			}
		}
		token := BearerToken(c)
		if token == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		principal, err := customers.AuthenticateCustomer(c.Request.Context(), token)
		if err != nil {
			abortCustomerAuth(c, err)
			return
		}
		setCustomer(c, principal)
		c.Next()
	}
}

// CronAuth guards scheduler endpoints with a shared bearer secret. Without a
// configured secret every call fails with 500.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abortWithError(c, dto.ErrCodeInternal, "Cron secret is not configured")
			return
		}
		token := BearerToken(c)
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			abortWithError(c, dto.ErrCodeUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}

func setAdmin(c *gin.Context, claims *auth.Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(AdminUsernameKey, claims.Username)
}

func setCustomer(c *gin.Context, p *identity.CustomerPrincipal) {
	c.Set(CustomerIDKey, p.CustomerID)
	c.Set(CustomerEmailKey, p.Email)
}

// abortCustomerAuth answers 401 for a bad token and 500 when the customer
// lookup itself failed
func abortCustomerAuth(c *gin.Context, err error) {
	if isTokenError(err) {
		abortWithError(c, tokenErrorCode(err), "Invalid or expired token")
		return
	}
	abortWithError(c, dto.ErrCodeInternal, "Could not resolve customer")
}

func isTokenError(err error) bool {
	for _, target := range []error{
		auth.ErrInvalidToken, auth.ErrExpiredToken, auth.ErrInvalidTokenType,
		auth.ErrInvalidClaims, auth.ErrTokenNotYetValid, auth.ErrMissingEmail,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func tokenErrorCode(err error) string {
	if errors.Is(err, auth.ErrExpiredToken) {
		return dto.ErrCodeTokenExpired
	}
	return dto.ErrCodeTokenInvalid
}
