// Package middleware provides the gin middleware of the back-office API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wagginmeals/backend/internal/infrastructure/auth"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
)

// Gin context keys
const (
	RequestIDKey     = "request_id"
	ClaimsKey        = "auth_claims"
	CustomerIDKey    = "customer_id"
	CustomerEmailKey = "customer_email"
	AdminUsernameKey = "admin_username"

	RequestIDHeader = "X-Request-ID"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// MaxRequestIDLength caps client-supplied request ids
const MaxRequestIDLength = 128

// GetRequestID returns the id assigned by RequestID, falling back to the header
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(RequestIDHeader)
	if len(id) > MaxRequestIDLength {
		return id[:MaxRequestIDLength]
	}
	return id
}

// GetClaims returns the verified admin session claims, if any
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetCustomerID returns the authenticated customer's id
func GetCustomerID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(CustomerIDKey); ok {
		if id, ok := v.(uuid.UUID); ok && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetAdminUsername returns the admin username, or "" for non-admin callers
func GetAdminUsername(c *gin.Context) string {
	return c.GetString(AdminUsernameKey)
}

// IsAdmin reports whether the caller holds an admin session
func IsAdmin(c *gin.Context) bool {
	return GetAdminUsername(c) != ""
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
