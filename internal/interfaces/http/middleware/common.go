package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
)

// DefaultCORSMethods are used when the config lists none
var DefaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// DefaultCORSHeaders are used when the config lists none
var DefaultCORSHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}

// CORSConfig builds the gin-contrib/cors configuration from HTTP settings.
// Credentials are only allowed with an explicit origin list.
func CORSConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowOrigins:  cfg.CORSAllowOrigins,
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowMethods) == 0 {
		c.AllowMethods = DefaultCORSMethods
	}
	if len(c.AllowHeaders) == 0 {
		c.AllowHeaders = DefaultCORSHeaders
	}
	wildcard := len(c.AllowOrigins) == 0
	for _, o := range c.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
	} else {
		c.AllowCredentials = true
	}
	return c
}

// CORS returns the CORS middleware for the given HTTP settings
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	return cors.New(CORSConfig(cfg))
}

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = generateRequestID()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// SecurityConfig holds configuration for security headers
type SecurityConfig struct {
	HSTSEnabled  bool
	HSTSMaxAge   int // seconds
	CSPDirective string
}

// DefaultSecurityConfig returns the headers for a JSON API. HSTS is enabled in production.
func DefaultSecurityConfig(production bool) SecurityConfig {
	return SecurityConfig{
		HSTSEnabled:  production,
		HSTSMaxAge:   31536000,
		CSPDirective: "default-src 'none'; frame-ancestors 'none'",
	}
}

// Secure adds security headers to responses
func Secure(cfg SecurityConfig) gin.HandlerFunc {
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.CSPDirective != "" {
			h.Set("Content-Security-Policy", cfg.CSPDirective)
		}
		if cfg.HSTSEnabled {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}
