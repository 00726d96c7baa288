package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"github.com/wagginmeals/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return resp.Error
}

func TestCORS(t *testing.T) {
	t.Run("explicit origin allows credentials", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(config.HTTPConfig{CORSAllowOrigins: []string{"https://wagginmeals.com"}}))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := perform(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://wagginmeals.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://wagginmeals.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		w = perform(r, http.MethodGet, "/x", "", map[string]string{"Origin": "https://evil.example"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS(config.HTTPConfig{CORSAllowOrigins: []string{"https://wagginmeals.com"}}))
		r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := perform(r, http.MethodOptions, "/x", "", map[string]string{
			"Origin":                        "https://wagginmeals.com",
			"Access-Control-Request-Method": "POST",
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestCORSConfig(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		allowAll    bool
		credentials bool
	}{
		{"empty list allows all without credentials", nil, true, false},
		{"wildcard allows all without credentials", []string{"*"}, true, false},
		{"explicit list", []string{"https://a.example"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CORSConfig(config.HTTPConfig{CORSAllowOrigins: tt.origins})
			assert.Equal(t, tt.allowAll, c.AllowAllOrigins)
			assert.Equal(t, tt.credentials, c.AllowCredentials)
			assert.Equal(t, DefaultCORSMethods, c.AllowMethods)
			assert.Equal(t, DefaultCORSHeaders, c.AllowHeaders)
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	t.Run("generates", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", nil)
		assert.Len(t, w.Body.String(), 32)
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps client id", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", map[string]string{RequestIDHeader: "abc-123"})
		assert.Equal(t, "abc-123", w.Body.String())
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/x", "", map[string]string{RequestIDHeader: strings.Repeat("a", 200)})
		assert.Len(t, w.Body.String(), 32)
	})
}

func TestSecure(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		wantHSTS   bool
	}{
		{"development", false, false},
		{"production", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Secure(DefaultSecurityConfig(tt.production)))
			r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := perform(r, http.MethodGet, "/x", "", nil)
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
			if tt.wantHSTS {
				assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
			} else {
				assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/x", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodPost, "/x", `{"a":1}`, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodPost, "/x", `{"a":"`+strings.Repeat("x", 64)+`"}`, map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodeTooLarge, decodeError(t, w).Code)
}

func TestBodyLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(0))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodPost, "/x", strings.Repeat("x", 1024), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
