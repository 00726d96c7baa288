package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identityapp "github.com/wagginmeals/backend/internal/application/identity"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"github.com/wagginmeals/backend/internal/interfaces/http/middleware"
)

// AdminAuthenticator is the admin login service
type AdminAuthenticator interface {
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Check(ctx context.Context, token string) identityapp.CheckResponse
}

// AdminAuthHandler handles the back-office session
type AdminAuthHandler struct {
	BaseHandler
	service AdminAuthenticator
	cookie  config.CookieConfig
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(service AdminAuthenticator, cookie config.CookieConfig) *AdminAuthHandler {
	return &AdminAuthHandler{service: service, cookie: cookie}
}

// Login godoc
//
//	@ID			adminLogin
//	@Summary	Admin login
//	@Description	Checks the configured admin account and sets the session cookie
//	@Tags		admin-auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		identityapp.LoginRequest	true	"Credentials"
//	@Success	200		{object}	APIResponse[identityapp.LoginResult]
//	@Failure	401		{object}	ErrorResponse
//	@Failure	429		{object}	ErrorResponse
//	@Router		/admin/login [post]
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setCookie(c, result.Token, int(h.maxAge(result)))
	h.Success(c, result)
}

// Logout godoc
//
//	@ID			adminLogout
//	@Summary	Admin logout
//	@Tags		admin-auth
//	@Produce	json
//	@Success	200	{object}	APIResponse[MessageData]
//	@Router		/admin/logout [post]
func (h *AdminAuthHandler) Logout(c *gin.Context) {
	token := middleware.AdminSessionToken(c, h.cookie.Name)
	_ = h.service.Logout(c.Request.Context(), token)
	h.setCookie(c, "", -1)
	h.Success(c, MessageData{Message: "Logged out"})
}

// Check godoc
//
//	@ID			adminAuthCheck
//	@Summary	Check the admin session
//	@Tags		admin-auth
//	@Produce	json
//	@Success	200	{object}	APIResponse[identityapp.CheckResponse]
//	@Router		/admin/auth/check [get]
func (h *AdminAuthHandler) Check(c *gin.Context) {
	token := middleware.AdminSessionToken(c, h.cookie.Name)
	h.Success(c, h.service.Check(c.Request.Context(), token))
}

func (h *AdminAuthHandler) maxAge(result *identityapp.LoginResult) float64 {
	return result.ExpiresAt.Sub(timeNow()).Seconds()
}

func (h *AdminAuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, value, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
