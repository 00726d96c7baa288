package identity

import (
	"context"
	"crypto/subtle"
	"strings"
	"sync"
	"time"

	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthServiceConfig contains configuration for the admin auth service
type AdminAuthServiceConfig struct {
	Username         string
	PasswordHash     string        // bcrypt
	MaxLoginAttempts int           // failed attempts before the account locks
	LockDuration     time.Duration // how long the lock lasts
}

// DefaultAdminAuthServiceConfig returns default lockout settings
func DefaultAdminAuthServiceConfig() AdminAuthServiceConfig {
	return AdminAuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AdminAuthService handles back-office login against the configured account
type AdminAuthService struct {
	config     AdminAuthServiceConfig
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time

	mu          sync.Mutex
	failures    int
	lockedUntil time.Time
}

// NewAdminAuthService creates a new admin authentication service
func NewAdminAuthService(
	config AdminAuthServiceConfig,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AdminAuthService {
	if config.MaxLoginAttempts == 0 {
		config.MaxLoginAttempts = DefaultAdminAuthServiceConfig().MaxLoginAttempts
	}
	if config.LockDuration == 0 {
		config.LockDuration = DefaultAdminAuthServiceConfig().LockDuration
	}
	return &AdminAuthService{
		config:     config,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login checks the credentials and issues a session token
func (s *AdminAuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	s.logger.Info("Admin login attempt", zap.String("username", req.Username))

	if s.config.PasswordHash == "" {
		s.logger.Error("Admin login attempted with no password hash configured")
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")
	}
	if s.isLocked() {
		s.logger.Warn("Admin login while locked", zap.String("username", req.Username))
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed attempts. Please try again later")
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(s.config.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		s.recordFailure()
		s.logger.Warn("Admin login failed", zap.String("username", req.Username))
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")
	}

	s.resetFailures()
	issued, err := s.jwtService.GenerateAdminToken(s.config.Username)
	if err != nil {
		return nil, shared.WrapDomainError("INTERNAL_ERROR", "Failed to create session", err)
	}

	s.logger.Info("Admin logged in", zap.String("username", s.config.Username))
	return &LoginResult{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Username: s.config.Username}, nil
}

// Logout revokes the session token. An invalid or empty token is ignored.
func (s *AdminAuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.blacklist == nil {
		return nil
	}
	claims, err := s.jwtService.ValidateAdminToken(token)
	if err != nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke admin session", zap.Error(err))
		return err
	}
	return nil
}

// Authenticate validates a session token and returns its claims
func (s *AdminAuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAdminToken(token)
	if err != nil {
		return nil, err
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("Token blacklist lookup failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, auth.ErrTokenBlacklisted
		}
	}
	return claims, nil
}

// Check reports whether the token is a live admin session
func (s *AdminAuthService) Check(ctx context.Context, token string) CheckResponse {
	if token == "" {
		return CheckResponse{}
	}
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return CheckResponse{}
	}
	return CheckResponse{Authenticated: true, Username: claims.Username}
}

// SessionTTL is how long the session cookie should live
func (s *AdminAuthService) SessionTTL() time.Duration {
	return s.jwtService.AdminSessionExpiration()
}

func (s *AdminAuthService) isLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.lockedUntil)
}

func (s *AdminAuthService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
	if s.failures >= s.config.MaxLoginAttempts {
		s.lockedUntil = s.now().Add(s.config.LockDuration)
		s.failures = 0
	}
}

func (s *AdminAuthService) resetFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = 0
	s.lockedUntil = time.Time{}
}
