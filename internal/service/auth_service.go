package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/observability/metrics"
	"github.com/aryan0dhankhar/wellpulse/internal/security/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	users   *auth.UserStore
	tokens  *auth.TokenManager
	revoker auth.Revoker
	ttl     time.Duration
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	users *auth.UserStore,
	tokens *auth.TokenManager,
	revoker auth.Revoker,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if revoker == nil {
		revoker = auth.NewMemoryRevoker()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		ttl:     ttl,
		logger:  logger,
	}
}

// LoginResult represents login response
type LoginResult struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Login authenticates a user and returns a signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		metrics.ObserveLogin("invalid")
		return nil, domain.ErrInvalidCredentials
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := s.users.Authenticate(email, password)
	if err != nil {
		metrics.ObserveLogin("failure")
		s.logger.Info("login failed", slog.String("email", strings.ToLower(email)))
		return nil, err
	}

	token, claims, err := s.tokens.GenerateToken(user, s.ttl)
	if err != nil {
		metrics.ObserveLogin("error")
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, err
	}

	metrics.ObserveLogin("success")
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

// Authenticate adapts Login for session managers
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *domain.User, error) {
	res, err := s.Login(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	return res.Token, res.User, nil
}

// Claims validates a token and rejects revoked ones
func (s *AuthService) Claims(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, domain.Unauthorized("invalid or expired token")
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("revocation lookup failed", slog.String("error", err.Error()))
	}
	if revoked {
		return nil, domain.Unauthorized("token has been revoked")
	}
	return claims, nil
}

// Verify re-validates a stored token and returns its user
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Claims(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, claims.UserID)
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return domain.Unauthorized("authentication required")
	}
	until := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoker.Revoke(ctx, claims.ID, until); err != nil {
		s.logger.Warn("token revocation degraded", slog.String("error", err.Error()))
	}
	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// Me returns the account behind a user id
func (s *AuthService) Me(_ context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, domain.Unauthorized("unknown user")
	}
	return user, nil
}
