package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/security/auth"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(auth.NewUserStore(), auth.NewTokenManager("test-secret", ""), auth.NewMemoryRevoker(), time.Hour, nil)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "Gerente@Empresa.com", "gerente123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, domain.RoleManager, res.User.Role)
	assert.Equal(t, "Tecnologia", res.User.Sector)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, 5*time.Second)

	claims, err := svc.Claims(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.UserID)
	assert.Equal(t, "company-1", claims.CompanyID)
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@empresa.com", "admin1234"},
		{"unknown email", "ninguem@empresa.com", "admin123"},
		{"blank email", " ", "admin123"},
		{"empty email wrong password", "", "wrong"},
		{"blank password", "admin@empresa.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
			assert.Equal(t, "invalid credentials", err.Error())
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	token, user, err := svc.Authenticate(ctx, "funcionario@empresa.com", "func123")
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", user.Name)

	me, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "3", me.ID)

	claims, err := svc.Claims(ctx, token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	_, err = svc.Claims(ctx, token)
	assert.Equal(t, domain.ErrCodeUnauthorized, domain.CodeOf(err))
	_, err = svc.Verify(ctx, token)
	assert.Equal(t, domain.ErrCodeUnauthorized, domain.CodeOf(err))

	assert.Error(t, svc.Logout(ctx, nil))
}

func TestClaimsRejectsForeignTokens(t *testing.T) {
	svc := newAuthService(t)
	other := auth.NewTokenManager("other-secret", "")

	user, err := auth.NewUserStore().GetByID("1")
	require.NoError(t, err)
	token, _, err := other.GenerateToken(user, time.Hour)
	require.NoError(t, err)

	_, err = svc.Claims(context.Background(), token)
	assert.Equal(t, domain.ErrCodeUnauthorized, domain.CodeOf(err))

	_, err = svc.Me(context.Background(), "42")
	assert.Equal(t, domain.ErrCodeUnauthorized, domain.CodeOf(err))
}
