package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
)

// State of a session
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateLoading         State = "loading"
)

// Authenticator exchanges credentials for a token and the user it belongs to
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, *domain.User, error)
}

// Verifier checks that a stored token is still valid
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// Manager tracks the logged-in user and persists the token between runs
type Manager struct {
	mu       sync.RWMutex
	state    State
	user     *domain.User
	token    string
	storage  Storage
	auth     Authenticator
	verifier Verifier
	logger   *slog.Logger
}

// NewManager creates a session manager. A nil verifier trusts any stored token.
func NewManager(storage Storage, auth Authenticator, verifier Verifier, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	return &Manager{
		state:    StateUnauthenticated,
		storage:  storage,
		auth:     auth,
		verifier: verifier,
		logger:   logger,
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns a copy of the current user, or nil
func (m *Manager) User() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

func (m *Manager) HasRole(role domain.Role) bool {
	return m.HasAnyRole(role)
}

func (m *Manager) HasAnyRole(roles ...domain.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.user == nil {
		return false
	}
	return slices.Contains(roles, m.user.Role)
}

// View is the snapshot the route guard evaluates
func (m *Manager) View() security.SessionView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := security.SessionView{
		Loading:       m.state == StateLoading,
		Authenticated: m.state == StateAuthenticated && m.user != nil,
	}
	if v.Authenticated {
		v.Role = m.user.Role
	}
	return v
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Login authenticates and persists the token and user
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if m.auth == nil {
		return nil, errors.New("session: no authenticator configured")
	}
	m.setState(StateAuthenticating)

	token, user, err := m.auth.Authenticate(ctx, email, password)
	if err != nil {
		m.setState(StateUnauthenticated)
		m.logger.Warn("login failed", slog.String("email", email), slog.String("error", err.Error()))
		return nil, err
	}

	raw, err := json.Marshal(user)
	if err != nil {
		m.setState(StateUnauthenticated)
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.storage.Set(ctx, KeyToken, token); err != nil {
		m.setState(StateUnauthenticated)
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := m.storage.Set(ctx, KeyUser, string(raw)); err != nil {
		_ = m.storage.Delete(ctx, KeyToken)
		m.setState(StateUnauthenticated)
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	m.mu.Lock()
	m.user = user
	m.token = token
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.logger.Info("session started", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

// Logout clears the in-memory user and both storage keys
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if err := m.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Restore reloads a persisted session. Both keys must be present and the
// token must still verify; otherwise storage is cleared.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	m.setState(StateLoading)

	token, err := m.storage.Get(ctx, KeyToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		m.setState(StateUnauthenticated)
		return false, fmt.Errorf("failed to read token: %w", err)
	}
	rawUser, uerr := m.storage.Get(ctx, KeyUser)
	if uerr != nil && !errors.Is(uerr, ErrNotFound) {
		m.setState(StateUnauthenticated)
		return false, fmt.Errorf("failed to read user: %w", uerr)
	}
	if token == "" || rawUser == "" {
		m.setState(StateUnauthenticated)
		return false, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		m.logger.Warn("discarding corrupt session", slog.String("error", err.Error()))
		return false, m.clear(ctx)
	}

	if m.verifier != nil {
		verified, err := m.verifier.Verify(ctx, token)
		if err != nil {
			m.logger.Info("stored token rejected", slog.String("error", err.Error()))
			return false, m.clear(ctx)
		}
		if verified != nil {
			user = *verified
		}
	}

	m.mu.Lock()
	m.user = &user
	m.token = token
	m.state = StateAuthenticated
	m.mu.Unlock()
	return true, nil
}

func (m *Manager) clear(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.state = StateUnauthenticated
	m.mu.Unlock()
	return m.storage.Delete(ctx, KeyToken, KeyUser)
}
