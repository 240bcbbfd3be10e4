package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
	redisclient "github.com/aryan0dhankhar/wellpulse/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/wellpulse/internal/security"
)

type fakeAuth struct {
	tokens map[string]*domain.User
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{tokens: map[string]*domain.User{}}
}

func (f *fakeAuth) Authenticate(_ context.Context, email, password string) (string, *domain.User, error) {
	if email != "gerente@empresa.com" || password != "gerente123" {
		return "", nil, domain.ErrInvalidCredentials
	}
	u := &domain.User{Base: domain.Base{ID: "2"}, Email: email, Name: "João Silva", Role: domain.RoleManager, CompanyID: "company-1", Sector: "Tecnologia", IsActive: true}
	token := "token-" + u.ID
	f.tokens[token] = u
	return token, u, nil
}

func (f *fakeAuth) Verify(_ context.Context, token string) (*domain.User, error) {
	u, ok := f.tokens[token]
	if !ok {
		return nil, domain.Unauthorized("invalid or expired token")
	}
	return u, nil
}

func TestLoginPersistsBothKeys(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	fa := newFakeAuth()
	m := NewManager(storage, fa, fa, nil)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.False(t, m.HasRole(domain.RoleManager))

	user, err := m.Login(ctx, "gerente@empresa.com", "gerente123")
	require.NoError(t, err)
	assert.Equal(t, "2", user.ID)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.True(t, m.HasRole(domain.RoleManager))
	assert.True(t, m.HasAnyRole(domain.RoleAdmin, domain.RoleManager))
	assert.False(t, m.HasAnyRole(domain.RoleEmployee))
	assert.Equal(t, security.SessionView{Authenticated: true, Role: domain.RoleManager}, m.View())

	token, err := storage.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)

	raw, err := storage.Get(ctx, KeyUser)
	require.NoError(t, err)
	var stored domain.User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "Tecnologia", stored.Sector)
}

func TestLoginFailureResetsState(t *testing.T) {
	fa := newFakeAuth()
	storage := NewMemoryStorage()
	m := NewManager(storage, fa, fa, nil)

	_, err := m.Login(context.Background(), "gerente@empresa.com", "wrong")
	assert.Equal(t, domain.ErrInvalidCredentials, err)
	assert.Equal(t, "invalid credentials", err.Error())
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.User())

	_, err = storage.Get(context.Background(), KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	fa := newFakeAuth()
	m := NewManager(storage, fa, fa, nil)

	_, err := m.Login(ctx, "gerente@empresa.com", "gerente123")
	require.NoError(t, err)
	require.NoError(t, m.Logout(ctx))

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.User())
	assert.Empty(t, m.Token())
	assert.False(t, m.HasRole(domain.RoleManager))
	for _, k := range []string{KeyToken, KeyUser} {
		_, err := storage.Get(ctx, k)
		assert.ErrorIs(t, err, ErrNotFound, k)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	fa := newFakeAuth()

	t.Run("valid session", func(t *testing.T) {
		storage := NewMemoryStorage()
		first := NewManager(storage, fa, fa, nil)
		_, err := first.Login(ctx, "gerente@empresa.com", "gerente123")
		require.NoError(t, err)

		second := NewManager(storage, fa, fa, nil)
		restored, err := second.Restore(ctx)
		require.NoError(t, err)
		assert.True(t, restored)
		assert.Equal(t, StateAuthenticated, second.State())
		assert.Equal(t, "2", second.User().ID)
	})

	t.Run("missing user key", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, KeyToken, "token-2"))
		m := NewManager(storage, fa, fa, nil)
		restored, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.False(t, restored)
		assert.Equal(t, StateUnauthenticated, m.State())
	})

	t.Run("token no longer valid clears storage", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, KeyToken, "forged"))
		require.NoError(t, storage.Set(ctx, KeyUser, `{"id":"1","role":"admin"}`))
		m := NewManager(storage, fa, fa, nil)

		restored, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.False(t, restored)
		assert.Equal(t, StateUnauthenticated, m.State())
		_, err = storage.Get(ctx, KeyToken)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = storage.Get(ctx, KeyUser)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt user clears storage", func(t *testing.T) {
		storage := NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, KeyToken, "token-2"))
		require.NoError(t, storage.Set(ctx, KeyUser, "{not json"))
		m := NewManager(storage, fa, fa, nil)

		restored, err := m.Restore(ctx)
		require.NoError(t, err)
		assert.False(t, restored)
		_, err = storage.Get(ctx, KeyToken)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestViewWhileLoading(t *testing.T) {
	m := NewManager(nil, nil, nil, nil)
	m.setState(StateLoading)
	assert.Equal(t, security.SessionView{Loading: true}, m.View())
}

func TestFileStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wellpulse", "session.json")
	fs := NewFileStorage(path)

	_, err := fs.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.Set(ctx, KeyToken, "abc"))
	require.NoError(t, fs.Set(ctx, KeyUser, `{"id":"3"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, err := NewFileStorage(path).Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, fs.Delete(ctx, KeyToken, KeyUser))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty session removes the file")
}

func TestFileStorageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	_, err := NewFileStorage(path).Get(context.Background(), KeyToken)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

type memKV struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", redisclient.ErrNotFound
	}
	return v, nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func TestRedisStorageNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
	a := NewRedisStorage(kv, "sess-a", time.Hour)
	b := NewRedisStorage(kv, "sess-b", time.Hour)

	require.NoError(t, a.Set(ctx, KeyToken, "token-a"))
	assert.Equal(t, "token-a", kv.values["session:sess-a:auth_token"])
	assert.Equal(t, time.Hour, kv.ttls["session:sess-a:auth_token"])

	_, err := b.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, a.Delete(ctx, KeyToken))
	_, err = a.Get(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}
