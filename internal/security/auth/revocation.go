package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aryan0dhankhar/wellpulse/internal/reliability/circuitbreaker"
)

// Revoker tracks logged-out token ids until they would have expired anyway
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevoker keeps revoked ids in process
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: map[string]time.Time{}, now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = until
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	if m.now().After(until) {
		delete(m.revoked, jti)
		return false, nil
	}
	return true, nil
}

// KeyValue is the slice of the redis client the revoker needs
type KeyValue interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisRevoker shares the revocation list between instances. Every id is
// also written to a local MemoryRevoker, which answers lookups while the
// breaker is open.
type RedisRevoker struct {
	kv      KeyValue
	local   *MemoryRevoker
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewRedisRevoker(kv KeyValue, logger *slog.Logger) *RedisRevoker {
	if logger == nil {
		logger = slog.Default()
	}
	cb := circuitbreaker.NewCircuitBreaker(3, 1, 30*time.Second)
	cb.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("revocation breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})
	return &RedisRevoker{kv: kv, local: NewMemoryRevoker(), breaker: cb, logger: logger}
}

func revokedKey(jti string) string {
	return "revoked:" + jti
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	_ = r.local.Revoke(ctx, jti, until)
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	err := r.breaker.Execute(func() error {
		return r.kv.Set(ctx, revokedKey(jti), "1", ttl)
	})
	if err != nil {
		r.logger.Warn("failed to store revocation in redis", slog.String("error", err.Error()))
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if revoked, _ := r.local.IsRevoked(ctx, jti); revoked {
		return true, nil
	}
	var revoked bool
	err := r.breaker.Execute(func() error {
		var err error
		revoked, err = r.kv.Exists(ctx, revokedKey(jti))
		return err
	})
	if err != nil {
		r.logger.Warn("revocation lookup failed, using local list", slog.String("error", err.Error()))
		return false, nil
	}
	return revoked, nil
}
