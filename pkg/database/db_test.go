package database

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreGooseAnnotated(t *testing.T) {
	sub := mustSub(migrations, "migrations")
	entries, err := fs.ReadDir(sub, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(sub, e.Name())
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), "-- +goose Up"), e.Name())
		assert.True(t, strings.Contains(string(body), "-- +goose Down"), e.Name())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("postgres://x")
	assert.Equal(t, "postgres://x", cfg.URL)
	assert.Equal(t, 25, cfg.MaxOpenConns)
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 25, orDefault(0, 25))
	assert.Equal(t, 10, orDefault(10, 25))
	assert.Equal(t, 5*time.Minute, orDefault(time.Duration(0), 5*time.Minute))
}
