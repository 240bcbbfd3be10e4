package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New[string](time.Second)
	c.Set("report:1", "csv")
	val, ok := c.Get("report:1")
	require.True(t, ok)
	assert.Equal(t, "csv", val)
}

func TestExpiration(t *testing.T) {
	c := New[string](time.Second)
	c.SetTTL("report:1", "csv", 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	_, ok := c.Get("report:1")
	assert.False(t, ok, "expected expired key to be missing")
}

func TestDelete(t *testing.T) {
	c := New[int](time.Second)
	c.Set("k", 1)
	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	c := New[string](time.Second)
	c.Set("report:1", "a")
	c.Set("report:2", "b")
	c.Set("dashboard:company-1", "c")
	c.Invalidate("report:")

	_, ok1 := c.Get("report:1")
	_, ok2 := c.Get("report:2")
	_, ok3 := c.Get("dashboard:company-1")
	assert.False(t, ok1)
	assert.False(t, ok2)
	assert.True(t, ok3)
}

func TestGetOrLoad(t *testing.T) {
	c := New[int](time.Second)
	calls := 0
	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	v, err = c.GetOrLoad("k", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrLoad("bad", func() (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok, "errors must not be cached")
}
