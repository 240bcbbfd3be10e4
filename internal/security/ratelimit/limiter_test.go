package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Minute).WithClock(func() time.Time { return now })
	defer l.Stop()

	assert.True(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-1"))
	assert.False(t, l.Allow("user-1"))
	assert.True(t, l.Allow("user-2"), "keys are independent")
	assert.Equal(t, 0, l.Remaining("user-1"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("user-1"))
	assert.Equal(t, 1, l.Remaining("user-1"))
}

func TestLimiterAnonymousAndDisabled(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(""))
	}

	off := NewLimiter(0, time.Minute)
	defer off.Stop()
	assert.True(t, off.Allow("a"))
	assert.True(t, off.Allow("a"))
}

func TestLimiterStrictIsSeparate(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(10, time.Minute).WithClock(func() time.Time { return now })
	defer l.Stop()

	assert.True(t, l.AllowStrict("admin@empresa.com", 1, time.Minute))
	assert.False(t, l.AllowStrict("admin@empresa.com", 1, time.Minute))
	assert.True(t, l.Allow("admin@empresa.com"))

	l.Stop()
	l.Stop()
}
