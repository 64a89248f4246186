package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"), "clients don't share a bucket")

	now = now.Add(time.Second)
	require.True(t, l.Allow("a"), "bucket refills")
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(0, 0)
	for range 100 {
		require.True(t, l.Allow("a"))
	}
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	l := NewRateLimiter(5, 5)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("new")

	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotContains(t, l.clients, "old")
	require.Contains(t, l.clients, "new")
}
