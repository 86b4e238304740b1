package main

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUserLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := newUserLimiter(time.Second, 2)
	u.now = func() time.Time { return now }

	require.True(t, u.Allow("100"))
	require.True(t, u.Allow("100"))
	require.False(t, u.Allow("100"))

	// Other users have their own budget.
	require.True(t, u.Allow("200"))

	now = now.Add(time.Second)
	require.True(t, u.Allow("100"))
	require.False(t, u.Allow("100"))
}

func TestUserLimiter_Sweep(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := newUserLimiter(time.Second, 1)
	u.now = func() time.Time { return now }

	for i := 0; i < limiterSweepSize; i++ {
		require.True(t, u.Allow(strconv.Itoa(i)))
	}
	require.Len(t, u.users, limiterSweepSize)

	now = now.Add(limiterIdleTTL + time.Second)
	require.True(t, u.Allow("new"))
	require.Len(t, u.users, 1)
}
