package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUseEnforcesProviderCap(t *testing.T) {
	l := New(map[string]int{"newsapi": 2}, 0)

	require.NoError(t, l.Use("newsapi"))
	require.NoError(t, l.Use("newsapi"))
	assert.False(t, l.Allow("newsapi"))
	assert.Error(t, l.Use("newsapi"))
}

func TestZeroCapMeansUnlimited(t *testing.T) {
	l := New(map[string]int{"rss": 0}, 0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Use("rss"))
	}
	assert.True(t, l.Allow("rss"))
}

func TestTotalCapSpansProviders(t *testing.T) {
	l := New(map[string]int{"a": 10, "b": 10}, 3)

	require.NoError(t, l.Use("a"))
	require.NoError(t, l.Use("b"))
	require.NoError(t, l.Use("a"))
	assert.False(t, l.Allow("b"), "total budget is shared")
	assert.Error(t, l.Use("b"))
}

func TestCountersResetAfterWindow(t *testing.T) {
	now := time.Now()
	l := New(map[string]int{"gnews": 1}, 0)
	l.now = func() time.Time { return now }
	l.resetTime = now.Add(24 * time.Hour)

	require.NoError(t, l.Use("gnews"))
	assert.False(t, l.Allow("gnews"))

	now = now.Add(24*time.Hour + time.Minute)
	assert.True(t, l.Allow("gnews"))
	require.NoError(t, l.Use("gnews"))
}

func TestStatsSnapshot(t *testing.T) {
	l := New(map[string]int{"a": 5}, 0)
	require.NoError(t, l.Use("a"))
	require.NoError(t, l.Use("a"))
	require.NoError(t, l.Use("b"))

	stats := l.Stats()
	assert.Equal(t, 2, stats["a"])
	assert.Equal(t, 1, stats["b"])
	assert.Equal(t, 3, stats["_total"])
}
