package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/aether-intel/pkg/types/patent"
)

func TestSearchKey(t *testing.T) {
	t.Parallel()

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	key := SearchKey(patent.ProviderEPO, "abc123def456", "RU", "en", from, to)
	assert.Equal(t, "epo:abc123def456:RU:en:20230101-20231231", key)

	open := SearchKey(patent.ProviderLens, "abc123def456", "PL", "pl", from, time.Time{})
	assert.Equal(t, "lens:abc123def456:PL:pl:20230101-open", open)
}

func TestSearchCacheTTL(t *testing.T) {
	t.Parallel()

	c := NewSearchCache(t.TempDir(), time.Hour, nil)
	clock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	result := &patent.SearchResult{
		Data:          []patent.Record{{ID: "RU1", Provider: patent.ProviderEPO}},
		Total:         1,
		QueryStrategy: "primary_strict",
	}
	require.NoError(t, c.Put("k1", result))

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, 1, got.Total)
	assert.Equal(t, "primary_strict", got.QueryStrategy)

	// Within TTL the entry survives; past it the entry is dropped.
	clock = clock.Add(59 * time.Minute)
	_, ok = c.Get("k1")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	_, ok = c.Get("k1")
	assert.False(t, ok)

	// The expired entry was removed, not just hidden.
	assert.Zero(t, c.store.Len())
}

func TestSearchCachePurge(t *testing.T) {
	t.Parallel()

	c := NewSearchCache(t.TempDir(), time.Hour, nil)
	clock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.Put("old", &patent.SearchResult{Total: 1}))
	clock = clock.Add(2 * time.Hour)
	require.NoError(t, c.Put("fresh", &patent.SearchResult{Total: 2}))

	require.NoError(t, c.Purge())

	_, ok := c.Get("old")
	assert.False(t, ok)
	got, ok := c.Get("fresh")
	require.True(t, ok)
	assert.Equal(t, 2, got.Total)
}

func TestSearchCacheNilResult(t *testing.T) {
	t.Parallel()

	c := NewSearchCache(t.TempDir(), 0, nil)
	require.NoError(t, c.Put("k", nil))
	_, ok := c.Get("k")
	assert.False(t, ok)
}
