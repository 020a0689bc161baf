package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourscan/internal/models"
)

func newMiniredisCache(t *testing.T, ttl time.Duration) (*DiscoveryCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	cache := NewDiscoveryCache(srv.Addr(), "", 0, ttl)
	require.NotNil(t, cache)
	t.Cleanup(func() { cache.Close() })
	return cache, srv
}

func TestDiscoveryCache_RoundTrip(t *testing.T) {
	cache, _ := newMiniredisCache(t, time.Minute)
	ctx := context.Background()

	key := CacheKey(models.DiscoveryCriteria{Destination: "Lisbon"})
	tours := []models.Tour{{ID: "t1", Name: "Food Walk", Destination: "Lisbon"}}

	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)

	cache.Set(ctx, key, tours)

	got, ok := cache.Get(ctx, key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Food Walk", got[0].Name)
}

func TestDiscoveryCache_Expiry(t *testing.T) {
	cache, srv := newMiniredisCache(t, time.Second)
	ctx := context.Background()

	cache.Set(ctx, "discover:k", []models.Tour{{ID: "t1"}})
	srv.FastForward(2 * time.Second)

	_, ok := cache.Get(ctx, "discover:k")
	assert.False(t, ok)
}

func TestDiscoveryCache_NilIsDisabled(t *testing.T) {
	var cache *DiscoveryCache

	_, ok := cache.Get(context.Background(), "discover:k")
	assert.False(t, ok)
	cache.Set(context.Background(), "discover:k", nil)
	assert.NoError(t, cache.Ping(context.Background()))
	assert.NoError(t, cache.Close())
}

func TestNewDiscoveryCache_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewDiscoveryCache("", "", 0, time.Minute))
}

func TestCacheKey_StableAndDistinct(t *testing.T) {
	a := models.DiscoveryCriteria{Destination: "Lisbon", Interests: []string{"food"}}
	b := models.DiscoveryCriteria{Destination: "Lisbon", Interests: []string{"food"}}
	c := models.DiscoveryCriteria{Destination: "Porto"}

	assert.Equal(t, CacheKey(a), CacheKey(b))
	assert.NotEqual(t, CacheKey(a), CacheKey(c))
	assert.Contains(t, CacheKey(a), "discover:")
}

func TestDiscoveryCache_CorruptPayloadIsMiss(t *testing.T) {
	cache, srv := newMiniredisCache(t, time.Minute)

	require.NoError(t, srv.Set("discover:bad", "not json"))
	_, ok := cache.Get(context.Background(), "discover:bad")
	assert.False(t, ok)
}
