package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptKey string

func newTestCache() *InMemoryCacheManager[scriptKey, map[string]any] {
	return NewInMemoryCacheManager[scriptKey, map[string]any]("script-config", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemoryCacheManager_SetThenGet(t *testing.T) {
	cache := newTestCache()
	cfg := map[string]any{"greeting": "Hi"}
	cache.Set(context.Background(), "hello_world", cfg, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "hello_world")
	require.True(t, ok)
	require.Equal(t, cfg, got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := newTestCache()

	got, ok := cache.Get(context.Background(), "missing")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_WrongTypeIsAMiss(t *testing.T) {
	cache := newTestCache()
	cache.cache.Set("hello_world", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "hello_world")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := newTestCache()
	cache.Set(context.Background(), "short", map[string]any{}, time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "short")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := newTestCache()

	_, ok := cache.GetWithRefresh(context.Background(), "hello_world", time.Hour)
	require.False(t, ok)

	cache.Set(context.Background(), "hello_world", map[string]any{"name": "Gopher"}, time.Hour)
	got, ok := cache.GetWithRefresh(context.Background(), "hello_world", time.Hour)
	require.True(t, ok)
	require.Equal(t, "Gopher", got["name"])
}

func TestInMemoryCacheManager_Delete(t *testing.T) {
	cache := newTestCache()
	require.NoError(t, cache.Delete(context.Background()))

	cache.Set(context.Background(), "a", map[string]any{}, NoExpiration)
	cache.Set(context.Background(), "b", map[string]any{}, NoExpiration)
	require.NoError(t, cache.Delete(context.Background(), "a", "missing"))

	_, ok := cache.Get(context.Background(), "a")
	require.False(t, ok)
	_, ok = cache.Get(context.Background(), "b")
	require.True(t, ok)
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := newTestCache()
	cache.Set(context.Background(), "a", map[string]any{}, NoExpiration)

	require.NoError(t, cache.Flush(context.Background()))
	require.Zero(t, cache.Len())
}
