package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key scriptKey) (string, bool) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1)
}

func (m *mockCache) GetWithRefresh(ctx context.Context, key scriptKey, ttl time.Duration) (string, bool) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1)
}

func (m *mockCache) Set(ctx context.Context, key scriptKey, value string, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCache) Delete(ctx context.Context, keys ...scriptKey) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockCache) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func exclaim(calls *int) func(context.Context, string) (string, error) {
	return func(_ context.Context, in string) (string, error) {
		*calls++
		return in + "!", nil
	}
}

func TestReadThroughCache_SkipCacheAlwaysLoads(t *testing.T) {
	m := &mockCache{}
	calls := 0
	rt := NewReadThroughCache[scriptKey, string, string](m, exclaim(&calls), true)

	for range 2 {
		v, err := rt.Get(context.Background(), "k", "hi", time.Minute)
		require.NoError(t, err)
		require.Equal(t, "hi!", v)
	}
	require.Equal(t, 2, calls)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_HitDoesNotLoad(t *testing.T) {
	m := &mockCache{}
	m.On("Get", mock.Anything, scriptKey("k")).Return("cached", true).Once()
	calls := 0
	rt := NewReadThroughCache[scriptKey, string, string](m, exclaim(&calls), false)

	v, err := rt.Get(context.Background(), "k", "hi", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", v)
	require.Zero(t, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissLoadsAndStores(t *testing.T) {
	m := &mockCache{}
	m.On("Get", mock.Anything, scriptKey("k")).Return("", false).Once()
	m.On("Set", mock.Anything, scriptKey("k"), "hi!", time.Minute).Once()
	calls := 0
	rt := NewReadThroughCache[scriptKey, string, string](m, exclaim(&calls), false)

	v, err := rt.Get(context.Background(), "k", "hi", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "hi!", v)
	require.Equal(t, 1, calls)
	m.AssertExpectations(t)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	m := &mockCache{}
	m.On("Get", mock.Anything, scriptKey("k")).Return("", false).Once()
	boom := errors.New("boom")
	rt := NewReadThroughCache[scriptKey, string, string](m,
		func(context.Context, string) (string, error) { return "", boom }, false)

	_, err := rt.Get(context.Background(), "k", "hi", time.Minute)
	require.ErrorIs(t, err, boom)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	m := &mockCache{}
	m.On("Delete", mock.Anything, []scriptKey{"a", "b"}).Return(nil).Once()
	m.On("Flush", mock.Anything).Return(nil).Once()
	rt := NewReadThroughCache[scriptKey, string, string](m, exclaim(new(int)), false)

	require.NoError(t, rt.Invalidate(context.Background(), "a", "b"))
	require.NoError(t, rt.Invalidate(context.Background()))
	m.AssertExpectations(t)
}
