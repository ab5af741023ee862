package github

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) RecentActivity(_ context.Context, user string, limit int) ([]Activity, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []Activity{{Type: "PushEvent", Repo: user + "/repo"}}, nil
}

func TestCachedSourceServesFromCacheUntilExpiry(t *testing.T) {
	src := &countingSource{}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCachedSource(src, time.Minute)
	cache.Clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		items, err := cache.RecentActivity(context.Background(), "octo", 5)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, int32(1), src.calls.Load())

	_, _ = cache.RecentActivity(context.Background(), "octo", 10)
	assert.Equal(t, int32(2), src.calls.Load(), "limit is part of the key")

	now = now.Add(time.Minute)
	_, _ = cache.RecentActivity(context.Background(), "octo", 5)
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cache := NewCachedSource(src, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cache.RecentActivity(context.Background(), "octo", 5)
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSourceDisabled(t *testing.T) {
	src := &countingSource{}
	cache := NewCachedSource(src, 0)

	_, _ = cache.RecentActivity(context.Background(), "octo", 5)
	_, _ = cache.RecentActivity(context.Background(), "octo", 5)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCachedSourceLiteralConstruction(t *testing.T) {
	src := &countingSource{}
	cache := &CachedSource{Source: src, TTL: time.Minute}

	for range 2 {
		items, err := cache.RecentActivity(context.Background(), "octo", 5)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}
