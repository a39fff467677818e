package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/cache"
)

func TestSetThenGet_RoundTrips(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, cache.NamespaceEmbeddings, "k1", []byte("v1"), 0))

	got, ok, err := s.Get(ctx, cache.NamespaceEmbeddings, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)
}

func TestGet_MissingKeyReturnsNotFound(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, ok, err := s.Get(context.Background(), cache.NamespaceMetadata, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSet_ExpiredEntryTreatedAsMiss(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, cache.NamespaceSearchResults, "k1", []byte("v1"), time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, ok, err := s.Get(ctx, cache.NamespaceSearchResults, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearNamespace_OnlyAffectsThatNamespace(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, cache.NamespaceEmbeddings, "a", []byte("1"), 0))
	require.NoError(t, s.Set(ctx, cache.NamespaceMetadata, "b", []byte("2"), 0))

	require.NoError(t, s.ClearNamespace(ctx, cache.NamespaceEmbeddings))

	_, ok, _ := s.Get(ctx, cache.NamespaceEmbeddings, "a")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, cache.NamespaceMetadata, "b")
	assert.True(t, ok)
}

func TestStats_ScopedToNamespace(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, cache.NamespaceEmbeddings, "a", []byte("1"), 0))
	_, _, err = s.Get(ctx, cache.NamespaceEmbeddings, "a")
	require.NoError(t, err)
	_, _, err = s.Get(ctx, cache.NamespaceEmbeddings, "missing")
	require.NoError(t, err)

	embeddingStats, err := s.Stats(ctx, cache.NamespaceEmbeddings)
	require.NoError(t, err)
	assert.EqualValues(t, 1, embeddingStats.TotalEntries)
	assert.EqualValues(t, 1, embeddingStats.Hits)
	assert.EqualValues(t, 1, embeddingStats.Misses)
	assert.InDelta(t, 0.5, embeddingStats.HitRatio, 0.0001)

	metadataStats, err := s.Stats(ctx, cache.NamespaceMetadata)
	require.NoError(t, err)
	assert.EqualValues(t, 0, metadataStats.TotalEntries)
	assert.EqualValues(t, 0, metadataStats.Hits)
}

func TestHealthCheck_HealthyByDefault(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.NoError(t, s.HealthCheck(context.Background()))
}
