package hybrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/chunk"
)

func TestSearch_UnknownCollectionReturnsNoHitsNoError(t *testing.T) {
	idx := NewIndex()
	results, err := idx.Search(context.Background(), "missing", "foo", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAddChunks_ThenSearchFindsMatch(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "func parseConfig() error", FilePath: "config.go", StartLine: 1, Language: chunk.LangGo},
		{ID: "b", Content: "func writeLog() {}", FilePath: "log.go", StartLine: 10, Language: chunk.LangGo},
	}))

	results, err := idx.Search(ctx, "c1", "parseConfig", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "config.go", results[0].FilePath)
	assert.Equal(t, "go", results[0].Language)
}

func TestAddChunks_IsAdditiveAcrossCalls(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "alpha chunk", FilePath: "a.go", Language: chunk.LangGo},
	}))
	require.NoError(t, idx.AddChunks(ctx, "c1", []chunk.Chunk{
		{ID: "b", Content: "beta chunk", FilePath: "b.go", Language: chunk.LangGo},
	}))

	resultsA, err := idx.Search(ctx, "c1", "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, resultsA, 1)

	resultsB, err := idx.Search(ctx, "c1", "beta", 10)
	require.NoError(t, err)
	assert.Len(t, resultsB, 1)
}

func TestDeleteChunks_RemovesFromIndex(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "alpha chunk", FilePath: "a.go", Language: chunk.LangGo},
	}))
	require.NoError(t, idx.DeleteChunks("c1", []string{"a"}))

	results, err := idx.Search(ctx, "c1", "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDeleteCollection_DropsEntireIndex(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "alpha chunk", FilePath: "a.go", Language: chunk.LangGo},
	}))
	require.NoError(t, idx.DeleteCollection("c1"))

	results, err := idx.Search(ctx, "c1", "alpha", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClose_ReleasesAllIndexes(t *testing.T) {
	idx := NewIndex()
	ctx := context.Background()
	require.NoError(t, idx.AddChunks(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "alpha chunk", FilePath: "a.go", Language: chunk.LangGo},
	}))
	assert.NoError(t, idx.Close())
}
