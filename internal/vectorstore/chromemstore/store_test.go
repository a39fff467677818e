package chromemstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/vectorstore"
)

func TestInsertAndSearch_ReturnsClosestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 3))

	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{ID: "identical", Content: "a", Embedding: []float32{1, 0, 0}, Metadata: map[string]any{"lang": "go"}},
		{ID: "orthogonal", Content: "b", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "docs", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "identical", results[0].ID)
	assert.Equal(t, "go", results[0].Metadata["lang"])
}

func TestSearch_MissingCollectionReturnsEmpty(t *testing.T) {
	s := New()
	results, err := s.Search(context.Background(), "missing", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInsert_MissingCollectionErrors(t *testing.T) {
	s := New()
	_, err := s.Insert(context.Background(), "missing", []vectorstore.Record{{Content: "a"}})
	assert.Error(t, err)
}

func TestDeleteCollection_RemovesEntries(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{{Content: "a", Embedding: []float32{1, 0}}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCollection(ctx, "docs"))
	_, err = s.Count(ctx, "docs")
	assert.Error(t, err)
}

func TestCollectionExists(t *testing.T) {
	s := New()
	ctx := context.Background()

	exists, err := s.CollectionExists(ctx, "docs")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	exists, err = s.CollectionExists(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStats_ReportsCountAndProvider(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{{Content: "a", Embedding: []float32{1, 0}}})
	require.NoError(t, err)

	stats, err := s.Stats(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, "chromem-go", stats.Provider)
}

func TestGetByIDs_ReturnsOnlyRequestedRecords(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{ID: "a", Content: "a", Embedding: []float32{1, 0}},
		{ID: "b", Content: "b", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)

	results, err := s.GetByIDs(ctx, "docs", []string{"b"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Content)
}

func TestDelete_RemovesFromShadowIndex(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{{ID: "a", Content: "a", Embedding: []float32{1, 0}}})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "docs", []string{"a"}))
	results, err := s.GetByIDs(ctx, "docs", []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetChunksByFile_FiltersAndSortsByStartLine(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{ID: "second", Content: "second", Embedding: []float32{1, 0}, Metadata: map[string]any{"file_path": "a.go", "start_line": float64(20)}},
		{ID: "first", Content: "first", Embedding: []float32{0, 1}, Metadata: map[string]any{"file_path": "a.go", "start_line": float64(5)}},
		{ID: "other", Content: "other file", Embedding: []float32{1, 1}, Metadata: map[string]any{"file_path": "b.go", "start_line": float64(1)}},
	})
	require.NoError(t, err)

	results, err := s.GetChunksByFile(ctx, "docs", "a.go")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
}

func TestListCollections_ReportsEachCollectionSize(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	require.NoError(t, s.EnsureCollection(ctx, "other", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{{Content: "a", Embedding: []float32{1, 0}}})
	require.NoError(t, err)

	infos, err := s.ListCollections(ctx)
	require.NoError(t, err)

	byName := map[string]int{}
	for _, info := range infos {
		byName[info.Name] = info.Count
	}
	assert.Equal(t, 1, byName["docs"])
	assert.Equal(t, 0, byName["other"])
}

func TestMetadata_RoundTripsNonStringValues(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))

	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{ID: "x", Content: "a", Embedding: []float32{1, 0}, Metadata: map[string]any{"line": float64(42)}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "docs", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, float64(42), results[0].Metadata["line"])
}
