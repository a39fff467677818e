package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/vectorstore"
)

func TestInsert_GeneratesSequentialIDsAndStampsMetadata(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 3))

	ids, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "a", Embedding: []float32{1, 0, 0}, Metadata: map[string]any{"lang": "go"}},
		{Content: "b", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs_0", "docs_1"}, ids)

	count, err := s.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInsert_MissingCollectionErrors(t *testing.T) {
	s := New()
	_, err := s.Insert(context.Background(), "missing", []vectorstore.Record{{Content: "a"}})
	assert.Error(t, err)
}

func TestDelete_MissingCollectionErrors(t *testing.T) {
	s := New()
	err := s.Delete(context.Background(), "missing", []string{"x"})
	assert.Error(t, err)
}

func TestDelete_RemovesOnlyMatchingIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 3))
	ids, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "a", Embedding: []float32{1, 0, 0}},
		{Content: "b", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "docs", []string{ids[0]}))
	count, err := s.Count(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearch_MissingCollectionReturnsEmptyNotError(t *testing.T) {
	s := New()
	results, err := s.Search(context.Background(), "missing", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RescaleBounds(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "identical", Embedding: []float32{1, 0}},
		{Content: "orthogonal", Embedding: []float32{0, 1}},
		{Content: "opposite", Embedding: []float32{-1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "docs", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	byContent := map[string]float64{}
	for _, r := range results {
		byContent[r.Content] = r.Score
	}
	assert.InDelta(t, 1.0, byContent["identical"], 1e-6)
	assert.InDelta(t, 0.5, byContent["orthogonal"], 1e-6)
	assert.InDelta(t, 0.0, byContent["opposite"], 1e-6)
}

func TestSearch_RespectsLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "a", Embedding: []float32{1, 0}},
		{Content: "b", Embedding: []float32{0.9, 0.1}},
		{Content: "c", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "docs", []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_TiedScoresPreserveInsertionOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))

	ids, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "first", Embedding: []float32{1, 0}},
		{Content: "second", Embedding: []float32{1, 0}},
		{Content: "third", Embedding: []float32{1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "docs", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var gotIDs []string
	for _, r := range results {
		gotIDs = append(gotIDs, r.Record.ID)
	}
	assert.Equal(t, ids, gotIDs)
}

func TestSearch_TopKBoundWithManyEmbeddings(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "bench", 4))

	records := make([]vectorstore.Record, 100)
	for i := range records {
		records[i] = vectorstore.Record{
			Content:   fmt.Sprintf("chunk-%d", i),
			Embedding: []float32{float32(i), float32(100 - i), float32(i % 7), 1},
		}
	}
	_, err := s.Insert(ctx, "bench", records)
	require.NoError(t, err)

	results, err := s.Search(ctx, "bench", []float32{50, 50, 3, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestDeleteCollection_ThenInsertErrors(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	require.NoError(t, s.DeleteCollection(ctx, "docs"))

	_, err := s.Insert(ctx, "docs", []vectorstore.Record{{Content: "a"}})
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
	assert.Equal(t, "memory", stats.Provider)
}

func TestGetByIDs_ReturnsOnlyRequestedRecords(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	ids, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "a", Embedding: []float32{1, 0}},
		{Content: "b", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)

	results, err := s.GetByIDs(ctx, "docs", []string{ids[1]})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Content)
}

func TestListVectors_RespectsLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "a", Embedding: []float32{1, 0}},
		{Content: "b", Embedding: []float32{0, 1}},
		{Content: "c", Embedding: []float32{1, 1}},
	})
	require.NoError(t, err)

	results, err := s.ListVectors(ctx, "docs", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
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

func TestGetChunksByFile_FiltersAndSortsByStartLine(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "second", Embedding: []float32{1, 0}, Metadata: map[string]any{"file_path": "a.go", "start_line": 20}},
		{Content: "first", Embedding: []float32{0, 1}, Metadata: map[string]any{"file_path": "a.go", "start_line": 5}},
		{Content: "other file", Embedding: []float32{1, 1}, Metadata: map[string]any{"file_path": "b.go", "start_line": 1}},
	})
	require.NoError(t, err)

	results, err := s.GetChunksByFile(ctx, "docs", "a.go")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
}

func TestListFilePaths_GroupsByFileWithDominantLanguage(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	_, err := s.Insert(ctx, "docs", []vectorstore.Record{
		{Content: "a", Embedding: []float32{1, 0}, Metadata: map[string]any{"file_path": "a.go", "language": "go"}},
		{Content: "b", Embedding: []float32{0, 1}, Metadata: map[string]any{"file_path": "a.go", "language": "go"}},
	})
	require.NoError(t, err)

	infos, err := s.ListFilePaths(ctx, "docs", 10)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "a.go", infos[0].FilePath)
	assert.Equal(t, 2, infos[0].ChunkCount)
	assert.Equal(t, "go", infos[0].DominantLanguage)
}
