package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/embedding"
	"github.com/codelens-dev/codelens/internal/vectorstore/memory"
)

func newTestRepo() (*Repository, *memory.Store) {
	store := memory.New()
	embedder := embedding.NewMockProvider(16)
	return New("codelens", embedder, store), store
}

func TestSaveBatch_EmptyInputReturnsEmptyOutput(t *testing.T) {
	repo, _ := newTestRepo()
	ids, err := repo.SaveBatch(context.Background(), "c1", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSaveBatch_PrefixesCollectionName(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	_, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "func foo() {}", FilePath: "main.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo},
	})
	require.NoError(t, err)

	count, err := store.Count(ctx, "codelens_c1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSaveBatch_WritesFullMetadataSchema(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	_, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "func foo() {}", FilePath: "main.go", StartLine: 3, EndLine: 5, Language: chunk.LangGo,
			Metadata: map[string]any{"kind": "function"}},
	})
	require.NoError(t, err)

	results, err := store.ListVectors(ctx, "codelens_c1", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	meta := results[0].Metadata
	assert.Equal(t, "main.go", meta["file_path"])
	assert.Equal(t, 3, meta["start_line"])
	assert.Equal(t, 5, meta["end_line"])
	assert.Equal(t, "go", meta["language"])
	assert.Equal(t, "a", meta["id"])
	assert.Equal(t, "function", meta["kind"])
}

func TestSaveBatch_BatchEquivalentToSequentialSaves(t *testing.T) {
	embedderA := embedding.NewMockProvider(16)
	embedderB := embedding.NewMockProvider(16)
	storeA := memory.New()
	storeB := memory.New()
	repoA := New("codelens", embedderA, storeA)
	repoB := New("codelens", embedderB, storeB)
	ctx := context.Background()

	x := chunk.Chunk{ID: "x", Content: "func foo() {}", FilePath: "a.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo}
	y := chunk.Chunk{ID: "y", Content: "func bar() {}", FilePath: "b.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo}

	_, err := repoA.SaveBatch(ctx, "c1", []chunk.Chunk{x, y})
	require.NoError(t, err)

	_, err = repoB.SaveBatch(ctx, "c1", []chunk.Chunk{x})
	require.NoError(t, err)
	_, err = repoB.SaveBatch(ctx, "c1", []chunk.Chunk{y})
	require.NoError(t, err)

	countA, err := storeA.Count(ctx, "codelens_c1")
	require.NoError(t, err)
	countB, err := storeB.Count(ctx, "codelens_c1")
	require.NoError(t, err)
	assert.Equal(t, countA, countB)
}

func TestFindByID_ReturnsStoredRecord(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()

	ids, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "func foo() {}", FilePath: "main.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo},
	})
	require.NoError(t, err)

	result, err := repo.FindByID(ctx, "c1", ids[0])
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "func foo() {}", result.Content)
}

func TestFindByID_MissingReturnsNil(t *testing.T) {
	repo, _ := newTestRepo()
	ctx := context.Background()
	_, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{{ID: "a", Content: "x", FilePath: "f", Language: chunk.LangGo}})
	require.NoError(t, err)

	result, err := repo.FindByID(ctx, "c1", "missing")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDeleteCollection_RemovesAllChunks(t *testing.T) {
	repo, store := newTestRepo()
	ctx := context.Background()

	_, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{{ID: "a", Content: "x", FilePath: "f", Language: chunk.LangGo}})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCollection(ctx, "c1"))
	_, err = store.Count(ctx, "codelens_c1")
	assert.Error(t, err)
}
