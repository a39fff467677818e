package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/cache/local"
	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/embedding"
	"github.com/codelens-dev/codelens/internal/repository"
	"github.com/codelens-dev/codelens/internal/vectorstore/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	embedder := embedding.NewMockProvider(16)
	repo := repository.New("codelens", embedder, store)

	_, err := repo.SaveBatch(context.Background(), "c1", []chunk.Chunk{
		{ID: "a", Content: "func foo() {}", FilePath: "main.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo},
		{ID: "b", Content: "func bar() {}", FilePath: "util.go", StartLine: 5, EndLine: 7, Language: chunk.LangGo},
	})
	require.NoError(t, err)

	return New(Config{Embedder: embedder, Repo: repo})
}

func TestQuery_ReturnsVectorResults(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.Query(context.Background(), "c1", "func foo() {}", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "main.go", results[0].FilePath)
	assert.Equal(t, "go", results[0].Language)
	assert.GreaterOrEqual(t, results[0].Score, 0.0)
	assert.LessOrEqual(t, results[0].Score, 1.0)
}

func TestQuery_DefaultsLimitWhenZero(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.Query(context.Background(), "c1", "func foo() {}", 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 10)
}

func TestQuery_EmptyCollectionReturnsNoResults(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.Query(context.Background(), "missing", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

type fakeKeywordSearcher struct {
	results []Result
}

func (f *fakeKeywordSearcher) Search(ctx context.Context, collection, query string, limit int) ([]Result, error) {
	return f.results, nil
}

func TestQuery_BlendsKeywordHitsIntoVectorResults(t *testing.T) {
	store := memory.New()
	embedder := embedding.NewMockProvider(16)
	repo := repository.New("codelens", embedder, store)
	ctx := context.Background()

	_, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "func foo() {}", FilePath: "main.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo},
	})
	require.NoError(t, err)

	keyword := &fakeKeywordSearcher{results: []Result{
		{ID: "keyword-only", FilePath: "other.go", Content: "keyword hit", Score: 1.0},
	}}
	svc := New(Config{Embedder: embedder, Repo: repo, Keyword: keyword})

	results, err := svc.Query(ctx, "c1", "func foo() {}", 10)
	require.NoError(t, err)

	var sawKeywordOnly bool
	for _, r := range results {
		if r.ID == "keyword-only" {
			sawKeywordOnly = true
			assert.InDelta(t, keywordWeight, r.Score, 1e-9)
		}
	}
	assert.True(t, sawKeywordOnly)
}

func TestQuery_CachesResultsAcrossCalls(t *testing.T) {
	store := memory.New()
	embedder := embedding.NewMockProvider(16)
	repo := repository.New("codelens", embedder, store)
	ctx := context.Background()

	_, err := repo.SaveBatch(ctx, "c1", []chunk.Chunk{
		{ID: "a", Content: "func foo() {}", FilePath: "main.go", StartLine: 1, EndLine: 1, Language: chunk.LangGo},
	})
	require.NoError(t, err)

	cacheStore, err := local.New(local.DefaultConfig())
	require.NoError(t, err)
	svc := New(Config{Embedder: embedder, Repo: repo, Cache: cacheStore})

	first, err := svc.Query(ctx, "c1", "func foo() {}", 10)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "c1", []string{"a"}))

	second, err := svc.Query(ctx, "c1", "func foo() {}", 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
