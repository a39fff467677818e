package indexing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codelens-dev/codelens/internal/embedding"
	"github.com/codelens-dev/codelens/internal/repository"
	"github.com/codelens-dev/codelens/internal/search/hybrid"
	"github.com/codelens-dev/codelens/internal/snapshot"
	"github.com/codelens-dev/codelens/internal/syncx"
	"github.com/codelens-dev/codelens/internal/vectorstore"
	"github.com/codelens-dev/codelens/internal/vectorstore/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	repo := repository.New("codelens", embedding.NewMockProvider(16), store)
	snapshots, err := snapshot.NewManager(t.TempDir())
	require.NoError(t, err)

	svc := New(Config{
		Snapshots:   snapshots,
		Coordinator: syncx.NewCoordinator(syncx.DefaultConfig()),
		Repo:        repo,
	})
	return svc, store
}

func TestIndexCodebase_RejectsNonDirectory(t *testing.T) {
	svc, _ := newTestService(t)
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := svc.IndexCodebase(context.Background(), file, "c1")
	assert.Error(t, err)
}

func TestIndexCodebase_EmptyDirectoryProducesZeroResult(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()

	result, err := svc.IndexCodebase(context.Background(), dir, "c1")
	require.NoError(t, err)
	assert.Equal(t, 0, result.FilesProcessed)
	assert.Equal(t, 0, result.ChunksCreated)
}

func TestIndexCodebase_ChunksAndStoresAGoFile(t *testing.T) {
	svc, store := newTestService(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte(`package main

func foo() {
	println("foo")
	println("foo")
}

func bar() {
	println("bar")
}
`), 0o644))

	result, err := svc.IndexCodebase(context.Background(), dir, "c2")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ChunksCreated, 2)

	results, err := store.ListVectors(context.Background(), "codelens_c2", 0)
	require.NoError(t, err)
	for _, r := range results {
		assert.Contains(t, r.Metadata["file_path"], "main.go")
		assert.Equal(t, "go", r.Metadata["language"])
	}
}

func TestIndexCodebase_SecondRunWithNoChangesIndexesNothing(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\nfunc foo() {}\n"), 0o644))

	_, err := svc.IndexCodebase(context.Background(), dir, "c3")
	require.NoError(t, err)

	result, err := svc.IndexCodebase(context.Background(), dir, "c3")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunksCreated)
}

func TestIndexCodebase_ModifiedFileReplacesItsOldChunks(t *testing.T) {
	svc, store := newTestService(t)
	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(mainPath, []byte(`package main

func foo() {
	println("a")
	println("b")
	println("c")
}
`), 0o644))

	_, err := svc.IndexCodebase(context.Background(), dir, "c4")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(mainPath, []byte(`package main

func foo() {
	println("a")
	println("b")
	println("c")
	println("d")
}
`), 0o644))

	result, err := svc.IndexCodebase(context.Background(), dir, "c4")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.ChunksCreated, 1)

	results, err := store.ListVectors(context.Background(), "codelens_c4", 0)
	require.NoError(t, err)

	fooChunks := 0
	for _, r := range results {
		if vectorstore.MetaString(r.Metadata, "file_path") == "main.go" {
			fooChunks++
		}
	}
	assert.Equal(t, 1, fooChunks, "old chunk for the modified file should have been replaced, not kept alongside the new one")
}

func TestIndexCodebase_ConcurrentSamePathDefersOne(t *testing.T) {
	svc, _ := newTestService(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\nfunc foo() {}\n"), 0o644))

	type outcome struct {
		chunks int
	}
	results := make(chan outcome, 2)
	run := func() {
		r, err := svc.IndexCodebase(context.Background(), dir, "c6")
		require.NoError(t, err)
		results <- outcome{chunks: r.ChunksCreated}
	}

	go run()
	go run()

	first := <-results
	second := <-results
	assert.True(t, first.chunks == 0 || second.chunks == 0)
}

func TestClearCollection_DeletesUnderlyingCollection(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureCollection(ctx, "codelens_c1", 16))
	_, err := store.Insert(ctx, "codelens_c1", []vectorstore.Record{{Content: "x", Embedding: make([]float32, 16)}})
	require.NoError(t, err)

	require.NoError(t, svc.ClearCollection(ctx, "c1"))
	_, err = store.Count(ctx, "codelens_c1")
	assert.Error(t, err)
}

func TestStatus_IdleBeforeAnyRun(t *testing.T) {
	svc, _ := newTestService(t)
	status := svc.Status()
	assert.False(t, status.IsIndexing)
	assert.Equal(t, 0, status.TotalFiles)
}

func TestIndexCodebase_KeepsKeywordIndexInSync(t *testing.T) {
	store := memory.New()
	repo := repository.New("codelens", embedding.NewMockProvider(16), store)
	snapshots, err := snapshot.NewManager(t.TempDir())
	require.NoError(t, err)
	keyword := hybrid.NewIndex()

	svc := New(Config{
		Snapshots:   snapshots,
		Coordinator: syncx.NewCoordinator(syncx.DefaultConfig()),
		Repo:        repo,
		Keyword:     keyword,
	})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\nfunc parseConfig() {}\n"), 0o644))

	_, err = svc.IndexCodebase(context.Background(), dir, "c7")
	require.NoError(t, err)

	results, err := keyword.Search(context.Background(), "c7", "parseConfig", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	require.NoError(t, svc.ClearCollection(context.Background(), "c7"))
	results, err = keyword.Search(context.Background(), "c7", "parseConfig", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
