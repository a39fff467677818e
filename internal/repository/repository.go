// Package repository adapts CodeChunk batches onto the embedding and
// vector store ports: it is the only writer of collection storage (C5),
// responsible for collection naming and the metadata schema written per
// chunk.
package repository

import (
	"context"
	"fmt"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/embedding"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// Repository is the Chunk Repository (C8): it owns collection naming and
// the metadata schema written per chunk, and is the only component
// permitted to write to vector store collections.
type Repository struct {
	prefix   string
	embedder embedding.Provider
	store    vectorstore.Provider
}

// New returns a Repository that prefixes every collection name with
// prefix, embeds via embedder, and stores via store.
func New(prefix string, embedder embedding.Provider, store vectorstore.Provider) *Repository {
	return &Repository{prefix: prefix, embedder: embedder, store: store}
}

// CollectionName returns the storage-facing name for a caller-supplied
// collection, folding in the repository's configured prefix. The prefix is
// part of the repository's identity, not the caller's — every write and
// read goes through this so callers never see or choose the raw table
// name.
func (r *Repository) CollectionName(collection string) string {
	return fmt.Sprintf("%s_%s", r.prefix, collection)
}

// SaveBatch embeds all chunks in a single call to the embedding provider,
// then a single call to the vector store with the resulting embeddings and
// a metadata list parallel to the chunks. Empty input returns empty output
// without touching either port.
func (r *Repository) SaveBatch(ctx context.Context, collection string, chunks []chunk.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := r.embedder.Embed(ctx, texts, embedding.ModePassage)
	if err != nil {
		return nil, fmt.Errorf("embed chunk batch: %w", err)
	}

	name := r.CollectionName(collection)
	exists, err := r.store.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		if err := r.store.EnsureCollection(ctx, name, r.embedder.Dimensions()); err != nil {
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:        c.ID,
			Content:   c.Content,
			Embedding: vectors[i],
			Metadata:  chunkMetadata(c),
		}
	}

	ids, err := r.store.Insert(ctx, name, records)
	if err != nil {
		return nil, fmt.Errorf("insert chunk batch: %w", err)
	}
	return ids, nil
}

// chunkMetadata builds the metadata schema written per chunk: content,
// file_path, start_line, end_line, language, and the caller-supplied id,
// layered over whatever provenance fields the extractor already attached.
func chunkMetadata(c chunk.Chunk) map[string]any {
	meta := make(map[string]any, len(c.Metadata)+6)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta["content"] = c.Content
	meta["file_path"] = c.FilePath
	meta["start_line"] = c.StartLine
	meta["end_line"] = c.EndLine
	meta["language"] = string(c.Language)
	meta["id"] = c.ID
	return meta
}

// FindByID is a thin pass-through to the vector store's GetByIDs.
func (r *Repository) FindByID(ctx context.Context, collection string, id string) (*vectorstore.Result, error) {
	results, err := r.store.GetByIDs(ctx, r.CollectionName(collection), []string{id})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Search is a thin pass-through to the vector store's similarity Search,
// used by the search service's vector path.
func (r *Repository) Search(ctx context.Context, collection string, queryEmbedding []float32, limit int) ([]vectorstore.Result, error) {
	return r.store.Search(ctx, r.CollectionName(collection), queryEmbedding, limit)
}

// FindByCollection is a thin pass-through to the vector store's
// ListVectors.
func (r *Repository) FindByCollection(ctx context.Context, collection string, limit int) ([]vectorstore.Result, error) {
	return r.store.ListVectors(ctx, r.CollectionName(collection), limit)
}

// FindByFile is a thin pass-through to the vector store's
// GetChunksByFile, used to locate a file's previously stored chunks
// before replacing or dropping them.
func (r *Repository) FindByFile(ctx context.Context, collection, filePath string) ([]vectorstore.Result, error) {
	return r.store.GetChunksByFile(ctx, r.CollectionName(collection), filePath)
}

// Delete is a thin pass-through to the vector store's Delete.
func (r *Repository) Delete(ctx context.Context, collection string, ids []string) error {
	return r.store.Delete(ctx, r.CollectionName(collection), ids)
}

// DeleteCollection is a thin pass-through to the vector store's
// DeleteCollection.
func (r *Repository) DeleteCollection(ctx context.Context, collection string) error {
	return r.store.DeleteCollection(ctx, r.CollectionName(collection))
}
