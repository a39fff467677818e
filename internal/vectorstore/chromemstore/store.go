// Package chromemstore implements vectorstore.Provider on top of
// chromem-go, an embedded, pure-Go vector database.
package chromemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/codelens-dev/codelens/internal/cerr"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// Store is a vectorstore.Provider backed by an in-process chromem-go
// database. Collections are created lazily and swapped under a RWMutex so
// DeleteCollection followed by EnsureCollection behaves like a clean
// recreate rather than reusing stale state.
//
// chromem-go has no native way to enumerate or filter documents outside a
// similarity query, so Store keeps a parallel shadow index of each
// collection's records — the same companion-storage idea the sqlite-vec
// backend uses its records table for, adapted since chromem already owns
// content and embeddings itself.
type Store struct {
	db *chromem.DB

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
	shadow      map[string]map[string]vectorstore.Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
		shadow:      make(map[string]map[string]vectorstore.Record),
	}
}

func (s *Store) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection]; ok {
		return nil
	}

	col, err := s.db.CreateCollection(collection, nil, nil)
	if err != nil {
		return cerr.Wrap("vectorstore.create_collection_failed", cerr.KindVectorDB, "create chromem collection", err)
	}
	s.collections[collection] = col
	s.shadow[collection] = make(map[string]vectorstore.Record)
	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.DeleteCollection(collection)
	delete(s.collections, collection)
	delete(s.shadow, collection)
	return nil
}

func (s *Store) CollectionExists(ctx context.Context, collection string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[collection]
	return ok, nil
}

func (s *Store) Stats(ctx context.Context, collection string) (vectorstore.CollectionStats, error) {
	count, err := s.Count(ctx, collection)
	if err != nil {
		return vectorstore.CollectionStats{}, err
	}
	return vectorstore.CollectionStats{Count: count, Provider: s.ProviderName()}, nil
}

// Flush is a no-op: chromem-go holds everything in memory already.
func (s *Store) Flush(ctx context.Context, collection string) error {
	return nil
}

func (s *Store) ProviderName() string {
	return "chromem-go"
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	col, ok := s.lookup(collection)
	if !ok {
		return 0, notFound(collection)
	}
	return col.Count(), nil
}

func (s *Store) Insert(ctx context.Context, collection string, records []vectorstore.Record) ([]string, error) {
	col, ok := s.lookup(collection)
	if !ok {
		return nil, notFound(collection)
	}

	ids := make([]string, 0, len(records))
	docs := make([]chromem.Document, 0, len(records))
	shadowed := make([]vectorstore.Record, 0, len(records))
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf("%s_%d", collection, col.Count()+len(docs))
		}
		docs = append(docs, chromem.Document{
			ID:        id,
			Content:   rec.Content,
			Embedding: rec.Embedding,
			Metadata:  stringifyMetadata(rec.Metadata),
		})
		rec.ID = id
		shadowed = append(shadowed, rec)
		ids = append(ids, id)
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return nil, cerr.Wrap("vectorstore.insert_failed", cerr.KindVectorDB, "add documents to chromem collection", err)
	}

	s.mu.Lock()
	for _, rec := range shadowed {
		s.shadow[collection][rec.ID] = rec
	}
	s.mu.Unlock()

	return ids, nil
}

func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	col, ok := s.lookup(collection)
	if !ok {
		return notFound(collection)
	}
	if err := col.Delete(ctx, nil, nil, ids...); err != nil {
		return cerr.Wrap("vectorstore.delete_failed", cerr.KindVectorDB, "delete documents from chromem collection", err)
	}

	s.mu.Lock()
	for _, id := range ids {
		delete(s.shadow[collection], id)
	}
	s.mu.Unlock()

	return nil
}

// Search returns an empty result set, not an error, for a collection that
// doesn't exist yet.
func (s *Store) Search(ctx context.Context, collection string, queryEmbedding []float32, limit int) ([]vectorstore.Result, error) {
	col, ok := s.lookup(collection)
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}

	n := limit
	if count := col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	docs, err := col.QueryEmbedding(ctx, queryEmbedding, n, nil, nil)
	if err != nil {
		return nil, cerr.Wrap("vectorstore.search_failed", cerr.KindVectorDB, "query chromem collection", err)
	}

	results := make([]vectorstore.Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, vectorstore.Result{
			Record: vectorstore.Record{
				ID:       doc.ID,
				Content:  doc.Content,
				Metadata: destringifyMetadata(doc.Metadata),
			},
			Score: (float64(doc.Similarity) + 1.0) / 2.0,
		})
	}
	return results, nil
}

func (s *Store) GetByIDs(ctx context.Context, collection string, ids []string) ([]vectorstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.shadow[collection]
	if !ok {
		return nil, notFound(collection)
	}

	results := make([]vectorstore.Result, 0, len(ids))
	for _, id := range ids {
		if rec, found := records[id]; found {
			results = append(results, vectorstore.Result{Record: rec})
		}
	}
	return results, nil
}

// ListVectors returns up to limit shadow-indexed records, unranked.
func (s *Store) ListVectors(ctx context.Context, collection string, limit int) ([]vectorstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.shadow[collection]
	if !ok {
		return nil, notFound(collection)
	}

	results := make([]vectorstore.Result, 0, len(records))
	for _, rec := range records {
		results = append(results, vectorstore.Result{Record: rec})
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (s *Store) ListCollections(ctx context.Context) ([]vectorstore.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]vectorstore.CollectionInfo, 0, len(s.collections))
	for name, col := range s.collections {
		infos = append(infos, vectorstore.CollectionInfo{Name: name, Count: col.Count()})
	}
	return infos, nil
}

// ListFilePaths groups a collection's shadow-indexed records by
// metadata["file_path"].
func (s *Store) ListFilePaths(ctx context.Context, collection string, limit int) ([]vectorstore.FileInfo, error) {
	all, err := s.ListVectors(ctx, collection, 0)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	byFile := make(map[string][]vectorstore.Result)
	for _, r := range all {
		path := vectorstore.MetaString(r.Metadata, "file_path")
		if path == "" {
			continue
		}
		if _, seen := byFile[path]; !seen {
			order = append(order, path)
		}
		byFile[path] = append(byFile[path], r)
	}
	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}

	infos := make([]vectorstore.FileInfo, 0, len(order))
	for _, path := range order {
		chunks := byFile[path]
		infos = append(infos, vectorstore.FileInfo{
			FilePath:         path,
			ChunkCount:       len(chunks),
			DominantLanguage: vectorstore.DominantLanguage(chunks),
		})
	}
	return infos, nil
}

func (s *Store) GetChunksByFile(ctx context.Context, collection string, filePath string) ([]vectorstore.Result, error) {
	all, err := s.ListVectors(ctx, collection, 0)
	if err != nil {
		return nil, err
	}

	results := make([]vectorstore.Result, 0)
	for _, r := range all {
		if vectorstore.MetaString(r.Metadata, "file_path") == filePath {
			results = append(results, r)
		}
	}
	vectorstore.SortByStartLine(results)
	return results, nil
}

func (s *Store) lookup(collection string) (*chromem.Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[collection]
	return col, ok
}

// stringifyMetadata adapts arbitrary metadata values to chromem-go's
// string-only metadata map: strings pass through, everything else is
// JSON-encoded so round-tripping through destringifyMetadata recovers the
// original shape for composite values.
func stringifyMetadata(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if str, ok := v.(string); ok {
			out[k] = str
			continue
		}
		if encoded, err := json.Marshal(v); err == nil {
			out[k] = string(encoded)
		}
	}
	return out
}

func destringifyMetadata(meta map[string]string) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			out[k] = decoded
			continue
		}
		out[k] = v
	}
	return out
}

func notFound(collection string) error {
	return cerr.NotFound("vectorstore.collection_not_found", fmt.Sprintf("collection %q not found", collection))
}
