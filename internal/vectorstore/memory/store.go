// Package memory implements the reference vectorstore.Provider: an
// in-process store with no persistence, suitable for tests and the
// default out-of-the-box configuration.
package memory

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/codelens-dev/codelens/internal/cerr"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

type entry struct {
	record vectorstore.Record
}

// Store is a concurrency-safe, in-memory vectorstore.Provider.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{collections: make(map[string][]entry)}
}

func (s *Store) EnsureCollection(ctx context.Context, collection string, dimensions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		s.collections[collection] = []entry{}
	}
	return nil
}

func (s *Store) DeleteCollection(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[collection]
	if !ok {
		return 0, notFound(collection)
	}
	return len(coll), nil
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

// Flush is a no-op: the store has no buffered writes to persist.
func (s *Store) Flush(ctx context.Context, collection string) error {
	return nil
}

func (s *Store) ProviderName() string {
	return "memory"
}

// Insert assigns each record an id of "<collection>_<index>", set as the
// stored record's ID (which is what Delete matches on) and stamped into a
// copy of its metadata under "generated_id" — mirroring the reference
// in-memory store this is grounded on, which reuses slice position as the
// identity scheme.
func (s *Store) Insert(ctx context.Context, collection string, records []vectorstore.Record) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, notFound(collection)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		id := fmt.Sprintf("%s_%d", collection, len(coll))
		meta := make(map[string]any, len(rec.Metadata)+1)
		for k, v := range rec.Metadata {
			meta[k] = v
		}
		meta["generated_id"] = id
		rec.ID = id
		rec.Metadata = meta
		coll = append(coll, entry{record: rec})
		ids = append(ids, id)
	}
	s.collections[collection] = coll
	return ids, nil
}

func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return notFound(collection)
	}

	remove := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		remove[id] = struct{}{}
	}

	kept := coll[:0]
	for _, e := range coll {
		if _, drop := remove[e.record.ID]; !drop {
			kept = append(kept, e)
		}
	}
	s.collections[collection] = kept
	return nil
}

// Search returns the top `limit` records by rescaled cosine similarity,
// using a bounded min-heap for O(n log k) selection. A missing collection
// degrades to an empty result rather than an error.
func (s *Store) Search(ctx context.Context, collection string, query []float32, limit int) ([]vectorstore.Result, error) {
	s.mu.RLock()
	coll, ok := s.collections[collection]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}

	queryNorm := norm(query)
	h := &scoreHeap{}
	heap.Init(h)

	for i, e := range coll {
		score := rescaledCosine(query, e.record.Embedding, queryNorm)
		if h.Len() < limit {
			heap.Push(h, scoredIndex{score: score, index: i})
			continue
		}
		if h.Len() > 0 && score > (*h)[0].score {
			heap.Pop(h)
			heap.Push(h, scoredIndex{score: score, index: i})
		}
	}

	items := make([]scoredIndex, h.Len())
	copy(items, *h)
	sortDescending(items)

	results := make([]vectorstore.Result, 0, len(items))
	for _, it := range items {
		results = append(results, vectorstore.Result{Record: coll[it.index].record, Score: it.score})
	}
	return results, nil
}

func (s *Store) GetByIDs(ctx context.Context, collection string, ids []string) ([]vectorstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[collection]
	if !ok {
		return nil, notFound(collection)
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	results := make([]vectorstore.Result, 0, len(ids))
	for _, e := range coll {
		if _, match := want[e.record.ID]; match {
			results = append(results, vectorstore.Result{Record: e.record})
		}
	}
	return results, nil
}

// ListVectors returns up to limit records from collection in insertion
// order, unranked.
func (s *Store) ListVectors(ctx context.Context, collection string, limit int) ([]vectorstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[collection]
	if !ok {
		return nil, notFound(collection)
	}
	if limit <= 0 || limit > len(coll) {
		limit = len(coll)
	}

	results := make([]vectorstore.Result, 0, limit)
	for _, e := range coll[:limit] {
		results = append(results, vectorstore.Result{Record: e.record})
	}
	return results, nil
}

func (s *Store) ListCollections(ctx context.Context) ([]vectorstore.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]vectorstore.CollectionInfo, 0, len(s.collections))
	for name, coll := range s.collections {
		infos = append(infos, vectorstore.CollectionInfo{Name: name, Count: len(coll)})
	}
	return infos, nil
}

// ListFilePaths groups collection's records by metadata["file_path"],
// reporting each file's chunk count and dominant language.
func (s *Store) ListFilePaths(ctx context.Context, collection string, limit int) ([]vectorstore.FileInfo, error) {
	s.mu.RLock()
	coll, ok := s.collections[collection]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(collection)
	}

	order := make([]string, 0)
	byFile := make(map[string][]vectorstore.Result)
	for _, e := range coll {
		path := vectorstore.MetaString(e.record.Metadata, "file_path")
		if path == "" {
			continue
		}
		if _, seen := byFile[path]; !seen {
			order = append(order, path)
		}
		byFile[path] = append(byFile[path], vectorstore.Result{Record: e.record})
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

// GetChunksByFile returns every record whose metadata["file_path"]
// matches filePath exactly, ordered by start_line ascending.
func (s *Store) GetChunksByFile(ctx context.Context, collection string, filePath string) ([]vectorstore.Result, error) {
	s.mu.RLock()
	coll, ok := s.collections[collection]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(collection)
	}

	results := make([]vectorstore.Result, 0)
	for _, e := range coll {
		if vectorstore.MetaString(e.record.Metadata, "file_path") == filePath {
			results = append(results, vectorstore.Result{Record: e.record})
		}
	}
	vectorstore.SortByStartLine(results)
	return results, nil
}

func notFound(collection string) error {
	return cerr.NotFound("vectorstore.collection_not_found", fmt.Sprintf("collection %q not found", collection))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// rescaledCosine maps cosine similarity from [-1, 1] to [0, 1]: 1.0 for
// identical vectors, 0.5 for orthogonal, 0.0 for antipodal. Either vector
// being zero-length collapses to 0.0 rather than dividing by zero.
func rescaledCosine(a, b []float32, normA float64) float64 {
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	normB := norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (normA * normB)
	return (cos + 1.0) / 2.0
}
