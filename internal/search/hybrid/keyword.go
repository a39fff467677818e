// Package hybrid implements the Search Service's keyword composition hook:
// an in-memory bleve full-text index kept alongside the vector store,
// queried in parallel and blended into vector results by search.Service.
package hybrid

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/search"
)

type document struct {
	Content   string `json:"content"`
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	Language  string `json:"language"`
}

// Index is a collection-scoped bleve keyword index. It satisfies
// search.KeywordSearcher.
type Index struct {
	mu     sync.RWMutex
	byColl map[string]bleve.Index
}

// NewIndex returns an empty Index with no collections yet built.
func NewIndex() *Index {
	return &Index{byColl: make(map[string]bleve.Index)}
}

func buildMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = "standard"
	content.Store = true
	content.Index = true
	content.IncludeTermVectors = true

	filePath := bleve.NewTextFieldMapping()
	filePath.Analyzer = "standard"
	filePath.Store = true
	filePath.Index = true

	language := bleve.NewTextFieldMapping()
	language.Analyzer = "keyword"
	language.Store = true
	language.Index = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("file_path", filePath)
	doc.AddFieldMappingsAt("language", language)

	im.DefaultMapping = doc
	return im
}

// collectionIndex returns collection's bleve index, creating it on first
// use so callers never need a separate provisioning step.
func (idx *Index) collectionIndex(collection string) (bleve.Index, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if bi, ok := idx.byColl[collection]; ok {
		return bi, nil
	}
	bi, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	idx.byColl[collection] = bi
	return bi, nil
}

// AddChunks upserts chunks into collection's keyword index by chunk id,
// leaving any previously indexed chunks untouched. Called by the indexing
// service alongside the vector store write so both searchers stay in sync
// with the same incremental batches.
func (idx *Index) AddChunks(ctx context.Context, collection string, chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	bi, err := idx.collectionIndex(collection)
	if err != nil {
		return err
	}

	batch := bi.NewBatch()
	for i, c := range chunks {
		if i%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		doc := document{Content: c.Content, FilePath: c.FilePath, StartLine: c.StartLine, Language: string(c.Language)}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("index chunk %s: %w", c.ID, err)
		}
		if batch.Size() >= 1000 {
			if err := bi.Batch(batch); err != nil {
				return fmt.Errorf("execute batch: %w", err)
			}
			batch = bi.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := bi.Batch(batch); err != nil {
			return fmt.Errorf("execute final batch: %w", err)
		}
	}
	return nil
}

// DeleteChunks removes ids from collection's keyword index, mirroring a
// vector store delete so a modified file's stale chunks drop out of both
// searchers together.
func (idx *Index) DeleteChunks(collection string, ids []string) error {
	idx.mu.RLock()
	bi, ok := idx.byColl[collection]
	idx.mu.RUnlock()
	if !ok || len(ids) == 0 {
		return nil
	}

	batch := bi.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return bi.Batch(batch)
}

// DeleteCollection drops collection's keyword index entirely, mirroring
// clear_index on the vector side.
func (idx *Index) DeleteCollection(collection string) error {
	idx.mu.Lock()
	bi, ok := idx.byColl[collection]
	delete(idx.byColl, collection)
	idx.mu.Unlock()

	if !ok {
		return nil
	}
	return bi.Close()
}

// Search implements search.KeywordSearcher. A collection with no keyword
// index yet (nothing indexed, or indexed vector-only before this package
// was wired in) returns no hits rather than an error.
func (idx *Index) Search(ctx context.Context, collection, query string, limit int) ([]search.Result, error) {
	idx.mu.RLock()
	bi, ok := idx.byColl[collection]
	idx.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), limit, 0, false)
	req.Fields = []string{"content", "file_path", "start_line", "language"}

	result, err := bi.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search: %w", err)
	}

	hits := make([]search.Result, 0, len(result.Hits))
	for _, hit := range result.Hits {
		content, _ := hit.Fields["content"].(string)
		filePath, _ := hit.Fields["file_path"].(string)
		language, _ := hit.Fields["language"].(string)
		startLine := 0
		if v, ok := hit.Fields["start_line"].(float64); ok {
			startLine = int(v)
		}

		hits = append(hits, search.Result{
			ID:        hit.ID,
			FilePath:  filePath,
			Content:   content,
			StartLine: startLine,
			Language:  language,
			Score:     normalizeScore(hit.Score),
		})
	}
	return hits, nil
}

// normalizeScore clamps bleve's unbounded TF-IDF score into [0,1] so it
// blends sensibly against the vector store's cosine-rescaled scores.
// Bleve scores rarely exceed 1 for short code chunks; anything beyond
// that is capped rather than scaled, which is good enough for the
// composition hook this package exists to provide.
func normalizeScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// Close releases every collection's bleve index.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, bi := range idx.byColl {
		bi.Close()
	}
	idx.byColl = make(map[string]bleve.Index)
	return nil
}
