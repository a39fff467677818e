// Package search implements the Search Service (C10): it embeds a query,
// asks the chunk repository for nearest neighbors, and optionally blends in
// keyword hits from a registered KeywordSearcher (such as hybrid.Index).
package search

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/codelens-dev/codelens/internal/cache"
	"github.com/codelens-dev/codelens/internal/embedding"
	"github.com/codelens-dev/codelens/internal/repository"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// Result is the shape returned to every caller of Query (MCP tool, CLI),
// matching the reference SearchResult fields exactly.
type Result struct {
	ID        string  `json:"id"`
	FilePath  string  `json:"file_path"`
	Content   string  `json:"content"`
	StartLine int     `json:"start_line"`
	Language  string  `json:"language"`
	Score     float64 `json:"score"`
}

// KeywordSearcher is the narrow port a hybrid keyword index implements to
// participate in Query. A Service with no KeywordSearcher registered does
// vector-only search.
type KeywordSearcher interface {
	Search(ctx context.Context, collection, query string, limit int) ([]Result, error)
}

// Embedder is the subset of embedding.Provider Query needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string, mode embedding.Mode) ([][]float32, error)
}

// cacheTTL bounds how long a query's blended results are reused; results
// go stale the moment the collection is reindexed, so this stays short.
const cacheTTL = 30 * time.Second

// keywordWeight and vectorWeight set the blend when both searchers return
// a hit for the same chunk id. Vector similarity is the primary signal;
// a keyword match nudges the score up rather than replacing it.
const (
	vectorWeight  = 0.7
	keywordWeight = 0.3
)

// Service is the Search Service (C10).
type Service struct {
	embedder Embedder
	repo     *repository.Repository
	keyword  KeywordSearcher
	cache    cache.Provider
}

// Config collects Service's collaborators. Keyword and Cache may be nil:
// a nil Keyword searcher means vector-only results; a nil Cache skips
// result caching entirely.
type Config struct {
	Embedder embedding.Provider
	Repo     *repository.Repository
	Keyword  KeywordSearcher
	Cache    cache.Provider
}

func New(cfg Config) *Service {
	return &Service{
		embedder: cfg.Embedder,
		repo:     cfg.Repo,
		keyword:  cfg.Keyword,
		cache:    cfg.Cache,
	}
}

// Query embeds query, searches collection for its nearest limit chunks,
// and — if a keyword searcher is registered — blends in its hits before
// returning. Results are sorted by descending score.
func (s *Service) Query(ctx context.Context, collection, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := collection + "\x00" + query + "\x00" + strconv.Itoa(limit)
	if s.cache != nil {
		if cached, ok, err := cache.Get[[]Result](ctx, s.cache, cache.NamespaceSearchResults, cacheKey); err == nil && ok {
			return cached, nil
		}
	}

	results, err := s.vectorQuery(ctx, collection, query, limit)
	if err != nil {
		return nil, err
	}

	if s.keyword != nil {
		keywordHits, err := s.keyword.Search(ctx, collection, query, limit)
		if err == nil {
			results = blend(results, keywordHits, limit)
		}
	}

	if s.cache != nil {
		_ = cache.Set(ctx, s.cache, cache.NamespaceSearchResults, cacheKey, results, cacheTTL)
	}

	return results, nil
}

func (s *Service) vectorQuery(ctx context.Context, collection, query string, limit int) ([]Result, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query}, embedding.ModeQuery)
	if err != nil {
		return nil, err
	}

	hits, err := s.repo.Search(ctx, collection, vectors[0], limit)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = toResult(h)
	}
	return results, nil
}

func toResult(r vectorstore.Result) Result {
	return Result{
		ID:        r.ID,
		FilePath:  vectorstore.MetaString(r.Metadata, "file_path"),
		Content:   r.Content,
		StartLine: vectorstore.MetaInt(r.Metadata, "start_line"),
		Language:  vectorstore.MetaString(r.Metadata, "language"),
		Score:     r.Score,
	}
}

// blend merges keyword hits into vector results: a chunk id present in
// both gets a weighted-average score; a keyword-only hit is appended with
// its own score scaled by keywordWeight. The merged set is re-sorted and
// truncated to limit.
func blend(vectorResults []Result, keywordHits []Result, limit int) []Result {
	byID := make(map[string]int, len(vectorResults))
	merged := make([]Result, len(vectorResults))
	copy(merged, vectorResults)
	for i, r := range merged {
		byID[r.ID] = i
	}

	for _, hit := range keywordHits {
		if idx, ok := byID[hit.ID]; ok {
			merged[idx].Score = merged[idx].Score*vectorWeight + hit.Score*keywordWeight
			continue
		}
		hit.Score *= keywordWeight
		byID[hit.ID] = len(merged)
		merged = append(merged, hit)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
