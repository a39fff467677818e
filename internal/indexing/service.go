// Package indexing implements the Indexing Service (C9): it orchestrates a
// snapshot diff, parallel per-file chunking, and batched storage through
// the Chunk Repository, and exposes progress while it runs.
package indexing

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codelens-dev/codelens/internal/cerr"
	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/eventbus"
	"github.com/codelens-dev/codelens/internal/repository"
	"github.com/codelens-dev/codelens/internal/search/hybrid"
	"github.com/codelens-dev/codelens/internal/snapshot"
	"github.com/codelens-dev/codelens/internal/syncx"
	"github.com/codelens-dev/codelens/internal/vectorstore"
)

// BatchSize is the number of changed files chunked together before their
// results are submitted to the repository, matching the reference
// implementation's INDEXING_BATCH_SIZE.
const BatchSize = 10

// Result is the outcome of one index_codebase call.
type Result struct {
	FilesProcessed int
	ChunksCreated  int
	FilesSkipped   int
	Errors         []string
}

// Service is the Indexing Service (C9).
type Service struct {
	snapshots   *snapshot.Manager
	coordinator *syncx.Coordinator
	extractor   chunk.Extractor
	repo        *repository.Repository
	keyword     *hybrid.Index
	bus         *eventbus.Bus

	status statusTracker
}

// Config collects Service's collaborators. Coordinator, Keyword, and Bus
// may be nil: a nil Coordinator skips debounce/slot discipline (useful in
// tests and single-shot CLI runs); a nil Keyword index skips keeping the
// search service's keyword path in sync, leaving it vector-only; a nil Bus
// skips the IndexRebuild subscription.
type Config struct {
	Snapshots   *snapshot.Manager
	Coordinator *syncx.Coordinator
	Extractor   chunk.Extractor
	Repo        *repository.Repository
	Keyword     *hybrid.Index
	Bus         *eventbus.Bus
}

// New builds a Service from cfg.
func New(cfg Config) *Service {
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = chunk.NewExtractor()
	}
	return &Service{
		snapshots:   cfg.Snapshots,
		coordinator: cfg.Coordinator,
		extractor:   extractor,
		repo:        cfg.Repo,
		keyword:     cfg.Keyword,
		bus:         cfg.Bus,
	}
}

// Status reports the current or most recent run's progress.
func (s *Service) Status() Status {
	return s.status.snapshot()
}

// IndexCodebase runs the full chunking pipeline against path, storing
// results under collection.
func (s *Service) IndexCodebase(ctx context.Context, path string, collection string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Result{}, cerr.NotFound("indexing.not_a_directory", "path does not exist or is not a directory")
	}

	canonical, err := filepath.Abs(path)
	if err != nil {
		return Result{}, cerr.Wrap("indexing.canonicalize_failed", cerr.KindIO, "resolve path", err)
	}
	if resolved, err := filepath.EvalSymlinks(canonical); err == nil {
		canonical = resolved
	}

	var batch *syncx.Batch
	if s.coordinator != nil {
		if s.coordinator.ShouldDebounce(canonical) {
			return Result{}, nil
		}
		batch, err = s.coordinator.AcquireSlot(canonical)
		if err != nil {
			return Result{}, cerr.Wrap("indexing.acquire_slot_failed", cerr.KindInternal, "acquire sync slot", err)
		}
		if batch == nil {
			return Result{}, nil
		}
		defer func() {
			s.coordinator.ReleaseSlot(canonical, batch)
			s.coordinator.UpdateLastSync(canonical)
		}()
	}

	changes, err := s.changedFiles(canonical)
	if err != nil {
		return Result{}, err
	}

	// Modified and removed files may already have chunks stored under
	// stale ids (a chunk's id is a hash of its file path and line range,
	// which shifts when the file's line boundaries move), so their old
	// chunks are purged before any replacement is stored.
	for _, relPath := range append(append([]string{}, changes.Modified...), changes.Removed...) {
		if err := s.purgeFile(ctx, collection, relPath); err != nil {
			log.Printf("indexing: purge stale chunks for %s: %v", relPath, err)
		}
	}

	changed := changes.ChangedFiles()
	if len(changed) == 0 {
		return Result{}, nil
	}

	s.status.start(len(changed))
	defer s.status.finish()

	return s.indexFiles(ctx, canonical, collection, changed)
}

// purgeFile deletes every previously stored chunk (vector store entry and
// keyword index entry) for relPath in collection. A collection that
// doesn't exist yet simply has nothing to purge.
func (s *Service) purgeFile(ctx context.Context, collection, relPath string) error {
	existing, err := s.repo.FindByFile(ctx, collection, relPath)
	if err != nil {
		var ce *cerr.Error
		if errors.As(err, &ce) && ce.Kind == cerr.KindNotFound {
			return nil
		}
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	storeIDs := make([]string, len(existing))
	chunkIDs := make([]string, len(existing))
	for i, r := range existing {
		storeIDs[i] = r.ID
		chunkIDs[i] = vectorstore.MetaString(r.Metadata, "id")
	}

	if err := s.repo.Delete(ctx, collection, storeIDs); err != nil {
		return err
	}
	if s.keyword != nil {
		return s.keyword.DeleteChunks(collection, chunkIDs)
	}
	return nil
}

// changedFiles diffs the current tree against the last saved snapshot. A
// corrupt or unreadable previous snapshot is treated as a first run rather
// than failing the whole index.
func (s *Service) changedFiles(root string) (snapshot.Changes, error) {
	previous, err := s.snapshots.Load(root)
	if err != nil {
		log.Printf("indexing: snapshot load failed, treating as first run: %v", err)
		previous = nil
	}

	current, err := s.snapshots.Create(root)
	if err != nil {
		return snapshot.Changes{}, cerr.Wrap("indexing.snapshot_create_failed", cerr.KindIO, "build snapshot", err)
	}

	var changes snapshot.Changes
	if previous == nil {
		changes.Added = make([]string, 0, len(current.Files))
		for path := range current.Files {
			changes.Added = append(changes.Added, path)
		}
	} else {
		changes = snapshot.Compare(previous, current)
	}

	if err := s.snapshots.Save(current); err != nil {
		return snapshot.Changes{}, cerr.Wrap("indexing.snapshot_save_failed", cerr.KindIO, "save snapshot", err)
	}

	return changes, nil
}

// indexFiles partitions paths into BatchSize-sized groups, chunks each
// group's files in parallel, and stores each file's chunks sequentially
// within the group to avoid races on the vector store's internal counters.
func (s *Service) indexFiles(ctx context.Context, root, collection string, paths []string) (Result, error) {
	var result Result

	for start := 0; start < len(paths); start += BatchSize {
		end := start + BatchSize
		if end > len(paths) {
			end = len(paths)
		}
		batch := paths[start:end]

		chunkLists, err := s.chunkBatch(ctx, root, batch, &result)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		for i, chunks := range chunkLists {
			s.status.advance(batch[i])
			if len(chunks) == 0 {
				continue
			}
			if _, err := s.repo.SaveBatch(ctx, collection, chunks); err != nil {
				log.Printf("indexing: batch store failed for %s: %v", batch[i], err)
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			if s.keyword != nil {
				if err := s.keyword.AddChunks(ctx, collection, chunks); err != nil {
					log.Printf("indexing: keyword index update failed for %s: %v", batch[i], err)
				}
			}
			result.ChunksCreated += len(chunks)
		}
	}

	return result, nil
}

// chunkBatch extracts chunks for every file in batch concurrently, in the
// same order as batch, so the caller can store them back sequentially.
// Each file's outcome (processed, skipped, or errored) is recorded under a
// mutex since result is shared across the batch's goroutines.
func (s *Service) chunkBatch(ctx context.Context, root string, batch []string, result *Result) ([][]chunk.Chunk, error) {
	chunkLists := make([][]chunk.Chunk, len(batch))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, relPath := range batch {
		i, relPath := i, relPath
		g.Go(func() error {
			chunks, err := s.chunkFile(gctx, root, relPath)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("indexing: skipping %s: %v", relPath, err)
				result.Errors = append(result.Errors, err.Error())
				result.FilesSkipped++
				return nil
			}
			chunkLists[i] = chunks
			result.FilesProcessed++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunkLists, nil
}

func (s *Service) chunkFile(ctx context.Context, root, relPath string) ([]chunk.Chunk, error) {
	ext := filepath.Ext(relPath)
	language := chunk.LanguageFromExtension(ext)

	content, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, cerr.Wrap("indexing.read_failed", cerr.KindIO, "read file "+relPath, err)
	}

	return chunk.ExtractSafe(ctx, s.extractor, string(content), relPath, language), nil
}

// ClearCollection forwards to the repository's DeleteCollection and drops
// collection's keyword index, if one is wired in.
func (s *Service) ClearCollection(ctx context.Context, collection string) error {
	if err := s.repo.DeleteCollection(ctx, collection); err != nil {
		return err
	}
	if s.keyword != nil {
		return s.keyword.DeleteCollection(collection)
	}
	return nil
}

// SubscribeRebuilds listens for IndexRebuild events on the bus and
// re-indexes root for each one it names, best-effort — delivery failures
// or indexing errors are logged, never propagated, since nothing is
// waiting on this subscription synchronously.
func (s *Service) SubscribeRebuilds(ctx context.Context, root string) {
	if s.bus == nil {
		return
	}
	sub := s.bus.SubscribeEvents()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-sub.C:
				if !ok {
					return
				}
				if event.IndexRebuild == nil {
					continue
				}
				if _, err := s.IndexCodebase(ctx, root, event.IndexRebuild.Collection); err != nil {
					log.Printf("indexing: rebuild of %s failed: %v", event.IndexRebuild.Collection, err)
				}
			}
		}
	}()
}
