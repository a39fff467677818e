// Package local implements cache.Provider as an in-process, otter-backed
// cache. It trades durability and cross-process sharing for speed — no
// network round trip, no serialization beyond what the caller already did.
package local

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"

	"github.com/codelens-dev/codelens/internal/cache"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// namespaceStore is one namespace's own otter cache, counters, and default
// TTL. Each namespace gets its own capacity bound and eviction listener, so
// a burst of search-result churn can't evict embeddings out from under a
// concurrent lookup.
type namespaceStore struct {
	cache      otter.Cache[string, entry]
	defaultTTL time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Store is a cache.Provider that keeps one namespaceStore per cache.Namespace.
type Store struct {
	mu         sync.RWMutex
	namespaces map[cache.Namespace]*namespaceStore
	defaults   map[cache.Namespace]cache.NamespaceConfig
}

// Config controls the local cache's per-namespace capacity and TTL
// defaults. A nil or empty Namespaces map falls back to
// cache.DefaultNamespaceConfigs().
type Config struct {
	Namespaces map[cache.Namespace]cache.NamespaceConfig
}

// DefaultConfig returns the Config used when none is supplied.
func DefaultConfig() Config {
	return Config{Namespaces: cache.DefaultNamespaceConfigs()}
}

// New builds a Store with one otter cache per namespace named in cfg (or
// the default namespace set, if cfg names none). Namespaces outside that
// set are created lazily on first use with the metadata namespace's
// bounds, matching cache.ResolveNamespace's fallback.
func New(cfg Config) (*Store, error) {
	if len(cfg.Namespaces) == 0 {
		cfg.Namespaces = cache.DefaultNamespaceConfigs()
	}

	s := &Store{
		namespaces: make(map[cache.Namespace]*namespaceStore, len(cfg.Namespaces)),
		defaults:   cfg.Namespaces,
	}
	for ns, nsCfg := range cfg.Namespaces {
		ns := ns
		store, err := newNamespaceStore(ns, nsCfg)
		if err != nil {
			return nil, err
		}
		s.namespaces[ns] = store
	}
	return s, nil
}

func newNamespaceStore(ns cache.Namespace, nsCfg cache.NamespaceConfig) (*namespaceStore, error) {
	capacity := nsCfg.MaxEntries
	if capacity <= 0 {
		capacity = cache.DefaultNamespaceConfigs()[cache.NamespaceMetadata].MaxEntries
	}

	nstore := &namespaceStore{defaultTTL: nsCfg.TTL}
	c, err := otter.MustBuilder[string, entry](capacity).
		CollectStats().
		DeletionListener(func(key string, value entry, cause otter.DeletionCause) {
			if cause == otter.Size {
				nstore.evictions.Add(1)
			}
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build local cache for namespace %s: %w", ns, err)
	}
	nstore.cache = c
	return nstore, nil
}

// namespaceStore returns the backing store for ns, creating one on the fly
// (with the metadata namespace's bounds) if ns wasn't in the Config.
func (s *Store) namespaceStore(ns cache.Namespace) (*namespaceStore, error) {
	s.mu.RLock()
	nstore, ok := s.namespaces[ns]
	s.mu.RUnlock()
	if ok {
		return nstore, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if nstore, ok := s.namespaces[ns]; ok {
		return nstore, nil
	}
	nsCfg := s.defaults[ns]
	if nsCfg.MaxEntries <= 0 {
		nsCfg = cache.DefaultNamespaceConfigs()[cache.NamespaceMetadata]
	}
	nstore, err := newNamespaceStore(ns, nsCfg)
	if err != nil {
		return nil, err
	}
	s.namespaces[ns] = nstore
	return nstore, nil
}

func (s *Store) Get(ctx context.Context, ns cache.Namespace, key string) ([]byte, bool, error) {
	nstore, err := s.namespaceStore(ns)
	if err != nil {
		return nil, false, err
	}
	e, ok := nstore.cache.Get(key)
	if !ok {
		nstore.misses.Add(1)
		return nil, false, nil
	}
	if e.expired(time.Now()) {
		nstore.cache.Delete(key)
		nstore.misses.Add(1)
		return nil, false, nil
	}
	nstore.hits.Add(1)
	return e.value, true, nil
}

func (s *Store) Set(ctx context.Context, ns cache.Namespace, key string, value []byte, ttl time.Duration) error {
	nstore, err := s.namespaceStore(ns)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = nstore.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	nstore.cache.Set(key, entry{value: value, expiresAt: expiresAt})
	return nil
}

func (s *Store) Delete(ctx context.Context, ns cache.Namespace, key string) error {
	nstore, err := s.namespaceStore(ns)
	if err != nil {
		return err
	}
	nstore.cache.Delete(key)
	return nil
}

// ClearNamespace drops every entry in ns's own cache, leaving every other
// namespace untouched.
func (s *Store) ClearNamespace(ctx context.Context, ns cache.Namespace) error {
	nstore, err := s.namespaceStore(ns)
	if err != nil {
		return err
	}
	nstore.cache.Clear()
	return nil
}

func (s *Store) Stats(ctx context.Context, ns cache.Namespace) (cache.Stats, error) {
	nstore, err := s.namespaceStore(ns)
	if err != nil {
		return cache.Stats{}, err
	}
	hits := nstore.hits.Load()
	misses := nstore.misses.Load()
	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	return cache.Stats{
		TotalEntries: int64(nstore.cache.Size()),
		Hits:         hits,
		Misses:       misses,
		HitRatio:     hitRatio,
		Evictions:    nstore.evictions.Load(),
	}, nil
}

// HealthCheck reports degraded once any single namespace's evictions run
// away from its hits, which usually means that namespace is undersized for
// its working set.
func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ns, nstore := range s.namespaces {
		hits := nstore.hits.Load()
		evictions := nstore.evictions.Load()
		if evictions > 2*hits {
			return fmt.Errorf("local cache degraded for namespace %s: %d evictions against %d hits", ns, evictions, hits)
		}
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, nstore := range s.namespaces {
		nstore.cache.Close()
	}
	return nil
}
