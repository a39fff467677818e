// Package registry is the Provider Registry (C14): named factories for the
// embedding and vector store ports, plus Bootstrap, which wires every
// component into a running application the way the teacher's embed
// factory wires a single provider, generalized to the whole dependency
// graph.
package registry

import (
	"context"
	"fmt"

	"github.com/codelens-dev/codelens/internal/cache"
	"github.com/codelens-dev/codelens/internal/cache/distributed"
	"github.com/codelens-dev/codelens/internal/cache/local"
	"github.com/codelens-dev/codelens/internal/chunk"
	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/daemon"
	"github.com/codelens-dev/codelens/internal/embedding"
	"github.com/codelens-dev/codelens/internal/eventbus"
	"github.com/codelens-dev/codelens/internal/indexing"
	"github.com/codelens-dev/codelens/internal/repository"
	"github.com/codelens-dev/codelens/internal/search"
	"github.com/codelens-dev/codelens/internal/search/hybrid"
	"github.com/codelens-dev/codelens/internal/service"
	"github.com/codelens-dev/codelens/internal/snapshot"
	"github.com/codelens-dev/codelens/internal/syncx"
	"github.com/codelens-dev/codelens/internal/vectorstore"
	"github.com/codelens-dev/codelens/internal/vectorstore/chromemstore"
	"github.com/codelens-dev/codelens/internal/vectorstore/memory"
	"github.com/codelens-dev/codelens/internal/vectorstore/sqlitevec"
)

// EmbeddingConfig selects and configures an embedding.Provider.
type EmbeddingConfig struct {
	// Provider is one of "mock" or "sidecar". Empty defaults to "mock",
	// matching the teacher factory's empty-defaults-to-local rule.
	Provider   string
	Dimensions int
	Sidecar    embedding.SidecarConfig
}

// NewEmbeddingProvider builds the embedding.Provider named by cfg.Provider.
func NewEmbeddingProvider(cfg EmbeddingConfig) (embedding.Provider, error) {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = 384
	}
	switch cfg.Provider {
	case "mock", "":
		return embedding.NewMockProvider(dims), nil
	case "sidecar":
		sidecar := cfg.Sidecar
		if sidecar.Dimensions <= 0 {
			sidecar.Dimensions = dims
		}
		return embedding.NewSidecarProvider(sidecar), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: mock, sidecar)", cfg.Provider)
	}
}

// VectorStoreConfig selects and configures a vectorstore.Provider.
type VectorStoreConfig struct {
	// Provider is one of "memory", "sqlite-vec", or "chromem-go". Empty
	// defaults to "memory", the reference backend.
	Provider   string
	SQLitePath string // ":memory:" or a file path, for "sqlite-vec"
}

// NewVectorStore builds the vectorstore.Provider named by cfg.Provider.
func NewVectorStore(cfg VectorStoreConfig) (vectorstore.Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return memory.New(), nil
	case "sqlite-vec":
		path := cfg.SQLitePath
		if path == "" {
			path = ":memory:"
		}
		return sqlitevec.Open(path)
	case "chromem-go":
		return chromemstore.New(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s (supported: memory, sqlite-vec, chromem-go)", cfg.Provider)
	}
}

// CacheConfig selects and configures a cache.Provider.
type CacheConfig struct {
	// Backend is one of "local" or "distributed". Empty defaults to
	// "local".
	Backend     string
	Local       local.Config
	Distributed distributed.Config
}

// scaledNamespaceConfigs applies the operator's legacy local_capacity knob
// as a multiplier over cache.DefaultNamespaceConfigs' per-namespace
// max_entries, preserving each namespace's own TTL. A non-positive
// capacity leaves the defaults untouched.
func scaledNamespaceConfigs(capacity int) map[cache.Namespace]cache.NamespaceConfig {
	defaults := cache.DefaultNamespaceConfigs()
	if capacity <= 0 {
		return defaults
	}
	const referenceCapacity = 10_000
	scale := float64(capacity) / referenceCapacity

	scaled := make(map[cache.Namespace]cache.NamespaceConfig, len(defaults))
	for ns, nsCfg := range defaults {
		maxEntries := int(float64(nsCfg.MaxEntries) * scale)
		if maxEntries <= 0 {
			maxEntries = 1
		}
		scaled[ns] = cache.NamespaceConfig{MaxEntries: maxEntries, TTL: nsCfg.TTL}
	}
	return scaled
}

// NewCache builds the cache.Provider named by cfg.Backend.
func NewCache(ctx context.Context, cfg CacheConfig) (cache.Provider, error) {
	switch cfg.Backend {
	case "local", "":
		return local.New(cfg.Local)
	case "distributed":
		return distributed.New(ctx, cfg.Distributed)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: local, distributed)", cfg.Backend)
	}
}

// AppConfig collects every provider selection and collaborator setting
// needed to build a fully wired App.
type AppConfig struct {
	Embedding        EmbeddingConfig
	VectorStore      VectorStoreConfig
	Cache            CacheConfig
	EnableCache      bool
	CollectionPrefix string
	SnapshotDir      string
	SyncCoordinator  syncx.Config
	Daemon           daemon.Config
	EnableKeyword    bool
}

// App bundles every component Bootstrap wires together, ready for the MCP
// server or CLI to drive.
type App struct {
	Embedder    embedding.Provider
	VectorStore vectorstore.Provider
	Cache       cache.Provider
	Bus         *eventbus.Bus
	Repo        *repository.Repository
	Keyword     *hybrid.Index
	Indexing    *indexing.Service
	Search      *search.Service
	Services    *service.Manager
	Daemon      *daemon.Daemon
	Coordinator *syncx.Coordinator
}

// FromConfig translates a loaded config.Config into the AppConfig
// Bootstrap expects, so cmd/codelens never has to know registry's
// internal field names.
func FromConfig(cfg *config.Config) AppConfig {
	return AppConfig{
		Embedding: EmbeddingConfig{
			Provider:   cfg.Embedding.Provider,
			Dimensions: cfg.Embedding.Dimensions,
			Sidecar: embedding.SidecarConfig{
				BinaryPath:     cfg.Embedding.SidecarBinary,
				Addr:           cfg.Embedding.SidecarAddr,
				Dimensions:     cfg.Embedding.Dimensions,
				StartupTimeout: cfg.Embedding.StartupTimeout,
			},
		},
		VectorStore: VectorStoreConfig{
			Provider:   cfg.VectorStore.Provider,
			SQLitePath: cfg.VectorStore.SQLitePath,
		},
		Cache: CacheConfig{
			Backend: cfg.Cache.Backend,
			Local:   local.Config{Namespaces: scaledNamespaceConfigs(cfg.Cache.LocalCapacity)},
			Distributed: distributed.Config{
				Addr:     cfg.Cache.RedisAddr,
				Password: cfg.Cache.RedisPassword,
				DB:       cfg.Cache.RedisDB,
			},
		},
		EnableCache:      cfg.Cache.Enabled,
		EnableKeyword:    true,
		CollectionPrefix: cfg.Server.CollectionPrefix,
		SyncCoordinator:  syncx.Config{DebounceWindow: syncx.DefaultConfig().DebounceWindow, MaxLockAge: cfg.Metrics.MaxLockAge},
		Daemon: daemon.Config{
			CleanupInterval:    cfg.Metrics.CleanupInterval,
			MonitoringInterval: cfg.Metrics.MonitoringInterval,
			MaxLockAge:         cfg.Metrics.MaxLockAge,
		},
	}
}

// Bootstrap constructs every component from cfg and wires them into an
// App, the same role the teacher's embed factory plays for a single
// provider, generalized to the whole application's dependency graph.
func Bootstrap(ctx context.Context, cfg AppConfig) (*App, error) {
	embedder, err := NewEmbeddingProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("build embedding provider: %w", err)
	}

	store, err := NewVectorStore(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("build vector store: %w", err)
	}

	var cacheProvider cache.Provider
	if cfg.EnableCache {
		cacheProvider, err = NewCache(ctx, cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("build cache: %w", err)
		}
	}

	snapshotDir := cfg.SnapshotDir
	if snapshotDir == "" {
		snapshotDir = ".codelens/snapshots"
	}
	snapshots, err := snapshot.NewManager(snapshotDir)
	if err != nil {
		return nil, fmt.Errorf("build snapshot manager: %w", err)
	}

	prefix := cfg.CollectionPrefix
	if prefix == "" {
		prefix = "codelens"
	}
	repo := repository.New(prefix, embedder, store)

	bus := eventbus.New()
	syncCfg := cfg.SyncCoordinator
	if syncCfg == (syncx.Config{}) {
		syncCfg = syncx.DefaultConfig()
	}
	coordinator := syncx.NewCoordinator(syncCfg)

	var keyword *hybrid.Index
	if cfg.EnableKeyword {
		keyword = hybrid.NewIndex()
	}

	indexingSvc := indexing.New(indexing.Config{
		Snapshots:   snapshots,
		Coordinator: coordinator,
		Extractor:   chunk.NewExtractor(),
		Repo:        repo,
		Keyword:     keyword,
		Bus:         bus,
	})

	var keywordSearcher search.KeywordSearcher
	if keyword != nil {
		keywordSearcher = keyword
	}
	searchSvc := search.New(search.Config{
		Embedder: embedder,
		Repo:     repo,
		Keyword:  keywordSearcher,
		Cache:    cacheProvider,
	})

	services := service.NewManager(bus)

	daemonCfg := cfg.Daemon
	if daemonCfg == (daemon.Config{}) {
		daemonCfg = daemon.DefaultConfig()
	}
	daemonInst := daemon.New(coordinator, daemonCfg)

	return &App{
		Embedder:    embedder,
		VectorStore: store,
		Cache:       cacheProvider,
		Bus:         bus,
		Repo:        repo,
		Keyword:     keyword,
		Indexing:    indexingSvc,
		Search:      searchSvc,
		Services:    services,
		Daemon:      daemonInst,
		Coordinator: coordinator,
	}, nil
}

// Close releases every closable provider the App holds. Errors are
// collected, not short-circuited, so one failed close doesn't skip the
// rest.
func (a *App) Close() error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Embedder != nil {
		record(a.Embedder.Close())
	}
	if a.Cache != nil {
		record(a.Cache.Close())
	}
	if a.Keyword != nil {
		record(a.Keyword.Close())
	}
	if closer, ok := a.VectorStore.(interface{ Close() error }); ok {
		record(closer.Close())
	}
	return firstErr
}
