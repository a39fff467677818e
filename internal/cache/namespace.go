package cache

import "time"

// Namespace partitions cache keys by the kind of data they hold, so a
// blanket clear of one concern (say, stale search results) never touches
// another (embeddings, which are expensive to regenerate).
type Namespace string

const (
	NamespaceEmbeddings       Namespace = "embeddings"
	NamespaceSearchResults    Namespace = "search_results"
	NamespaceMetadata         Namespace = "metadata"
	NamespaceProviderResponse Namespace = "provider_responses"
	NamespaceSyncBatches      Namespace = "sync_batches"
)

// DefaultNamespaceConfigs returns the max_entries/ttl_seconds pair each
// namespace gets when a backend isn't given an explicit override. Embeddings
// and provider responses are expensive to recompute, so they get the
// largest budgets and the longest TTLs; search results and sync batches
// churn quickly and are cheap to regenerate, so they get smaller, shorter-
// lived slices.
func DefaultNamespaceConfigs() map[Namespace]NamespaceConfig {
	return map[Namespace]NamespaceConfig{
		NamespaceEmbeddings:       {MaxEntries: 50_000, TTL: 24 * time.Hour},
		NamespaceSearchResults:    {MaxEntries: 2_000, TTL: 5 * time.Minute},
		NamespaceMetadata:         {MaxEntries: 10_000, TTL: time.Hour},
		NamespaceProviderResponse: {MaxEntries: 20_000, TTL: 12 * time.Hour},
		NamespaceSyncBatches:      {MaxEntries: 1_000, TTL: 10 * time.Minute},
	}
}

// ResolveNamespace maps an arbitrary caller-supplied label onto the fixed
// namespace set, falling back to metadata for anything unrecognized rather
// than rejecting it outright.
func ResolveNamespace(label string) Namespace {
	switch Namespace(label) {
	case NamespaceEmbeddings, NamespaceSearchResults, NamespaceMetadata, NamespaceProviderResponse, NamespaceSyncBatches:
		return Namespace(label)
	default:
		return NamespaceMetadata
	}
}
