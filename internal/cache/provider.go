// Package cache defines the caching port used across codelens — a
// namespaced get/set/delete surface with a local (in-process) and a
// distributed (Redis) implementation behind it.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Stats summarizes one namespace's recent behavior, used to feed health
// checks and operator introspection. TotalSizeBytes and AvgAccessTimeUs are
// left at zero by backends that have no cheap way to track them (Redis's
// INFO stats, for instance, are server-wide rather than per-namespace).
type Stats struct {
	TotalEntries    int64
	TotalSizeBytes  int64
	Hits            int64
	Misses          int64
	HitRatio        float64
	Evictions       int64
	AvgAccessTimeUs int64
}

// NamespaceConfig bounds one namespace's footprint: at most MaxEntries
// entries, each expiring TTL after it was set (zero means no expiry).
type NamespaceConfig struct {
	MaxEntries int
	TTL        time.Duration
}

// Provider is the caching port. Keys are scoped by Namespace so callers
// from different subsystems can't collide, namespaces can be cleared
// independently of one another, and each namespace carries its own size
// bound and reports its own hit/miss/eviction counters.
type Provider interface {
	Get(ctx context.Context, ns Namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, ns Namespace, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, ns Namespace, key string) error
	ClearNamespace(ctx context.Context, ns Namespace) error
	Stats(ctx context.Context, ns Namespace) (Stats, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// Get is a typed convenience wrapper around Provider.Get that JSON-decodes
// the stored value into T.
func Get[T any](ctx context.Context, p Provider, ns Namespace, key string) (T, bool, error) {
	var zero T
	raw, ok, err := p.Get(ctx, ns, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false, err
	}
	return value, true, nil
}

// Set is a typed convenience wrapper around Provider.Set that JSON-encodes
// value before storing it.
func Set[T any](ctx context.Context, p Provider, ns Namespace, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.Set(ctx, ns, key, raw, ttl)
}
