// Package syncx enforces at-most-one-concurrent-sync-per-path discipline
// across the indexing pipeline: a debounce window between completed syncs,
// and a slot per canonical path that callers must acquire before doing any
// indexing work on it.
package syncx

import (
	"sync"
	"time"
)

// Batch is the in-flight slot token for one path. The daemon also treats
// it as the queue element it reclaims once it grows stale.
type Batch struct {
	Path      string
	CreatedAt time.Time
}

// Config controls debounce and staleness windows.
type Config struct {
	// DebounceWindow is the minimum interval between completed syncs for
	// the same path.
	DebounceWindow time.Duration
	// MaxLockAge is how long an acquired slot may sit unreleased before
	// the daemon reclaims it as stale.
	MaxLockAge time.Duration
}

// DefaultConfig matches the reference daemon's defaults.
func DefaultConfig() Config {
	return Config{
		DebounceWindow: 5 * time.Second,
		MaxLockAge:     5 * time.Minute,
	}
}

// Coordinator owns the set of active sync slots and last-sync timestamps.
// All methods are safe for concurrent use.
type Coordinator struct {
	cfg Config

	mu       sync.Mutex
	active   map[string]Batch
	lastSync map[string]time.Time
}

// NewCoordinator builds a Coordinator with the given config.
func NewCoordinator(cfg Config) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		active:   make(map[string]Batch),
		lastSync: make(map[string]time.Time),
	}
}

// ShouldDebounce reports whether the last completed sync for path was
// within the debounce window.
func (c *Coordinator) ShouldDebounce(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.lastSync[path]
	if !ok {
		return false
	}
	return time.Since(last) < c.cfg.DebounceWindow
}

// AcquireSlot claims the sync slot for path. A nil Batch with a nil error
// means another sync is already in flight for this path — the caller
// should defer, not retry immediately. This method is racefree: of any two
// concurrent callers for the same path, exactly one observes success.
func (c *Coordinator) AcquireSlot(path string) (*Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inFlight := c.active[path]; inFlight {
		return nil, nil
	}

	batch := Batch{Path: path, CreatedAt: time.Now()}
	c.active[path] = batch
	return &batch, nil
}

// ReleaseSlot releases the slot acquired as batch. It is a no-op if the
// caller does not currently hold the slot for that path (e.g. it was
// already reclaimed by the daemon).
func (c *Coordinator) ReleaseSlot(path string, batch *Batch) {
	if batch == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.active[path]; ok && current.CreatedAt.Equal(batch.CreatedAt) {
		delete(c.active, path)
	}
}

// UpdateLastSync stamps path's completion time, used by ShouldDebounce on
// the next call for this path.
func (c *Coordinator) UpdateLastSync(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSync[path] = time.Now()
}

// ReclaimStale removes active slots older than maxAge, returning how many
// were removed. This is what the background daemon's cleanup cycle calls.
func (c *Coordinator) ReclaimStale(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cleaned := 0
	now := time.Now()
	for path, batch := range c.active {
		if now.Sub(batch.CreatedAt) > maxAge {
			delete(c.active, path)
			cleaned++
		}
	}
	return cleaned
}

// ActiveCount returns the number of currently held slots, used by the
// daemon's monitoring cycle to watch for backlog.
func (c *Coordinator) ActiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}
