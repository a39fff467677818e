package indexing

import (
	"sync"
	"sync/atomic"
)

// Status reports an in-progress or just-finished indexing run. Its fields
// are readable without taking any lock the indexing goroutine itself
// holds, so the admin surface can poll it mid-run.
type Status struct {
	IsIndexing     bool
	Progress       float64
	CurrentFile    string
	TotalFiles     int
	ProcessedFiles int
}

// statusTracker holds the atomics backing Status. currentFile needs a
// mutex since atomic.Value would panic on the first store being untyped;
// everything else is a plain atomic.
type statusTracker struct {
	indexing  atomic.Bool
	total     atomic.Int64
	processed atomic.Int64

	mu      sync.RWMutex
	current string
}

func (t *statusTracker) start(total int) {
	t.indexing.Store(true)
	t.total.Store(int64(total))
	t.processed.Store(0)
	t.setCurrent("")
}

func (t *statusTracker) finish() {
	t.indexing.Store(false)
	t.setCurrent("")
}

func (t *statusTracker) setCurrent(path string) {
	t.mu.Lock()
	t.current = path
	t.mu.Unlock()
}

func (t *statusTracker) advance(path string) {
	t.setCurrent(path)
	t.processed.Add(1)
}

func (t *statusTracker) snapshot() Status {
	total := t.total.Load()
	processed := t.processed.Load()

	var progress float64
	if total > 0 {
		progress = float64(processed) / float64(total)
	}

	t.mu.RLock()
	current := t.current
	t.mu.RUnlock()

	return Status{
		IsIndexing:     t.indexing.Load(),
		Progress:       progress,
		CurrentFile:    current,
		TotalFiles:     int(total),
		ProcessedFiles: int(processed),
	}
}
