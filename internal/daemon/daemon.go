// Package daemon runs the periodic cleanup and monitoring tasks that keep
// the sync coordinator's stale slots from accumulating, grounded on the
// original implementation's ContextDaemon.
package daemon

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codelens-dev/codelens/internal/syncx"
)

// Config controls interval timing. Matches the original's DaemonConfig
// field-for-field, including its default values.
type Config struct {
	CleanupInterval    time.Duration
	MonitoringInterval time.Duration
	MaxLockAge         time.Duration
}

// DefaultConfig mirrors the original's defaults: 30s cleanup, 30s
// monitoring, 300s (5 minute) max lock age.
func DefaultConfig() Config {
	return Config{
		CleanupInterval:    30 * time.Second,
		MonitoringInterval: 30 * time.Second,
		MaxLockAge:         300 * time.Second,
	}
}

// backlogWarnThreshold is the active-lock count above which the
// monitoring cycle logs a warning.
const backlogWarnThreshold = 10

// Stats is an atomically-updated snapshot of the daemon's activity.
type Stats struct {
	CleanupCycles    uint64
	LocksCleaned     uint64
	MonitoringCycles uint64
	ActiveLocks      int64
	LastCleanup      time.Time
	LastMonitoring   time.Time
}

type atomicStats struct {
	cleanupCycles    atomic.Uint64
	locksCleaned     atomic.Uint64
	monitoringCycles atomic.Uint64
	activeLocks      atomic.Int64
	lastCleanup      atomic.Int64 // unix seconds, 0 = unset
	lastMonitoring   atomic.Int64
}

func (a *atomicStats) snapshot() Stats {
	s := Stats{
		CleanupCycles:    a.cleanupCycles.Load(),
		LocksCleaned:     a.locksCleaned.Load(),
		MonitoringCycles: a.monitoringCycles.Load(),
		ActiveLocks:      a.activeLocks.Load(),
	}
	if sec := a.lastCleanup.Load(); sec > 0 {
		s.LastCleanup = time.Unix(sec, 0)
	}
	if sec := a.lastMonitoring.Load(); sec > 0 {
		s.LastMonitoring = time.Unix(sec, 0)
	}
	return s
}

// Daemon runs cleanup and monitoring as two independent periodic tasks
// until stopped. It cannot be restarted once stopped — construct a new
// one.
type Daemon struct {
	cfg         Config
	coordinator *syncx.Coordinator
	stats       atomicStats

	started   atomic.Bool
	running   atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New builds a Daemon that reclaims stale slots from coordinator.
func New(coordinator *syncx.Coordinator, cfg Config) *Daemon {
	return &Daemon{coordinator: coordinator, cfg: cfg}
}

// Start launches the cleanup and monitoring tasks and blocks until both
// have observed cancellation and exited — i.e. until Stop has been called.
// Calling Start more than once returns an error; a stopped daemon can't
// be restarted.
func (d *Daemon) Start(ctx context.Context) error {
	if !d.started.CompareAndSwap(false, true) {
		return errAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(2)
	go d.runLoop(runCtx, d.cfg.CleanupInterval, d.runCleanupCycle)
	go d.runLoop(runCtx, d.cfg.MonitoringInterval, d.runMonitoringCycle)

	d.wg.Wait()
	d.running.Store(false)
	return nil
}

// Stop signals cancellation and returns immediately; it does not wait for
// the tasks to finish exiting. Call Start's return (or poll IsRunning) to
// observe full shutdown.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// IsRunning reports whether the daemon has been started and not yet fully
// stopped.
func (d *Daemon) IsRunning() bool {
	return d.running.Load()
}

// Stats returns a point-in-time snapshot of the daemon's counters.
func (d *Daemon) Stats() Stats {
	return d.stats.snapshot()
}

func (d *Daemon) runLoop(ctx context.Context, interval time.Duration, cycle func()) {
	defer d.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cycle()
		}
	}
}

func (d *Daemon) runCleanupCycle() {
	cleaned := d.coordinator.ReclaimStale(d.cfg.MaxLockAge)

	d.stats.cleanupCycles.Add(1)
	d.stats.locksCleaned.Add(uint64(cleaned))
	d.stats.lastCleanup.Store(time.Now().Unix())

	if cleaned > 0 {
		log.Printf("daemon: cleaned up %d stale sync slots", cleaned)
	}
}

func (d *Daemon) runMonitoringCycle() {
	active := d.coordinator.ActiveCount()

	d.stats.monitoringCycles.Add(1)
	d.stats.activeLocks.Store(int64(active))
	d.stats.lastMonitoring.Store(time.Now().Unix())

	if active > backlogWarnThreshold {
		log.Printf("daemon: warning, %d active sync slots outstanding", active)
	}
}
