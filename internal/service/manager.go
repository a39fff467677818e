package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/codelens-dev/codelens/internal/eventbus"
)

// Manager is a concurrent registry of named Services. Individual
// name->service pairs are consistent under the registry's mutex, but
// aggregate views (List, Count) are point-in-time snapshots taken while
// holding the lock only long enough to copy references.
type Manager struct {
	bus *eventbus.Bus

	mu       sync.RWMutex
	services map[string]Service
}

// NewManager returns a Manager that publishes state-change events on bus.
func NewManager(bus *eventbus.Bus) *Manager {
	return &Manager{bus: bus, services: make(map[string]Service)}
}

// Register indexes svc by name. Re-registering the same name replaces the
// previous registration outright; the caller is responsible for stopping
// the one being replaced if that matters.
func (m *Manager) Register(svc Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[svc.Name()] = svc
}

// List returns a snapshot of every tracked service's current Info.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.services))
	for name, svc := range m.services {
		infos = append(infos, Info{Name: name, State: svc.State()})
	}
	return infos
}

// Get returns the named service's current Info and whether it's registered.
func (m *Manager) Get(name string) (Info, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.services[name]
	if !ok {
		return Info{}, false
	}
	return Info{Name: name, State: svc.State()}, true
}

// Contains reports whether name is registered.
func (m *Manager) Contains(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.services[name]
	return ok
}

// Count returns the number of registered services.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.services)
}

func (m *Manager) lookup(name string) (Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	svc, ok := m.services[name]
	if !ok {
		return nil, fmt.Errorf("service %q not registered", name)
	}
	return svc, nil
}

// Start starts the named service and publishes a state-change event
// reflecting the state observed afterward.
func (m *Manager) Start(ctx context.Context, name string) error {
	svc, err := m.lookup(name)
	if err != nil {
		return err
	}
	previous := svc.State()
	err = svc.Start(ctx)
	m.publishTransition(name, previous, svc.State())
	return err
}

// Stop stops the named service and publishes a state-change event.
func (m *Manager) Stop(ctx context.Context, name string) error {
	svc, err := m.lookup(name)
	if err != nil {
		return err
	}
	previous := svc.State()
	err = svc.Stop(ctx)
	m.publishTransition(name, previous, svc.State())
	return err
}

// Restart stops then starts the named service, publishing one
// state-change event per transition actually observed.
func (m *Manager) Restart(ctx context.Context, name string) error {
	if err := m.Stop(ctx, name); err != nil {
		return err
	}
	return m.Start(ctx, name)
}

// StartAll starts every registered service. Names are captured before the
// walk so the iteration never holds the registry lock across a service's
// own Start call, which may itself touch the manager.
func (m *Manager) StartAll(ctx context.Context) []Result {
	return m.forEach(ctx, m.Start)
}

// StopAll stops every registered service, same iteration discipline as
// StartAll.
func (m *Manager) StopAll(ctx context.Context) []Result {
	return m.forEach(ctx, m.Stop)
}

func (m *Manager) forEach(ctx context.Context, op func(context.Context, string) error) []Result {
	names := m.names()
	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, Result{Name: name, Err: op(ctx, name)})
	}
	return results
}

func (m *Manager) names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	return names
}

// HealthCheckAll clones the service handles first, then calls
// HealthCheck on each outside any structural lock, so a slow or hanging
// health check on one service can't block registration of another.
func (m *Manager) HealthCheckAll(ctx context.Context) []Result {
	m.mu.RLock()
	handles := make(map[string]Service, len(m.services))
	for name, svc := range m.services {
		handles[name] = svc
	}
	m.mu.RUnlock()

	results := make([]Result, 0, len(handles))
	for name, svc := range handles {
		results = append(results, Result{Name: name, Err: svc.HealthCheck(ctx)})
	}
	return results
}

// publishTransition emits ServiceStateChanged on the event bus. Bus
// errors aren't possible with the in-process eventbus.Bus (Publish never
// fails), but a nil bus is tolerated so Manager is usable without one in
// tests.
func (m *Manager) publishTransition(name string, previous, current State) {
	if m.bus == nil {
		return
	}
	m.bus.PublishEvent(eventbus.DomainEvent{
		Type: eventbus.EventServiceStateChanged,
		ServiceStateChanged: &eventbus.ServiceStateChanged{
			Name:          name,
			State:         eventbus.ServiceState(current),
			PreviousState: eventbus.ServiceState(previous),
		},
	})
}
