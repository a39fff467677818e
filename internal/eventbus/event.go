package eventbus

import "time"

// EventType names a DomainEvent's kind, used as the typed subscription
// topic alongside the event payload itself.
type EventType string

const (
	EventServiceStateChanged EventType = "service.state"
	EventIndexRebuild        EventType = "index.rebuild"
)

// DomainEvent is a typed event carried on the bus's typed channel.
// Exactly one of the payload fields is populated, matching Type.
type DomainEvent struct {
	Type      EventType
	At        time.Time
	ServiceStateChanged *ServiceStateChanged
	IndexRebuild        *IndexRebuild
}

// ServiceState mirrors internal/service's lifecycle states, duplicated
// here rather than imported so eventbus has no dependency on service —
// the event bus is a leaf package other components depend on, not the
// other way around.
type ServiceState string

const (
	ServiceStarting ServiceState = "starting"
	ServiceRunning  ServiceState = "running"
	ServiceStopping ServiceState = "stopping"
	ServiceStopped  ServiceState = "stopped"
)

// ServiceStateChanged is published on topic "service.state" whenever a
// managed service transitions between lifecycle states.
type ServiceStateChanged struct {
	Name         string
	State        ServiceState
	PreviousState ServiceState
}

// IndexRebuild requests that known roots under collection be re-indexed.
// Delivery is best-effort; nothing guarantees a subscriber is listening.
type IndexRebuild struct {
	Collection string
}
