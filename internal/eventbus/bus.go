// Package eventbus provides two independent publish/subscribe surfaces: a
// typed DomainEvent stream for internal lifecycle notifications, and a raw
// topic/payload fan-out for transport bridges (e.g. server-sent events)
// that need arbitrary bytes rather than a fixed event shape. The two are
// not equivalent and don't share subscribers.
package eventbus

import "sync"

const subscriberBuffer = 32

// Subscription is a live subscription to either stream. Close stops
// delivery and releases the channel; callers must call it to avoid
// leaking the subscriber slot.
type Subscription[T any] struct {
	C     <-chan T
	close func()
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.close()
}

// Bus is a concurrency-safe, in-process event bus. There is no
// persistence and no delivery guarantee beyond best-effort: a slow or
// absent subscriber simply misses events rather than blocking the
// publisher.
type Bus struct {
	mu sync.RWMutex

	nextID     uint64
	typedSubs  map[uint64]chan DomainEvent
	rawSubs    map[string]map[uint64]chan []byte
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{
		typedSubs: make(map[uint64]chan DomainEvent),
		rawSubs:   make(map[string]map[uint64]chan []byte),
	}
}

// PublishEvent delivers event to every current typed subscriber.
// Delivery is non-blocking: a subscriber whose buffer is full drops the
// event rather than stalling the publisher.
func (b *Bus) PublishEvent(event DomainEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.typedSubs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscribeEvents opens a new typed subscription. Call Close on the
// returned Subscription when done to free the slot.
func (b *Bus) SubscribeEvents() *Subscription[DomainEvent] {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan DomainEvent, subscriberBuffer)
	b.typedSubs[id] = ch
	b.mu.Unlock()

	return &Subscription[DomainEvent]{
		C: ch,
		close: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if existing, ok := b.typedSubs[id]; ok {
				delete(b.typedSubs, id)
				close(existing)
			}
		},
	}
}

// Publish delivers payload to every current raw subscriber of topic.
// Non-blocking, same semantics as PublishEvent.
func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.rawSubs[topic] {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribe opens a new raw subscription to topic.
func (b *Bus) Subscribe(topic string) *Subscription[[]byte] {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan []byte, subscriberBuffer)
	if b.rawSubs[topic] == nil {
		b.rawSubs[topic] = make(map[uint64]chan []byte)
	}
	b.rawSubs[topic][id] = ch
	b.mu.Unlock()

	return &Subscription[[]byte]{
		C: ch,
		close: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.rawSubs[topic]; ok {
				if existing, ok := subs[id]; ok {
					delete(subs, id)
					close(existing)
				}
				if len(subs) == 0 {
					delete(b.rawSubs, topic)
				}
			}
		},
	}
}

// HasSubscribers reports whether any raw subscriber is currently
// listening on topic. Used by publishers that want to skip expensive
// payload construction when nobody is listening.
func (b *Bus) HasSubscribers(topic string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rawSubs[topic]) > 0
}
