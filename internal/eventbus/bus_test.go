package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishEvent_DeliversToSubscriber(t *testing.T) {
	b := New()
	sub := b.SubscribeEvents()
	defer sub.Close()

	b.PublishEvent(DomainEvent{Type: EventServiceStateChanged, ServiceStateChanged: &ServiceStateChanged{Name: "search"}})

	select {
	case ev := <-sub.C:
		assert.Equal(t, "search", ev.ServiceStateChanged.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishEvent_NoSubscribersDoesNotBlock(t *testing.T) {
	b := New()
	b.PublishEvent(DomainEvent{Type: EventIndexRebuild})
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	b := New()
	sub := b.SubscribeEvents()
	sub.Close()

	b.PublishEvent(DomainEvent{Type: EventIndexRebuild})

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestRawPublishSubscribe_RoundTrips(t *testing.T) {
	b := New()
	sub := b.Subscribe("sse.updates")
	defer sub.Close()

	require.True(t, b.HasSubscribers("sse.updates"))
	b.Publish("sse.updates", []byte("hello"))

	select {
	case payload := <-sub.C:
		assert.Equal(t, []byte("hello"), payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
	}
}

func TestHasSubscribers_FalseWhenNoneRegistered(t *testing.T) {
	b := New()
	assert.False(t, b.HasSubscribers("unused.topic"))
}

func TestHasSubscribers_FalseAfterUnsubscribe(t *testing.T) {
	b := New()
	sub := b.Subscribe("topic")
	require.True(t, b.HasSubscribers("topic"))
	sub.Close()
	assert.False(t, b.HasSubscribers("topic"))
}

func TestPublish_SlowSubscriberDropsRatherThanBlocks(t *testing.T) {
	b := New()
	sub := b.Subscribe("topic")
	defer sub.Close()

	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish("topic", []byte("x"))
	}
}
