package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOutToTypedAndAllListeners(t *testing.T) {
	h := New()
	var mu sync.Mutex
	var typedCount, allCount int

	h.Subscribe(EventParseStart, func(ctx context.Context, evt Event) {
		mu.Lock()
		typedCount++
		mu.Unlock()
	})
	h.SubscribeAll(func(ctx context.Context, evt Event) {
		mu.Lock()
		allCount++
		mu.Unlock()
	})

	h.Publish(context.Background(), Event{Type: EventParseStart})
	h.Publish(context.Background(), Event{Type: EventParseSuccess})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, typedCount)
	assert.Equal(t, 2, allCount)
}

func TestPublishIsolatesPanickingListener(t *testing.T) {
	var panicked bool
	h := New(WithPanicHandler(func(evt Event, r any) { panicked = true }))

	var secondCalled bool
	h.Subscribe(EventParseStart, func(ctx context.Context, evt Event) {
		panic("listener exploded")
	})
	h.Subscribe(EventParseStart, func(ctx context.Context, evt Event) {
		secondCalled = true
	})

	require.NotPanics(t, func() {
		h.Publish(context.Background(), Event{Type: EventParseStart})
	})
	assert.True(t, panicked)
	assert.True(t, secondCalled)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := New()
	var calls int
	unsub := h.Subscribe(EventCacheHit, func(ctx context.Context, evt Event) { calls++ })
	h.Publish(context.Background(), Event{Type: EventCacheHit})
	unsub()
	h.Publish(context.Background(), Event{Type: EventCacheHit})
	assert.Equal(t, 1, calls)
}
