// Package telemetry implements the kernel-wide event hub described in
// spec.md §4.3. It is grounded on the teacher's hooks.Bus fan-out pattern
// (snapshot the listener slice under lock, then invoke outside the lock so a
// listener can safely subscribe/unsubscribe from within its own callback)
// but deliberately inverts Bus's failure semantics: a panicking listener
// here is isolated and its panic handed to the handler set with
// WithPanicHandler (discarded by default), never propagated to the
// publisher, because a misbehaving telemetry sink must never abort a parse.
// Listeners return no error.
package telemetry

import (
	"context"
	"sync"
	"time"
)

// EventType enumerates the lifecycle events the hub fans out, matching the
// stage names a parse moves through (spec.md §6's nine-step parse pipeline).
type EventType string

const (
	EventParseStart      EventType = "parse:start"
	EventParseSuccess    EventType = "parse:success"
	EventParseFailure    EventType = "parse:failure"
	EventArchitectStart  EventType = "architect:start"
	EventArchitectDone   EventType = "architect:done"
	EventExtractorStart  EventType = "extractor:start"
	EventExtractorDone   EventType = "extractor:done"
	EventCacheHit        EventType = "cache:hit"
	EventCacheMiss       EventType = "cache:miss"
	EventFallbackInvoked EventType = "fallback:invoked"
	EventSessionRefresh  EventType = "session:refresh"
)

// Event is the payload delivered to every subscribed Listener.
type Event struct {
	Type      EventType
	RequestID string
	SessionID string
	Timestamp time.Time
	Fields    map[string]any
}

// Listener receives hub events. It must not block indefinitely; the hub does
// not enforce a timeout itself but callers wrapping a slow sink should do so
// inside the listener.
type Listener func(ctx context.Context, evt Event)

// Hub is a typed, fan-out event bus. The zero value is not usable; construct
// with New.
type Hub struct {
	mu        sync.RWMutex
	listeners map[EventType][]Listener
	all       []Listener
	onPanic   func(evt Event, r any)
}

// Option configures a Hub at construction time.
type Option func(*Hub)

// WithPanicHandler overrides how the hub reports a listener panic. The
// default logs nothing and simply discards it, since Hub has no logger
// dependency of its own; a caller that wants panics logged supplies a
// handler that forwards them to its Logger.
func WithPanicHandler(f func(evt Event, r any)) Option {
	return func(h *Hub) { h.onPanic = f }
}

// New constructs an empty Hub.
func New(opts ...Option) *Hub {
	h := &Hub{listeners: make(map[EventType][]Listener)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers l for events of type t and returns an unsubscribe
// function.
func (h *Hub) Subscribe(t EventType, l Listener) (unsubscribe func()) {
	h.mu.Lock()
	h.listeners[t] = append(h.listeners[t], l)
	idx := len(h.listeners[t]) - 1
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		ls := h.listeners[t]
		if idx < len(ls) {
			ls[idx] = nil
		}
	}
}

// SubscribeAll registers l for every event type the hub ever publishes.
func (h *Hub) SubscribeAll(l Listener) (unsubscribe func()) {
	h.mu.Lock()
	h.all = append(h.all, l)
	idx := len(h.all) - 1
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if idx < len(h.all) {
			h.all[idx] = nil
		}
	}
}

// Publish fans evt out to every listener subscribed to evt.Type plus every
// SubscribeAll listener. Each listener runs synchronously, isolated by a
// recover so one failing sink cannot take down the others or the caller;
// panics are reported to the configured panic handler, never returned.
func (h *Hub) Publish(ctx context.Context, evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	h.mu.RLock()
	typed := append([]Listener(nil), h.listeners[evt.Type]...)
	all := append([]Listener(nil), h.all...)
	h.mu.RUnlock()

	for _, l := range typed {
		h.invoke(ctx, l, evt)
	}
	for _, l := range all {
		h.invoke(ctx, l, evt)
	}
}

// PublishAsync fans evt out the same way as Publish but does not block the
// caller; used on the hot path inside parse() so a slow telemetry sink never
// adds latency to the response.
func (h *Hub) PublishAsync(ctx context.Context, evt Event) {
	go h.Publish(ctx, evt)
}

func (h *Hub) invoke(ctx context.Context, l Listener, evt Event) {
	if l == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && h.onPanic != nil {
			h.onPanic(evt, r)
		}
	}()
	l(ctx, evt)
}
