// Package hooks is a synchronous named-event dispatcher. Handlers run in
// registration order on the caller's goroutine; a handler finishes before the
// next one starts, and a Call finishes before the next Call begins.
package hooks

import "github.com/google/uuid"

// Handler receives the payload registered for the event it subscribed to.
type Handler func(payload any)

// Subscription identifies one registered handler so it can be removed later.
type Subscription struct {
	Event string
	ID    string
}

type entry struct {
	id string
	fn Handler
}

// Bus dispatches named events to registered handlers.
type Bus struct {
	handlers map[string][]entry
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]entry)}
}

// On registers a handler for an event and returns its subscription handle.
func (b *Bus) On(event string, fn Handler) Subscription {
	id := uuid.NewString()
	b.handlers[event] = append(b.handlers[event], entry{id: id, fn: fn})
	return Subscription{Event: event, ID: id}
}

// Off removes a single subscription. Unknown subscriptions are ignored.
func (b *Bus) Off(sub Subscription) {
	entries := b.handlers[sub.Event]
	for i, e := range entries {
		if e.id == sub.ID {
			b.handlers[sub.Event] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// OffAll removes every subscription in the slice. Used for scoped teardown:
// a component collects the handles it acquired and releases them in bulk.
func (b *Bus) OffAll(subs []Subscription) {
	for _, sub := range subs {
		b.Off(sub)
	}
}

// Call dispatches an event to all of its handlers in registration order.
func (b *Bus) Call(event string, payload any) {
	// Copy so a handler unsubscribing itself doesn't skip its neighbors.
	entries := make([]entry, len(b.handlers[event]))
	copy(entries, b.handlers[event])
	for _, e := range entries {
		e.fn(payload)
	}
}

// HandlerCount returns how many handlers are registered for an event.
func (b *Bus) HandlerCount(event string) int {
	return len(b.handlers[event])
}
