package realtime

import (
	"context"
	"sync"
)

// EventUpdated is the only signal sent to browsers: re-fetch the list.
const EventUpdated = "updated"

// Notifier announces that a new image was committed. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context)
}

// Hub fans signals out to the subscribers of this process.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan string]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{})}
}

// Subscribe registers a listener. The returned function unregisters it and
// closes the channel; it is safe to call more than once. After Close the
// channel comes back already closed.
func (h *Hub) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Close ends every subscription. Streams reading from the hub see a closed
// channel and return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// Broadcast never blocks: a subscriber that still holds an unread signal
// does not need a second one.
func (h *Hub) Broadcast(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) Notify(_ context.Context) {
	h.Broadcast(EventUpdated)
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
