package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 32

// Hub fans events out to per-topic subscribers. Subscriptions are explicit:
// Subscribe returns the stream and a cancel func, and the caller must invoke
// cancel on teardown or the subscription lives (and receives) forever.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int64]chan Event
	nextID int64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int64]chan Event)}
}

// Subscribe registers a subscriber for topic. The returned cancel func is
// idempotent and closes the stream.
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[topic]; !ok {
		h.subs[topic] = make(map[int64]chan Event)
	}

	h.nextID++
	id := h.nextID
	ch := make(chan Event, subscriberBuffer)
	h.subs[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if conns, ok := h.subs[topic]; ok {
				if c, ok := conns[id]; ok {
					delete(conns, id)
					close(c)
				}
				if len(conns) == 0 {
					delete(h.subs, topic)
				}
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber of its topic. Slow
// subscribers get events dropped rather than blocking the publisher; a stale
// listener recovers by refetching, a blocked send path does not.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[ev.Topic] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// SubscriberCount reports active subscriptions for a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

var _ Publisher = (*Hub)(nil)
