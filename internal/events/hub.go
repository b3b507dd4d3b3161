package events

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Hub is the in-process fan-out: subscribers get a buffered channel of
// events, slow subscribers drop rather than block a transition.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]chan Event
	nextID int64

	logger  *zap.Logger
	dropped atomic.Uint64
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   map[int64]chan Event{},
		logger: logger,
	}
}

// Subscribe returns a channel of events and a cancel func. buf <= 0
// picks a sane default.
func (h *Hub) Subscribe(buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.dropped.Add(1)
			if h.logger != nil {
				h.logger.Warn("event dropped for slow subscriber",
					zap.String("kind", event.Kind),
					zap.Int64("topic_id", event.TopicID))
			}
		}
	}
	return nil
}
