// internal/app/system/realtime/hub.go

// Package realtime fans task board and notification events out to
// connected clients. Delivery is best effort: a publish never blocks a
// request handler and never fails it. Slow or dead subscribers drop
// events rather than stall the hub.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer is how many pending events a subscriber may have
// before further events to it are dropped.
const subscriberBuffer = 32

// Publisher is the write side of the hub. Handlers depend on this
// interface so tests can capture published events.
type Publisher interface {
	Publish(ev Event)
}

// Hub routes events to room subscribers. The zero value is not usable;
// call NewHub.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[chan Event]struct{}
	log     *zap.Logger
	dropped func(room string) // test hook
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[chan Event]struct{}),
		log:   logger,
	}
}

// Subscribe registers a listener on the given rooms and returns the
// event channel plus a cancel func. Cancel is idempotent and closes the
// channel once every room registration is removed.
func (h *Hub) Subscribe(rooms ...string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	for _, room := range rooms {
		subs, ok := h.rooms[room]
		if !ok {
			subs = make(map[chan Event]struct{})
			h.rooms[room] = subs
		}
		subs[ch] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			for _, room := range rooms {
				if subs, ok := h.rooms[room]; ok {
					delete(subs, ch)
					if len(subs) == 0 {
						delete(h.rooms, room)
					}
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of ev.Room without blocking.
// A subscriber whose buffer is full misses the event; the drop is
// logged and the rest of the room still receives it.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.rooms[ev.Room] {
		select {
		case ch <- ev:
		default:
			h.log.Warn("realtime subscriber buffer full, event dropped",
				zap.String("room", ev.Room),
				zap.String("event", ev.Name))
			if h.dropped != nil {
				h.dropped(ev.Room)
			}
		}
	}
}

// RoomSize reports the current subscriber count for a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Marshal encodes a payload for an Event, logging and returning nil on
// failure so a bad payload degrades to an event without a body instead
// of a lost event.
func Marshal(logger *zap.Logger, v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("realtime payload marshal failed", zap.Error(err))
		return nil
	}
	return b
}
