package service

import (
	"sync"

	"stationwatch/internal/models"
)

// subscriberBuffer bounds each subscriber's backlog; slow consumers drop
// events rather than stalling the poll cycle.
const subscriberBuffer = 16

// EventHub fans transition events out to live subscribers.
type EventHub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan models.TransitionEvent
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[int]chan models.TransitionEvent)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (h *EventHub) Subscribe() (<-chan models.TransitionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan models.TransitionEvent, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (h *EventHub) Publish(event models.TransitionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
