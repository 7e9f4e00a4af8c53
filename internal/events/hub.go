// Package events broadcasts logbook changes to live listeners.
package events

import (
	"sync"
	"time"
)

// Type names what happened
type Type string

const (
	BatchImported Type = "batch_imported"
	BatchDeleted  Type = "batch_deleted"
)

// Event describes a change to the logbook
type Event struct {
	Type     Type      `json:"type"`
	BatchID  string    `json:"batch_id"`
	Filename string    `json:"filename,omitempty"`
	Imported int       `json:"imported"`
	Deleted  int64     `json:"deleted,omitempty"`
	At       time.Time `json:"at"`
}

// Hub fans events out to subscribers
type Hub struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
	buffer    int
}

// NewHub creates a hub whose subscriber channels hold buffer events
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		listeners: make(map[chan Event]struct{}),
		buffer:    buffer,
	}
}

// Subscribe returns a channel of events and a func that removes and closes it.
// The unsubscribe func is safe to call more than once.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.listeners[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber without blocking. A subscriber
// whose buffer is full misses the event.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.listeners {
		select {
		case ch <- e:
		default:
		}
	}
}

// Len reports the number of subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}
