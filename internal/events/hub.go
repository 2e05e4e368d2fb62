// Package events fans out change notifications to interested listeners.
package events

import (
	"sync"
	"time"
)

// Kinds of entity an event can concern.
const (
	KindGame   = "game"
	KindAsset  = "asset"
	KindNPC    = "npc"
	KindPlayer = "player"
	KindExport = "export"
)

// Actions.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionExported = "exported"
)

// Event describes one successful mutation.
type Event struct {
	Kind   string    `json:"kind"`
	Action string    `json:"action"`
	Game   string    `json:"game,omitempty"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

const subscriberBuffer = 64

// Hub delivers published events to every subscriber. A subscriber whose
// buffer is full misses the event; publishers never block.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription is one listener.
type Subscription struct {
	hub     *Hub
	ch      chan Event
	once    sync.Once
	dropped uint64
}

// C returns the channel events arrive on. It is closed on Unsubscribe or
// when the hub closes.
func (s *Subscription) C() <-chan Event { return s.ch }

// Dropped returns how many events were discarded for this subscriber.
func (s *Subscription) Dropped() uint64 {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()
	return s.dropped
}

// Unsubscribe stops delivery. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.subs[s]; ok {
		delete(s.hub.subs, s)
		s.close()
	}
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Subscribe registers a new listener. Subscribing to a closed hub returns a
// subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{hub: h, ch: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.close()
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Publish sends ev to all subscribers. A zero At is set to now.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	// write lock: dropped counters are updated under it
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			s.dropped++
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		s.close()
	}
}
