// internal/realtime/broker.go
package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Broker is the in-process snapshot fanout, keyed by lobby ID. Each
// websocket connection subscribes once; every committed mutation results in
// one snapshot published to every subscriber of that lobby.
type Broker struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan Snapshot]struct{}
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uuid.UUID]map[chan Snapshot]struct{})}
}

// Subscribe registers a buffered channel for one lobby's snapshots.
func (b *Broker) Subscribe(lobbyID uuid.UUID) chan Snapshot {
	ch := make(chan Snapshot, 8)
	b.mu.Lock()
	if b.subs[lobbyID] == nil {
		b.subs[lobbyID] = make(map[chan Snapshot]struct{})
	}
	b.subs[lobbyID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel. Safe to call more than once.
func (b *Broker) Unsubscribe(lobbyID uuid.UUID, ch chan Snapshot) {
	b.mu.Lock()
	if set, ok := b.subs[lobbyID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(b.subs, lobbyID)
		}
	}
	b.mu.Unlock()
}

// Publish delivers a snapshot to every subscriber of the lobby. A slow
// subscriber's stale snapshot is dropped rather than blocking the fanout;
// the next publish carries a fresher full state anyway.
func (b *Broker) Publish(lobbyID uuid.UUID, snap Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[lobbyID] {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Subscribers reports the current subscriber count for a lobby.
func (b *Broker) Subscribers(lobbyID uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[lobbyID])
}
