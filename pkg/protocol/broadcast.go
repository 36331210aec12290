package protocol

import (
	"log"
	"sync"
)

// BroadcastCapacity is the spec's required buffer size for the protocol
// broadcast channel (spec §5 "Broadcast Protocol channel (capacity
// 1024)").
const BroadcastCapacity = 1024

// Broadcaster fans a single stream of Messages out to every subscriber,
// generalizing the teacher's per-session subscriber-channel list
// (termsocket.Manager.subscribers) into one broadcast shared by every task
// in the process, the shape spec §5 calls for.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[int]chan Message
	nextID      int
}

// NewBroadcaster builds an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[int]chan Message)}
}

// Subscribe registers a new listener and returns its channel plus an
// Unsubscribe function the caller must call when done.
func (b *Broadcaster) Subscribe() (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Message, BroadcastCapacity)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}
	return ch, unsubscribe
}

// Publish sends msg to every subscriber. A subscriber whose channel is full
// has lagged: the message is dropped for that subscriber and a warning is
// logged, matching spec §5's "slow subscribers lag... log and continue"
// policy. Publish never blocks on a slow subscriber.
func (b *Broadcaster) Publish(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			log.Printf("[WARN] protocol subscriber %d lagged, dropping broadcast message", id)
		}
	}
}

// SubscriberCount reports how many tasks are currently subscribed, mostly
// useful for tests and diagnostics.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
