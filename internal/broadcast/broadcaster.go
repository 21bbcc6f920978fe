package broadcast

import (
	"sync"
	"sync/atomic"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

// Broadcaster is an in-process pub/sub of freshly computed village
// aggregates. The orchestrator publishes each snapshot it upserts;
// dashboard refreshers subscribe.
type Broadcaster struct {
	subscribers map[uint64]chan *models.VillageAggregate
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.VillageAggregate),
	}
}

func (b *Broadcaster) Subscribe() (uint64, chan *models.VillageAggregate) {
	id := b.nextID.Add(1)
	ch := make(chan *models.VillageAggregate, 64) // roomy enough for one full run

	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(a *models.VillageAggregate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- a:
		default:
			// Skip slow subscribers
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels so receivers exit gracefully.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
