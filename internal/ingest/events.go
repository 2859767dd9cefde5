package ingest

import (
	"sync"

	"github.com/yiblet/clipvault/internal/metrics"
)

// DefaultEventBuffer is the per-subscriber channel capacity.
const DefaultEventBuffer = 64

// EventKind identifies what changed about an item.
type EventKind int

const (
	// EventStored is emitted when a new item row is committed.
	EventStored EventKind = iota

	// EventThumbnailReady is emitted when a deferred thumbnail is written.
	EventThumbnailReady
)

func (k EventKind) String() string {
	switch k {
	case EventStored:
		return "stored"
	case EventThumbnailReady:
		return "thumbnail_ready"
	default:
		return "unknown"
	}
}

// Event is a change notification for one item.
type Event struct {
	ItemID string
	Kind   EventKind
}

// Broadcaster fans events out to subscribers without blocking the
// publisher. A subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	buffer int
}

// NewBroadcaster creates a broadcaster whose subscriber channels hold
// buffer events. A non-positive buffer uses DefaultEventBuffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Broadcaster{
		subs:   make(map[int]chan Event),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch
	metrics.Subscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
			metrics.Subscribers.Dec()
		})
	}
}

// Notify delivers e to every subscriber that has room for it.
func (b *Broadcaster) Notify(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
