package ingest

import (
	"context"
	"sync"

	"github.com/yiblet/clipvault/internal/clipboard"
)

// snapshotQueue is an unbounded FIFO between the observer and the
// ingestion loop. push never blocks.
type snapshotQueue struct {
	mu     sync.Mutex
	items  []clipboard.Snapshot
	closed bool
	ready  chan struct{}
}

func newSnapshotQueue() *snapshotQueue {
	return &snapshotQueue{ready: make(chan struct{}, 1)}
}

func (q *snapshotQueue) push(snap clipboard.Snapshot) {
	q.mu.Lock()
	q.items = append(q.items, snap)
	q.mu.Unlock()
	q.signal()
}

// close lets pop drain what is queued and then report false.
func (q *snapshotQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *snapshotQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *snapshotQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// pop returns the oldest snapshot, waiting for one to arrive. It returns
// false once the queue is closed and empty, or when ctx is done.
func (q *snapshotQueue) pop(ctx context.Context) (clipboard.Snapshot, bool) {
	for {
		if ctx.Err() != nil {
			return clipboard.Snapshot{}, false
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			snap := q.items[0]
			q.items[0] = clipboard.Snapshot{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return snap, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return clipboard.Snapshot{}, false
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return clipboard.Snapshot{}, false
		}
	}
}
