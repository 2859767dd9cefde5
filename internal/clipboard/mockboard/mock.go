// Package mockboard provides a scripted clipboard observer for testing.
package mockboard

import (
	"context"
	"sync"

	"github.com/yiblet/clipvault/internal/clipboard"
)

// MockClipboard implements clipboard.Observer. Snapshots passed to Emit are
// delivered to the active watcher in order.
type MockClipboard struct {
	mu      sync.Mutex
	events  chan clipboard.Snapshot
	written []clipboard.Snapshot
}

var _ clipboard.Observer = (*MockClipboard)(nil)

// New creates a new MockClipboard instance
func New() *MockClipboard {
	return &MockClipboard{events: make(chan clipboard.Snapshot, 64)}
}

// Watch implements clipboard.Observer.Watch for MockClipboard
func (m *MockClipboard) Watch(ctx context.Context) (<-chan clipboard.Snapshot, error) {
	out := make(chan clipboard.Snapshot)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-m.events:
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Write implements clipboard.Observer.Write for MockClipboard
func (m *MockClipboard) Write(ctx context.Context, snap clipboard.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written = append(m.written, snap)
	return nil
}

// Emit simulates a clipboard change (for testing)
func (m *MockClipboard) Emit(snap clipboard.Snapshot) {
	m.events <- snap
}

// Written returns every snapshot passed to Write (for testing)
func (m *MockClipboard) Written() []clipboard.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]clipboard.Snapshot(nil), m.written...)
}
