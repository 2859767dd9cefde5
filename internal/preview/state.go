// Package preview holds the shared preview state polled by the UI and
// helpers for rendering item previews.
package preview

import "sync"

// Phase is the lifecycle stage of the preview.
type Phase int

const (
	Idle Phase = iota
	Showing
	Closing
)

func (p Phase) String() string {
	switch p {
	case Showing:
		return "showing"
	case Closing:
		return "closing"
	default:
		return "idle"
	}
}

// Snapshot is what the UI should render right now.
type Snapshot struct {
	Phase  Phase
	ItemID string
}

// State is the preview state machine. Transitions that do not apply to
// the current phase are ignored and report false.
type State struct {
	mu     sync.Mutex
	phase  Phase
	itemID string
}

// Show displays itemID, replacing whatever is shown. A preview that is
// closing is reopened.
func (s *State) Show(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = Showing
	s.itemID = itemID
}

// Close starts closing the current preview.
func (s *State) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Showing {
		return false
	}
	s.phase = Closing
	return true
}

// Finish completes a close and returns to Idle.
func (s *State) Finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Closing {
		return false
	}
	s.phase = Idle
	s.itemID = ""
	return true
}

// Poll returns the current phase and item.
func (s *State) Poll() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Phase: s.phase, ItemID: s.itemID}
}
