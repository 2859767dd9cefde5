// Package flash coordinates timed auto-dismiss effects such as a status
// message that hides itself after a delay.
//
// Every new effect takes the next epoch. When its timer fires it acts
// only if its epoch is still current; otherwise a newer effect has
// replaced it.
package flash

import "sync/atomic"

// Epoch is a monotonically increasing counter. The zero value is ready
// to use and safe for concurrent use.
type Epoch struct {
	n atomic.Uint64
}

// Next starts a new effect and returns its epoch.
func (e *Epoch) Next() uint64 {
	return e.n.Add(1)
}

// Current returns the epoch of the most recent effect.
func (e *Epoch) Current() uint64 {
	return e.n.Load()
}

// Valid reports whether epoch still belongs to the most recent effect.
func (e *Epoch) Valid(epoch uint64) bool {
	return e.n.Load() == epoch
}
