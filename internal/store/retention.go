package store

import (
	"fmt"
	"time"
)

// RetentionKind selects which items a RetentionPolicy removes.
type RetentionKind int

const (
	// RetainUnlimited removes nothing.
	RetainUnlimited RetentionKind = iota

	// RetainDays removes items created strictly before now minus Days.
	RetainDays

	// RetainCount keeps the Count most recently updated items.
	RetainCount

	// RetainNone removes every item. Used for clearing history.
	RetainNone
)

// RetentionPolicy describes an item removal rule. Favorited items are
// exempt from every policy.
type RetentionPolicy struct {
	Kind  RetentionKind
	Days  int
	Count int

	// Now is the instant the days cutoff is measured from. When zero the
	// store uses its own clock. Callers resolving image paths before a
	// cleanup set it once so both calls select the same rows.
	Now time.Time
}

// IsNoop reports whether the policy can never remove anything.
// Days and count policies with a non-positive parameter are no-ops.
func (p RetentionPolicy) IsNoop() bool {
	switch p.Kind {
	case RetainDays:
		return p.Days <= 0
	case RetainCount:
		return p.Count <= 0
	case RetainNone:
		return false
	default:
		return true
	}
}

func (p RetentionPolicy) String() string {
	switch p.Kind {
	case RetainDays:
		return fmt.Sprintf("days(%d)", p.Days)
	case RetainCount:
		return fmt.Sprintf("count(%d)", p.Count)
	case RetainNone:
		return "all"
	default:
		return "unlimited"
	}
}
