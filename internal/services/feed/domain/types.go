// Package domain holds the feed service's core types and ports
package domain

import (
	"time"

	"herald/internal/core/grammar"

	perr "herald/internal/platform/errors"
)

// Chronokey is the feed's totally ordered position marker. It is an opaque
// ordinal on the wire, not a timestamp, and must only ever be compared
type Chronokey uint64

// Direction is the traversal direction over feed history
type Direction string

const (
	// Forward walks from the cursor toward older records
	Forward Direction = "forward"

	// Backward walks from the cursor toward newer records
	Backward Direction = "backward"
)

// ParseDirection validates a direction string
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Forward, Backward:
		return Direction(s), nil
	default:
		return "", perr.InvalidArgf("direction must be %q or %q, got %q", Forward, Backward, s)
	}
}

// Advance returns the cursor value after seeing key k, respecting the
// traversal direction: max for forward, min for backward
func (d Direction) Advance(cur, k Chronokey) Chronokey {
	if d == Backward {
		if k < cur {
			return k
		}
		return cur
	}
	if k > cur {
		return k
	}
	return cur
}

// Cursor is the durable traversal position. Epoch is the wall-clock second
// of the record that produced the key; it is informational and drives the
// epoch-window exhaustion check, never ordering
type Cursor struct {
	Key   Chronokey
	Epoch int64
}

// Story is one raw activity record from the feed
type Story struct {
	PHID       string
	Key        Chronokey
	Epoch      int64
	AuthorPHID string
	ObjectPHID string
	Text       string
}

// Notification is one delivered (or deliverable) line, archived for the
// ops API
type Notification struct {
	ID          string
	StoryPHID   string
	Chronokey   Chronokey
	Actor       string
	Kind        grammar.Kind
	ActionKey   grammar.ActionKey
	Body        string
	DeliveredAt time.Time
}

// SyncReport summarizes one completed cycle
type SyncReport struct {
	Seen      int
	Emitted   int
	Exhausted bool
	Cursor    Cursor
}
