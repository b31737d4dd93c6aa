// Package position implements the per-segment cursor the tracker advances
// through the init/index/media phases of a representation.
package position

import (
	"fmt"

	"github.com/colinmarsh/segtrack/internal/representation"
)

// Position is a copyable cursor: which representation, which segment
// number, and how far through the init/index/media phases that segment has
// progressed. The zero value is invalid.
type Position struct {
	Rep       representation.Representation
	Number    uint64
	InitSent  bool
	IndexSent bool
}

// Invalid returns an invalid position: no representation, and the segment
// number set to representation.SentinelNumber.
func Invalid() Position {
	return Position{Number: representation.SentinelNumber}
}

// New returns a position at the given representation and segment number,
// with both phase flags cleared (in init phase).
func New(rep representation.Representation, number uint64) Position {
	return Position{Rep: rep, Number: number}
}

// IsValid reports whether the position names a representation and a real
// segment number. Positions never consult the representation to determine
// phase — they are the sole authority on it.
func (p Position) IsValid() bool {
	return p.Rep != nil && p.Number != representation.SentinelNumber
}

// InInitPhase reports whether the position is valid and has not yet sent
// its init segment.
func (p Position) InInitPhase() bool {
	return p.IsValid() && !p.InitSent
}

// InIndexPhase reports whether the position is valid, has sent its init
// segment, but not yet its index segment.
func (p Position) InIndexPhase() bool {
	return p.IsValid() && p.InitSent && !p.IndexSent
}

// InMediaPhase reports whether the position is valid and has sent both its
// init and index segments (staying in media phase until the representation
// changes).
func (p Position) InMediaPhase() bool {
	return p.IsValid() && p.InitSent && p.IndexSent
}

// Increment advances exactly one phase: not-init -> init sent; init-only ->
// index sent; both -> next segment number of the same representation, with
// both flags reset back to sent (media phase persists across media
// segments). Incrementing an invalid position is a no-op.
func (p Position) Increment() Position {
	if !p.IsValid() {
		return p
	}
	switch {
	case !p.InitSent:
		p.InitSent = true
	case !p.IndexSent:
		p.IndexSent = true
	default:
		p.Number++
	}
	return p
}

// SameRepresentation reports whether two positions reference the same
// representation (comparing interface identity, safe because
// representations are long-lived and playlist-owned).
func SameRepresentation(a, b Position) bool {
	return a.Rep == b.Rep
}

// String renders the position for debug logging.
func (p Position) String() string {
	if !p.IsValid() {
		return "invalid"
	}
	id := "?"
	if p.Rep != nil {
		id = p.Rep.ID().String()
	}
	return fmt.Sprintf("seg#%d init=%t index=%t rep=%s", p.Number, p.InitSent, p.IndexSent, id)
}
