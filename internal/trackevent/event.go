// Package trackevent implements the tracker's synchronous event fan-out:
// representation switches, discontinuities, format changes, gaps, and
// buffering telemetry, delivered in registration order to every listener.
package trackevent

import (
	"time"

	"github.com/colinmarsh/segtrack/internal/representation"
)

// Kind identifies which variant of Event is populated.
type Kind int

const (
	KindDiscontinuity Kind = iota
	KindSegmentGap
	KindRepresentationSwitch
	KindRepresentationUpdated
	KindRepresentationUpdateFailed
	KindFormatChange
	KindSegmentChange
	KindBufferingStateUpdate
	KindBufferingLevelChange
	KindPositionChange
)

// String returns the lowercase event name, used for log fields.
func (k Kind) String() string {
	switch k {
	case KindDiscontinuity:
		return "discontinuity"
	case KindSegmentGap:
		return "segment_gap"
	case KindRepresentationSwitch:
		return "representation_switch"
	case KindRepresentationUpdated:
		return "representation_updated"
	case KindRepresentationUpdateFailed:
		return "representation_update_failed"
	case KindFormatChange:
		return "format_change"
	case KindSegmentChange:
		return "segment_change"
	case KindBufferingStateUpdate:
		return "buffering_state_update"
	case KindBufferingLevelChange:
		return "buffering_level_change"
	case KindPositionChange:
		return "position_change"
	default:
		return "unknown"
	}
}

// Event is the tagged union of everything the tracker broadcasts. Only the
// fields relevant to Kind are populated; it is valid only for the duration
// of the Notify call that delivers it — listeners must not retain it.
type Event struct {
	Kind Kind

	// Discontinuity
	DiscontinuitySequence uint64

	// RepresentationSwitch
	PrevRepresentation representation.Representation
	NextRepresentation representation.Representation

	// RepresentationUpdated / RepresentationUpdateFailed
	Representation representation.Representation

	// FormatChange
	Format representation.StreamFormat

	// SegmentChange / BufferingStateUpdate / BufferingLevelChange
	AdaptationSetID representation.ID

	// SegmentChange
	StartTime   time.Time
	Duration    time.Duration
	DisplayTime time.Time

	// BufferingStateUpdate
	BufferingEnabled bool

	// BufferingLevelChange
	BufferingMin     time.Duration
	BufferingMax     time.Duration
	BufferingCurrent time.Duration
	BufferingTarget  time.Duration

	// PositionChange
	ResumeTime time.Time
}

// Listener reacts to tracker events. Implementations must not call
// mutating tracker operations from inside TrackerEvent — dispatch is
// synchronous and reentrant calls would corrupt tracker state mid-pull.
type Listener interface {
	TrackerEvent(e Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(Event)

// TrackerEvent implements Listener.
func (f ListenerFunc) TrackerEvent(e Event) { f(e) }

// Bus delivers events synchronously, in registration order, to every
// registered listener. Deregistration is out of scope — listeners live as
// long as the bus (the playlist graph owns both).
type Bus struct {
	listeners []Listener
}

// Register adds a listener. Registration may happen at any time, including
// mid-dispatch (the new listener will not see the event currently being
// delivered).
func (b *Bus) Register(l Listener) {
	b.listeners = append(b.listeners, l)
}

// Notify delivers e to every registered listener, in registration order.
func (b *Bus) Notify(e Event) {
	for _, l := range b.listeners {
		l.TrackerEvent(e)
	}
}
