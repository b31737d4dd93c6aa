// Package logic provides reference AdaptationLogic and BufferingLogic
// implementations. Real bitrate estimation and ABR heuristics are out of
// scope for the tracker (spec non-goal: "does not decide bitrates") — these
// exist to drive the tracker's scenario tests and the demo binary with a
// policy that can be told, from the outside, which representation to
// prefer next.
package logic

import (
	"sync"

	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/trackevent"
)

// StaticAdaptationLogic always recommends a configured starting
// representation and, once playback has begun, a configured switch target
// (or no switch at all if none is set). It also implements
// trackevent.Listener: the tracker registers its adaptation logic as a
// listener at construction time, the same way the original SegmentTracker
// registers the AbstractAdaptationLogic it is given.
type StaticAdaptationLogic struct {
	mu        sync.Mutex
	start     representation.Representation
	preferred representation.Representation
}

// NewStaticAdaptationLogic returns a policy that starts on start and never
// switches until SetPreferred is called.
func NewStaticAdaptationLogic(start representation.Representation) *StaticAdaptationLogic {
	return &StaticAdaptationLogic{start: start}
}

// SetPreferred sets the representation the logic will recommend switching
// to on the next call that allows a switch. Passing nil clears it, meaning
// "stay on the current representation".
func (l *StaticAdaptationLogic) SetPreferred(rep representation.Representation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.preferred = rep
}

// GetNextRepresentation implements representation.AdaptationLogic.
func (l *StaticAdaptationLogic) GetNextRepresentation(_ representation.AdaptationSet, current representation.Representation) representation.Representation {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current == nil {
		return l.start
	}
	if l.preferred != nil {
		return l.preferred
	}
	return current
}

// TrackerEvent implements trackevent.Listener. A real ABR policy would
// react to BufferingLevelChange and FormatChange here; this reference
// implementation only logs.
func (l *StaticAdaptationLogic) TrackerEvent(e trackevent.Event) {
	logger.Log.Debug().Str("event", e.Kind.String()).Msg("adaptation logic observed tracker event")
}

var (
	_ representation.AdaptationLogic = (*StaticAdaptationLogic)(nil)
	_ trackevent.Listener            = (*StaticAdaptationLogic)(nil)
)
