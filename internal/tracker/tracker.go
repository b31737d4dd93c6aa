// Package tracker implements the segment tracker: the orchestrator that
// drives a single adaptation set through its representations, consulting
// external adaptation and buffering policies, refreshing representations
// on demand, and broadcasting lifecycle events to registered listeners.
//
// The tracker is single-threaded and non-reentrant, mirroring the original
// VLC SegmentTracker: it is owned and driven by one stream goroutine, and
// none of its public operations may be called concurrently with another.
package tracker

import (
	"fmt"
	"time"

	"github.com/colinmarsh/segtrack/internal/chunkqueue"
	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/position"
	"github.com/colinmarsh/segtrack/internal/probe"
	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/trackevent"
)

// Tracker is the segment-tracker orchestrator for one adaptation set. The
// zero value is not usable; construct with New.
type Tracker struct {
	set           representation.AdaptationSet
	adaptLogic    representation.AdaptationLogic
	bufLogic      representation.BufferingLogic
	syncRefs      representation.SynchronizationReferences
	resources     any
	probePeekSize int

	current      position.Position
	next         position.Position
	initializing bool
	format       representation.StreamFormat
	queue        chunkqueue.Queue
	bus          trackevent.Bus
}

// New constructs a tracker for set, driven by adaptLogic and bufLogic.
// resources is the opaque shared-resources handle forwarded to
// Representation.RunLocalUpdates and Segment.ToChunk. probePeekSize bounds
// the prefix the format prober reads; zero selects probe.DefaultPeekSize.
//
// If adaptLogic also implements trackevent.Listener, it is registered as a
// listener here, mirroring SegmentTracker::setAdaptationLogic in the
// source.
func New(set representation.AdaptationSet, adaptLogic representation.AdaptationLogic, bufLogic representation.BufferingLogic, syncRefs representation.SynchronizationReferences, resources any, probePeekSize int) *Tracker {
	t := &Tracker{
		set:           set,
		adaptLogic:    adaptLogic,
		bufLogic:      bufLogic,
		syncRefs:      syncRefs,
		resources:     resources,
		probePeekSize: probePeekSize,
		current:       position.Invalid(),
		next:          position.Invalid(),
		initializing:  true,
		format:        representation.FormatUnknown,
	}
	if l, ok := adaptLogic.(trackevent.Listener); ok {
		t.bus.Register(l)
	}
	return t
}

// RegisterListener adds l to the event bus. Deregistration is out of
// scope — listeners live as long as the tracker.
func (t *Tracker) RegisterListener(l trackevent.Listener) {
	t.bus.Register(l)
}

// refreshIfNeeded implements the on-demand refresh pattern (spec §4.4): if
// rep reports it needs updating at number, run the update, schedule the
// next one, and emit RepresentationUpdated iff something actually changed.
func (t *Tracker) refreshIfNeeded(rep representation.Representation, number uint64) (bool, error) {
	if !rep.NeedsUpdate(number) {
		return false, nil
	}
	ok, err := rep.RunLocalUpdates(t.resources)
	rep.ScheduleNextUpdate(number, ok)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if ok {
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindRepresentationUpdated, Representation: rep})
	}
	return ok, nil
}

// getStartPosition asks the adaptation policy for any representation of
// the track, refreshes it if needed, then asks the buffering policy for
// the starting segment number.
func (t *Tracker) getStartPosition() position.Position {
	rep := t.adaptLogic.GetNextRepresentation(t.set, nil)
	if rep == nil {
		return position.Invalid()
	}
	if _, err := t.refreshIfNeeded(rep, 0); err != nil {
		logger.Log.Warn().Err(err).Msg("tracker: start representation refresh failed")
	}
	number := t.bufLogic.GetStartSegmentNumber(rep)
	if number == representation.SentinelNumber {
		return position.Invalid()
	}
	return position.New(rep, number)
}

// trySwitch asks the adaptation policy for a preferred representation
// other than pos.Rep and, if one is offered and reachable, returns the
// translated candidate position. Switching is forbidden unless the
// adaptation set is segment-aligned and the current position has already
// sent both its init and index segments.
func (t *Tracker) trySwitch(pos position.Position) (position.Position, bool) {
	if !t.set.IsSegmentAligned() || !t.current.InMediaPhase() {
		return pos, false
	}

	candidate := t.adaptLogic.GetNextRepresentation(t.set, pos.Rep)
	if candidate == nil || candidate == pos.Rep {
		return pos, false
	}

	translated := candidate.TranslateSegmentNumber(pos.Number, pos.Rep)

	if _, err := t.refreshIfNeeded(candidate, translated); err != nil {
		logger.Log.Warn().Err(err).Msg("tracker: switch candidate refresh failed")
	}

	if translated == representation.SentinelNumber {
		// The update may have only become visible on a second query —
		// kept for behavioral parity with the source (see spec §9 Open
		// Question).
		translated = candidate.TranslateSegmentNumber(pos.Number, pos.Rep)
	}
	if translated == representation.SentinelNumber {
		return pos, false
	}

	if candidate.GetMinAheadTime(translated) == 0 {
		return pos, false
	}

	return position.New(candidate, translated), true
}

// resolvePhaseSegment walks pos forward through the init and index phases
// until it lands on a segment to materialize, skipping phases the
// representation has nothing for.
func (t *Tracker) resolvePhaseSegment(pos position.Position, dataSeg representation.Segment) (representation.Segment, position.Position) {
	for {
		switch {
		case pos.InInitPhase():
			if initSeg, ok := pos.Rep.GetInitSegment(); ok {
				return initSeg, pos
			}
			pos = pos.Increment()
		case pos.InIndexPhase():
			if pos.Rep.NeedsIndex() {
				if idxSeg, ok := pos.Rep.GetIndexSegment(); ok {
					return idxSeg, pos
				}
			}
			pos = pos.Increment()
		default:
			return dataSeg, pos
		}
	}
}

// prepareChunk implements spec §4.2: resolve a starting position if pos is
// invalid, possibly switch representation, acquire the data segment,
// dispatch to the right phase's segment, and materialize it into a chunk.
func (t *Tracker) prepareChunk(switchAllowed bool, pos position.Position, connManager any) chunkqueue.Entry {
	if !pos.IsValid() {
		pos = t.getStartPosition()
		if !pos.IsValid() {
			return chunkqueue.Entry{}
		}
	}

	if switchAllowed {
		if switched, ok := t.trySwitch(pos); ok {
			pos = switched
		}
	}

	dataSeg, adjusted, _, ok := pos.Rep.GetNextMediaSegment(pos.Number)
	if !ok {
		return chunkqueue.Entry{}
	}
	pos.Number = adjusted

	seg, pos := t.resolvePhaseSegment(pos, dataSeg)

	chunk, err := seg.ToChunk(t.resources, connManager, pos.Number, pos.Rep)
	if err != nil || chunk == nil {
		return chunkqueue.Entry{}
	}

	entry := chunkqueue.Entry{Chunk: chunk, Pos: pos, DisplayTime: dataSeg.DisplayTime()}
	if start, duration, ok := pos.Rep.GetPlaybackTimeDurationBySegmentNumber(pos.Number); ok {
		entry.StartTime = start
		entry.Duration = duration
	}
	return entry
}

// NextChunk is the consumer-facing pull: it fills the one-entry lookahead
// queue if empty, derives gap/switch/discontinuity flags by comparing the
// prepared position against the tracker's expectations, resolves the
// chunk's stream format, and emits events in the exact order required by
// spec §4.3 step 11 and invariant 8.
func (t *Tracker) NextChunk(switchAllowed bool, connManager any) (representation.SegmentChunk, bool) {
	if t.set == nil || !t.next.IsValid() {
		return nil, false
	}

	if t.queue.Empty() {
		t.queue.Push(t.prepareChunk(switchAllowed, t.next, connManager))
	}

	entry, _ := t.queue.Peek()
	if !entry.IsValid() {
		t.queue.Pop()
		return nil, false
	}

	gap := t.next.Number != entry.Pos.Number
	switched := !position.SameRepresentation(t.next, entry.Pos) || !t.current.IsValid()
	discontinuity := entry.Chunk.Discontinuity() && t.current.IsValid() && t.current.Number != t.next.Number

	if switched {
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindRepresentationSwitch, PrevRepresentation: t.current.Rep, NextRepresentation: entry.Pos.Rep})
		t.initializing = true
	}

	t.next = entry.Pos
	t.current = entry.Pos

	if entry.Chunk.StreamFormat() == representation.FormatUnsupported {
		t.queue.Pop()
		return nil, false
	}

	chunk, format, err := probe.Resolve(entry.Chunk, t.probePeekSize)
	if err != nil {
		t.queue.Pop()
		return nil, false
	}

	if format != t.format && format != representation.FormatUnknown {
		t.format = format
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindFormatChange, Format: format})
	}

	t.queue.Pop()

	if t.initializing {
		gap = false
		t.initializing = false
	}

	if gap {
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindSegmentGap})
	}
	if discontinuity {
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindDiscontinuity, DiscontinuitySequence: entry.Chunk.DiscontinuitySequenceNumber()})
	}
	t.bus.Notify(trackevent.Event{
		Kind:                  trackevent.KindSegmentChange,
		AdaptationSetID:       t.set.ID(),
		DiscontinuitySequence: entry.Chunk.DiscontinuitySequenceNumber(),
		StartTime:             entry.StartTime,
		Duration:              entry.Duration,
		DisplayTime:           entry.DisplayTime,
	})

	if !gap {
		t.next = t.next.Increment()
	}

	return chunk, true
}

// SetStartPosition resolves and commits an initial next position if one
// is not already set. Calling it again once next is valid is a no-op
// (invariant 10).
func (t *Tracker) SetStartPosition() bool {
	if t.next.IsValid() {
		return true
	}
	pos := t.getStartPosition()
	if !pos.IsValid() {
		return false
	}
	t.next = pos
	t.current = position.Invalid()
	return true
}

// SetPosition commits pos as the next position to pull, flushing the
// lookahead queue and emitting PositionChange. If restarted, the tracker
// re-enters its initializing state so the next pull is never treated as a
// gap.
func (t *Tracker) SetPosition(pos position.Position, restarted bool) {
	if restarted {
		t.initializing = true
	}
	t.current = position.Invalid()
	t.next = pos
	t.queue.Flush()
	t.bus.Notify(trackevent.Event{Kind: trackevent.KindPositionChange, ResumeTime: t.GetPlaybackTime(true)})
}

// SetPositionByTime builds a tentative position (from current, or any
// representation if current is invalid), refreshes it, and asks the
// representation to map at to a segment number. If tryonly, the mapped
// position is reported but not committed.
func (t *Tracker) SetPositionByTime(at time.Time, restarted, tryonly bool) bool {
	pos := t.current
	if !pos.IsValid() {
		rep := t.adaptLogic.GetNextRepresentation(t.set, nil)
		if rep == nil {
			return false
		}
		pos = position.New(rep, 0)
	}

	if _, err := t.refreshIfNeeded(pos.Rep, pos.Number); err != nil {
		logger.Log.Warn().Err(err).Msg("tracker: setPositionByTime refresh failed")
		return false
	}

	number, ok := pos.Rep.GetSegmentNumberByTime(at)
	if !ok {
		return false
	}
	pos.Number = number

	if !tryonly {
		t.SetPosition(pos, restarted)
	}
	return true
}

// GetPlaybackTime returns the playback time of current, or of next if
// ofNext is true. Returns the zero time if the requested position is
// invalid or the representation cannot resolve it.
func (t *Tracker) GetPlaybackTime(ofNext bool) time.Time {
	pos := t.current
	if ofNext {
		pos = t.next
	}
	if !pos.IsValid() {
		return time.Time{}
	}
	start, _, ok := pos.Rep.GetPlaybackTimeDurationBySegmentNumber(pos.Number)
	if !ok {
		return time.Time{}
	}
	return start
}

// GetMediaPlaybackRange reports the addressable media range of the
// currently selected representation.
func (t *Tracker) GetMediaPlaybackRange() (start, end time.Time, length time.Duration, ok bool) {
	if !t.current.IsValid() {
		return time.Time{}, time.Time{}, 0, false
	}
	return t.current.Rep.GetMediaPlaybackRange()
}

// GetMinAheadTime reports how much media remains ahead of the current
// position. It uses current.Number as the query point, falling back to
// the buffering policy's starting segment number only when current is
// invalid — the value is only meaningful once playback has begun.
func (t *Tracker) GetMinAheadTime() time.Duration {
	if t.current.IsValid() {
		return t.current.Rep.GetMinAheadTime(t.current.Number)
	}
	if !t.next.IsValid() {
		return 0
	}
	number := t.bufLogic.GetStartSegmentNumber(t.next.Rep)
	if number == representation.SentinelNumber {
		return 0
	}
	return t.next.Rep.GetMinAheadTime(number)
}

// GetCurrentFormat reports the tracker's last-resolved stream format.
func (t *Tracker) GetCurrentFormat() representation.StreamFormat {
	return t.format
}

// GetCodecsDesc reports the codec list of the currently selected
// representation, or nil if none is selected yet.
func (t *Tracker) GetCodecsDesc() []string {
	if !t.current.IsValid() {
		return nil
	}
	return t.current.Rep.GetCodecsDesc()
}

// GetStreamRole reports the adaptation set's role.
func (t *Tracker) GetStreamRole() representation.Role {
	return t.set.Role()
}

// GetSynchronizationReference looks up a synchronization reference for
// discontinuitySequence near t, delegating to the opaque store.
func (t *Tracker) GetSynchronizationReference(discontinuitySequence uint64, at time.Time) (representation.SynchronizationReference, bool) {
	return t.syncRefs.GetReference(discontinuitySequence, at)
}

// UpdateSynchronizationReference records times for discontinuitySequence.
func (t *Tracker) UpdateSynchronizationReference(discontinuitySequence uint64, times representation.Times) {
	t.syncRefs.AddReference(discontinuitySequence, times)
}

// NotifyBufferingState emits BufferingStateUpdate for this track.
func (t *Tracker) NotifyBufferingState(enabled bool) {
	t.bus.Notify(trackevent.Event{Kind: trackevent.KindBufferingStateUpdate, AdaptationSetID: t.set.ID(), BufferingEnabled: enabled})
}

// NotifyBufferingLevel emits BufferingLevelChange for this track.
func (t *Tracker) NotifyBufferingLevel(min, max, current, target time.Duration) {
	t.bus.Notify(trackevent.Event{
		Kind:             trackevent.KindBufferingLevelChange,
		AdaptationSetID:  t.set.ID(),
		BufferingMin:     min,
		BufferingMax:     max,
		BufferingCurrent: current,
		BufferingTarget:  target,
	})
}

// BufferingAvailable reports whether the tracker has a position to pull
// buffering telemetry about.
func (t *Tracker) BufferingAvailable() bool {
	return t.current.IsValid() || t.next.IsValid()
}

// UpdateSelected refreshes the currently selected representation if it
// needs updating, emitting RepresentationUpdateFailed if it has
// permanently stopped refreshing.
func (t *Tracker) UpdateSelected(resources any) {
	if !t.current.IsValid() {
		return
	}
	rep := t.current.Rep
	if rep.CanNoLongerUpdate() {
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindRepresentationUpdateFailed, Representation: rep})
		return
	}
	if !rep.NeedsUpdate(t.current.Number) {
		return
	}
	ok, err := rep.RunLocalUpdates(resources)
	rep.ScheduleNextUpdate(t.current.Number, ok)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("tracker: updateSelected refresh failed")
		return
	}
	if ok {
		t.bus.Notify(trackevent.Event{Kind: trackevent.KindRepresentationUpdated, Representation: rep})
	}
}

// Reset returns the tracker to its post-construction state: invalid
// current/next, initializing, Unknown format, flushed queue, and emits
// exactly one RepresentationSwitch(prev -> none).
func (t *Tracker) Reset() {
	prev := t.current.Rep
	t.queue.Flush()
	t.current = position.Invalid()
	t.next = position.Invalid()
	t.initializing = true
	t.format = representation.FormatUnknown
	t.bus.Notify(trackevent.Event{Kind: trackevent.KindRepresentationSwitch, PrevRepresentation: prev, NextRepresentation: nil})
}
