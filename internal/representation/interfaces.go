package representation

import (
	"time"

	"github.com/google/uuid"
)

// ID identifies an adaptation set or a representation. Representations are
// owned by the playlist graph and outlive the tracker; the tracker and its
// events only ever hold this stable handle, never a borrowed reference with
// entangled lifetime.
type ID uuid.UUID

// String renders the ID for logging.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// SegmentChunk is materialized, probeable chunk data handed to the demuxer.
type SegmentChunk interface {
	Discontinuity() bool
	DiscontinuitySequenceNumber() uint64
	StreamFormat() StreamFormat
	SetStreamFormat(StreamFormat)
	// Peek returns up to maxLen bytes from the front of the chunk without
	// consuming them — the bytes must still be readable by the demuxer
	// afterwards via Read.
	Peek(maxLen int) ([]byte, error)
	Read(p []byte) (int, error)
	ContentType() string
}

// Segment is an addressable unit (init, index, or media) within a
// representation, resolved to a chunk on demand.
type Segment interface {
	// ToChunk materializes the segment's bytes through the connection
	// manager. Resources and connManager are opaque handles the tracker
	// only forwards.
	ToChunk(resources any, connManager any, number uint64, rep Representation) (SegmentChunk, error)
	DisplayTime() time.Time
}

// Representation is one encoding within an adaptation set — the unit the
// adaptation policy switches between. The tracker treats it as opaque: all
// playlist parsing and manifest refresh detail lives behind this interface.
type Representation interface {
	ID() ID

	// NeedsUpdate reports whether the representation's state must be
	// refreshed before segment n can be addressed.
	NeedsUpdate(number uint64) bool
	// RunLocalUpdates refreshes the representation (may perform I/O) and
	// reports whether anything actually changed.
	RunLocalUpdates(resources any) (bool, error)
	// ScheduleNextUpdate records when the next refresh should be attempted.
	ScheduleNextUpdate(number uint64, didUpdate bool)
	// CanNoLongerUpdate reports a representation that has permanently
	// stopped refreshing (e.g. the live window closed for good).
	CanNoLongerUpdate() bool

	// TranslateSegmentNumber maps a segment number valid in from into the
	// numbering of this representation, returning SentinelNumber if no
	// correspondence can be established (yet).
	TranslateSegmentNumber(number uint64, from Representation) uint64

	// GetMinAheadTime reports how much media remains ahead of number; zero
	// means number has fallen out of the live window.
	GetMinAheadTime(number uint64) time.Duration

	// GetNextMediaSegment resolves the data segment at or after number. It
	// may adjust the returned number (e.g. skipping to the earliest segment
	// still available) and reports whether a gap was introduced.
	GetNextMediaSegment(number uint64) (seg Segment, adjusted uint64, gap bool, ok bool)

	GetInitSegment() (Segment, bool)
	NeedsIndex() bool
	GetIndexSegment() (Segment, bool)

	GetSegmentNumberByTime(t time.Time) (uint64, bool)
	GetPlaybackTimeDurationBySegmentNumber(number uint64) (start time.Time, duration time.Duration, ok bool)

	GetStreamFormat() StreamFormat
	GetCodecsDesc() []string

	GetMediaPlaybackRange() (start, end time.Time, length time.Duration, ok bool)
}

// SentinelNumber is the "unset" segment number, analogous to the source's
// u64::MAX. Kept internal to the storage boundary — callers at the API edge
// see bool/ok results instead, per the design notes.
const SentinelNumber uint64 = ^uint64(0)

// Role identifies the stream role carried by an adaptation set (e.g. main,
// alternate, commentary); opaque to the tracker beyond pass-through.
type Role struct {
	Kind string
}

// AdaptationSet groups interchangeable representations of one track. The
// tracker only ever asks it for identity, alignment, and role.
type AdaptationSet interface {
	ID() ID
	IsSegmentAligned() bool
	Role() Role
}

// AdaptationLogic picks the representation to read next. It doubles as a
// tracker event listener so it can react to switches and format changes.
type AdaptationLogic interface {
	GetNextRepresentation(set AdaptationSet, current Representation) Representation
}

// BufferingLogic chooses the starting segment number for a representation
// that has no current position yet.
type BufferingLogic interface {
	GetStartSegmentNumber(rep Representation) uint64
}

// SegmentRangeProvider is an optional capability a Representation may
// implement to let a BufferingLogic reason about the currently addressable
// segment range without the tracker itself knowing representation
// internals.
type SegmentRangeProvider interface {
	EarliestAvailableSegment() (uint64, bool)
	LatestAvailableSegment() (uint64, bool)
}

// Times bundles a segment's start/duration for synchronization bookkeeping.
type Times struct {
	Start    time.Time
	Duration time.Duration
}

// SynchronizationReference anchors a discontinuity sequence to a playback
// time, used to keep independently-tracked tracks (audio/video/subtitles)
// aligned across a discontinuity.
type SynchronizationReference struct {
	Times Times
}

// SynchronizationReferences is an opaque key/value cache keyed by
// discontinuity sequence number. The tracker never inspects its storage.
type SynchronizationReferences interface {
	GetReference(discontinuitySequence uint64, t time.Time) (SynchronizationReference, bool)
	AddReference(discontinuitySequence uint64, times Times)
}
