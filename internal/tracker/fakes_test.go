package tracker

import (
	"time"

	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/trackevent"
	"github.com/google/uuid"
)

// fakeChunk is a controllable representation.SegmentChunk double.
type fakeChunk struct {
	format      representation.StreamFormat
	contentType string
	disc        bool
	discSeq     uint64
	data        []byte
}

func (c *fakeChunk) Discontinuity() bool                      { return c.disc }
func (c *fakeChunk) DiscontinuitySequenceNumber() uint64       { return c.discSeq }
func (c *fakeChunk) StreamFormat() representation.StreamFormat { return c.format }
func (c *fakeChunk) SetStreamFormat(f representation.StreamFormat) { c.format = f }
func (c *fakeChunk) ContentType() string                       { return c.contentType }
func (c *fakeChunk) Peek(maxLen int) ([]byte, error) {
	if maxLen > len(c.data) {
		maxLen = len(c.data)
	}
	return c.data[:maxLen], nil
}
func (c *fakeChunk) Read(p []byte) (int, error) {
	n := copy(p, c.data)
	c.data = c.data[n:]
	return n, nil
}

var _ representation.SegmentChunk = (*fakeChunk)(nil)

// fakeSegment is a controllable representation.Segment double.
type fakeSegment struct {
	chunk       representation.SegmentChunk
	displayTime time.Time
	toChunkErr  error
}

func (s *fakeSegment) ToChunk(_ any, _ any, _ uint64, _ representation.Representation) (representation.SegmentChunk, error) {
	if s.toChunkErr != nil {
		return nil, s.toChunkErr
	}
	return s.chunk, nil
}
func (s *fakeSegment) DisplayTime() time.Time { return s.displayTime }

var _ representation.Segment = (*fakeSegment)(nil)

// fakeRep is a controllable representation.Representation double. Every
// behavior is a function field with a zero-value-safe default so tests
// only set the knobs they exercise.
type fakeRep struct {
	id uuid.UUID

	hasInit  bool
	initSeg  *fakeSegment
	needsIdx bool
	hasIdx   bool
	idxSeg   *fakeSegment

	// nextMedia maps a requested segment number to (segment, adjusted,
	// gap, ok). Missing entries report !ok.
	nextMedia map[uint64]mediaResult

	needsUpdate      bool
	runUpdateOK      bool
	runUpdateErr     error
	canNoLongerUpd   bool
	translate        func(n uint64, from representation.Representation) uint64
	minAheadByNumber map[uint64]time.Duration
	segByTime        map[time.Time]uint64
	playbackTimes    map[uint64]playbackTime
	format           representation.StreamFormat
	codecs           []string
	rangeStart       time.Time
	rangeEnd         time.Time
	rangeLen         time.Duration
	rangeOK          bool

	updateCalls int
}

type mediaResult struct {
	seg      *fakeSegment
	adjusted uint64
	gap      bool
	ok       bool
}

type playbackTime struct {
	start time.Time
	dur   time.Duration
	ok    bool
}

func newFakeRep() *fakeRep {
	return &fakeRep{
		id:        uuid.New(),
		nextMedia: map[uint64]mediaResult{},
	}
}

func (r *fakeRep) ID() representation.ID { return representation.ID(r.id) }

func (r *fakeRep) NeedsUpdate(uint64) bool { return r.needsUpdate }

func (r *fakeRep) RunLocalUpdates(any) (bool, error) {
	r.updateCalls++
	return r.runUpdateOK, r.runUpdateErr
}

func (r *fakeRep) ScheduleNextUpdate(uint64, bool) {}

func (r *fakeRep) CanNoLongerUpdate() bool { return r.canNoLongerUpd }

func (r *fakeRep) TranslateSegmentNumber(n uint64, from representation.Representation) uint64 {
	if r.translate != nil {
		return r.translate(n, from)
	}
	return representation.SentinelNumber
}

func (r *fakeRep) GetMinAheadTime(n uint64) time.Duration {
	if r.minAheadByNumber == nil {
		return time.Minute
	}
	return r.minAheadByNumber[n]
}

func (r *fakeRep) GetNextMediaSegment(n uint64) (representation.Segment, uint64, bool, bool) {
	res, ok := r.nextMedia[n]
	if !ok {
		return nil, n, false, false
	}
	return res.seg, res.adjusted, res.gap, res.ok
}

func (r *fakeRep) GetInitSegment() (representation.Segment, bool) {
	if !r.hasInit {
		return nil, false
	}
	return r.initSeg, true
}

func (r *fakeRep) NeedsIndex() bool { return r.needsIdx }

func (r *fakeRep) GetIndexSegment() (representation.Segment, bool) {
	if !r.hasIdx {
		return nil, false
	}
	return r.idxSeg, true
}

func (r *fakeRep) GetSegmentNumberByTime(t time.Time) (uint64, bool) {
	n, ok := r.segByTime[t]
	return n, ok
}

func (r *fakeRep) GetPlaybackTimeDurationBySegmentNumber(n uint64) (time.Time, time.Duration, bool) {
	pt, ok := r.playbackTimes[n]
	if !ok {
		return time.Time{}, 0, false
	}
	return pt.start, pt.dur, pt.ok
}

func (r *fakeRep) GetStreamFormat() representation.StreamFormat { return r.format }

func (r *fakeRep) GetCodecsDesc() []string { return r.codecs }

func (r *fakeRep) GetMediaPlaybackRange() (time.Time, time.Time, time.Duration, bool) {
	return r.rangeStart, r.rangeEnd, r.rangeLen, r.rangeOK
}

var _ representation.Representation = (*fakeRep)(nil)

// fakeSet is a minimal representation.AdaptationSet double.
type fakeSet struct {
	id      uuid.UUID
	aligned bool
	role    representation.Role
}

func (s *fakeSet) ID() representation.ID       { return representation.ID(s.id) }
func (s *fakeSet) IsSegmentAligned() bool      { return s.aligned }
func (s *fakeSet) Role() representation.Role   { return s.role }

var _ representation.AdaptationSet = (*fakeSet)(nil)

// fakeAdaptationLogic always recommends "next" for the given current; if
// current is nil (start-from-scratch) it recommends "start".
type fakeAdaptationLogic struct {
	start representation.Representation
	next  map[representation.Representation]representation.Representation
}

func (l *fakeAdaptationLogic) GetNextRepresentation(_ representation.AdaptationSet, current representation.Representation) representation.Representation {
	if current == nil {
		return l.start
	}
	if l.next == nil {
		return current
	}
	if n, ok := l.next[current]; ok {
		return n
	}
	return current
}

var _ representation.AdaptationLogic = (*fakeAdaptationLogic)(nil)

// fakeBufferingLogic always recommends a fixed starting segment number.
type fakeBufferingLogic struct {
	byRep map[representation.Representation]uint64
}

func (l *fakeBufferingLogic) GetStartSegmentNumber(rep representation.Representation) uint64 {
	if n, ok := l.byRep[rep]; ok {
		return n
	}
	return representation.SentinelNumber
}

var _ representation.BufferingLogic = (*fakeBufferingLogic)(nil)

// fakeSyncRefs is a trivial in-memory SynchronizationReferences double.
type fakeSyncRefs struct {
	refs map[uint64]representation.SynchronizationReference
}

func newFakeSyncRefs() *fakeSyncRefs {
	return &fakeSyncRefs{refs: map[uint64]representation.SynchronizationReference{}}
}

func (s *fakeSyncRefs) GetReference(discSeq uint64, _ time.Time) (representation.SynchronizationReference, bool) {
	ref, ok := s.refs[discSeq]
	return ref, ok
}

func (s *fakeSyncRefs) AddReference(discSeq uint64, times representation.Times) {
	s.refs[discSeq] = representation.SynchronizationReference{Times: times}
}

var _ representation.SynchronizationReferences = (*fakeSyncRefs)(nil)

// recordingListener captures every event it is notified of, in order.
type recordingListener struct {
	events []trackevent.Event
}

func (l *recordingListener) TrackerEvent(e trackevent.Event) {
	l.events = append(l.events, e)
}

func (l *recordingListener) kinds() []trackevent.Kind {
	kinds := make([]trackevent.Kind, len(l.events))
	for i, e := range l.events {
		kinds[i] = e.Kind
	}
	return kinds
}
