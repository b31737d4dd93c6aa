package m3u8rep

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Eyevinn/hls-m3u8/m3u8"
	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/resilience"
	"github.com/google/uuid"
)

// refreshFailureThreshold and refreshResetTimeout tune the circuit breaker
// gating RunLocalUpdates: three consecutive simulated failures trip it, and
// it stays open for 30s before allowing a half-open retry.
const (
	refreshFailureThreshold = 3
	refreshResetTimeout     = 30 * time.Second
)

// defaultCapacity is the initial capacity of the underlying playlist's
// segment slice, matching the teacher's playlist manager.
const defaultCapacity = 256

// Representation is an in-memory representation.Representation backed by an
// m3u8.MediaPlaylist. Segments are appended sequentially starting at number
// 0, same as the teacher's sliding-window playlist manager; firstAvailable
// and aheadWindow are explicit knobs (not derived from the playlist) that
// let tests simulate a live window pruning old segments or closing for good
// without needing a second, mutating MediaPlaylist instance.
type Representation struct {
	mu sync.RWMutex

	id       uuid.UUID
	playlist *m3u8.MediaPlaylist

	segments      map[uint64]*segment
	totalSegments uint64

	initSeg *segment
	format  representation.StreamFormat
	codecs  []string

	firstAvailable    uint64
	aheadWindow       time.Duration
	canNoLongerUpdate bool
	needsUpdate       bool
	refreshErr        error
	breaker           *resilience.CircuitBreaker
}

// NewRepresentation creates an empty representation reporting format and
// codecs as given. aheadWindow defaults to a generous hour so representation
// switching is not cancelled by GetMinAheadTime until a test narrows it.
func NewRepresentation(format representation.StreamFormat, codecs []string) (*Representation, error) {
	playlist, err := m3u8.NewMediaPlaylist(0, defaultCapacity)
	if err != nil {
		return nil, fmt.Errorf("m3u8rep: create media playlist: %w", err)
	}
	playlist.TargetDuration = 6

	return &Representation{
		id:          uuid.New(),
		playlist:    playlist,
		segments:    map[uint64]*segment{},
		format:      format,
		codecs:      codecs,
		aheadWindow: time.Hour,
		breaker:     resilience.New(refreshFailureThreshold, refreshResetTimeout),
	}, nil
}

// SetInitSegment gives the representation an init segment (e.g. an fMP4
// "ftyp"/"moov" box) so the tracker's init phase has something to resolve.
func (r *Representation) SetInitSegment(payload []byte, contentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.initSeg = &segment{payload: payload, contentType: contentType}
}

// AddMediaSegment appends the next sequential media segment. number is
// assigned as r.totalSegments, mirroring the teacher playlist manager's
// SeqId assignment.
func (r *Representation) AddMediaSegment(payload []byte, contentType string, displayTime time.Time, dur time.Duration, discontinuity bool, discSeqNumber uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	number := r.totalSegments

	mediaSeg := &m3u8.MediaSegment{
		SeqId:           number,
		URI:             fmt.Sprintf("seg-%d.ts", number),
		Duration:        dur.Seconds(),
		Discontinuity:   discontinuity,
		ProgramDateTime: displayTime,
	}
	if err := r.playlist.AppendSegment(mediaSeg); err != nil {
		return fmt.Errorf("m3u8rep: append segment %d: %w", number, err)
	}
	if dur.Seconds() > float64(r.playlist.TargetDuration) {
		r.playlist.TargetDuration = uint(math.Ceil(dur.Seconds()))
	}

	r.segments[number] = &segment{
		number:        number,
		payload:       payload,
		contentType:   contentType,
		displayTime:   displayTime,
		duration:      dur,
		discontinuity: discontinuity,
		discSeqNumber: discSeqNumber,
	}
	r.totalSegments++
	r.playlist.SeqNo = r.firstHeldNumberLocked()

	logger.Log.Debug().
		Str("representation", r.id.String()).
		Uint64("number", number).
		Dur("duration", dur).
		Msg("m3u8rep: media segment added")

	return nil
}

// SetFirstAvailable simulates live-window pruning beyond the segments the
// representation happens to still hold in memory: GetNextMediaSegment will
// never resolve below this number, reporting a gap instead.
func (r *Representation) SetFirstAvailable(n uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.firstAvailable = n
}

// SetAheadWindow sets the value GetMinAheadTime reports regardless of the
// requested number — zero simulates the live window having closed.
func (r *Representation) SetAheadWindow(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aheadWindow = d
}

// SetCanNoLongerUpdate marks the representation as permanently stalled.
func (r *Representation) SetCanNoLongerUpdate(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.canNoLongerUpdate = v
}

// SetNeedsUpdate controls the next NeedsUpdate() result.
func (r *Representation) SetNeedsUpdate(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.needsUpdate = v
}

// SetRefreshError makes the next RunLocalUpdates calls fail with err until
// cleared (pass nil), simulating a manifest server that has started
// erroring. Repeated failures trip the representation's circuit breaker,
// after which CanNoLongerUpdate reports true until it cools down.
func (r *Representation) SetRefreshError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshErr = err
}

func (r *Representation) firstHeldNumberLocked() uint64 {
	if r.firstAvailable > 0 {
		return r.firstAvailable
	}
	return 0
}

func (r *Representation) ID() representation.ID { return representation.ID(r.id) }

func (r *Representation) NeedsUpdate(uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.needsUpdate
}

// RunLocalUpdates is a no-op local refresh gated by a circuit breaker: this
// representation is a static, in-memory double with no real manifest to
// fetch, so SetRefreshError is the only way to simulate a failing refresh.
// The breaker exists so repeated simulated failures produce the same
// permanent-stall shape (CanNoLongerUpdate) a real network representation
// would show after its retry budget is exhausted.
func (r *Representation) RunLocalUpdates(any) (bool, error) {
	r.mu.Lock()
	if !r.needsUpdate {
		r.mu.Unlock()
		return false, nil
	}
	refreshErr := r.refreshErr
	breaker := r.breaker
	r.mu.Unlock()

	if err := breaker.Call(func() error { return refreshErr }); err != nil {
		return false, fmt.Errorf("m3u8rep: refresh representation %s: %w", r.id, err)
	}

	r.mu.Lock()
	r.needsUpdate = false
	r.mu.Unlock()
	return true, nil
}

func (r *Representation) ScheduleNextUpdate(number uint64, didUpdate bool) {
	logger.Log.Debug().
		Str("representation", r.id.String()).
		Uint64("number", number).
		Bool("did_update", didUpdate).
		Msg("m3u8rep: next update scheduled")
}

func (r *Representation) CanNoLongerUpdate() bool {
	r.mu.RLock()
	forced := r.canNoLongerUpdate
	breaker := r.breaker
	r.mu.RUnlock()
	return forced || breaker.Open()
}

// TranslateSegmentNumber maps by wall-clock time: the playback start time of
// number in from is looked up, then this representation resolves the
// segment whose window covers that time.
func (r *Representation) TranslateSegmentNumber(number uint64, from representation.Representation) uint64 {
	start, _, ok := from.GetPlaybackTimeDurationBySegmentNumber(number)
	if !ok {
		return representation.SentinelNumber
	}
	n, ok := r.GetSegmentNumberByTime(start)
	if !ok {
		return representation.SentinelNumber
	}
	return n
}

func (r *Representation) GetMinAheadTime(uint64) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.aheadWindow
}

func (r *Representation) GetNextMediaSegment(number uint64) (representation.Segment, uint64, bool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.totalSegments == 0 {
		return nil, number, false, false
	}

	earliest, latest := r.boundsLocked()
	target := number
	gap := false
	if target < earliest {
		target = earliest
		gap = true
	}
	if target > latest {
		return nil, number, false, false
	}

	seg, ok := r.segments[target]
	if !ok {
		return nil, number, false, false
	}
	return seg, target, gap, true
}

func (r *Representation) GetInitSegment() (representation.Segment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.initSeg == nil {
		return nil, false
	}
	return r.initSeg, true
}

// NeedsIndex is always false: an HLS media playlist has no separate index
// segment the way a DASH SegmentTimeline does.
func (r *Representation) NeedsIndex() bool { return false }

func (r *Representation) GetIndexSegment() (representation.Segment, bool) { return nil, false }

func (r *Representation) GetSegmentNumberByTime(t time.Time) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.totalSegments == 0 {
		return 0, false
	}
	earliest, latest := r.boundsLocked()
	for n := earliest; n <= latest; n++ {
		seg, ok := r.segments[n]
		if !ok {
			continue
		}
		if !t.Before(seg.displayTime) && t.Before(seg.displayTime.Add(seg.duration)) {
			return n, true
		}
	}
	return 0, false
}

func (r *Representation) GetPlaybackTimeDurationBySegmentNumber(number uint64) (time.Time, time.Duration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seg, ok := r.segments[number]
	if !ok {
		return time.Time{}, 0, false
	}
	return seg.displayTime, seg.duration, true
}

func (r *Representation) GetStreamFormat() representation.StreamFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.format
}

func (r *Representation) GetCodecsDesc() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codecs
}

func (r *Representation) GetMediaPlaybackRange() (time.Time, time.Time, time.Duration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.totalSegments == 0 {
		return time.Time{}, time.Time{}, 0, false
	}
	earliest, latest := r.boundsLocked()
	first, ok := r.segments[earliest]
	if !ok {
		return time.Time{}, time.Time{}, 0, false
	}
	last, ok := r.segments[latest]
	if !ok {
		return time.Time{}, time.Time{}, 0, false
	}
	end := last.displayTime.Add(last.duration)
	return first.displayTime, end, end.Sub(first.displayTime), true
}

// EarliestAvailableSegment implements representation.SegmentRangeProvider.
func (r *Representation) EarliestAvailableSegment() (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.totalSegments == 0 {
		return 0, false
	}
	earliest, _ := r.boundsLocked()
	return earliest, true
}

// LatestAvailableSegment implements representation.SegmentRangeProvider.
func (r *Representation) LatestAvailableSegment() (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.totalSegments == 0 {
		return 0, false
	}
	_, latest := r.boundsLocked()
	return latest, true
}

// boundsLocked returns the lowest and highest addressable segment numbers,
// accounting for SetFirstAvailable pruning. Caller must hold r.mu.
func (r *Representation) boundsLocked() (uint64, uint64) {
	earliest := uint64(0)
	if r.firstAvailable > earliest {
		earliest = r.firstAvailable
	}
	latest := r.totalSegments - 1
	return earliest, latest
}

// Encode renders the current playlist window as m3u8 text, used by
// cmd/trackerdemo's /status endpoint.
func (r *Representation) Encode() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	buf := r.playlist.Encode()
	if buf == nil {
		return ""
	}
	return buf.String()
}

var (
	_ representation.Representation      = (*Representation)(nil)
	_ representation.SegmentRangeProvider = (*Representation)(nil)
)
