// Package demo wires a tracker.Tracker to a pair of in-memory m3u8rep
// representations and drives it on a single ticker goroutine, the way
// cmd/trackerdemo's driving loop is required to (the tracker is
// non-reentrant — see internal/tracker's package doc). It exists to give
// the demo binary something to track without a real segment source.
package demo

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/logic"
	"github.com/colinmarsh/segtrack/internal/m3u8rep"
	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/tracker"
)

// tsPacket is a minimal payload whose leading sync byte and short length
// makes representation.FormatFromMagic recognize it as MPEG-TS without
// needing a full 188-byte packet.
var tsPacket = []byte{0x47, 0x40, 0x00, 0x10}

// RepresentationStatus is a JSON-friendly snapshot of one tracked
// representation, used by cmd/trackerdemo's /status endpoint.
type RepresentationStatus struct {
	ID       string   `json:"id"`
	Codecs   []string `json:"codecs"`
	Current  bool     `json:"current"`
	Playlist string   `json:"playlist"`
}

// StreamStatus is a JSON-friendly snapshot of the whole tracked stream.
type StreamStatus struct {
	Format          string                 `json:"format"`
	PlaybackTime    time.Time              `json:"playback_time"`
	MinAheadSeconds float64                `json:"min_ahead_seconds"`
	Representations []RepresentationStatus `json:"representations"`
}

// Config bundles the knobs Stream needs from internal/config.TrackerConfig
// without internal/demo importing internal/config directly (cmd/trackerdemo
// is the only place that needs to know both).
type Config struct {
	BufferingLookback uint64
	ProbePeekSize     int
	SwitchCooldown    time.Duration
}

// Stream owns a tracker.Tracker driving two representations of a synthetic
// live stream: a low and a high variant of the same content, switched
// between periodically to exercise representation-switch and format-change
// events end to end.
type Stream struct {
	mu sync.Mutex

	trk        *tracker.Tracker
	set        *m3u8rep.AdaptationSet
	adaptLogic *logic.StaticAdaptationLogic
	low, high  *m3u8rep.Representation

	segmentDuration time.Duration
	switchCooldown  time.Duration
	lastSwitch      time.Time
	tick            uint64
}

// New builds a two-representation adaptation set, seeds each with a short
// backlog of segments, and constructs the tracker that will pull from it.
// Register additional trackevent.Listener values (e.g. a trackmetrics.Sink)
// via Tracker().RegisterListener before calling Run.
func New(cfg Config, syncRefs representation.SynchronizationReferences) (*Stream, error) {
	low, err := m3u8rep.NewRepresentation(representation.FormatMPEGTS, []string{"avc1.42001e", "mp4a.40.2"})
	if err != nil {
		return nil, fmt.Errorf("demo: create low representation: %w", err)
	}
	high, err := m3u8rep.NewRepresentation(representation.FormatMPEGTS, []string{"avc1.64001f", "mp4a.40.2"})
	if err != nil {
		return nil, fmt.Errorf("demo: create high representation: %w", err)
	}

	segmentDuration := 4 * time.Second
	now := time.Now()
	const backlog = 6
	for i := 0; i < backlog; i++ {
		displayTime := now.Add(time.Duration(i) * segmentDuration)
		if err := low.AddMediaSegment(tsPacket, "video/mp2t", displayTime, segmentDuration, false, 0); err != nil {
			return nil, fmt.Errorf("demo: seed low representation: %w", err)
		}
		if err := high.AddMediaSegment(tsPacket, "video/mp2t", displayTime, segmentDuration, false, 0); err != nil {
			return nil, fmt.Errorf("demo: seed high representation: %w", err)
		}
	}

	set := m3u8rep.NewAdaptationSet(representation.Role{Kind: "main"}, true)
	adaptLogic := logic.NewStaticAdaptationLogic(low)
	bufLogic := logic.NewThresholdBufferingLogic(cfg.BufferingLookback)

	trk := tracker.New(set, adaptLogic, bufLogic, syncRefs, nil, cfg.ProbePeekSize)
	trk.SetStartPosition()

	return &Stream{
		trk:             trk,
		set:             set,
		adaptLogic:      adaptLogic,
		low:             low,
		high:            high,
		segmentDuration: segmentDuration,
		switchCooldown:  cfg.SwitchCooldown,
	}, nil
}

// Tracker exposes the underlying tracker so cmd/trackerdemo can register
// additional listeners (e.g. a trackmetrics.Sink) before Run starts.
func (s *Stream) Tracker() *tracker.Tracker {
	return s.trk
}

// Run drives the stream on a single goroutine until ctx is cancelled: every
// segment duration it appends a fresh segment to both representations
// (simulating live ingest), occasionally flips the preferred representation
// to exercise switching, and pulls the next chunk from the tracker.
func (s *Stream) Run(ctx context.Context) {
	ticker := time.NewTicker(s.segmentDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.advance(now)
		}
	}
}

func (s *Stream) advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	if err := s.low.AddMediaSegment(tsPacket, "video/mp2t", now, s.segmentDuration, false, 0); err != nil {
		logger.Log.Warn().Err(err).Msg("demo: append low segment")
	}
	if err := s.high.AddMediaSegment(tsPacket, "video/mp2t", now, s.segmentDuration, false, 0); err != nil {
		logger.Log.Warn().Err(err).Msg("demo: append high segment")
	}

	// Flip the preferred representation every 5 ticks so the demo exercises
	// KindRepresentationSwitch instead of sitting on one variant forever.
	if s.tick%5 == 0 {
		if s.tick/5%2 == 0 {
			s.adaptLogic.SetPreferred(s.low)
		} else {
			s.adaptLogic.SetPreferred(s.high)
		}
	}

	switchAllowed := s.lastSwitch.IsZero() || now.Sub(s.lastSwitch) >= s.switchCooldown
	chunk, ok := s.trk.NextChunk(switchAllowed, nil)
	if switchAllowed {
		s.lastSwitch = now
	}
	if !ok {
		return
	}
	// A real consumer would demux chunk; the demo just drains it.
	if _, err := io.Copy(io.Discard, chunk); err != nil {
		logger.Log.Warn().Err(err).Msg("demo: drain chunk")
	}
}

// Status snapshots the current tracker and representation state for
// cmd/trackerdemo's /status endpoint.
func (s *Stream) Status() StreamStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.adaptLogic.GetNextRepresentation(s.set, s.low)

	return StreamStatus{
		Format:          s.trk.GetCurrentFormat().String(),
		PlaybackTime:    s.trk.GetPlaybackTime(false),
		MinAheadSeconds: s.trk.GetMinAheadTime().Seconds(),
		Representations: []RepresentationStatus{
			{ID: s.low.ID().String(), Codecs: s.low.GetCodecsDesc(), Current: current == s.low, Playlist: s.low.Encode()},
			{ID: s.high.ID().String(), Codecs: s.high.GetCodecsDesc(), Current: current == s.high, Playlist: s.high.Encode()},
		},
	}
}
