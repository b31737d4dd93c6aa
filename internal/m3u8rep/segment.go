package m3u8rep

import (
	"fmt"
	"time"

	"github.com/colinmarsh/segtrack/internal/representation"
)

// segment is a resolvable representation.Segment backed by a byte payload
// held entirely in memory — there is no real connection manager or resource
// handle on the other side of ToChunk, matching the reference
// implementation's role as a test/demo double rather than a network client.
type segment struct {
	number      uint64
	payload     []byte
	contentType string
	displayTime time.Time
	duration    time.Duration

	discontinuity bool
	discSeqNumber uint64

	// toChunkErr lets tests simulate a resolution failure (e.g. the
	// representation's ToChunk() call erroring out) without needing a real
	// failing connection manager.
	toChunkErr error
}

func (s *segment) ToChunk(_ any, _ any, number uint64, _ representation.Representation) (representation.SegmentChunk, error) {
	if s.toChunkErr != nil {
		return nil, fmt.Errorf("m3u8rep: resolve segment %d: %w", number, s.toChunkErr)
	}
	c := newChunk(s.payload, s.contentType)
	c.disc = s.discontinuity
	c.discSeqNumber = s.discSeqNumber
	return c, nil
}

func (s *segment) DisplayTime() time.Time { return s.displayTime }

var _ representation.Segment = (*segment)(nil)
