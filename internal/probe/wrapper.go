package probe

import "github.com/colinmarsh/segtrack/internal/representation"

// ProbeableChunk wraps a chunk so a bounded peek can be taken without
// consuming it — the peeked prefix is buffered and transparently replayed
// before further reads fall through to the wrapped chunk, so the demuxer
// sees the same byte stream it would have without probing.
type ProbeableChunk struct {
	inner        representation.SegmentChunk
	peeked       []byte
	replayOffset int
}

// NewProbeableChunk wraps inner for probing.
func NewProbeableChunk(inner representation.SegmentChunk) *ProbeableChunk {
	return &ProbeableChunk{inner: inner}
}

// Peek reads up to maxLen bytes from the front of the chunk and buffers
// them for replay. Calling Peek more than once returns the same buffered
// prefix without re-reading the underlying chunk.
func (p *ProbeableChunk) Peek(maxLen int) ([]byte, error) {
	if p.peeked != nil {
		if maxLen < len(p.peeked) {
			return p.peeked[:maxLen], nil
		}
		return p.peeked, nil
	}

	buf := make([]byte, maxLen)
	n, err := p.inner.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	p.peeked = buf[:n]
	return p.peeked, nil
}

// Read drains any buffered, not-yet-replayed peek bytes first, then
// delegates to the wrapped chunk.
func (p *ProbeableChunk) Read(out []byte) (int, error) {
	if p.replayOffset < len(p.peeked) {
		n := copy(out, p.peeked[p.replayOffset:])
		p.replayOffset += n
		return n, nil
	}
	return p.inner.Read(out)
}

func (p *ProbeableChunk) Discontinuity() bool                { return p.inner.Discontinuity() }
func (p *ProbeableChunk) DiscontinuitySequenceNumber() uint64 { return p.inner.DiscontinuitySequenceNumber() }
func (p *ProbeableChunk) StreamFormat() representation.StreamFormat { return p.inner.StreamFormat() }
func (p *ProbeableChunk) SetStreamFormat(f representation.StreamFormat) { p.inner.SetStreamFormat(f) }
func (p *ProbeableChunk) ContentType() string { return p.inner.ContentType() }

var _ representation.SegmentChunk = (*ProbeableChunk)(nil)
