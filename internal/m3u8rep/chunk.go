// Package m3u8rep provides a concrete Representation/Segment pair backed by
// an in-memory github.com/Eyevinn/hls-m3u8 MediaPlaylist. It is the
// reference representation driven by internal/demo and cmd/trackerdemo; the
// segment tracker's own tests use hand-written doubles, and the tracker
// itself never imports this package.
package m3u8rep

import (
	"io"

	"github.com/colinmarsh/segtrack/internal/representation"
)

// chunk is a byte-slice-backed representation.SegmentChunk. Peek never
// consumes from data; Read does, mirroring a real network chunk where
// probing must not disturb what the demuxer later reads.
type chunk struct {
	data          []byte
	read          int
	format        representation.StreamFormat
	contentType   string
	disc          bool
	discSeqNumber uint64
}

func newChunk(data []byte, contentType string) *chunk {
	return &chunk{data: data, contentType: contentType}
}

func (c *chunk) Discontinuity() bool                { return c.disc }
func (c *chunk) DiscontinuitySequenceNumber() uint64 { return c.discSeqNumber }
func (c *chunk) StreamFormat() representation.StreamFormat { return c.format }
func (c *chunk) SetStreamFormat(f representation.StreamFormat) { c.format = f }
func (c *chunk) ContentType() string { return c.contentType }

func (c *chunk) Peek(maxLen int) ([]byte, error) {
	remaining := c.data[c.read:]
	if maxLen < len(remaining) {
		remaining = remaining[:maxLen]
	}
	out := make([]byte, len(remaining))
	copy(out, remaining)
	return out, nil
}

func (c *chunk) Read(p []byte) (int, error) {
	if c.read >= len(c.data) {
		return 0, io.EOF
	}
	n := copy(p, c.data[c.read:])
	c.read += n
	return n, nil
}

var _ representation.SegmentChunk = (*chunk)(nil)
