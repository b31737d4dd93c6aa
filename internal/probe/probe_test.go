package probe

import (
	"bytes"
	"io"
	"testing"

	"github.com/colinmarsh/segtrack/internal/representation"
)

// memChunk is an in-memory SegmentChunk for probe tests.
type memChunk struct {
	buf         *bytes.Reader
	format      representation.StreamFormat
	contentType string
	disc        bool
	discSeq     uint64
}

func newMemChunk(data []byte, contentType string) *memChunk {
	return &memChunk{buf: bytes.NewReader(data), contentType: contentType}
}

func (c *memChunk) Discontinuity() bool                    { return c.disc }
func (c *memChunk) DiscontinuitySequenceNumber() uint64     { return c.discSeq }
func (c *memChunk) StreamFormat() representation.StreamFormat { return c.format }
func (c *memChunk) SetStreamFormat(f representation.StreamFormat) { c.format = f }
func (c *memChunk) Read(p []byte) (int, error)             { return c.buf.Read(p) }
func (c *memChunk) ContentType() string                    { return c.contentType }

func (c *memChunk) Peek(maxLen int) ([]byte, error) {
	pos, _ := c.buf.Seek(0, io.SeekCurrent)
	out := make([]byte, maxLen)
	n, err := c.buf.ReadAt(out, pos)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return out[:n], nil
}

var _ representation.SegmentChunk = (*memChunk)(nil)

func TestResolve_AlreadyKnownFormatIsReturnedUnwrapped(t *testing.T) {
	c := newMemChunk([]byte("whatever"), "")
	c.format = representation.FormatMP4

	got, format, err := Resolve(c, DefaultPeekSize)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if format != representation.FormatMP4 {
		t.Fatalf("format = %v, want MP4", format)
	}
	if got != representation.SegmentChunk(c) {
		t.Fatal("a chunk with a known format must be returned unwrapped")
	}
}

func TestResolve_MagicBytesResolveMPEGTS(t *testing.T) {
	payload := make([]byte, 376)
	payload[0] = 0x47
	payload[188] = 0x47
	c := newMemChunk(payload, "")

	got, format, err := Resolve(c, DefaultPeekSize)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if format != representation.FormatMPEGTS {
		t.Fatalf("format = %v, want MPEGTS", format)
	}
	if _, ok := got.(*ProbeableChunk); !ok {
		t.Fatal("an Unknown-format chunk must be returned wrapped")
	}
	if c.format != representation.FormatMPEGTS {
		t.Fatal("resolved format must be stored back on the underlying chunk")
	}
}

func TestResolve_FallsBackToContentType(t *testing.T) {
	// Bytes that match no known magic number.
	c := newMemChunk([]byte{0x00, 0x01, 0x02, 0x03}, "video/mp2t")

	_, format, err := Resolve(c, DefaultPeekSize)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if format != representation.FormatMPEGTS {
		t.Fatalf("format = %v, want MPEGTS from content-type fallback", format)
	}
}

func TestResolve_StaysUnknownWhenNothingMatches(t *testing.T) {
	c := newMemChunk([]byte{0x00, 0x01, 0x02, 0x03}, "")

	_, format, err := Resolve(c, DefaultPeekSize)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if format != representation.FormatUnknown {
		t.Fatalf("format = %v, want Unknown", format)
	}
}

func TestProbeableChunk_PeekThenReadReplaysBufferedPrefix(t *testing.T) {
	inner := newMemChunk([]byte("0123456789"), "")
	wrapped := NewProbeableChunk(inner)

	peeked, err := wrapped.Peek(4)
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if string(peeked) != "0123" {
		t.Fatalf("Peek() = %q, want %q", peeked, "0123")
	}

	var got bytes.Buffer
	buf := make([]byte, 3)
	for {
		n, err := wrapped.Read(buf)
		got.Write(buf[:n])
		if err == io.EOF || (n == 0 && err == nil && got.Len() >= 10) {
			break
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got.Len() >= 10 {
			break
		}
	}
	if got.String() != "0123456789" {
		t.Fatalf("Read() after Peek() = %q, want full replay %q", got.String(), "0123456789")
	}
}
