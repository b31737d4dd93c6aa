package probe

import (
	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultPeekSize is the bounded prefix probed for magic bytes — a few KiB
// is enough to reach the ftyp atom, the EBML header, or an ID3 tag.
const DefaultPeekSize = 4096

// Resolve implements the tracker's format-resolution step (spec §4.3 step
// 7): if chunk already carries a known format it is returned unwrapped; an
// Unknown chunk is wrapped in a ProbeableChunk, a bounded prefix is peeked,
// and the format is resolved from magic bytes, then from a general MIME
// sniff of the same bytes, then from the chunk's declared content type. The
// resolved format is stored back on the underlying chunk either way.
func Resolve(chunk representation.SegmentChunk, peekSize int) (representation.SegmentChunk, representation.StreamFormat, error) {
	if chunk.StreamFormat() != representation.FormatUnknown {
		return chunk, chunk.StreamFormat(), nil
	}

	if peekSize <= 0 {
		peekSize = DefaultPeekSize
	}

	wrapped := NewProbeableChunk(chunk)
	peeked, err := wrapped.Peek(peekSize)
	if err != nil {
		return nil, representation.FormatUnknown, err
	}

	format := representation.FormatFromMagic(peeked)

	if format == representation.FormatUnknown && len(peeked) > 0 {
		if mt := mimetype.Detect(peeked); mt != nil {
			format = representation.FormatFromMIME(mt.String())
		}
	}

	if format == representation.FormatUnknown {
		format = representation.FormatFromMIME(chunk.ContentType())
	}

	chunk.SetStreamFormat(format)
	return wrapped, format, nil
}
