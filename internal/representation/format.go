// Package representation declares the external collaborators the segment
// tracker consumes: representations, segments, chunks, and the adaptation,
// buffering, and synchronization-reference policies. The tracker never
// constructs these itself — playlist parsing, bitrate selection, and chunk
// I/O are owned elsewhere and reached only through these interfaces.
package representation

import "strings"

// StreamFormat identifies the container/demuxer family a chunk's bytes
// belong to. Zero value is Unknown.
type StreamFormat int

const (
	// FormatUnknown means the format has not been determined yet.
	FormatUnknown StreamFormat = iota
	// FormatUnsupported means the format was probed and no demuxer exists for it.
	FormatUnsupported
	FormatMP4
	FormatMPEGTS
	FormatWebM
	FormatPackedAAC
)

// String returns the lowercase name of the format.
func (f StreamFormat) String() string {
	switch f {
	case FormatUnknown:
		return "unknown"
	case FormatUnsupported:
		return "unsupported"
	case FormatMP4:
		return "mp4"
	case FormatMPEGTS:
		return "mpegts"
	case FormatWebM:
		return "webm"
	case FormatPackedAAC:
		return "aac"
	default:
		return "unknown"
	}
}

// magic byte prefixes recognized from a bounded peek of chunk data.
var (
	mpegTSSyncByte   byte   = 0x47
	webmEBMLHeader          = []byte{0x1A, 0x45, 0xDF, 0xA3}
	id3TagPrefix            = []byte("ID3")
	ftypAtomMarker          = []byte("ftyp")
)

// FormatFromMagic inspects a bounded prefix of chunk bytes and returns the
// format it recognizes, or FormatUnknown if the prefix does not match any
// known signature. This never returns FormatUnsupported — an explicitly
// unsupported format can only be asserted by the representation or by MIME
// sniffing, never inferred from the absence of a known magic number.
func FormatFromMagic(peek []byte) StreamFormat {
	if len(peek) == 0 {
		return FormatUnknown
	}

	if peek[0] == mpegTSSyncByte && (len(peek) <= 188 || peek[188] == mpegTSSyncByte) {
		return FormatMPEGTS
	}

	if len(peek) >= len(webmEBMLHeader) && hasPrefix(peek, webmEBMLHeader) {
		return FormatWebM
	}

	if len(peek) >= 8 && hasPrefix(peek[4:], ftypAtomMarker) {
		return FormatMP4
	}

	if len(peek) >= len(id3TagPrefix) && hasPrefix(peek, id3TagPrefix) {
		return FormatPackedAAC
	}

	return FormatUnknown
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

// FormatFromMIME resolves a format from a chunk's content-type string, used
// as the last-resort fallback when magic-byte probing is inconclusive.
func FormatFromMIME(contentType string) StreamFormat {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	// strip parameters such as "; codecs=..."
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	switch ct {
	case "video/mp4", "audio/mp4", "application/mp4":
		return FormatMP4
	case "video/mp2t", "video/mpeg", "application/mp2t":
		return FormatMPEGTS
	case "video/webm", "audio/webm":
		return FormatWebM
	case "audio/aac", "audio/aacp":
		return FormatPackedAAC
	default:
		return FormatUnknown
	}
}
