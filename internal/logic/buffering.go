package logic

import "github.com/colinmarsh/segtrack/internal/representation"

// ThresholdBufferingLogic picks a starting segment number: Lookback
// segments behind the live edge for a representation exposing
// representation.SegmentRangeProvider, or the earliest available segment
// when Lookback would run past it (covers both "live" and "VOD looks like
// a very long live window" uniformly). Representations that don't expose
// SegmentRangeProvider fall back to asking for segment 0 and taking
// whatever GetNextMediaSegment adjusts it to.
type ThresholdBufferingLogic struct {
	// Lookback is how many segments behind the live edge playback should
	// start, to give the demuxer a small buffer before the edge.
	Lookback uint64
}

// NewThresholdBufferingLogic returns a logic starting lookback segments
// behind the live edge.
func NewThresholdBufferingLogic(lookback uint64) *ThresholdBufferingLogic {
	return &ThresholdBufferingLogic{Lookback: lookback}
}

// GetStartSegmentNumber implements representation.BufferingLogic.
func (l *ThresholdBufferingLogic) GetStartSegmentNumber(rep representation.Representation) uint64 {
	provider, ok := rep.(representation.SegmentRangeProvider)
	if !ok {
		if _, adjusted, _, ok := rep.GetNextMediaSegment(0); ok {
			return adjusted
		}
		return representation.SentinelNumber
	}

	latest, hasLatest := provider.LatestAvailableSegment()
	earliest, hasEarliest := provider.EarliestAvailableSegment()

	switch {
	case hasLatest && hasEarliest:
		if latest < earliest+l.Lookback {
			return earliest
		}
		return latest - l.Lookback
	case hasLatest:
		if latest < l.Lookback {
			return 0
		}
		return latest - l.Lookback
	case hasEarliest:
		return earliest
	default:
		return representation.SentinelNumber
	}
}

var _ representation.BufferingLogic = (*ThresholdBufferingLogic)(nil)
