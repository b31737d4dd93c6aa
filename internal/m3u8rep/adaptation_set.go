package m3u8rep

import (
	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/google/uuid"
)

// AdaptationSet is a fixed group of interchangeable Representations — e.g.
// the video variants of one HLS master playlist entry. It carries no
// representations itself; the tracker only ever asks it for identity,
// alignment, and role, matching representation.AdaptationSet.
type AdaptationSet struct {
	id               uuid.UUID
	role             representation.Role
	isSegmentAligned bool
}

// NewAdaptationSet creates a set with a fresh stable ID.
func NewAdaptationSet(role representation.Role, segmentAligned bool) *AdaptationSet {
	return &AdaptationSet{
		id:               uuid.New(),
		role:             role,
		isSegmentAligned: segmentAligned,
	}
}

func (s *AdaptationSet) ID() representation.ID { return representation.ID(s.id) }

func (s *AdaptationSet) IsSegmentAligned() bool { return s.isSegmentAligned }

func (s *AdaptationSet) Role() representation.Role { return s.role }

var _ representation.AdaptationSet = (*AdaptationSet)(nil)
