package logic

import (
	"testing"
	"time"

	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/colinmarsh/segtrack/internal/trackevent"
	"github.com/google/uuid"
)

type stubRep struct {
	id representation.ID
}

func newStubRep() *stubRep { return &stubRep{id: representation.ID(uuid.New())} }

func (s *stubRep) ID() representation.ID                                 { return s.id }
func (s *stubRep) NeedsUpdate(uint64) bool                                { return false }
func (s *stubRep) RunLocalUpdates(any) (bool, error)                      { return false, nil }
func (s *stubRep) ScheduleNextUpdate(uint64, bool)                       {}
func (s *stubRep) CanNoLongerUpdate() bool                                { return false }
func (s *stubRep) TranslateSegmentNumber(n uint64, _ representation.Representation) uint64 {
	return n
}
func (s *stubRep) GetMinAheadTime(uint64) time.Duration { return 0 }
func (s *stubRep) GetNextMediaSegment(n uint64) (representation.Segment, uint64, bool, bool) {
	return nil, n, false, false
}
func (s *stubRep) GetInitSegment() (representation.Segment, bool)  { return nil, false }
func (s *stubRep) NeedsIndex() bool                                { return false }
func (s *stubRep) GetIndexSegment() (representation.Segment, bool) { return nil, false }
func (s *stubRep) GetSegmentNumberByTime(time.Time) (uint64, bool) { return 0, false }
func (s *stubRep) GetPlaybackTimeDurationBySegmentNumber(uint64) (time.Time, time.Duration, bool) {
	return time.Time{}, 0, false
}
func (s *stubRep) GetStreamFormat() representation.StreamFormat { return representation.FormatUnknown }
func (s *stubRep) GetCodecsDesc() []string                      { return nil }
func (s *stubRep) GetMediaPlaybackRange() (time.Time, time.Time, time.Duration, bool) {
	return time.Time{}, time.Time{}, 0, false
}

func TestStaticAdaptationLogic_RecommendsStartWhenNoCurrent(t *testing.T) {
	start := newStubRep()
	l := NewStaticAdaptationLogic(start)

	got := l.GetNextRepresentation(nil, nil)
	if got != representation.Representation(start) {
		t.Fatalf("GetNextRepresentation() = %v, want start", got)
	}
}

func TestStaticAdaptationLogic_StaysOnCurrentWithNoPreferred(t *testing.T) {
	start := newStubRep()
	current := newStubRep()
	l := NewStaticAdaptationLogic(start)

	got := l.GetNextRepresentation(nil, current)
	if got != representation.Representation(current) {
		t.Fatal("GetNextRepresentation() should hold current when no preferred switch is set")
	}
}

func TestStaticAdaptationLogic_SwitchesToPreferred(t *testing.T) {
	start := newStubRep()
	current := newStubRep()
	target := newStubRep()
	l := NewStaticAdaptationLogic(start)
	l.SetPreferred(target)

	got := l.GetNextRepresentation(nil, current)
	if got != representation.Representation(target) {
		t.Fatal("GetNextRepresentation() should recommend the preferred switch target")
	}
}

func TestStaticAdaptationLogic_TrackerEventDoesNotPanic(t *testing.T) {
	l := NewStaticAdaptationLogic(newStubRep())
	l.TrackerEvent(trackevent.Event{Kind: trackevent.KindFormatChange})
}
