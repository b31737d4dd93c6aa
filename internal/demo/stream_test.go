package demo

import (
	"context"
	"testing"
	"time"

	"github.com/colinmarsh/segtrack/internal/representation"
	"github.com/stretchr/testify/require"
)

type memSyncRefs struct{}

func (memSyncRefs) GetReference(uint64, time.Time) (representation.SynchronizationReference, bool) {
	return representation.SynchronizationReference{}, false
}
func (memSyncRefs) AddReference(uint64, representation.Times) {}

func newTestStream(t *testing.T) *Stream {
	t.Helper()
	s, err := New(Config{BufferingLookback: 2, ProbePeekSize: 512, SwitchCooldown: 0}, memSyncRefs{})
	require.NoError(t, err)
	return s
}

func TestStream_Status_ReportsBothRepresentations(t *testing.T) {
	s := newTestStream(t)
	status := s.Status()

	require.Len(t, status.Representations, 2)
	require.Contains(t, status.Representations[0].Playlist, "#EXTM3U")
}

func TestStream_Advance_PullsChunksWithoutPanicking(t *testing.T) {
	s := newTestStream(t)

	now := time.Now()
	for i := 0; i < 12; i++ {
		s.advance(now.Add(time.Duration(i) * s.segmentDuration))
	}

	status := s.Status()
	require.False(t, status.PlaybackTime.IsZero())
}

func TestStream_Run_StopsOnContextCancel(t *testing.T) {
	s := newTestStream(t)
	s.segmentDuration = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
