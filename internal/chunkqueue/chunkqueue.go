// Package chunkqueue holds the tracker's single-slot chunk lookahead: a
// prepared chunk, its timing metadata, and the position it was prepared
// for, waiting to be handed to the demuxer.
package chunkqueue

import (
	"time"

	"github.com/colinmarsh/segtrack/internal/position"
	"github.com/colinmarsh/segtrack/internal/representation"
)

// Entry is a prepared chunk together with the position it resolves and the
// timings the tracker attaches to it. It owns Chunk until consumed.
type Entry struct {
	Chunk       representation.SegmentChunk
	Pos         position.Position
	StartTime   time.Time
	Duration    time.Duration
	DisplayTime time.Time
}

// IsValid reports whether the entry carries a real chunk at a real
// position. An entry with no chunk marks the end of the stream.
func (e Entry) IsValid() bool {
	return e.Chunk != nil && e.Pos.IsValid()
}

// Queue is a conceptually single-element lookahead of prepared chunks.
// Destroying the queue (Flush) releases any chunk it still owns.
type Queue struct {
	entries []Entry
}

// Empty reports whether the queue currently holds a prepared entry.
func (q *Queue) Empty() bool {
	return len(q.entries) == 0
}

// Push enqueues an entry, including an invalid one (which marks the end of
// the stream for the next Peek).
func (q *Queue) Push(e Entry) {
	q.entries = append(q.entries, e)
}

// Peek returns the head entry without removing it. Callers must check
// ok before using the result.
func (q *Queue) Peek() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// Pop removes and returns the head entry, transferring chunk ownership to
// the caller.
func (q *Queue) Pop() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e, true
}

// Flush releases any chunks still owned by the queue and empties it. Both
// reset() and setPosition() call this.
func (q *Queue) Flush() {
	q.entries = nil
}
