package chunkqueue

import (
	"testing"

	"github.com/colinmarsh/segtrack/internal/position"
	"github.com/colinmarsh/segtrack/internal/representation"
)

type stubChunk struct{}

func (stubChunk) Discontinuity() bool                    { return false }
func (stubChunk) DiscontinuitySequenceNumber() uint64     { return 0 }
func (stubChunk) StreamFormat() representation.StreamFormat { return representation.FormatUnknown }
func (stubChunk) SetStreamFormat(representation.StreamFormat) {}
func (stubChunk) Peek(int) ([]byte, error)                { return nil, nil }
func (stubChunk) Read([]byte) (int, error)                { return 0, nil }
func (stubChunk) ContentType() string                     { return "" }

func TestQueue_EmptyInitially(t *testing.T) {
	var q Queue
	if !q.Empty() {
		t.Fatal("new queue must be empty")
	}
	if _, ok := q.Peek(); ok {
		t.Fatal("peeking an empty queue must report not-ok")
	}
}

func TestQueue_PushPeekPop(t *testing.T) {
	var q Queue
	entry := Entry{Chunk: stubChunk{}, Pos: position.Invalid()}
	q.Push(entry)

	if q.Empty() {
		t.Fatal("queue must report non-empty after Push")
	}

	peeked, ok := q.Peek()
	if !ok || peeked.Chunk == nil {
		t.Fatal("Peek must return the pushed entry without removing it")
	}
	if q.Empty() {
		t.Fatal("Peek must not remove the entry")
	}

	popped, ok := q.Pop()
	if !ok || popped.Chunk == nil {
		t.Fatal("Pop must return the pushed entry")
	}
	if !q.Empty() {
		t.Fatal("queue must be empty after Pop")
	}
}

func TestQueue_Flush(t *testing.T) {
	var q Queue
	q.Push(Entry{Chunk: stubChunk{}, Pos: position.Invalid()})
	q.Flush()
	if !q.Empty() {
		t.Fatal("Flush must empty the queue")
	}
}

func TestEntry_IsValid(t *testing.T) {
	invalid := Entry{}
	if invalid.IsValid() {
		t.Fatal("entry with no chunk must be invalid")
	}

	withChunkOnly := Entry{Chunk: stubChunk{}}
	if withChunkOnly.IsValid() {
		t.Fatal("entry with invalid position must be invalid")
	}
}
