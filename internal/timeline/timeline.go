// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package timeline provides the time-ordered event queue that drives the
// simulation clock. Events are keyed by (time, sequence): the sequence number
// is assigned at scheduling time and breaks ties between events that share a
// timestamp, so the pop order is a strict total order and replay is
// deterministic.
package timeline

import (
	"cmp"

	"github.com/addrummond/heap"
)

// An Event pairs a simulated timestamp with the action to execute when the
// clock reaches it.
type Event struct {
	Time   float64
	Action func()
	seq    uint64
}

func (a *Event) Cmp(b *Event) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// A Queue is a min-heap of pending events. The zero value is an empty queue
// ready to use.
type Queue struct {
	heap    heap.Heap[Event, heap.Min]
	size    int
	nextSeq uint64
}

// Schedule inserts an event at the given time with a fresh sequence number.
// Events scheduled earlier pop first among equal timestamps.
func (q *Queue) Schedule(t float64, action func()) {
	heap.PushOrderable(&q.heap, Event{
		Time:   t,
		Action: action,
		seq:    q.nextSeq,
	})
	q.nextSeq++
	q.size++
}

// Empty reports whether no events remain.
func (q *Queue) Empty() bool {
	return q.size == 0
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return q.size
}

// Pop removes and returns the event with the smallest (time, sequence) key.
// The boolean is false if the queue is empty.
func (q *Queue) Pop() (Event, bool) {
	ev, ok := heap.PopOrderable(&q.heap)
	if ok {
		q.size--
	}
	return ev, ok
}

// Peek returns the event with the smallest key without removing it.
func (q *Queue) Peek() (Event, bool) {
	return heap.Peek(&q.heap)
}

// Reset discards all pending events and restarts the sequence counter.
func (q *Queue) Reset() {
	q.heap = heap.Heap[Event, heap.Min]{}
	q.size = 0
	q.nextSeq = 0
}
