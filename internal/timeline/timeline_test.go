// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPopOrdersByTime(t *testing.T) {
	chk := require.New(t)

	var q Queue
	var fired []string
	q.Schedule(3.5, func() { fired = append(fired, "c") })
	q.Schedule(1.0, func() { fired = append(fired, "a") })
	q.Schedule(2.25, func() { fired = append(fired, "b") })

	chk.Equal(3, q.Len())
	for !q.Empty() {
		ev, ok := q.Pop()
		chk.True(ok)
		ev.Action()
	}
	chk.Equal([]string{"a", "b", "c"}, fired)
}

func TestEqualTimesPopInScheduleOrder(t *testing.T) {
	chk := require.New(t)

	var q Queue
	var fired []int
	for i := 0; i < 10; i++ {
		i := i
		q.Schedule(7.0, func() { fired = append(fired, i) })
	}
	for !q.Empty() {
		ev, _ := q.Pop()
		chk.Equal(7.0, ev.Time)
		ev.Action()
	}
	chk.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, fired)
}

func TestInterleavedScheduleAndPop(t *testing.T) {
	chk := require.New(t)

	var q Queue
	q.Schedule(5, nil)
	q.Schedule(1, nil)

	ev, ok := q.Pop()
	chk.True(ok)
	chk.Equal(1.0, ev.Time)

	// Scheduling earlier than the pending event must still pop first.
	q.Schedule(2, nil)
	ev, ok = q.Pop()
	chk.True(ok)
	chk.Equal(2.0, ev.Time)

	ev, ok = q.Pop()
	chk.True(ok)
	chk.Equal(5.0, ev.Time)

	_, ok = q.Pop()
	chk.False(ok)
	chk.True(q.Empty())
}

func TestPeekDoesNotRemove(t *testing.T) {
	chk := require.New(t)

	var q Queue
	q.Schedule(4, nil)
	ev, ok := q.Peek()
	chk.True(ok)
	chk.Equal(4.0, ev.Time)
	chk.Equal(1, q.Len())
}

func TestResetRestartsSequence(t *testing.T) {
	chk := require.New(t)

	var q Queue
	q.Schedule(1, nil)
	q.Schedule(2, nil)
	q.Reset()
	chk.True(q.Empty())

	var fired []string
	q.Schedule(1, func() { fired = append(fired, "x") })
	q.Schedule(1, func() { fired = append(fired, "y") })
	for !q.Empty() {
		ev, _ := q.Pop()
		ev.Action()
	}
	chk.Equal([]string{"x", "y"}, fired)
}
