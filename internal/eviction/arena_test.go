package eviction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestArena_AttachDetach verifies links, sizes and slot reuse.
func TestArena_AttachDetach(t *testing.T) {
	var a arena
	q := a.newQueue()

	_, ok := a.back(&q)
	require.False(t, ok)
	_, ok = a.front(&q)
	require.False(t, ok)

	x := a.alloc(Entry{Key: "x", Size: 10})
	y := a.alloc(Entry{Key: "y", Size: 5})
	a.attach(&q, x)
	a.attach(&q, y)

	front, _ := a.front(&q)
	back, _ := a.back(&q)
	require.Equal(t, y, front)
	require.Equal(t, x, back)
	require.Equal(t, uint64(15), q.size)
	require.Equal(t, 2, q.len)

	older, ok := a.older(&q, y)
	require.True(t, ok)
	require.Equal(t, x, older)
	_, ok = a.older(&q, x)
	require.False(t, ok)
	newer, ok := a.newer(&q, x)
	require.True(t, ok)
	require.Equal(t, y, newer)

	a.detach(&q, x)
	require.Equal(t, uint64(5), q.size)
	a.release(x)

	z := a.alloc(Entry{Key: "z", Size: 1})
	require.Equal(t, x, z, "released slots are reused")
}

// TestArena_ProtocolViolationsPanic verifies double links and sentinel detaches fault.
func TestArena_ProtocolViolationsPanic(t *testing.T) {
	var a arena
	q := a.newQueue()
	h := a.alloc(Entry{Key: "x", Size: 1})

	require.Panics(t, func() { a.detach(&q, h) })
	a.attach(&q, h)
	require.Panics(t, func() { a.attach(&q, h) })
	require.Panics(t, func() { a.release(h) })
	require.Panics(t, func() { a.detach(&q, q.head) })
	require.Panics(t, func() { a.detach(&q, q.tail) })
}
