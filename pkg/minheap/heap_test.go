package minheap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

func TestMinHeap(t *testing.T) {
	vals := []int{9, 1, 8}
	h := NewOrdered(vals)
	vals[0] = -100 // the heap keeps its own copy

	h.Enqueue(5)
	h.Enqueue(3)
	require.Equal(t, uint(5), h.Size())

	min, err := h.GetMin()
	require.NoError(t, err)
	require.Equal(t, 1, min)

	var out []int
	for !h.Empty() {
		v, err := h.DequeueMin()
		require.NoError(t, err)
		out = append(out, v)
	}
	require.Equal(t, []int{1, 3, 5, 8, 9}, out)

	_, err = h.DequeueMin()
	require.ErrorIs(t, err, pqueue.ErrEmptyHeap)
	_, err = h.GetMin()
	require.ErrorIs(t, err, pqueue.ErrEmptyHeap)
}

func TestMinHeapCopiesShareState(t *testing.T) {
	h := NewHeap(pqueue.Reverse(pqueue.Natural[string]()), nil)
	cp := h
	cp.Enqueue("a")
	cp.Enqueue("c")
	cp.Enqueue("b")

	require.Equal(t, uint(3), h.Size())
	v, err := h.DequeueMin()
	require.NoError(t, err)
	require.Equal(t, "c", v)
}
