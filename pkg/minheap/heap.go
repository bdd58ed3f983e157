// Package minheap implements a binary min-heap over [container/heap].
//
// It satisfies the same [pqueue.Queue] contract as the Fibonacci heap and
// serves as its reference: every operation is O(log n) and simple enough
// to trust.
package minheap

import (
	"cmp"
	"container/heap"

	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

// MinHeap provides the minheap functionality.
// It can be passed as a copy, as it works with pointers internally.
// It is not goroutine-safe, users must implement mutexes on their end.
type MinHeap[T any] struct {
	heapImpl *sliceHeap[T]
}

var _ pqueue.Queue[int] = MinHeap[int]{}

type sliceHeap[T any] struct {
	items []T
	less  pqueue.Less[T]
}

// NewHeap makes a new [MinHeap] ordered by `less` with the initial values from `init`.
func NewHeap[T any](less pqueue.Less[T], init []T) MinHeap[T] {
	sh := &sliceHeap[T]{
		items: make([]T, len(init)),
		less:  less,
	}
	copy(sh.items, init)
	heap.Init(sh)

	return MinHeap[T]{heapImpl: sh}
}

// NewOrdered makes a new [MinHeap] with the natural ordering of `T`.
func NewOrdered[T cmp.Ordered](init []T) MinHeap[T] {
	return NewHeap(pqueue.Natural[T](), init)
}

// GetMin returns the smallest element from a [MinHeap].
// The time complexity is O(1).
func (h MinHeap[T]) GetMin() (T, error) {
	if h.Empty() {
		var zero T
		return zero, pqueue.ErrEmptyHeap
	}
	return h.heapImpl.items[0], nil
}

// DequeueMin pops the smallest element from a [MinHeap].
// The time complexity is O(log n).
func (h MinHeap[T]) DequeueMin() (T, error) {
	if h.Empty() {
		var zero T
		return zero, pqueue.ErrEmptyHeap
	}
	return heap.Pop(h.heapImpl).(T), nil
}

// Enqueue pushes a new element into a [MinHeap].
// The time complexity is O(log n).
func (h MinHeap[T]) Enqueue(x T) {
	heap.Push(h.heapImpl, x)
}

func (h MinHeap[T]) Size() uint { return uint(h.heapImpl.Len()) }
func (h MinHeap[T]) Empty() bool { return h.heapImpl.Len() == 0 }

// Below are the necessary methods for [heap.Interface].

func (h *sliceHeap[T]) Len() int           { return len(h.items) }
func (h *sliceHeap[T]) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *sliceHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *sliceHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *sliceHeap[T]) Pop() any {
	// get last element
	last := h.items[len(h.items)-1]

	// remove last element, letting go of its value
	var zero T
	h.items[len(h.items)-1] = zero
	h.items = h.items[:len(h.items)-1]

	return last
}
