// Package `pqueue` defines the priority queue contract shared by the heaps in this module.
package pqueue

import (
	"cmp"
	"errors"
)

// ErrEmptyHeap is returned when the minimum of an empty queue is requested.
var ErrEmptyHeap = errors.New("pqueue: heap is empty")

// Less reports whether `a` must come out of the queue before `b`.
// It must be a strict weak ordering: irreflexive, transitive and consistent.
type Less[T any] func(a, b T) bool

// Natural returns the usual "less-than" ordering for `T`.
func Natural[T cmp.Ordered]() Less[T] {
	return cmp.Less[T]
}

// Reverse flips an ordering. A min-queue built with a reversed ordering
// behaves as a max-queue.
func Reverse[T any](less Less[T]) Less[T] {
	return func(a, b T) bool { return less(b, a) }
}

// Queue is a priority queue that hands out its smallest element first,
// where "smallest" is whatever its [Less] says.
// Implementations are not goroutine-safe unless they say so.
type Queue[T any] interface {
	// Enqueue adds a value to the queue.
	Enqueue(v T)
	// DequeueMin removes and returns the smallest value.
	// Fails with [ErrEmptyHeap] if the queue is empty.
	DequeueMin() (T, error)
	// GetMin returns the smallest value without removing it.
	// Fails with [ErrEmptyHeap] if the queue is empty.
	GetMin() (T, error)
	// Size returns the number of values held.
	Size() uint
	// Empty reports whether Size is 0.
	Empty() bool
}
