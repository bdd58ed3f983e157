// Package `uid` implements a UID heap.
package uid

import (
	"fmt"
	"sync"

	"github.com/lambdcalculus/fibq/pkg/fibheap"
	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

// A session that hasn't been given a UID has UID 0.
const (
	Unassigned = 0
)

// ErrExhausted is returned by [UIDHeap.Take] when every UID is in use.
var ErrExhausted = fmt.Errorf("uid: No UIDs left (%w).", pqueue.ErrEmptyHeap)

// The UIDHeap stores which UID values can be taken by new sessions.
// Its methods can be called from multiple goroutines.
type UIDHeap struct {
	heap  *fibheap.Heap[int]
	taken map[int]bool
	max   int
	mu    sync.Mutex
}

// Creates a new [UIDHeap] that can give up to `max` UIDs (1, 2, ..., max).
func CreateHeap(max int) *UIDHeap {
	h := fibheap.NewOrdered[int]()
	for i := 1; i <= max; i++ {
		h.Enqueue(i)
	}
	return &UIDHeap{
		heap:  h,
		taken: make(map[int]bool),
		max:   max,
	}
}

// Takes and returns the smallest available UID, popping it from the heap.
func (u *UIDHeap) Take() (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	id, err := u.heap.DequeueMin()
	if err != nil {
		return Unassigned, ErrExhausted
	}
	u.taken[id] = true
	return id, nil
}

// Frees the passed UID, pushing it into the heap. UIDs that weren't taken
// are ignored, so freeing twice is harmless.
func (u *UIDHeap) Free(id int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.taken[id] {
		return
	}
	delete(u.taken, id)
	u.heap.Enqueue(id)
}

// Returns how many UIDs are currently taken.
func (u *UIDHeap) InUse() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.taken)
}

// Returns the number of UIDs the heap was created with.
func (u *UIDHeap) Max() int {
	return u.max
}
