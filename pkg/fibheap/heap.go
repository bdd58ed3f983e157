// Package `fibheap` implements a Fibonacci heap: a mergeable min-heap with
// O(1) insertion and amortized O(log n) extraction of the minimum.
//
// The forest lives in an arena of nodes that point at each other by index,
// so restructuring never allocates besides the arena growing on insertion.
package fibheap

import (
	"cmp"
	"math"

	"github.com/lambdcalculus/fibq/pkg/pqueue"
)

// Heap is a Fibonacci heap ordered by a [pqueue.Less].
// It is not goroutine-safe, users must implement mutexes on their end.
type Heap[T any] struct {
	less pqueue.Less[T]

	nodes []node[T]
	free  []int

	root int // any node of the root list
	min  int
	n    uint

	links int
}

var _ pqueue.Queue[int] = (*Heap[int])(nil)

// New makes an empty [Heap] ordered by `less`. Panics if `less` is nil.
func New[T any](less pqueue.Less[T]) *Heap[T] {
	if less == nil {
		panic("fibheap: nil ordering")
	}
	return &Heap[T]{less: less, root: none, min: none}
}

// NewOrdered makes an empty [Heap] with the natural ordering of `T`.
func NewOrdered[T cmp.Ordered]() *Heap[T] {
	return New(pqueue.Natural[T]())
}

// Enqueue adds a value to the heap as a new singleton tree.
// The time complexity is O(1).
func (h *Heap[T]) Enqueue(v T) {
	x := h.alloc(v)
	h.root = h.insertInto(h.root, x)
	if h.min == none || h.less(v, h.nodes[h.min].key) {
		h.min = x
	}
	h.n++
}

// GetMin returns the smallest value without removing it.
// The time complexity is O(1).
func (h *Heap[T]) GetMin() (T, error) {
	if h.n == 0 {
		var zero T
		return zero, pqueue.ErrEmptyHeap
	}
	return h.nodes[h.min].key, nil
}

// DequeueMin removes and returns the smallest value.
// The time complexity is amortized O(log n).
func (h *Heap[T]) DequeueMin() (T, error) {
	if h.n == 0 {
		var zero T
		return zero, pqueue.ErrEmptyHeap
	}
	z := h.min
	key := h.nodes[z].key

	// Children move up to the root list before `z` goes away.
	for h.nodes[z].child != none {
		c := h.nodes[z].child
		h.nodes[z].child = h.cutFrom(c, c)
		h.nodes[c].parent = none
		h.root = h.insertInto(h.root, c)
	}
	h.root = h.cutFrom(h.root, z)
	h.release(z)
	h.n--

	if h.n == 0 {
		h.min = none
		h.nodes, h.free = h.nodes[:0], h.free[:0]
	} else {
		h.consolidate()
	}
	return key, nil
}

// Size returns the number of values in the heap.
func (h *Heap[T]) Size() uint {
	return h.n
}

// Empty reports whether the heap holds no values.
func (h *Heap[T]) Empty() bool {
	return h.Size() == 0
}

// Meld moves every value of `other` into `h`, leaving `other` empty.
// Both heaps must use the same ordering. The time complexity is linear in
// the size of `other`'s arena, since its nodes are copied into `h`'s.
func (h *Heap[T]) Meld(other *Heap[T]) {
	if other == nil || other == h || other.n == 0 {
		return
	}

	off := len(h.nodes)
	shift := func(i int) int {
		if i == none {
			return none
		}
		return i + off
	}
	for _, nd := range other.nodes {
		nd.parent, nd.child = shift(nd.parent), shift(nd.child)
		nd.left, nd.right = shift(nd.left), shift(nd.right)
		h.nodes = append(h.nodes, nd)
	}
	for _, i := range other.free {
		h.free = append(h.free, i+off)
	}

	root, m := shift(other.root), shift(other.min)
	if h.root == none {
		h.root = root
	} else {
		h.splice(h.root, root)
	}
	if h.min == none || h.less(h.nodes[m].key, h.nodes[h.min].key) {
		h.min = m
	}
	h.n += other.n

	*other = Heap[T]{less: other.less, root: none, min: none}
}

// Links returns how many link operations the heap has performed since it
// was made. Each one is a unit of consolidation work.
func (h *Heap[T]) Links() int {
	return h.links
}

// Roots returns the number of trees in the root list.
func (h *Heap[T]) Roots() int {
	return len(h.members(h.root))
}

// The golden ratio.
var phi = (1 + math.Sqrt(5)) / 2

// MaxDegree returns ⌊log_φ(n)⌋ + 1, an upper bound for the degree of any
// node in an n-node Fibonacci heap.
func MaxDegree(n uint) int {
	if n < 2 {
		return 1
	}
	return int(math.Floor(math.Log(float64(n))/math.Log(phi))) + 1
}

// Merges roots of equal degree until every root has a distinct degree,
// then finds the new minimum among them.
func (h *Heap[T]) consolidate() {
	// One spare slot absorbs rounding in the logarithm.
	table := make([]int, MaxDegree(h.n)+1)
	for i := range table {
		table[i] = none
	}

	// The root list shrinks as trees get linked, so walk a copy of it.
	for _, x := range h.members(h.root) {
		d := h.nodes[x].degree
		for table[d] != none {
			y := table[d]
			// On equal keys, the root already in the table stays on top.
			if !h.less(h.nodes[x].key, h.nodes[y].key) {
				x, y = y, x
			}
			h.link(y, x)
			table[d] = none
			d++
		}
		table[d] = x
	}

	// The old minimum is gone, so scan everything left.
	h.min = none
	for _, x := range table {
		if x == none {
			continue
		}
		if h.min == none || h.less(h.nodes[x].key, h.nodes[h.min].key) {
			h.min = x
		}
	}
}

// Makes root `y` a child of root `x`. The caller guarantees `x` doesn't
// order after `y`.
func (h *Heap[T]) link(y, x int) {
	h.root = h.cutFrom(h.root, y)
	h.nodes[x].child = h.insertInto(h.nodes[x].child, y)
	h.nodes[y].parent = x
	h.nodes[y].mark = false
	h.nodes[x].degree++
	h.links++
}
