package fibheap

// Index of "no node" in the arena.
const none = -1

// A node of the forest. Nodes refer to each other by their index in the
// heap's arena. Siblings (and roots) form circular doubly-linked lists
// through `left` and `right`; a parent reaches its children through
// `child`, which may be any one of them.
type node[T any] struct {
	key T

	parent int
	child  int
	left   int
	right  int

	degree int
	// Set when the node lost a child since it last became a child itself.
	// Only link touches it, since nodes are never cut from their parents.
	mark bool
}

func blank[T any](key T) node[T] {
	return node[T]{key: key, parent: none, child: none, left: none, right: none}
}

// Takes a slot for a fresh singleton node, reusing freed slots first.
func (h *Heap[T]) alloc(key T) int {
	if k := len(h.free); k > 0 {
		i := h.free[k-1]
		h.free = h.free[:k-1]
		h.nodes[i] = blank(key)
		return i
	}
	h.nodes = append(h.nodes, blank(key))
	return len(h.nodes) - 1
}

// Gives a slot back. The key is zeroed so the arena doesn't keep it alive.
func (h *Heap[T]) release(i int) {
	var zero T
	h.nodes[i] = blank(zero)
	h.free = append(h.free, i)
}

// Adds `x` to the circular list entered through `head` and returns the
// list's (possibly new) head.
func (h *Heap[T]) insertInto(head, x int) int {
	nx := &h.nodes[x]
	if head == none {
		nx.left, nx.right = x, x
		return x
	}
	hd := &h.nodes[head]
	nx.right = head
	nx.left = hd.left
	h.nodes[hd.left].right = x
	hd.left = x
	return head
}

// Removes `x` from the circular list entered through `head` and returns
// the list's head afterwards, `none` if the list is now empty.
func (h *Heap[T]) cutFrom(head, x int) int {
	nx := &h.nodes[x]
	if nx.right == x {
		nx.left, nx.right = none, none
		return none
	}
	h.nodes[nx.right].left = nx.left
	h.nodes[nx.left].right = nx.right
	next := nx.right
	nx.left, nx.right = none, none
	if head == x {
		return next
	}
	return head
}

// Joins two non-empty circular lists into one.
func (h *Heap[T]) splice(a, b int) {
	aLast := h.nodes[a].left
	bLast := h.nodes[b].left
	h.nodes[aLast].right = b
	h.nodes[b].left = aLast
	h.nodes[bLast].right = a
	h.nodes[a].left = bLast
}

// Returns the members of the circular list entered through `head`, in order.
func (h *Heap[T]) members(head int) []int {
	if head == none {
		return nil
	}
	list := []int{head}
	for i := h.nodes[head].right; i != head; i = h.nodes[i].right {
		list = append(list, i)
	}
	return list
}
