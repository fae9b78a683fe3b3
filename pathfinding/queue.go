package pathfinding

import "fmt"

const defaultQueueCapacity = 256

// PriorityQueue is a binary min-heap ordered by a cost key extracted from each item.
//
// Items with equal cost have no guaranteed order. When both children of a slot
// have the same cost, sift-down moves the left one up.
type PriorityQueue[T any] struct {
	items []T
	cost  func(T) int
}

// NewPriorityQueue returns an empty queue ordered by cost. A capacity <= 0
// uses the default of 256.
func NewPriorityQueue[T any](capacity int, cost func(T) int) *PriorityQueue[T] {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	return &PriorityQueue[T]{
		items: make([]T, 0, capacity),
		cost:  cost,
	}
}

// Len returns the number of queued items.
func (q *PriorityQueue[T]) Len() int { return len(q.items) }

// Add appends item and bubbles it up while its parent costs more.
func (q *PriorityQueue[T]) Add(item T) {
	q.items = append(q.items, item)
	if len(q.items) > 1 {
		q.bubbleUp(len(q.items) - 1)
	}
}

// Peek returns the minimum item without removing it.
func (q *PriorityQueue[T]) Peek() (T, bool) {
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

// Pop removes and returns the minimum item. Popping an empty queue returns
// the zero value and false.
func (q *PriorityQueue[T]) Pop() (T, bool) {
	var zero T
	n := len(q.items)
	if n == 0 {
		return zero, false
	}

	top := q.items[0]
	if n == 1 {
		q.items[0] = zero
		q.items = q.items[:0]
		return top, true
	}

	last := n - 1
	q.items[0] = q.items[last]
	q.items[last] = zero
	q.items = q.items[:last]
	q.fixHeap(0)
	return top, true
}

// Clear drops every item but keeps the backing storage.
func (q *PriorityQueue[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}

func (q *PriorityQueue[T]) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if q.cost(q.items[parent]) <= q.cost(q.items[i]) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *PriorityQueue[T]) fixHeap(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		child := left
		if right := left + 1; right < n && q.cost(q.items[right]) < q.cost(q.items[left]) {
			child = right
		}
		if q.cost(q.items[child]) >= q.cost(q.items[i]) {
			return
		}
		q.swap(i, child)
		i = child
	}
}

func (q *PriorityQueue[T]) swap(a, b int) {
	n := len(q.items)
	if a < 0 || a >= n || b < 0 || b >= n {
		panic(fmt.Sprintf("pathfinding: heap swap out of range: a=%d b=%d len=%d", a, b, n))
	}
	if a == b {
		return
	}
	q.items[a], q.items[b] = q.items[b], q.items[a]
}
