package queue

// Ring is a generic FIFO buffer with a fixed capacity.
// Enqueueing onto a full ring drops the oldest element.
type Ring[T any] struct {
	items []T
	cap   int
}

// NewRing creates a Ring holding at most capacity elements.
// A capacity below 1 is treated as 1.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: []T{}, cap: capacity}
}

// Enqueue adds an element to the end of the ring, evicting the
// oldest element if the ring is already full.
func (r *Ring[T]) Enqueue(item T) {
	if len(r.items) == r.cap {
		r.items = r.items[1:]
	}
	r.items = append(r.items, item)
}

// Dequeue removes and returns the front element of the ring.
// The boolean indicates whether an element was dequeued (false if the ring was empty).
func (r *Ring[T]) Dequeue() (T, bool) {
	if len(r.items) == 0 {
		var zero T
		return zero, false
	}
	item := r.items[0]
	r.items = r.items[1:]
	return item, true
}

// Peek returns the front element without removing it from the ring.
// The boolean indicates whether an element was found (false if the ring is empty).
func (r *Ring[T]) Peek() (T, bool) {
	if len(r.items) == 0 {
		var zero T
		return zero, false
	}
	return r.items[0], true
}

// Items returns a copy of the buffered elements, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of elements in the ring.
func (r *Ring[T]) Len() int {
	return len(r.items)
}

// IsEmpty returns true if the ring is empty.
func (r *Ring[T]) IsEmpty() bool {
	return len(r.items) == 0
}

// Clear removes all elements from the ring.
func (r *Ring[T]) Clear() {
	r.items = r.items[:0]
}
