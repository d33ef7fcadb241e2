// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chans

// Ring is a fixed-capacity circular FIFO buffer.
// Single-owner: all access happens on the owning loop's goroutine.
// It is the storage behind buffered channels; exported because it is
// useful on its own for cooperative-task plumbing.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

// NewRing creates a ring with the given capacity.
// Capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("chans: ring capacity must be positive")
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return len(r.items) }

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int { return r.size }

// Empty reports whether the ring holds no elements.
func (r *Ring[T]) Empty() bool { return r.size == 0 }

// Full reports whether the ring is at capacity.
func (r *Ring[T]) Full() bool { return r.size == len(r.items) }

// Push appends v at the tail. Reports whether the push succeeded;
// false means the ring is full and v was not stored.
func (r *Ring[T]) Push(v T) bool {
	if r.size == len(r.items) {
		return false
	}
	r.items[(r.head+r.size)%len(r.items)] = v
	r.size++
	return true
}

// Shift removes and returns the oldest element.
// ok is false when the ring is empty.
func (r *Ring[T]) Shift() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	v = r.items[r.head]
	var zero T
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.size--
	return v, true
}

// Peek returns the oldest element without removing it.
// ok is false when the ring is empty.
func (r *Ring[T]) Peek() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}
	return r.items[r.head], true
}

// Reset zeroes the head and size without touching stored slots.
// Stored references remain reachable until overwritten; use Clear to
// release them.
func (r *Ring[T]) Reset() {
	r.head = 0
	r.size = 0
}

// Clear resets the ring and overwrites every slot with the zero value,
// releasing stored references.
func (r *Ring[T]) Clear() {
	r.Reset()
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
}
