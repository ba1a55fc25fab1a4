// Package fifo implements fixed-capacity first-in-first-out buffers
// used to keep histories of frames and actions.
package fifo

import "fmt"

// Buffer is a fixed-capacity FIFO buffer. Once filled, the length of a
// Buffer always equals its capacity: Push evicts the oldest element.
type Buffer[T any] struct {
	data     []T
	start    int // index of the oldest element
	length   int
	capacity int
}

// New returns a new, empty Buffer with the given capacity
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("new: capacity must be positive, got %v", capacity))
	}
	return &Buffer[T]{
		data:     make([]T, capacity),
		capacity: capacity,
	}
}

// Push adds an element to the buffer, evicting the oldest element if
// the buffer is full
func (b *Buffer[T]) Push(x T) {
	if b.length < b.capacity {
		b.data[(b.start+b.length)%b.capacity] = x
		b.length++
		return
	}
	b.data[b.start] = x
	b.start = (b.start + 1) % b.capacity
}

// Fill replaces the entire contents of the buffer with copies of x
func (b *Buffer[T]) Fill(x T) {
	for i := range b.data {
		b.data[i] = x
	}
	b.start = 0
	b.length = b.capacity
}

// At returns the i-th oldest element of the buffer
func (b *Buffer[T]) At(i int) T {
	if i < 0 || i >= b.length {
		panic(fmt.Sprintf("at: index %v out of range [0, %v)", i, b.length))
	}
	return b.data[(b.start+i)%b.capacity]
}

// Newest returns the most recently pushed element
func (b *Buffer[T]) Newest() T {
	return b.At(b.length - 1)
}

// Len returns the number of elements in the buffer
func (b *Buffer[T]) Len() int {
	return b.length
}

// Cap returns the capacity of the buffer
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Full returns whether the buffer holds exactly Cap() elements
func (b *Buffer[T]) Full() bool {
	return b.length == b.capacity
}

// Slice returns the elements of the buffer, oldest first
func (b *Buffer[T]) Slice() []T {
	out := make([]T, b.length)
	for i := range out {
		out[i] = b.At(i)
	}
	return out
}

// Every returns every step-th element of the buffer ending with the
// newest, oldest first. That is, the elements at indices step-1,
// 2*step-1, ..., Len()-1 when Len() is a multiple of step.
func (b *Buffer[T]) Every(step int) []T {
	if step < 1 {
		panic(fmt.Sprintf("every: step must be positive, got %v", step))
	}
	out := make([]T, 0, b.length/step+1)
	for i := (b.length - 1) % step; i < b.length; i += step {
		out = append(out, b.At(i))
	}
	return out
}
