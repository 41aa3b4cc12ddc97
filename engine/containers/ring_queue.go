package containers

import "errors"

var (
	ErrQueueFull  = errors.New("queue is full")
	ErrQueueEmpty = errors.New("queue is empty")
)

// RingQueue is a fixed-capacity FIFO backed by a circular buffer. Not safe
// for concurrent use; callers serialize access themselves.
type RingQueue[T any] struct {
	data       []T
	size       int
	readIndex  int
	writeIndex int
	count      int
}

// Create a new RingQueue
func NewRingQueue[T any](size int) *RingQueue[T] {
	return &RingQueue[T]{
		data: make([]T, size),
		size: size,
	}
}

// Enqueue adds an element to the queue
func (rq *RingQueue[T]) Enqueue(value T) error {
	if rq.IsFull() {
		return ErrQueueFull
	}

	rq.data[rq.writeIndex] = value
	rq.writeIndex = (rq.writeIndex + 1) % rq.size
	rq.count++
	return nil
}

// Dequeue removes and returns the front element in the queue
func (rq *RingQueue[T]) Dequeue() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, ErrQueueEmpty
	}

	value := rq.data[rq.readIndex]
	rq.data[rq.readIndex] = zero
	rq.readIndex = (rq.readIndex + 1) % rq.size
	rq.count--
	return value, nil
}

// Peek returns the front element without removing it
func (rq *RingQueue[T]) Peek() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, ErrQueueEmpty
	}
	return rq.data[rq.readIndex], nil
}

// Len returns the number of queued elements
func (rq *RingQueue[T]) Len() int {
	return rq.count
}

// IsEmpty checks if the queue is empty
func (rq *RingQueue[T]) IsEmpty() bool {
	return rq.count == 0
}

// IsFull checks if the queue is full
func (rq *RingQueue[T]) IsFull() bool {
	return rq.count == rq.size
}
