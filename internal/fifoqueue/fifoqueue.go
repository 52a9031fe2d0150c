// Package fifoqueue provides an unbounded, synchronized FIFO queue with a single consumer.
//
// Producers never block on Push, so a slow consumer (for example a logger writing to disk)
// cannot stall the goroutines that produce elements.
package fifoqueue

import (
	"sync"

	"github.com/gammazero/deque"
)

// Queue is a variable size synchronized FIFO queue.
type Queue[T any] struct {
	d      *deque.Deque[T]
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

// New creates an empty Queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{
		d: new(deque.Deque[T]),
	}
	q.cond = sync.NewCond(&q.mu)

	return q
}

// Push appends elem. It reports false if the queue is already closed, in which case elem is dropped.
func (q *Queue[T]) Push(elem T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.d.PushBack(elem)
	q.cond.Signal()

	return true
}

// Close marks the queue as closed. Elements already pushed are still delivered to the consumer.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Consume calls fun for every element in push order until the queue is closed and empty.
// Only one goroutine may consume a Queue.
func (q *Queue[T]) Consume(fun func(elem T)) {
	for {
		q.mu.Lock()
		for q.d.Len() == 0 && !q.closed {
			q.cond.Wait()
		}

		if q.d.Len() == 0 {
			q.mu.Unlock()
			return
		}

		elem := q.d.PopFront()
		q.mu.Unlock()

		fun(elem)
	}
}

// Len returns number of elements in the queue. Non-deterministic under concurrent use.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.d.Len()
}
