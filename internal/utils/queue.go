package utils

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by blocking dequeues once the queue is closed and drained.
var ErrQueueClosed = errors.New("queue is closed")

// Queue represents a thread-safe unbounded queue
type Queue[T any] struct {
	items  []T
	mutex  sync.Mutex
	cond   *sync.Cond
	closed bool
}

// NewQueue creates a new thread-safe queue
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{items: make([]T, 0)}
	q.cond = sync.NewCond(&q.mutex)
	return q
}

// Enqueue adds an item to the end of the queue.
// Items enqueued after Close are discarded.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, item)
	q.cond.Signal()
	return true
}

// DequeueContext removes and returns the item at the front of the queue.
// It blocks until an item is available, the context is done, or the queue
// is closed and empty.
func (q *Queue[T]) DequeueContext(ctx context.Context) (T, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mutex.Lock()
		defer q.mutex.Unlock()
		q.cond.Broadcast()
	})
	defer stop()

	q.mutex.Lock()
	defer q.mutex.Unlock()

	var zero T
	for len(q.items) == 0 {
		if q.closed {
			return zero, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.cond.Wait()
	}

	item := q.items[0]
	q.items = q.items[1:]
	return item, nil
}

// Close wakes every blocked consumer. Remaining items can still be dequeued.
func (q *Queue[T]) Close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Size returns the number of items in the queue
func (q *Queue[T]) Size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}
