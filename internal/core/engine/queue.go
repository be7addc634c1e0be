// internal/core/engine/queue.go
package engine

import "sync"

// queue is an unbounded FIFO. Push never blocks; Pop blocks until an item
// is available. Safe for concurrent producers and consumers.
type queue[T any] struct {
	mu    sync.Mutex
	ready *sync.Cond
	items []T
	head  int
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

func (q *queue[T]) Push(items ...T) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
	if len(items) == 1 {
		q.ready.Signal()
		return
	}
	q.ready.Broadcast()
}

func (q *queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.head == len(q.items) {
		q.ready.Wait()
	}
	item := q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	// compactar cuando la mitad consumida domina el slice
	if q.head > 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return item
}

func (q *queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
