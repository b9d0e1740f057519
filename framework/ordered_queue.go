package framework

import (
	"sort"
	"sync"
)

// OrderedQueue receives items tagged with a counter, in any order, and delivers them on C in
// counter order starting from 1. Items that arrive early are held back until the gap before them
// is filled.
type OrderedQueue[T any] struct {
	C           chan T
	lastCounter int
	deferred    []deferredItem[T]
	lock        sync.Mutex
	closeOnce   sync.Once
}

type deferredItem[T any] struct {
	counter int
	item    T
}

func NewOrderedQueue[T any](channelSize int) *OrderedQueue[T] {
	return &OrderedQueue[T]{C: make(chan T, channelSize)}
}

func (q *OrderedQueue[T]) Accept(counter int, item T) {
	q.lock.Lock()
	if counter > q.lastCounter+1 {
		q.deferred = append(q.deferred, deferredItem[T]{counter: counter, item: item})
		sort.Slice(q.deferred, func(i, j int) bool { return q.deferred[i].counter < q.deferred[j].counter })
		q.lock.Unlock()
		return
	}
	q.lastCounter = counter
	q.C <- item
	for len(q.deferred) > 0 {
		next := q.deferred[0]
		if next.counter != q.lastCounter+1 {
			break
		}
		q.deferred = q.deferred[1:]
		q.lastCounter++
		q.C <- next.item
	}
	q.lock.Unlock()
}

func (q *OrderedQueue[T]) Deferred() []T {
	q.lock.Lock()
	ret := make([]T, 0, len(q.deferred))
	for _, d := range q.deferred {
		ret = append(ret, d.item)
	}
	q.lock.Unlock()
	return ret
}

// Close closes C. Anything still deferred is delivered first, in counter order, so that a gap left by
// an item that never arrived does not lose the items after it.
func (q *OrderedQueue[T]) Close() {
	q.closeOnce.Do(func() {
		q.lock.Lock()
		for _, d := range q.deferred {
			q.C <- d.item
		}
		q.deferred = nil
		close(q.C)
		q.lock.Unlock()
	})
}
