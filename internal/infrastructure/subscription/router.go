package subscription

import (
	"strings"
	"sync"

	"github.com/gammazero/deque"
)

// Queue is an unbounded FIFO of coins requested for one feed. Many sessions
// enqueue concurrently; the owning feed drains it.
type Queue struct {
	mu    sync.Mutex
	items deque.Deque[string]
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{
		items: deque.Deque[string]{},
		ready: make(chan struct{}, 1),
	}
}

// Enqueue appends coin and signals Ready. It never blocks and does not dedup.
func (q *Queue) Enqueue(coin string) {
	q.mu.Lock()
	q.items.PushBack(coin)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain pops every queued coin in order and passes it to fn. fn runs without
// the queue lock held, so it may block on network writes.
func (q *Queue) Drain(fn func(coin string)) int {
	q.mu.Lock()
	n := q.items.Len()
	batch := make([]string, 0, n)
	for q.items.Len() > 0 {
		batch = append(batch, q.items.PopFront())
	}
	q.mu.Unlock()

	for _, coin := range batch {
		fn(coin)
	}
	return len(batch)
}

// Ready fires at least once after any Enqueue since the last receive.
func (q *Queue) Ready() <-chan struct{} { return q.ready }

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Router holds one queue per feed.
type Router struct {
	Spot    *Queue
	Futures *Queue
}

func NewRouter() *Router {
	return &Router{Spot: NewQueue(), Futures: NewQueue()}
}

// Watch normalises coins and enqueues each one for both feeds. Each feed
// filters against its own catalogue when draining.
func (r *Router) Watch(coins ...string) int {
	n := 0
	for _, c := range coins {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		r.Spot.Enqueue(c)
		r.Futures.Enqueue(c)
		n++
	}
	return n
}
