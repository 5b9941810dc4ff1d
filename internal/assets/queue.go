package assets

import "sync"

// Queue carries completions from loader goroutines to the render thread.
// Post may be called from any goroutine; Drain runs the posted functions
// on the caller's goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	notify  chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Post schedules fn for the next Drain. It never blocks.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain runs every function posted before the call and returns how many
// ran. Functions posted while draining run on the next Drain.
func (q *Queue) Drain() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of pending completions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ready is signalled after a Post. Tests use it to wait for background
// work without polling.
func (q *Queue) Ready() <-chan struct{} { return q.notify }
