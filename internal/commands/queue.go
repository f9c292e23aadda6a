package commands

import "sync"

// DefaultQueueLimit bounds the intents waiting for one tick.
const DefaultQueueLimit = 4096

// Queue buffers intents between ticks. Producers are transport goroutines;
// the simulation drains it once at the start of each tick.
type Queue struct {
	mu      sync.Mutex
	limit   int
	pending []Intent
}

// NewQueue creates a Queue holding at most limit intents.
func NewQueue(limit int) *Queue {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &Queue{limit: limit}
}

// Push appends an intent. Disconnects are always accepted so sessions are
// never leaked.
func (q *Queue) Push(i Intent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= q.limit && i.Type != KindDisconnect {
		return ErrQueueFull
	}
	q.pending = append(q.pending, i)
	return nil
}

// Drain removes and returns every queued intent in arrival order.
func (q *Queue) Drain() []Intent {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of queued intents.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}
