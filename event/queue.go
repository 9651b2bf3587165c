package event

import "sync"

// Queue buffers raw events between ticks. Push may be called from any
// goroutine; Swap hands over everything pushed so far, so events arriving
// while a tick runs wait for the next one.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event
}

// Push appends an event for the next tick.
func (q *Queue) Push(ev Event) {
	if q == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// Swap returns the events pushed since the previous Swap. The returned slice
// is only valid until the following Swap.
func (q *Queue) Swap() []Event {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = q.spare[:0]
	q.spare = out
	return out
}

// Len returns the number of events waiting for the next Swap.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
