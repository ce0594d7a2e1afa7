package camrx

import "sync"

// frameQueue is the FIFO of buffers submitted by the consumer and awaiting
// capture. One producer context (Submit) and one interrupt-context consumer
// (the scheduler); the mutex is held only for the slice splice, never across
// register I/O or callbacks.
type frameQueue struct {
	mu    sync.Mutex
	items []*Buffer
}

func (q *frameQueue) submit(b *Buffer) {
	q.mu.Lock()
	q.items = append(q.items, b)
	q.mu.Unlock()
}

// takeNext pops the head, or nil when empty.
func (q *frameQueue) takeNext() *Buffer {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// popLocked pops the head; the caller holds q.mu.
func (q *frameQueue) popLocked() *Buffer {
	if len(q.items) == 0 {
		return nil
	}
	b := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return b
}

// drainLocked empties the queue and returns everything that was in it; the
// caller holds q.mu.
func (q *frameQueue) drainLocked() []*Buffer {
	out := q.items
	q.items = nil
	return out
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
