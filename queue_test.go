package camrx

import (
	"sync"
	"testing"
)

func TestFrameQueueFIFO(t *testing.T) {
	var q frameQueue
	a := &Buffer{TraceID: "a"}
	b := &Buffer{TraceID: "b"}
	c := &Buffer{TraceID: "c"}

	q.submit(a)
	q.submit(b)
	q.submit(c)

	if q.len() != 3 {
		t.Fatalf("len = %d, want 3", q.len())
	}
	for i, want := range []*Buffer{a, b, c} {
		if got := q.takeNext(); got != want {
			t.Fatalf("takeNext #%d = %v, want %v", i, got, want)
		}
	}
	if got := q.takeNext(); got != nil {
		t.Fatalf("takeNext on empty queue = %v, want nil", got)
	}
}

func TestFrameQueueDrain(t *testing.T) {
	var q frameQueue
	q.submit(&Buffer{TraceID: "a"})
	q.submit(&Buffer{TraceID: "b"})

	q.mu.Lock()
	got := q.drainLocked()
	q.mu.Unlock()

	if len(got) != 2 {
		t.Fatalf("drained %d buffers, want 2", len(got))
	}
	if q.len() != 0 {
		t.Fatalf("len after drain = %d, want 0", q.len())
	}
}

func TestFrameQueueConcurrent(t *testing.T) {
	var q frameQueue
	const n = 200

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.submit(&Buffer{})
		}
	}()

	taken := 0
	go func() {
		defer wg.Done()
		for taken < n {
			if q.takeNext() != nil {
				taken++
			}
		}
	}()
	wg.Wait()

	if q.len() != 0 {
		t.Fatalf("len = %d after consuming everything, want 0", q.len())
	}
}
