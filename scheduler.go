package camrx

import (
	"time"

	"github.com/visiona/camrx/internal/engine"
)

// HandleInterrupt services one receiver interrupt. It must be called from
// the platform's interrupt dispatch with interrupts for this instance
// masked; it never blocks and takes only the queue lock.
//
// Returns true when the interrupt belonged to this instance.
func (r *Receiver) HandleInterrupt() bool {
	if !r.streaming.Load() {
		return false
	}

	sta, ista := r.eng.IRQStatus()
	if !engine.Serviceable(sta) {
		return false
	}

	fs, fe, lc := engine.FrameBoundary(sta, ista)

	if fe {
		if r.current != nil && r.current != r.next {
			r.completeCurrent()
		} else {
			// Starving: the write engine keeps landing in the same
			// buffer. The frame is overwritten in place but still
			// consumes a sequence number so the consumer sees the gap.
			r.sequence++
			r.framesDropped.Add(1)
		}
	}

	// Timestamp at frame start so the completion carries exposure-start
	// time, not interrupt-service time of the frame end. Retirement above
	// ran first, so with coalesced start and end events this stamps the
	// frame that just began.
	if fs && r.current != nil {
		r.current.timestamp = time.Now()
	}

	// Re-arm the shadow slot. FS means the swap just happened; LC gives a
	// mid-frame second chance after a late Submit. The queue pop and the
	// DMA address write must be one critical section so a concurrent
	// Submit cannot observe a half-armed slot.
	if fs || lc {
		r.queue.mu.Lock()
		if len(r.queue.items) > 0 && r.current == r.next {
			buf := r.queue.popLocked()
			r.next = buf
			r.eng.WriteDMAAddress(buf.DMAAddr)
		}
		r.queue.mu.Unlock()
	}

	if r.eng.TriggerModeActive() {
		r.eng.ClearTriggerMode()
	}
	return true
}

// completeCurrent retires the filled buffer and promotes the shadow slot.
// Interrupt context; the callback must not block.
func (r *Receiver) completeCurrent() {
	buf := r.current

	frame := CompletedFrame{
		Buffer:    buf,
		Sequence:  r.sequence,
		Timestamp: buf.timestamp,
		Status:    FrameDone,
	}
	r.sequence++
	r.framesCompleted.Add(1)

	r.queue.mu.Lock()
	r.current = r.next
	r.queue.mu.Unlock()

	r.onComplete(frame)
}
