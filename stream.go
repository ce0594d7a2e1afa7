package camrx

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/visiona/camrx/internal/engine"
)

// transportClockHz is the receiver-side transport clock rate.
const transportClockHz = 100_000_000

// Receiver is one capture pipeline instance: it owns the register state,
// the buffer queue, the scheduler slots and the negotiated session format.
// Exactly one Receiver exists per hardware instance.
//
// Concurrency: Start, Stop, Submit, NegotiateFormat and the query methods
// may be called from ordinary goroutines. HandleInterrupt must be called
// from the platform's interrupt dispatch, one invocation at a time.
type Receiver struct {
	source Source
	clock  Clock
	eng    *engine.Engine
	cfg    Config

	queue      frameQueue
	onComplete CompletionFunc

	// mu serializes lifecycle and format mutation. Never taken by the
	// interrupt path.
	mu        sync.Mutex
	streaming atomic.Bool

	// Session state, mutated only while not streaming.
	fmt         *FormatDescriptor
	pix         PixelFormat
	layout      FrameLayout
	mediaFmt    MediaFormat
	activeLanes int

	// Scheduler slots, touched only by the interrupt path while streaming
	// and by start/stop under the queue lock.
	current  *Buffer
	next     *Buffer
	sequence uint32

	framesCompleted atomic.Uint64
	framesDropped   atomic.Uint64
}

// New validates the wiring and resolves a default session format from the
// source's current configuration, falling back to the first mutually
// supported format when the source's active code is unknown.
func New(cfg Config) (*Receiver, error) {
	if cfg.Regs == nil || cfg.ClockGate == nil {
		return nil, fmt.Errorf("camrx: register blocks are required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("camrx: source is required")
	}
	if cfg.OnComplete == nil {
		return nil, fmt.Errorf("camrx: completion callback is required")
	}
	if cfg.MaxLanes < 1 || cfg.MaxLanes > 4 {
		return nil, fmt.Errorf("camrx: invalid lane count %d (must be 1-4)", cfg.MaxLanes)
	}

	r := &Receiver{
		source:     cfg.Source,
		clock:      cfg.Clock,
		eng:        engine.New(cfg.Regs, cfg.ClockGate, cfg.MaxLanes),
		cfg:        cfg,
		onComplete: cfg.OnComplete,
	}

	if err := r.resetFormat(); err != nil {
		return nil, fmt.Errorf("camrx: no default format: %w", err)
	}

	slog.Info("camrx: receiver created",
		"bus", cfg.Bus.String(),
		"max_lanes", cfg.MaxLanes,
		"virtual_channel", cfg.VirtualChannel,
		"format", r.pix.String(),
		"size", fmt.Sprintf("%dx%d", r.layout.Width, r.layout.Height),
	)
	return r, nil
}

// Submit hands a buffer to the receiver for capture. Callable at any time,
// including mid-stream; buffers are captured in submission order.
func (r *Receiver) Submit(buf *Buffer) error {
	if buf == nil {
		return fmt.Errorf("camrx: nil buffer")
	}
	if size := r.frameSize(); buf.Size < size {
		return fmt.Errorf("%w: %d < %d", ErrBufferTooSmall, buf.Size, size)
	}
	if buf.TraceID == "" {
		buf.TraceID = uuid.New().String()
	}
	r.queue.submit(buf)
	return nil
}

// frameSize returns the negotiated frame size under the session lock.
func (r *Receiver) frameSize() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout.SizeImage
}

// Start locks the session format, arms the write engine with the first
// queued buffer and brings up the transport and the receiver, then tells
// the source to stream.
//
// At least one submitted buffer is required. The stream always begins in
// the current==next state; the first frame-start interrupt arms the second
// buffer, because the engine only latches a new target address at a frame
// boundary.
//
// Any failure after a buffer was taken returns it and every still-queued
// buffer to the consumer tagged FrameCancelled before the error propagates.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.streaming.Load() {
		return ErrBusy
	}

	cur := r.queue.takeNext()
	if cur == nil {
		return ErrUnderrun
	}
	next := cur

	lanes := r.cfg.MaxLanes
	if r.cfg.Bus == BusPacket {
		if n, ok := r.source.Lanes(); ok && n != 0 {
			lanes = n
		}
	}
	if lanes > r.cfg.MaxLanes {
		r.releaseAll(FrameCancelled, cur, next)
		return fmt.Errorf("%w: source wants %d, wired for %d",
			ErrLaneMismatch, lanes, r.cfg.MaxLanes)
	}
	r.activeLanes = lanes
	slog.Debug("camrx: starting", "lanes", lanes, "trace_id", cur.TraceID)

	if r.clock != nil {
		if err := r.clock.SetRate(transportClockHz); err != nil {
			r.releaseAll(FrameCancelled, cur, next)
			return fmt.Errorf("camrx: transport clock rate: %w", err)
		}
		if err := r.clock.Enable(); err != nil {
			r.releaseAll(FrameCancelled, cur, next)
			return fmt.Errorf("camrx: transport clock enable: %w", err)
		}
	}

	r.queue.mu.Lock()
	r.current, r.next = cur, next
	r.sequence = 0
	r.queue.mu.Unlock()

	r.streaming.Store(true)
	r.eng.Start(r.engineConfig(), cur.DMAAddr)

	if err := r.source.SetStreaming(true); err != nil {
		r.eng.Stop()
		r.streaming.Store(false)
		if r.clock != nil {
			r.clock.Disable()
		}
		r.queue.mu.Lock()
		r.current, r.next = nil, nil
		r.queue.mu.Unlock()
		r.releaseAll(FrameCancelled, cur, next)
		return fmt.Errorf("%w: source stream-on: %w", ErrHardwareTimeout, err)
	}

	slog.Info("camrx: streaming started",
		"format", r.pix.String(),
		"size", fmt.Sprintf("%dx%d", r.layout.Width, r.layout.Height),
		"stride", r.layout.BytesPerLine,
		"lanes", lanes,
	)
	return nil
}

// Stop quiesces the stream synchronously: by the time it returns the
// hardware is reset and every buffer the receiver held (current, next and
// the whole queue) has been handed back tagged FrameError. Idempotent.
func (r *Receiver) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.streaming.Load() {
		return nil
	}

	if err := r.source.SetStreaming(false); err != nil {
		slog.Error("camrx: source stream-off failed", "error", err)
	}

	r.streaming.Store(false)
	r.eng.Stop()

	r.queue.mu.Lock()
	cur, next := r.current, r.next
	r.current, r.next = nil, nil
	r.queue.mu.Unlock()

	r.releaseAll(FrameError, cur, next)

	if r.clock != nil {
		r.clock.Disable()
	}

	slog.Info("camrx: streaming stopped",
		"frames_completed", r.framesCompleted.Load(),
		"frames_dropped", r.framesDropped.Load(),
	)
	return nil
}

// releaseAll hands back the slot buffers and everything still queued, each
// exactly once (cur and next may alias). Caller holds r.mu.
func (r *Receiver) releaseAll(status BufferStatus, cur, next *Buffer) {
	r.queue.mu.Lock()
	queued := r.queue.drainLocked()
	r.queue.mu.Unlock()

	if cur != nil {
		r.complete(CompletedFrame{Buffer: cur, Sequence: r.sequence, Status: status})
	}
	if next != nil && next != cur {
		r.complete(CompletedFrame{Buffer: next, Sequence: r.sequence, Status: status})
	}
	for _, b := range queued {
		r.complete(CompletedFrame{Buffer: b, Sequence: r.sequence, Status: status})
	}
}

func (r *Receiver) complete(f CompletedFrame) {
	r.onComplete(f)
}

// engineConfig translates the locked session into register programming
// parameters. Caller holds r.mu.
func (r *Receiver) engineConfig() engine.Config {
	return engine.Config{
		Bus:             r.cfg.Bus,
		ContinuousClock: r.cfg.ContinuousClock,
		StrobeMode:      r.cfg.StrobeMode,
		ActiveLanes:     r.activeLanes,
		DataType:        r.fmt.DataType,
		VirtualChannel:  r.cfg.VirtualChannel,
		Stride:          r.layout.BytesPerLine,
		ImageSize:       r.layout.SizeImage,
		Height:          r.layout.Height,
		SampleDepth:     r.fmt.Depth,
		Repack:          r.fmt.RepackActive(r.pix),
	}
}

// Stats returns a snapshot of capture counters. Safe from any goroutine.
func (r *Receiver) Stats() ReceiverStats {
	return ReceiverStats{
		FramesCompleted: r.framesCompleted.Load(),
		FramesDropped:   r.framesDropped.Load(),
		BuffersQueued:   r.queue.len(),
		Streaming:       r.streaming.Load(),
	}
}

// LogStatus dumps the negotiated session and the receiver's live register
// state for diagnostics.
func (r *Receiver) LogStatus() {
	r.mu.Lock()
	pix, layout, code := r.pix, r.layout, r.mediaFmt.Code
	r.mu.Unlock()

	st := r.eng.ReadStatus()
	slog.Info("camrx: receiver status",
		"format", pix.String(),
		"transport_code", fmt.Sprintf("%#04x", uint32(code)),
		"size", fmt.Sprintf("%dx%d", layout.Width, layout.Height),
		"unpack_mode", st.UnpackMode,
		"pack_mode", st.PackMode,
		"programmed_stride", st.Stride,
		"detected_resolution", fmt.Sprintf("%dx%d", st.DetectedWidth, st.DetectedHeight),
		"write_pointer", fmt.Sprintf("%#08x", st.WritePointer),
	)
}
