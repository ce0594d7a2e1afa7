package camrx

import (
	"time"

	"github.com/visiona/camrx/internal/engine"
	"github.com/visiona/camrx/internal/hwreg"
)

// RegisterBlock is a window of 32-bit hardware registers addressed by byte
// offset. See internal/hwreg for the memory-mapped implementation.
type RegisterBlock = hwreg.Block

// BusType selects the receiver's transport mode.
type BusType = engine.Bus

const (
	// BusPacket is the packet-based multi-lane transport (CSI-2 D-PHY).
	BusPacket = engine.BusPacket
	// BusStrobe is the strobe-based single-lane legacy transport (CCP2).
	BusStrobe = engine.BusStrobe
)

// Buffer is one DMA target owned by the consumer until submitted, then by
// the receiver until handed back through the completion callback. Never
// shared: ownership transfers whole.
type Buffer struct {
	// TraceID identifies the buffer across submissions and completions.
	// Assigned at first submit if empty.
	TraceID string
	// DMAAddr is the bus address the receiver writes pixel data to.
	DMAAddr uint32
	// Size is the payload capacity in bytes. Must hold one frame of the
	// negotiated layout.
	Size uint32
	// Data optionally carries a CPU mapping of the same memory.
	Data []byte

	// Capture timestamp, stamped at frame start while the buffer is filling.
	timestamp time.Time
}

// BufferStatus tags a buffer handed back to the consumer.
type BufferStatus int

const (
	// FrameDone: the buffer holds a complete captured frame.
	FrameDone BufferStatus = iota
	// FrameCancelled: the stream never delivered into this buffer; it is
	// returned untouched (start rollback).
	FrameCancelled
	// FrameError: the stream was stopped while this buffer was queued or
	// in flight; contents are undefined.
	FrameError
)

func (s BufferStatus) String() string {
	switch s {
	case FrameDone:
		return "done"
	case FrameCancelled:
		return "cancelled"
	case FrameError:
		return "error"
	default:
		return "unknown"
	}
}

// CompletedFrame is one buffer handed back to the consumer.
type CompletedFrame struct {
	Buffer    *Buffer
	Sequence  uint32
	Timestamp time.Time
	Status    BufferStatus
}

// CompletionFunc receives buffers the receiver is done with. It is invoked
// from interrupt context and must not block; hand the frame to a channel or
// ring and return.
type CompletionFunc func(CompletedFrame)

// Config wires a Receiver to its hardware and collaborators. All fields
// except Clock are required.
type Config struct {
	// Regs is the peripheral's register window.
	Regs RegisterBlock
	// ClockGate is the lane clock gating register.
	ClockGate RegisterBlock
	// Clock is the transport clock, managed across start/stop. Optional.
	Clock Clock
	// Source is the upstream sensor.
	Source Source

	// Bus selects the transport mode.
	Bus BusType
	// ContinuousClock: packet-mode clock lane runs between frames.
	ContinuousClock bool
	// StrobeMode carries the strobe-transport data/clock mode bits.
	StrobeMode uint32
	// MaxLanes is the number of data lanes the hardware is wired for (1-4).
	MaxLanes int
	// VirtualChannel is the transport stream identifier to capture.
	VirtualChannel uint8

	// OnComplete receives every buffer handed back, exactly once per
	// submission. Called from interrupt context; must not block.
	OnComplete CompletionFunc
}

// ReceiverStats is a point-in-time snapshot of capture counters.
type ReceiverStats struct {
	// FramesCompleted is the count of buffers returned as FrameDone.
	FramesCompleted uint64
	// FramesDropped counts frame-end events that hit queue starvation and
	// overwrote the same buffer in place.
	FramesDropped uint64
	// BuffersQueued is the current queue depth, not counting the two
	// scheduler slots.
	BuffersQueued int
	// Streaming reports whether capture is active.
	Streaming bool
}
