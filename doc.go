// Package camrx implements a camera receiver core: it negotiates a capture
// format with an attached image source, computes the memory layout frames
// are written with, programs the receiver hardware through a register block
// and schedules consumer buffers across frames using a double-buffered
// write engine.
//
// The consumer wires a Receiver to a Source, a pair of register blocks and
// a completion callback, negotiates a format, submits buffers and starts
// the stream. Filled frames come back through the callback with a sequence
// number and a frame-start timestamp; gaps in the sequence mean frames were
// dropped because no buffer was available.
//
// HandleInterrupt is the scheduler's entry point and is designed to run in
// interrupt context: it never blocks and takes a single short-lived lock.
// Everything else is ordinary goroutine-safe API.
package camrx
