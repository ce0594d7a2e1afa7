package camrx

import "errors"

// Error taxonomy for the capture core. Lifecycle and negotiation calls wrap
// these with context; match with errors.Is.
var (
	// ErrFormatUnsupported means no registry entry matches the requested
	// pixel format. Callers fall back to the first mutually supported format.
	ErrFormatUnsupported = errors.New("camrx: pixel format not supported")

	// ErrUnderrun means stream start was requested with an empty buffer queue.
	ErrUnderrun = errors.New("camrx: no capture buffers queued")

	// ErrLaneMismatch means the source demands more data lanes than the
	// hardware instance is wired for. Fatal to start; not retried.
	ErrLaneMismatch = errors.New("camrx: source requires more data lanes than available")

	// ErrBusy means a format or session mutation was attempted while
	// streaming. The mutation is rejected, never queued.
	ErrBusy = errors.New("camrx: stream is active")

	// ErrHardwareTimeout means a source call failed during start; the
	// lifecycle rolls back fully before returning it.
	ErrHardwareTimeout = errors.New("camrx: source call failed")

	// ErrSourceProtocol means the source insists on a format the registry
	// cannot resolve at all. Capture may still proceed best-effort.
	ErrSourceProtocol = errors.New("camrx: source format cannot be resolved")

	// ErrBufferTooSmall means a submitted buffer cannot hold one frame of
	// the negotiated layout.
	ErrBufferTooSmall = errors.New("camrx: buffer smaller than negotiated frame size")
)
