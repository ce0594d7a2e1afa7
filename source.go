package camrx

import "iter"

// MediaFormat is the frame format on the transport bus between the source
// and the receiver: dimensions plus the wire-level transport code.
type MediaFormat struct {
	Width  uint32
	Height uint32
	Code   MediaBusCode
}

// Source abstracts the upstream sensor. Implementations are typically thin
// shims over a sensor driver; the receiver core only ever talks to the
// source through this interface.
type Source interface {
	// ActiveFormat returns the format the source is currently configured for.
	ActiveFormat() (MediaFormat, error)

	// SetFormat asks the source to switch to the given format and returns
	// the format actually adopted, which may differ from the request. The
	// caller must re-resolve a differing result against the registry.
	SetFormat(MediaFormat) (MediaFormat, error)

	// TransportCodes yields the transport codes the source can produce, in
	// the source's preference order. The sequence is finite and restartable;
	// the receiver additionally bounds its own iteration to guard against a
	// misbehaving source that never stops yielding.
	TransportCodes() iter.Seq[MediaBusCode]

	// Lanes reports the source's negotiated data lane count. ok is false if
	// the source does not advertise lane configuration, in which case the
	// receiver runs with all wired lanes. A count of zero also means "use
	// the maximum".
	Lanes() (count int, ok bool)

	// SetStreaming starts or stops the source's output.
	SetStreaming(on bool) error
}

// Clock controls the transport clock feeding the receiver. Optional; a nil
// Clock in the receiver Config skips clock management.
type Clock interface {
	SetRate(hz uint64) error
	Enable() error
	Disable()
}

// maxEnumCodes bounds every walk of Source.TransportCodes, so a source that
// never terminates its sequence cannot wedge negotiation.
const maxEnumCodes = 128
