package camrx

import (
	"fmt"
	"log/slog"
)

// FrameRequest is what the consumer asks for. Zero fields mean "receiver's
// choice": a zero PixelFormat takes the registry default, a zero
// BytesPerLine takes the minimum legal stride.
type FrameRequest struct {
	Width        uint32
	Height       uint32
	PixelFormat  PixelFormat
	BytesPerLine uint32
}

// NegotiateFormat agrees a capture format with the source and locks it in
// as the session format. The source always wins on transport code and
// dimensions; the request is a preference, the return value is the truth.
//
// Never fails on an unsupported request: unknown pixel formats fall back to
// the registry default and a transport code counter-proposed by the source
// is adopted when the registry knows it. It fails with ErrSourceProtocol
// only when no mutually supported code exists, and with ErrBusy while
// streaming.
//
// Idempotent: renegotiating an already-active format is a no-op beyond the
// source round-trip.
func (r *Receiver) NegotiateFormat(req FrameRequest) (FrameLayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.streaming.Load() {
		return FrameLayout{}, ErrBusy
	}

	pix := req.PixelFormat
	var f *FormatDescriptor
	if pix != 0 {
		f = findByPixelFormat(pix, r.source)
	}
	if f == nil {
		f = &formats[0]
		pix = f.PixelFormat
		if req.PixelFormat != 0 {
			slog.Debug("camrx: unsupported pixel format, using default",
				"requested", req.PixelFormat.String(), "default", pix.String())
		}
	}

	got, err := r.source.SetFormat(MediaFormat{
		Width:  req.Width,
		Height: req.Height,
		Code:   f.Code,
	})
	if err != nil {
		return FrameLayout{}, fmt.Errorf("camrx: source set-format: %w", err)
	}

	// The source may counter with a different transport code. Adopt it if
	// the registry knows it; otherwise walk the source's own preference
	// list for anything mutual.
	if got.Code != f.Code {
		if alt := findByCode(got.Code); alt != nil {
			f = alt
			pix = storagePixel(f)
		} else {
			f = firstSupportedFormat(r.source)
			if f == nil {
				return FrameLayout{}, fmt.Errorf("%w: no mutual transport code (source counter %#04x)",
					ErrSourceProtocol, uint32(got.Code))
			}
			pix = storagePixel(f)
			got, err = r.source.SetFormat(MediaFormat{
				Width:  req.Width,
				Height: req.Height,
				Code:   f.Code,
			})
			if err != nil {
				return FrameLayout{}, fmt.Errorf("camrx: source set-format: %w", err)
			}
			if got.Code != f.Code {
				return FrameLayout{}, fmt.Errorf("%w: source will not hold code %#04x (got %#04x)",
					ErrSourceProtocol, uint32(f.Code), uint32(got.Code))
			}
		}
	}

	layout := computeLayout(got.Width, got.Height, f, pix, req.BytesPerLine)

	r.fmt = f
	r.pix = pix
	r.layout = layout
	r.mediaFmt = got

	slog.Info("camrx: format negotiated",
		"format", pix.String(),
		"transport_code", fmt.Sprintf("%#04x", uint32(f.Code)),
		"size", fmt.Sprintf("%dx%d", layout.Width, layout.Height),
		"stride", layout.BytesPerLine,
		"frame_size", layout.SizeImage,
	)
	return layout, nil
}

// resetFormat derives the session format from the source's current
// configuration. Used once at construction.
func (r *Receiver) resetFormat() error {
	mf, err := r.source.ActiveFormat()
	if err != nil {
		return fmt.Errorf("source active format: %w", err)
	}

	f := findByCode(mf.Code)
	if f == nil {
		f = firstSupportedFormat(r.source)
		if f == nil {
			return ErrFormatUnsupported
		}
		mf.Code = f.Code
	}

	pix := storagePixel(f)
	r.fmt = f
	r.pix = pix
	r.mediaFmt = mf
	r.layout = computeLayout(mf.Width, mf.Height, f, pix, 0)
	return nil
}

// storagePixel picks a descriptor's default storage layout. A few entries
// exist only in repacked form.
func storagePixel(f *FormatDescriptor) PixelFormat {
	if f.PixelFormat != 0 {
		return f.PixelFormat
	}
	return f.Repacked
}

// ActiveFormat returns the session's storage format and transport format.
func (r *Receiver) ActiveFormat() (PixelFormat, MediaFormat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pix, r.mediaFmt
}

// ActiveLayout returns the negotiated memory layout.
func (r *Receiver) ActiveLayout() FrameLayout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// SupportedFormats returns the registry entries usable with the connected
// source, in registry order. Each descriptor carries both its native and,
// when defined, repacked storage formats. Purely informational; negotiation
// does its own resolution.
func (r *Receiver) SupportedFormats() []FormatDescriptor {
	var out []FormatDescriptor
	for i := range formats {
		if sourceProduces(r.source, formats[i].Code) {
			out = append(out, formats[i])
		}
	}
	return out
}
