package camrx

// Memory layout rules for captured frames.
//
// The stride register is 16 bits wide and the value must be a multiple of
// 16, which also caps the widest image: the worst-case output depth is 32
// bits per pixel.
const (
	strideAlign = 16
	maxStride   = (1 << 16) - strideAlign

	MaxWidth  = maxStride / 4
	MaxHeight = MaxWidth
	MinWidth  = 16
	MinHeight = 16

	// The receiver itself needs no height padding, but downstream blocks
	// expect a multiple of 16 rows, and the padding is tiny next to the
	// image itself.
	heightAlign = 16
)

// FrameLayout is the memory layout of one captured frame. Derived from the
// active format and dimensions; recomputed whenever either changes.
type FrameLayout struct {
	Width        uint32
	Height       uint32
	BytesPerLine uint32
	SizeImage    uint32
}

func alignUp(v, a uint32) uint32 {
	return (v + a - 1) / a * a
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// minBytesPerLine is the smallest hardware-legal stride for a width stored
// as pix. Repacking always widens to 16 bits per sample.
func minBytesPerLine(width uint32, f *FormatDescriptor, pix PixelFormat) uint32 {
	if f.RepackActive(pix) {
		return alignUp(width*2, strideAlign)
	}
	return alignUp(width*uint32(f.Depth)/8, strideAlign)
}

// computeLayout derives a hardware-compatible layout for the requested
// dimensions. Width is clamped and rounded to an even count, height is
// clamped; a caller-requested stride is honored when it is legal and larger
// than the computed minimum, otherwise the minimum wins.
func computeLayout(width, height uint32, f *FormatDescriptor, pix PixelFormat, requestedStride uint32) FrameLayout {
	width = clamp(width, MinWidth, MaxWidth) &^ 1
	height = clamp(height, MinHeight, MaxHeight)

	min := minBytesPerLine(width, f, pix)

	stride := min
	if requestedStride > min && requestedStride <= maxStride {
		stride = alignUp(requestedStride, strideAlign)
	}

	return FrameLayout{
		Width:        width,
		Height:       height,
		BytesPerLine: stride,
		SizeImage:    alignUp(height, heightAlign) * stride,
	}
}
