package camrx

// PixelFormat is a four-character code identifying how pixels are stored in
// memory once captured.
type PixelFormat uint32

func fourcc(a, b, c, d byte) PixelFormat {
	return PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// String renders the four-character code, e.g. "YUYV".
func (p PixelFormat) String() string {
	if p == 0 {
		return "none"
	}
	return string([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
}

// MediaBusCode identifies a pixel encoding as transmitted on the transport
// bus. Not the same space as PixelFormat: one bus code can map to several
// storage layouts and vice versa.
type MediaBusCode uint32

// Output pixel formats the receiver can write.
var (
	// YUV interleaved.
	PixYUYV = fourcc('Y', 'U', 'Y', 'V')
	PixUYVY = fourcc('U', 'Y', 'V', 'Y')
	PixYVYU = fourcc('Y', 'V', 'Y', 'U')
	PixVYUY = fourcc('V', 'Y', 'U', 'Y')

	// RGB.
	PixRGB565  = fourcc('R', 'G', 'B', 'P')
	PixRGB565X = fourcc('R', 'G', 'B', 'R')
	PixRGB555  = fourcc('R', 'G', 'B', 'O')
	PixRGB555X = fourcc('R', 'G', 'B', 'Q')
	PixRGB24   = fourcc('R', 'G', 'B', '3')
	PixBGR24   = fourcc('B', 'G', 'R', '3')
	PixRGB32   = fourcc('R', 'G', 'B', '4')

	// Bayer, 8-bit.
	PixSBGGR8 = fourcc('B', 'A', '8', '1')
	PixSGBRG8 = fourcc('G', 'B', 'R', 'G')
	PixSGRBG8 = fourcc('G', 'R', 'B', 'G')
	PixSRGGB8 = fourcc('R', 'G', 'G', 'B')

	// Bayer, 10-bit packed and repacked.
	PixSBGGR10P = fourcc('p', 'B', 'A', 'A')
	PixSGBRG10P = fourcc('p', 'G', 'A', 'A')
	PixSGRBG10P = fourcc('p', 'g', 'A', 'A')
	PixSRGGB10P = fourcc('p', 'R', 'A', 'A')
	PixSBGGR10  = fourcc('B', 'G', '1', '0')
	PixSGBRG10  = fourcc('G', 'B', '1', '0')
	PixSGRBG10  = fourcc('B', 'A', '1', '0')
	PixSRGGB10  = fourcc('R', 'G', '1', '0')

	// Bayer, 12-bit packed and repacked.
	PixSBGGR12P = fourcc('p', 'B', 'C', 'C')
	PixSGBRG12P = fourcc('p', 'G', 'C', 'C')
	PixSGRBG12P = fourcc('p', 'g', 'C', 'C')
	PixSRGGB12P = fourcc('p', 'R', 'C', 'C')
	PixSBGGR12  = fourcc('B', 'G', '1', '2')
	PixSGBRG12  = fourcc('G', 'B', '1', '2')
	PixSGRBG12  = fourcc('B', 'A', '1', '2')
	PixSRGGB12  = fourcc('R', 'G', '1', '2')

	// Bayer, 14-bit packed. No repacked variant defined.
	PixSBGGR14P = fourcc('p', 'B', 'E', 'E')
	PixSGBRG14P = fourcc('p', 'G', 'E', 'E')
	PixSGRBG14P = fourcc('p', 'g', 'E', 'E')
	PixSRGGB14P = fourcc('p', 'R', 'E', 'E')

	// Greyscale.
	PixGrey = fourcc('G', 'R', 'E', 'Y')
	PixY10P = fourcc('Y', '1', '0', 'P')
	PixY10  = fourcc('Y', '1', '0', ' ')
	PixY12  = fourcc('Y', '1', '2', ' ')
)

// Transport bus codes the registry knows about.
const (
	BusCodeYUYV8_2X8  MediaBusCode = 0x2008
	BusCodeUYVY8_2X8  MediaBusCode = 0x2006
	BusCodeYVYU8_2X8  MediaBusCode = 0x2009
	BusCodeVYUY8_2X8  MediaBusCode = 0x2007
	BusCodeYUYV8_1X16 MediaBusCode = 0x2011
	BusCodeUYVY8_1X16 MediaBusCode = 0x200f
	BusCodeYVYU8_1X16 MediaBusCode = 0x2012
	BusCodeVYUY8_1X16 MediaBusCode = 0x2010

	BusCodeRGB565LE MediaBusCode = 0x1008
	BusCodeRGB565BE MediaBusCode = 0x1007
	BusCodeRGB555LE MediaBusCode = 0x1004
	BusCodeRGB555BE MediaBusCode = 0x1003
	BusCodeRGB888   MediaBusCode = 0x100a
	BusCodeBGR888   MediaBusCode = 0x1013
	BusCodeARGB8888 MediaBusCode = 0x100d

	BusCodeSBGGR8  MediaBusCode = 0x3001
	BusCodeSGBRG8  MediaBusCode = 0x3013
	BusCodeSGRBG8  MediaBusCode = 0x3002
	BusCodeSRGGB8  MediaBusCode = 0x3014
	BusCodeSBGGR10 MediaBusCode = 0x3007
	BusCodeSGBRG10 MediaBusCode = 0x300e
	BusCodeSGRBG10 MediaBusCode = 0x300a
	BusCodeSRGGB10 MediaBusCode = 0x300f
	BusCodeSBGGR12 MediaBusCode = 0x3008
	BusCodeSGBRG12 MediaBusCode = 0x3010
	BusCodeSGRBG12 MediaBusCode = 0x3011
	BusCodeSRGGB12 MediaBusCode = 0x3012
	BusCodeSBGGR14 MediaBusCode = 0x3019
	BusCodeSGBRG14 MediaBusCode = 0x301a
	BusCodeSGRBG14 MediaBusCode = 0x301b
	BusCodeSRGGB14 MediaBusCode = 0x301c

	BusCodeY8  MediaBusCode = 0x2001
	BusCodeY10 MediaBusCode = 0x200a
	BusCodeY12 MediaBusCode = 0x2013
)

// FormatDescriptor maps one transport code to its storage formats.
//
// PixelFormat is the native storage layout; Repacked, when non-zero, is the
// alternate layout with samples widened to 16 bits. Ambiguous marks entries
// whose PixelFormat alone does not determine the transport code; resolving
// those requires asking the live source which codes it can actually produce.
type FormatDescriptor struct {
	PixelFormat PixelFormat
	Repacked    PixelFormat
	Code        MediaBusCode
	Depth       uint8 // bits per sample on the wire
	DataType    uint8 // transport data type identifier
	Ambiguous   bool
}

// RepackActive reports whether storing as pix requires widening samples.
func (f *FormatDescriptor) RepackActive(pix PixelFormat) bool {
	return f.Repacked != 0 && pix == f.Repacked
}

// formats is the registry: every (transport code, storage format) pairing
// the receiver supports. Order matters; negotiation fallbacks take the first
// match.
var formats = []FormatDescriptor{
	// YUV. The 2X8 and 1X16 bus variants carry the same storage formats,
	// so looking these up by pixel format is ambiguous.
	{PixelFormat: PixYUYV, Code: BusCodeYUYV8_2X8, Depth: 16, DataType: 0x1e, Ambiguous: true},
	{PixelFormat: PixUYVY, Code: BusCodeUYVY8_2X8, Depth: 16, DataType: 0x1e, Ambiguous: true},
	{PixelFormat: PixYVYU, Code: BusCodeYVYU8_2X8, Depth: 16, DataType: 0x1e, Ambiguous: true},
	{PixelFormat: PixVYUY, Code: BusCodeVYUY8_2X8, Depth: 16, DataType: 0x1e, Ambiguous: true},
	{PixelFormat: PixYUYV, Code: BusCodeYUYV8_1X16, Depth: 16, DataType: 0x1e},
	{PixelFormat: PixUYVY, Code: BusCodeUYVY8_1X16, Depth: 16, DataType: 0x1e},
	{PixelFormat: PixYVYU, Code: BusCodeYVYU8_1X16, Depth: 16, DataType: 0x1e},
	{PixelFormat: PixVYUY, Code: BusCodeVYUY8_1X16, Depth: 16, DataType: 0x1e},

	// RGB.
	{PixelFormat: PixRGB565, Code: BusCodeRGB565LE, Depth: 16, DataType: 0x22},
	{PixelFormat: PixRGB565X, Code: BusCodeRGB565BE, Depth: 16, DataType: 0x22},
	{PixelFormat: PixRGB555, Code: BusCodeRGB555LE, Depth: 16, DataType: 0x21},
	{PixelFormat: PixRGB555X, Code: BusCodeRGB555BE, Depth: 16, DataType: 0x21},
	{PixelFormat: PixRGB24, Code: BusCodeRGB888, Depth: 24, DataType: 0x24},
	{PixelFormat: PixBGR24, Code: BusCodeBGR888, Depth: 24, DataType: 0x24},
	{PixelFormat: PixRGB32, Code: BusCodeARGB8888, Depth: 32, DataType: 0x0},

	// Bayer.
	{PixelFormat: PixSBGGR8, Code: BusCodeSBGGR8, Depth: 8, DataType: 0x2a},
	{PixelFormat: PixSGBRG8, Code: BusCodeSGBRG8, Depth: 8, DataType: 0x2a},
	{PixelFormat: PixSGRBG8, Code: BusCodeSGRBG8, Depth: 8, DataType: 0x2a},
	{PixelFormat: PixSRGGB8, Code: BusCodeSRGGB8, Depth: 8, DataType: 0x2a},
	{PixelFormat: PixSBGGR10P, Repacked: PixSBGGR10, Code: BusCodeSBGGR10, Depth: 10, DataType: 0x2b},
	{PixelFormat: PixSGBRG10P, Repacked: PixSGBRG10, Code: BusCodeSGBRG10, Depth: 10, DataType: 0x2b},
	{PixelFormat: PixSGRBG10P, Repacked: PixSGRBG10, Code: BusCodeSGRBG10, Depth: 10, DataType: 0x2b},
	{PixelFormat: PixSRGGB10P, Repacked: PixSRGGB10, Code: BusCodeSRGGB10, Depth: 10, DataType: 0x2b},
	{PixelFormat: PixSBGGR12P, Repacked: PixSBGGR12, Code: BusCodeSBGGR12, Depth: 12, DataType: 0x2c},
	{PixelFormat: PixSGBRG12P, Repacked: PixSGBRG12, Code: BusCodeSGBRG12, Depth: 12, DataType: 0x2c},
	{PixelFormat: PixSGRBG12P, Repacked: PixSGRBG12, Code: BusCodeSGRBG12, Depth: 12, DataType: 0x2c},
	{PixelFormat: PixSRGGB12P, Repacked: PixSRGGB12, Code: BusCodeSRGGB12, Depth: 12, DataType: 0x2c},
	{PixelFormat: PixSBGGR14P, Code: BusCodeSBGGR14, Depth: 14, DataType: 0x2d},
	{PixelFormat: PixSGBRG14P, Code: BusCodeSGBRG14, Depth: 14, DataType: 0x2d},
	{PixelFormat: PixSGRBG14P, Code: BusCodeSGRBG14, Depth: 14, DataType: 0x2d},
	{PixelFormat: PixSRGGB14P, Code: BusCodeSRGGB14, Depth: 14, DataType: 0x2d},

	// Greyscale. Y12 has no packed storage format, only the repacked one.
	{PixelFormat: PixGrey, Code: BusCodeY8, Depth: 8, DataType: 0x2a},
	{PixelFormat: PixY10P, Repacked: PixY10, Code: BusCodeY10, Depth: 10, DataType: 0x2b},
	{Repacked: PixY12, Code: BusCodeY12, Depth: 12, DataType: 0x2c},
}

// findByCode returns the registry entry for a transport code, or nil.
func findByCode(code MediaBusCode) *FormatDescriptor {
	for i := range formats {
		if formats[i].Code == code {
			return &formats[i]
		}
	}
	return nil
}

// sourceProduces reports whether the source can emit the given transport
// code, checking at most maxEnumCodes entries of its capability sequence.
func sourceProduces(src Source, code MediaBusCode) bool {
	n := 0
	for c := range src.TransportCodes() {
		if c == code {
			return true
		}
		if n++; n >= maxEnumCodes {
			break
		}
	}
	return false
}

// findByPixelFormat returns the first registry entry whose native or
// repacked storage format matches pix. Ambiguous entries are accepted only
// when the source can actually produce their transport code.
func findByPixelFormat(pix PixelFormat, src Source) *FormatDescriptor {
	for i := range formats {
		f := &formats[i]
		if f.PixelFormat != pix && (f.Repacked == 0 || f.Repacked != pix) {
			continue
		}
		if f.Ambiguous && !sourceProduces(src, f.Code) {
			continue
		}
		return f
	}
	return nil
}

// firstSupportedFormat walks the source's transport codes in its preference
// order and returns the first one the registry also supports. Negotiation
// fallback when the source and the caller cannot agree.
func firstSupportedFormat(src Source) *FormatDescriptor {
	n := 0
	for code := range src.TransportCodes() {
		if f := findByCode(code); f != nil {
			return f
		}
		if n++; n >= maxEnumCodes {
			break
		}
	}
	return nil
}
