package camrx

import "testing"

func TestComputeLayout(t *testing.T) {
	yuyv := findByCode(BusCodeYUYV8_2X8)
	bggr8 := findByCode(BusCodeSBGGR8)
	bggr10 := findByCode(BusCodeSBGGR10)

	tests := []struct {
		name   string
		width  uint32
		height uint32
		f      *FormatDescriptor
		pix    PixelFormat
		stride uint32
		want   FrameLayout
	}{
		{
			name:  "yuyv 640x480",
			width: 640, height: 480, f: yuyv, pix: PixYUYV,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 1280, SizeImage: 1280 * 480},
		},
		{
			name:  "odd width rounds down to even",
			width: 641, height: 480, f: yuyv, pix: PixYUYV,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 1280, SizeImage: 1280 * 480},
		},
		{
			name:  "8-bit bayer stride aligns up to 16",
			width: 1284, height: 720, f: bggr8, pix: PixSBGGR8,
			want: FrameLayout{Width: 1284, Height: 720, BytesPerLine: 1296, SizeImage: 1296 * 720},
		},
		{
			name:  "10-bit packed",
			width: 640, height: 480, f: bggr10, pix: PixSBGGR10P,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 800, SizeImage: 800 * 480},
		},
		{
			name:  "10-bit repacked widens to 16 bits per sample",
			width: 640, height: 480, f: bggr10, pix: PixSBGGR10,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 1280, SizeImage: 1280 * 480},
		},
		{
			name:  "requested stride above minimum is honored",
			width: 640, height: 480, f: yuyv, pix: PixYUYV, stride: 2048,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 2048, SizeImage: 2048 * 480},
		},
		{
			name:  "requested stride gets aligned",
			width: 640, height: 480, f: yuyv, pix: PixYUYV, stride: 1300,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 1312, SizeImage: 1312 * 480},
		},
		{
			name:  "requested stride below minimum is ignored",
			width: 640, height: 480, f: yuyv, pix: PixYUYV, stride: 64,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 1280, SizeImage: 1280 * 480},
		},
		{
			name:  "requested stride past register width is ignored",
			width: 640, height: 480, f: yuyv, pix: PixYUYV, stride: 1 << 16,
			want: FrameLayout{Width: 640, Height: 480, BytesPerLine: 1280, SizeImage: 1280 * 480},
		},
		{
			name:  "tiny dimensions clamp to minimum",
			width: 2, height: 3, f: yuyv, pix: PixYUYV,
			want: FrameLayout{Width: 16, Height: 16, BytesPerLine: 32, SizeImage: 32 * 16},
		},
		{
			name:  "oversized width clamps to maximum",
			width: MaxWidth + 100, height: 480, f: bggr8, pix: PixSBGGR8,
			want: FrameLayout{Width: MaxWidth, Height: 480, BytesPerLine: 16384, SizeImage: 16384 * 480},
		},
		{
			name:  "unaligned height pads the image size only",
			width: 640, height: 100, f: yuyv, pix: PixYUYV,
			want: FrameLayout{Width: 640, Height: 100, BytesPerLine: 1280, SizeImage: 1280 * 112},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeLayout(tt.width, tt.height, tt.f, tt.pix, tt.stride)
			if got != tt.want {
				t.Errorf("computeLayout() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeLayoutStrideAlwaysLegal(t *testing.T) {
	// Every registered format, native and repacked storage, across the
	// whole width range: the stride must stay aligned, within the register
	// limit, and large enough for the row.
	for i := range formats {
		f := &formats[i]
		for _, pix := range []PixelFormat{f.PixelFormat, f.Repacked} {
			if pix == 0 {
				continue
			}
			for width := uint32(0); width <= MaxWidth+50; width += 97 {
				got := computeLayout(width, 480, f, pix, 0)
				if got.BytesPerLine%strideAlign != 0 {
					t.Fatalf("%s width %d: stride %d not a multiple of %d",
						pix, width, got.BytesPerLine, strideAlign)
				}
				if got.BytesPerLine > maxStride {
					t.Fatalf("%s width %d: stride %d exceeds register limit %d",
						pix, width, got.BytesPerLine, maxStride)
				}
				if got.BytesPerLine < minBytesPerLine(got.Width, f, pix) {
					t.Fatalf("%s width %d: stride %d below row minimum",
						pix, width, got.BytesPerLine)
				}
				if got.Width < MinWidth || got.Width > MaxWidth || got.Width%2 != 0 {
					t.Fatalf("%s width %d: adjusted width %d out of range",
						pix, width, got.Width)
				}
			}
		}
	}
}
