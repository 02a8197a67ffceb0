package bmp

import (
	"bytes"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"
)

// Fills a buffer with a pattern that differs in every channel of every pixel
func gradient(width, height int) *PixelBuffer {
	b := NewPixelBuffer(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			b.Set(row, col, Pixel{
				R: uint8(row*31 + col*7),
				G: uint8(row*13 + col*53 + 1),
				B: uint8(row*97 + col*3 + 2),
			})
		}
	}
	return b
}

func encode(t *testing.T, b *PixelBuffer) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewHeader(b.Width(), b.Height()), b))
	return buf.Bytes()
}

func TestPixelBufferAccess(t *testing.T) {
	b := NewPixelBuffer(3, 2)
	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 2, b.Height())
	assert.Equal(t, Pixel{}, b.At(1, 2))

	b.Set(1, 2, Pixel{R: 1, G: 2, B: 3})
	assert.Equal(t, Pixel{R: 1, G: 2, B: 3}, b.At(1, 2))
	assert.Equal(t, Pixel{R: 1, G: 2, B: 3}, b.Row(1)[2])
	assert.Len(t, b.Row(0), 3)

	b.Row(0)[0] = Pixel{R: 9}
	assert.Equal(t, Pixel{R: 9}, b.At(0, 0), "rows share the buffer's storage")

	assert.Panics(t, func() { b.At(2, 0) })
	assert.Panics(t, func() { b.Set(0, 3, Pixel{}) })
	assert.Panics(t, func() { NewPixelBuffer(-1, 1) })
}

func TestPixelBufferCopy(t *testing.T) {
	b := gradient(4, 3)
	dup := b.Copy()
	assert.Equal(t, b, dup)

	dup.Set(0, 0, Pixel{R: 255, G: 255, B: 255})
	assert.NotEqual(t, b.At(0, 0), dup.At(0, 0))
}

func TestBytesBGR(t *testing.T) {
	assert.Equal(t, []byte{3, 2, 1}, Pixel{R: 1, G: 2, B: 3}.BytesBGR())
}

func TestRoundTrip(t *testing.T) {
	for width := 1; width <= 9; width++ {
		for height := 1; height <= 4; height++ {
			b := gradient(width, height)

			h, got, err := Decode(bytes.NewReader(encode(t, b)))
			require.NoError(t, err, "%dx%d", width, height)
			assert.Equal(t, b, got, "%dx%d", width, height)
			assert.Equal(t, NewHeader(width, height), h)
		}
	}
}

func TestEncodeLayout(t *testing.T) {
	// 5 px wide: 15 bytes of pixels + 1 padding byte per row
	b := gradient(5, 2)
	data := encode(t, b)

	require.Len(t, data, HeaderLen+2*(5*3+1))

	// First row on disk is the bottom row of the buffer, stored B, G, R
	bottom := b.At(1, 0)
	assert.Equal(t, []byte{bottom.B, bottom.G, bottom.R}, data[HeaderLen:HeaderLen+3])

	top := b.At(0, 4)
	assert.Equal(t, []byte{top.B, top.G, top.R}, data[HeaderLen+16+12:HeaderLen+16+15])

	// Padding is zero filled
	assert.Equal(t, byte(0), data[HeaderLen+15])
	assert.Equal(t, byte(0), data[HeaderLen+31])
}

func TestEncodedLength(t *testing.T) {
	for width := 1; width <= 12; width++ {
		data := encode(t, gradient(width, 3))
		assert.Len(t, data, HeaderLen+3*(3*width+width%4), "width %d", width)
		assert.Zero(t, (len(data)-HeaderLen)/3%4, "rows of width %d are 4-byte aligned", width)
	}
}

func TestEncodeDimensionMismatch(t *testing.T) {
	err := Encode(io.Discard, NewHeader(3, 3), NewPixelBuffer(3, 2))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeWriteError(t *testing.T) {
	err := Encode(failingWriter{}, NewHeader(2, 2), NewPixelBuffer(2, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDecodeTruncated(t *testing.T) {
	data := encode(t, gradient(3, 3))

	for _, n := range []int{10, HeaderLen, HeaderLen + 5, len(data) - 1} {
		_, _, err := Decode(bytes.NewReader(data[:n]))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "truncated at %d bytes", n)
	}
}

func TestDecodeNegativeDimensions(t *testing.T) {
	h := NewHeader(2, 2)
	h.Height = -2

	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))

	_, _, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestDecodeHugeDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int32
	}{
		{"max int32", 0x7fffffff, 0x7fffffff},
		{"wide and empty", 0x7fffffff, 0},
		{"tall and empty", 0, 0x7fffffff},
		{"area over limit", 1 << 14, 1 << 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader(1, 1)
			h.Width, h.Height = tt.width, tt.height

			var buf bytes.Buffer
			require.NoError(t, h.Write(&buf))

			var err error
			require.NotPanics(t, func() { _, _, err = Decode(&buf) })
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestDecodeWideHeaderIsTruncated(t *testing.T) {
	h := NewHeader(1, 1)
	h.Width, h.Height = 1<<20, 1

	var buf bytes.Buffer
	require.NoError(t, h.Write(&buf))

	_, _, err := Decode(&buf)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecodeDoesNotValidate(t *testing.T) {
	data := encode(t, gradient(2, 2))
	copy(data, "XY")
	data[28] = 8 // bits per pixel

	h, b, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, [2]byte{'X', 'Y'}, h.Magic)
	assert.Equal(t, uint16(8), h.BitsPerPixel)
	assert.Equal(t, gradient(2, 2), b)
	assert.Error(t, h.Validate())
}

func TestEncodeDecodesWithXImage(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 5, 6, 7, 13} {
		b := gradient(width, 3)

		img, err := xbmp.Decode(bytes.NewReader(encode(t, b)))
		require.NoError(t, err, "width %d", width)
		require.Equal(t, width, img.Bounds().Dx())
		require.Equal(t, 3, img.Bounds().Dy())

		for row := 0; row < 3; row++ {
			for col := 0; col < width; col++ {
				r, g, bl, _ := img.At(col, row).RGBA()
				p := b.At(row, col)
				assert.Equal(t, p, Pixel{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8)})
			}
		}
	}
}

func TestDecodeXImageOutput(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 5, 11} {
		b := gradient(width, 4)

		var buf bytes.Buffer
		require.NoError(t, xbmp.Encode(&buf, b.ToImage()))

		h, got, err := Decode(&buf)
		require.NoError(t, err, "width %d", width)
		require.NoError(t, h.Validate())
		assert.Equal(t, b, got, "width %d", width)
	}
}

func TestToImage(t *testing.T) {
	b := gradient(3, 2)
	img := b.ToImage()

	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	p := b.At(1, 2)
	assert.Equal(t, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}, img.RGBAAt(2, 1))
	assert.True(t, img.Opaque())
}

func TestFprint(t *testing.T) {
	b := NewPixelBuffer(2, 2)
	b.Set(0, 1, Pixel{R: 255, G: 10, B: 0})

	var out strings.Builder
	require.NoError(t, b.Fprint(&out))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "\033[48;2;0;0;0m  \033[0m\033[48;2;255;10;0m  \033[0m", lines[0])
}
