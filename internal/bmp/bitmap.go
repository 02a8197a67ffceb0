// bmp package implements a 24-bit uncompressed bitmap codec
package bmp

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/anas-shakeel/bmpfilter/internal/utils"
	"github.com/pkg/errors"
)

type Pixel struct {
	R, G, B uint8
}

// Returns the Pixel in bytes as BGR (Blue, Green, Red)
func (p Pixel) BytesBGR() []byte {
	return []byte{p.B, p.G, p.R}
}

// PixelBuffer is a height x width grid of pixels, row 0 at the top of the image.
type PixelBuffer struct {
	width  int
	height int
	pixels []Pixel // Row-major
}

// Creates a black pixel buffer. Panics if a dimension is negative.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("bmp: negative pixel buffer size %dx%d", width, height))
	}
	return &PixelBuffer{
		width:  width,
		height: height,
		pixels: make([]Pixel, width*height),
	}
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

func (b *PixelBuffer) At(row, col int) Pixel {
	return b.pixels[b.offset(row, col)]
}

func (b *PixelBuffer) Set(row, col int, p Pixel) {
	b.pixels[b.offset(row, col)] = p
}

// Row returns the pixels of a row. The slice shares the buffer's storage.
func (b *PixelBuffer) Row(row int) []Pixel {
	if row < 0 || row >= b.height {
		panic(fmt.Sprintf("bmp: row %d out of range [0, %d)", row, b.height))
	}
	start := row * b.width
	return b.pixels[start : start+b.width : start+b.width]
}

func (b *PixelBuffer) offset(row, col int) int {
	if row < 0 || row >= b.height || col < 0 || col >= b.width {
		panic(fmt.Sprintf("bmp: pixel (%d, %d) out of range %dx%d", row, col, b.width, b.height))
	}
	return row*b.width + col
}

// Returns a deep copy of the pixel buffer
func (b *PixelBuffer) Copy() *PixelBuffer {
	dup := NewPixelBuffer(b.width, b.height)
	copy(dup.pixels, b.pixels)
	return dup
}

// ToImage returns an opaque RGBA copy of the buffer
func (b *PixelBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for row := 0; row < b.height; row++ {
		for col, p := range b.Row(row) {
			img.SetRGBA(col, row, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
		}
	}
	return img
}

// Prints the buffer as colored blocks. Use for small images only
func (b *PixelBuffer) Fprint(w io.Writer) error {
	for row := 0; row < b.height; row++ {
		for _, p := range b.Row(row) {
			if _, err := io.WriteString(w, utils.ColoredBlock("  ", int(p.R), int(p.G), int(p.B))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a 24 bit uncompressed bitmap from r.
//
// Pixel rows are read straight after the 54 byte header, bottom-up, each
// followed by Padding(width) bytes. The signature, bit depth and compression
// are not checked; use Header.Validate for that. Dimensions are checked
// against MaxPixels before anything is allocated.
func Decode(r io.Reader) (*Header, *PixelBuffer, error) {
	br := bufio.NewReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, nil, err
	}

	width := int(h.Width)
	height := int(h.Height)
	if width < 0 || height < 0 || width > MaxPixels || height > MaxPixels ||
		int64(width)*int64(height) > MaxPixels {
		return nil, nil, errors.Wrapf(ErrInvalidDimensions, "%dx%d", width, height)
	}

	buf := NewPixelBuffer(width, height)
	rowBytes := make([]byte, Stride(width))

	// File rows are BottomUp: last buffer row first
	for row := height - 1; row >= 0; row-- {
		if _, err := io.ReadFull(br, rowBytes); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, nil, errors.Wrapf(err, "reading pixel row %d", row)
		}

		pixels := buf.Row(row)
		for col := range pixels {
			bgr := rowBytes[col*bytesPerPixel:]
			pixels[col] = Pixel{B: bgr[0], G: bgr[1], R: bgr[2]}
		}
	}

	return h, buf, nil
}

// Encode writes the header and the pixel buffer to w.
// The buffer must have the width and height recorded in the header.
func Encode(w io.Writer, h *Header, buf *PixelBuffer) error {
	if int(h.Width) != buf.width || int(h.Height) != buf.height {
		return errors.Wrapf(ErrDimensionMismatch, "header %dx%d, pixels %dx%d",
			h.Width, h.Height, buf.width, buf.height)
	}

	// Create a buffer (to reduce syscalls)
	bw := bufio.NewWriter(w)

	if err := h.Write(bw); err != nil {
		return err
	}

	paddingBytes := make([]byte, Padding(buf.width))

	// Write the pixels (BottomUp: last row first)
	for row := buf.height - 1; row >= 0; row-- {
		for _, p := range buf.Row(row) {
			if _, err := bw.Write(p.BytesBGR()); err != nil {
				return errors.Wrapf(err, "writing pixel row %d", row)
			}
		}
		if _, err := bw.Write(paddingBytes); err != nil {
			return errors.Wrapf(err, "writing padding of row %d", row)
		}
	}

	return errors.Wrap(bw.Flush(), "flushing bitmap")
}
