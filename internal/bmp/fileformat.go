// BMP-specific structs and types
package bmp

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	FileHeaderLen = 14                            // Bitmap file header (signature .. pixel offset)
	InfoHeaderLen = 40                            // BITMAPINFOHEADER
	HeaderLen     = FileHeaderLen + InfoHeaderLen // Bytes before the pixel array
	BitsPerPixel  = 24
	MaxPixels     = 1 << 26 // Largest width*height Decode will allocate (192 MiB of pixels)
	bytesPerPixel = BitsPerPixel / 8
)

var (
	ErrInvalidMagic      = errors.New("invalid file: provided file is not a bitmap")
	ErrUnsupported       = errors.New("unsupported BMP format: only 24-bit uncompressed is supported")
	ErrInvalidDimensions = errors.New("invalid dimensions: width and height must be non-negative and at most MaxPixels in area")
	ErrDimensionMismatch = errors.New("pixel buffer dimensions do not match header")
)

// Header holds the bitmap file header followed by the DIB [device-independent bitmap] header.
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapinfoheader
type Header struct {
	Magic                [2]byte // The file type: "BM"
	FileSize             uint32  // The size, in bytes, of the bitmap file.
	Reserved             uint32  // Reserved; must be zero.
	PixelDataOffset      uint32  // Offset (in bytes) to the pixel array
	HeaderSize           uint32  // The number of bytes required by the DIB header.
	Width                int32   // The width of the bitmap, in pixels.
	Height               int32   // The height of the bitmap, in pixels (positive = bottom-up)
	ColorPlanes          uint16  // The number of planes for the target device.
	BitsPerPixel         uint16  // The number of bits-per-pixel.
	CompressionMethod    uint32  // The type of compression
	ImageSize            uint32  // The size of the pixel array (in bytes), may be 0 for BI_RGB.
	HorizontalResolution int32   // Pixels-per-meter
	VerticalResolution   int32   // Pixels-per-meter
	PaletteColorCount    uint32  // Number of color indexes actually used by the bitmap.
	ImportantColorCount  uint32  // Number of color indexes required for displaying the bitmap.
}

// Padding returns the number of filler bytes that follow each row of a 24-bit bitmap.
//
// For 3 bytes per pixel, width%4 is exactly the distance from 3*width to the
// next multiple of 4.
func Padding(width int) int {
	return width % 4
}

// Stride returns the bytes occupied by one row on disk (incl. padding)
func Stride(width int) int {
	return width*bytesPerPixel + Padding(width)
}

// NewHeader creates the header of a 24 bit uncompressed bitmap
func NewHeader(width, height int) *Header {
	h := &Header{
		Magic:           [2]byte{'B', 'M'},
		PixelDataOffset: HeaderLen,
		HeaderSize:      InfoHeaderLen,
		ColorPlanes:     1,
		BitsPerPixel:    BitsPerPixel,
	}
	h.Resize(width, height)
	h.ImageSize = uint32(Stride(width) * height)
	return h
}

// Resize updates the header fields that depend on the pixel dimensions.
// ImageSize is left at zero when the source file left it unset.
func (h *Header) Resize(width, height int) {
	sizeImage := uint32(Stride(width) * height)

	h.Width = int32(width)
	h.Height = int32(height)
	h.FileSize = h.PixelDataOffset + sizeImage
	if h.ImageSize != 0 {
		h.ImageSize = sizeImage
	}
}

// Validate reports whether the header describes a bitmap this package can
// decode faithfully. Decode does not call it.
func (h *Header) Validate() error {
	if h.Magic != [2]byte{'B', 'M'} {
		return errors.Wrapf(ErrInvalidMagic, "signature %q", h.Magic[:])
	}
	if h.BitsPerPixel != BitsPerPixel || h.CompressionMethod != 0 {
		return errors.Wrapf(ErrUnsupported, "%d bits per pixel, compression %d", h.BitsPerPixel, h.CompressionMethod)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d", h.Width, h.Height)
	}
	return nil
}

// fields lists the header fields in file order
func (h *Header) fields() []any {
	return []any{
		&h.Magic,
		&h.FileSize,
		&h.Reserved,
		&h.PixelDataOffset,
		&h.HeaderSize,
		&h.Width,
		&h.Height,
		&h.ColorPlanes,
		&h.BitsPerPixel,
		&h.CompressionMethod,
		&h.ImageSize,
		&h.HorizontalResolution,
		&h.VerticalResolution,
		&h.PaletteColorCount,
		&h.ImportantColorCount,
	}
}

// ReadHeader reads the file header and the DIB header, one field at a time.
func ReadHeader(r io.Reader) (*Header, error) {
	var h Header
	for _, field := range h.fields() {
		if err := binary.Read(r, binary.LittleEndian, field); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrap(err, "reading bitmap header")
		}
	}
	return &h, nil
}

// Write writes the header fields in the same order ReadHeader reads them.
func (h *Header) Write(w io.Writer) error {
	for _, field := range h.fields() {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return errors.Wrap(err, "writing bitmap header")
		}
	}
	return nil
}
