// Adjusts image dimensions, orientation, or structure.
package adjustments

import (
	"github.com/anas-shakeel/bmpfilter/internal/bmp"
)

// ScaleDown halves both dimensions (rounding up) with a 2x2 box filter.
//
// Blocks are anchored at the bottom-left pixel: source rows are walked from
// the bottom up and columns from left to right, both in steps of two. A block
// sums itself plus the pixels above, above-right and right of it when they
// exist, and always divides by 4, so blocks on the top row or right column of
// an odd sized image come out darker. The source buffer is left untouched.
func ScaleDown(b *bmp.PixelBuffer) *bmp.PixelBuffer {
	height, width := b.Height(), b.Width()
	newHeight := (height + 1) / 2
	newWidth := (width + 1) / 2

	scaled := bmp.NewPixelBuffer(newWidth, newHeight)

	newRow := newHeight - 1
	for row := height - 1; row >= 0; row -= 2 {
		newCol := 0
		for col := 0; col < width; col += 2 {
			canMoveUp := row != 0
			canMoveRight := col != width-1

			var sum [3]int
			add := func(p bmp.Pixel) {
				sum[0] += int(p.R)
				sum[1] += int(p.G)
				sum[2] += int(p.B)
			}

			add(b.At(row, col))
			if canMoveUp {
				add(b.At(row-1, col))
			}
			if canMoveUp && canMoveRight {
				add(b.At(row-1, col+1))
			}
			if canMoveRight {
				add(b.At(row, col+1))
			}

			scaled.Set(newRow, newCol, bmp.Pixel{
				R: uint8(sum[0] / 4),
				G: uint8(sum[1] / 4),
				B: uint8(sum[2] / 4),
			})
			newCol++
		}
		newRow--
	}

	return scaled
}
