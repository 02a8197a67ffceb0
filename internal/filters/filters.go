// Filters perform color manipulation and per-pixel operations
package filters

import (
	"github.com/anas-shakeel/bmpfilter/internal/bmp"
	"github.com/anas-shakeel/bmpfilter/internal/utils"
)

const (
	black     = 0
	white     = 255
	threshold = 128 // Averages above this turn white
)

// Converts a bitmap to pure black and white in-place
func Threshold(b *bmp.PixelBuffer) {
	for row := 0; row < b.Height(); row++ {
		pixels := b.Row(row)
		for col, p := range pixels {
			var v uint8 = black
			if average(p) > threshold {
				v = white
			}
			pixels[col] = bmp.Pixel{R: v, G: v, B: v}
		}
	}
}

// Converts a bitmap to grayscale in-place (flat, unweighted average)
func Grayscale(b *bmp.PixelBuffer) {
	for row := 0; row < b.Height(); row++ {
		pixels := b.Row(row)
		for col, p := range pixels {
			avg := uint8(average(p))
			pixels[col] = bmp.Pixel{R: avg, G: avg, B: avg}
		}
	}
}

func average(p bmp.Pixel) int {
	return utils.Average(int(p.R), int(p.G), int(p.B))
}
