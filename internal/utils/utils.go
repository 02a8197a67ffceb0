package utils

import "fmt"

// Returns the floored average of values. Pixel channels are never negative, so
// integer division is the floor. Panics when called without arguments.
func Average(values ...int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total / len(values)
}

// Wraps block in a 24-bit ANSI background color escape, resetting after it.
// Used for terminal previews, one block per pixel.
func ColoredBlock(block string, red, green, blue int) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm%s\033[0m", red, green, blue, block)
}
