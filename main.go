// bmpfilter applies a threshold, grayscale or scale-down filter to a 24-bit bitmap.
//
// Usage:
//
//	bmpfilter [-strict] [-print] [-v] <file.bmp> <T|G|S>
//
// The result is written next to the input as <name>_Threshold.bmp,
// <name>_Grayscale.bmp or <name>_Scaled.bmp.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/anas-shakeel/bmpfilter/internal/adjustments"
	"github.com/anas-shakeel/bmpfilter/internal/bmp"
	"github.com/anas-shakeel/bmpfilter/internal/filters"
	"github.com/pkg/errors"
)

// Exit statuses
const (
	exitOK = iota
	exitUsage
	exitOpen
	exitCommand
	exitFileType
	exitFailure
)

const usage = "Please enter a filename and command.\nT - Threshold filter\nG - Grayscale filter\nS - Scale down the image\n"

// Suffixes appended to the input name (minus its extension) per command
var suffixes = map[string]string{
	"T": "_Threshold.bmp",
	"G": "_Grayscale.bmp",
	"S": "_Scaled.bmp",
}

type options struct {
	input   string
	command string
	strict  bool // Validate the header after decoding
	print   bool // Print the result in the terminal
	verbose bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("bmpfilter: ")

	os.Exit(run(os.Args[1:], os.Stdout))
}

// Runs the tool and returns the process exit status
func run(args []string, stdout io.Writer) int {
	opts, code := parseArgs(args, stdout)
	if code != exitOK {
		return code
	}

	output, err := process(opts, stdout)
	if err != nil {
		log.Printf("%s: %v", opts.input, err)
		return exitFailure
	}

	if opts.verbose {
		log.Printf("wrote %s", output)
	}
	return exitOK
}

// Parses and validates the command line. Problems are reported on stdout.
func parseArgs(args []string, stdout io.Writer) (*options, int) {
	opts := &options{}

	fs := flag.NewFlagSet("bmpfilter", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.BoolVar(&opts.strict, "strict", false, "reject files that are not 24-bit uncompressed bitmaps")
	fs.BoolVar(&opts.print, "print", false, "print the resulting image in the terminal")
	fs.BoolVar(&opts.verbose, "v", false, "log bitmap metadata")
	if err := fs.Parse(args); err != nil {
		return nil, exitUsage
	}

	if fs.NArg() < 2 {
		fmt.Fprint(stdout, usage)
		return nil, exitUsage
	}
	opts.input = fs.Arg(0)
	opts.command = fs.Arg(1)

	file, err := os.Open(opts.input)
	if err != nil {
		fmt.Fprintf(stdout, "Failed to open %s\n", opts.input)
		return nil, exitOpen
	}
	file.Close()

	if _, ok := suffixes[opts.command]; !ok {
		fmt.Fprintln(stdout, "Please enter T, G, or S as a command")
		return nil, exitCommand
	}

	if !hasBitmapExtension(opts.input) {
		fmt.Fprintln(stdout, "File must be of type .bmp")
		return nil, exitFileType
	}

	return opts, exitOK
}

// Reports whether the extension from the last "." is exactly ".bmp" or ".BMP"
func hasBitmapExtension(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return false
	}
	ext := filename[dot:]
	return ext == ".bmp" || ext == ".BMP"
}

// Returns the output filename for a validated input and command
func outputName(input, command string) string {
	return input[:len(input)-4] + suffixes[command]
}

// Decodes the input, applies the command and writes the output file.
func process(opts *options, stdout io.Writer) (string, error) {
	header, pixels, err := readBitmap(opts.input)
	if err != nil {
		return "", err
	}

	if opts.strict {
		if err := header.Validate(); err != nil {
			return "", err
		}
	}
	if opts.verbose {
		logMetadata("input", header)
	}

	switch opts.command {
	case "T":
		filters.Threshold(pixels)
	case "G":
		filters.Grayscale(pixels)
	case "S":
		pixels = adjustments.ScaleDown(pixels)
		header.Resize(pixels.Width(), pixels.Height())
	}

	if opts.verbose {
		logMetadata("output", header)
	}
	if opts.print {
		if err := pixels.Fprint(stdout); err != nil {
			return "", errors.Wrap(err, "printing bitmap")
		}
	}

	output := outputName(opts.input, opts.command)
	if err := saveBitmap(output, header, pixels); err != nil {
		return "", err
	}
	return output, nil
}

// Reads a bitmap file
func readBitmap(filename string) (*bmp.Header, *bmp.PixelBuffer, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening input")
	}
	defer file.Close()

	header, pixels, err := bmp.Decode(file)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decoding bitmap")
	}
	return header, pixels, nil
}

// Saves the bitmap onto local disk
func saveBitmap(filename string, header *bmp.Header, pixels *bmp.PixelBuffer) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}

	if err := bmp.Encode(file, header, pixels); err != nil {
		file.Close()
		return errors.Wrapf(err, "encoding %s", filename)
	}
	return errors.Wrapf(file.Close(), "closing %s", filename)
}

// Logs the bitmap metadata (in human-readable format)
func logMetadata(label string, h *bmp.Header) {
	log.Printf("%s: %dx%d px, %d bits, compression %d, file size %d bytes, pixel offset %d, padding %d bytes",
		label, h.Width, h.Height, h.BitsPerPixel, h.CompressionMethod,
		h.FileSize, h.PixelDataOffset, bmp.Padding(int(h.Width)))
}
