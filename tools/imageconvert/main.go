// Command imageconvert turns a PNG or JPEG into the splash image format the
// kernel draws.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gameos/internal/ui"

	"github.com/juju/errors"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: imageconvert <input-image> <output-binary>\n")
		fmt.Fprintf(os.Stderr, "Converts an image to binary format for kernel embedding\n")
		fmt.Fprintf(os.Stderr, "Output format:\n")
		fmt.Fprintf(os.Stderr, "  4 bytes: width (uint32 little-endian)\n")
		fmt.Fprintf(os.Stderr, "  4 bytes: height (uint32 little-endian)\n")
		fmt.Fprintf(os.Stderr, "  width*height*4 bytes: ARGB8888 pixel data\n")
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	if err := convert(flag.Arg(0), flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func convert(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return errors.Annotate(err, "opening image")
	}
	defer in.Close()

	img, format, err := image.Decode(bufio.NewReader(in))
	if err != nil {
		return errors.Annotatef(err, "decoding %s", inputPath)
	}
	b := img.Bounds()
	fmt.Printf("Image size: %d x %d (%s)\n", b.Dx(), b.Dy(), format)

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Annotate(err, "creating output file")
	}
	if err := ui.EncodeImage(out, img); err != nil {
		out.Close()
		return errors.Annotatef(err, "writing %s", outputPath)
	}
	if err := out.Close(); err != nil {
		return errors.Trace(err)
	}

	fmt.Printf("Wrote %d pixels to %s\n", b.Dx()*b.Dy(), outputPath)
	if st, err := os.Stat(outputPath); err == nil {
		fmt.Printf("Output file size: %d bytes\n", st.Size())
	}
	return nil
}
