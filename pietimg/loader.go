// Package pietimg decodes a Piet program's source image into a
// block.Grid. PNG and GIF come from the standard library; BMP and TIFF
// from golang.org/x/image; WEBP from github.com/gen2brain/webp. All five
// are registered against the stdlib image package so Load never needs
// to sniff the extension itself.
package pietimg

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"os"

	"github.com/gen2brain/webp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gopiet/pietvm/block"
	"github.com/gopiet/pietvm/color"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// LoadError wraps a failure to open or decode a source image. The driver
// treats it as fatal: report and exit non-zero.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("pietimg: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load opens path, decodes it with whichever registered format matches,
// and classifies every pixel into a block.Grid. One image pixel is one
// codel; Piet programs that use larger codel blocks must be pre-scaled
// by the caller.
func Load(path string) (*block.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("zero-dimension image (%dx%d)", b.Dx(), b.Dy())}
	}

	return FromImage(img), nil
}

// FromImage classifies every pixel of img into a block.Grid, for callers
// that already have a decoded image (tests, or an embedded source).
func FromImage(img image.Image) *block.Grid {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	codels := make([]color.Color, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			codels[y*width+x] = color.Classify(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}

	return block.NewGrid(width, height, codels)
}
