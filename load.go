package dotplay

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadOptions adjusts a still image before it is converted to gray. Zero
// values leave the image untouched.
type LoadOptions struct {
	Brightness      float64 // -100..100
	Contrast        float64 // -100..100
	Sharpen         float64 // gaussian sigma, > 0 sharpens
	SigmoidMidpoint float64 // 0..1
	SigmoidFactor   float64 // 0 disables the sigmoid
	// ShrinkOversize scales images larger than MaxSize down to fit instead
	// of rejecting them with ErrSizeLimit.
	ShrinkOversize bool
}

// LoadImage decodes the image file at path into a Gray.
func LoadImage(path string, opts LoadOptions) (*Gray, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := decodeBytes(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Decode reads an image in any registered format from r into a Gray.
func Decode(r io.Reader, opts LoadOptions) (*Gray, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeBytes(data, opts)
}

func decodeBytes(data []byte, opts LoadOptions) (*Gray, error) {
	// Check the header first so an oversized image is rejected before its
	// pixels are allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	oversize := checkSize(cfg.Width, cfg.Height)
	if oversize != nil && !opts.ShrinkOversize {
		return nil, oversize
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if oversize != nil {
		img = resize.Thumbnail(MaxSize, MaxSize, img, resize.Bilinear)
	}
	return FromImage(adjust(img, opts))
}

// adjust applies opts to img. The result is always gray.
func adjust(img image.Image, opts LoadOptions) image.Image {
	if opts.Brightness != 0 {
		img = imaging.AdjustBrightness(img, opts.Brightness)
	}
	if opts.Contrast != 0 {
		img = imaging.AdjustContrast(img, opts.Contrast)
	}
	if opts.Sharpen > 0 {
		img = imaging.Sharpen(img, opts.Sharpen)
	}
	if opts.SigmoidFactor != 0 {
		mid := opts.SigmoidMidpoint
		if mid == 0 {
			mid = 0.5
		}
		img = imaging.AdjustSigmoid(img, mid, opts.SigmoidFactor)
	}
	if _, ok := img.(*image.Gray); ok {
		return img
	}
	return imaging.Grayscale(img)
}
