package dotplay

import (
	"errors"
	"fmt"
	"image"
)

// MaxSize is the largest width or height a Gray may have.
const MaxSize = 16384

// ErrSizeLimit is returned when an image dimension is negative or exceeds MaxSize.
var ErrSizeLimit = errors.New("image dimensions exceed limit")

// Gray is a rectangular grid of 8-bit grayscale samples, stored row-major.
// len(Pix) is always Width*Height. Accessors do not clamp coordinates.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewGray allocates a zero-filled image of the given dimensions.
func NewGray(width, height int) (*Gray, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}, nil
}

func checkSize(width, height int) error {
	if width < 0 || height < 0 || width > MaxSize || height > MaxSize {
		return fmt.Errorf("%dx%d (max %d): %w", width, height, MaxSize, ErrSizeLimit)
	}
	return nil
}

// Realloc makes g hold width*height samples. It is a no-op when the
// dimensions already match; otherwise the old contents are dropped and the
// new samples are zero. Storage is reused when its capacity suffices.
func (g *Gray) Realloc(width, height int) error {
	if g.Width == width && g.Height == height && len(g.Pix) == width*height {
		return nil
	}
	if err := checkSize(width, height); err != nil {
		return err
	}
	n := width * height
	if cap(g.Pix) >= n {
		g.Pix = g.Pix[:n]
		clear(g.Pix)
	} else {
		g.Pix = make([]uint8, n)
	}
	g.Width, g.Height = width, height
	return nil
}

// At returns the sample at (x, y).
func (g *Gray) At(x, y int) uint8 {
	return g.Pix[x+y*g.Width]
}

// Set stores v at (x, y).
func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[x+y*g.Width] = v
}

// Clone returns a deep copy of g.
func (g *Gray) Clone() *Gray {
	pix := make([]uint8, len(g.Pix))
	copy(pix, g.Pix)
	return &Gray{Width: g.Width, Height: g.Height, Pix: pix}
}

// Image returns an *image.Gray sharing g's samples.
func (g *Gray) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// FromImage copies the luma of img into a new Gray. Images that are not
// already *image.Gray are converted through the color.GrayModel.
func FromImage(img image.Image) (*Gray, error) {
	bounds := img.Bounds()
	g, err := NewGray(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if err := g.CopyFrom(img); err != nil {
		return nil, err
	}
	return g, nil
}

// CopyFrom reallocates g to img's size and copies its luma in.
func (g *Gray) CopyFrom(img image.Image) error {
	bounds := img.Bounds()
	if err := g.Realloc(bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < g.Height; y++ {
			row := src.Pix[(y+bounds.Min.Y-src.Rect.Min.Y)*src.Stride+(bounds.Min.X-src.Rect.Min.X):]
			copy(g.Pix[y*g.Width:(y+1)*g.Width], row[:g.Width])
		}
		return nil
	}
	// Looping over Y first and X second is more likely to result in better
	// memory access patterns than X first and Y second.
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gg, b, _ := img.At(x, y).RGBA()
			// Same weights as color.GrayModel.
			lum := (19595*r + 38470*gg + 7471*b + 1<<15) >> 24
			g.Pix[(x-bounds.Min.X)+(y-bounds.Min.Y)*g.Width] = uint8(lum)
		}
	}
	return nil
}
