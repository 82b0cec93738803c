// Package dotplay renders grayscale images as Unicode braille text and plays
// video in a terminal at the source's pace.
//
// Each braille symbol covers a block of 2x4 samples, so a frame of cols x rows
// terminal cells is built from an image of cols*2 x rows*4 samples that has
// been reduced to black and white by thresholding or dithering.
package dotplay

import (
	"fmt"
	"io"
)

// Mode selects how a still image is reduced to black and white.
type Mode string

const (
	ModeThreshold Mode = "threshold"
	ModeDither    Mode = "dither"
	ModeOrdered   Mode = "ordered"
)

// ParseMode returns the Mode named s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeThreshold, ModeDither, ModeOrdered:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q: %w", s, ErrInvalidConfig)
}

// StaticOptions controls RenderImage.
type StaticOptions struct {
	Cols, Rows int
	Gamma      float64
	// Threshold is a fixed binarization level; negative selects Otsu's
	// threshold of the gamma-corrected source.
	Threshold  int
	Mode       Mode
	Invert     bool
	BlankDot   bool
	KeepAspect bool
}

// DefaultStaticOptions returns 80x25 output binarized at the Otsu threshold,
// with empty blocks drawn as a single dot.
func DefaultStaticOptions() StaticOptions {
	return StaticOptions{
		Cols:      80,
		Rows:      25,
		Gamma:     1.0,
		Threshold: -1,
		Mode:      ModeThreshold,
		BlankDot:  true,
	}
}

// FitSize scales a width x height image down to fit within cols x rows
// braille cells, preserving its aspect ratio. Images are never scaled up.
func FitSize(width, height, cols, rows int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	// Each braille symbol is 2 samples wide and 4 high.
	maxW, maxH := float64(cols*2), float64(rows*4)
	scale := min(maxW/float64(width), maxH/float64(height), 1.0)
	return max(int(float64(width)*scale), 1), max(int(float64(height)*scale), 1)
}

// ImageStats describes a still image drawn by RenderImage.
type ImageStats struct {
	FrameStats
	// Source dimensions in samples.
	Width, Height int
	// Threshold is the binarization level used, whether fixed or chosen by Otsu.
	Threshold uint8
}

// RenderImage writes img to w as braille text. img is not modified.
func RenderImage(w io.Writer, img *Gray, opts StaticOptions) (ImageStats, error) {
	stats := ImageStats{Width: img.Width, Height: img.Height}
	if opts.Cols <= 0 || opts.Rows <= 0 {
		return stats, fmt.Errorf("output size %dx%d: %w", opts.Cols, opts.Rows, ErrInvalidConfig)
	}

	src := img.Clone()
	if opts.Gamma > 0 && opts.Gamma != 1 {
		src.GammaCorrect(opts.Gamma)
	}
	var t uint8
	switch {
	case opts.Threshold < 0:
		t = src.Otsu()
	case opts.Threshold > 255:
		t = 255
	default:
		t = uint8(opts.Threshold)
	}
	stats.Threshold = t

	width, height := opts.Cols*2, opts.Rows*4
	if opts.KeepAspect {
		width, height = FitSize(src.Width, src.Height, opts.Cols, opts.Rows)
	}
	resized, err := src.ResizeBilinear(width, height)
	if err != nil {
		return stats, err
	}

	var out *Gray
	switch opts.Mode {
	case ModeThreshold, "":
		out = resized.BinaryThreshold(t)
	case ModeDither:
		out = resized.Dither(t)
	case ModeOrdered:
		out = resized.DitherOrdered(t)
	default:
		return stats, fmt.Errorf("unknown mode %q: %w", opts.Mode, ErrInvalidConfig)
	}
	if opts.Invert {
		out.InvertInPlace()
	}

	stats.FrameStats, err = NewRenderer(w, WithoutHome(), WithBlankDot(opts.BlankDot)).Render(out)
	return stats, err
}
