package dotplay

import (
	"io"
)

// RenderOpt configures a Renderer.
type RenderOpt func(r *Renderer)

// WithColor tints each glyph with the gray level of its block, quantized
// down to multiples of step. A new color escape is written only when the
// quantized level changes.
func WithColor(step int) RenderOpt {
	return func(r *Renderer) {
		r.color = true
		r.colorStep = step
	}
}

// WithColorStep changes the quantization step used by WithColor.
func WithColorStep(step int) RenderOpt {
	return func(r *Renderer) {
		r.colorStep = step
	}
}

// WithBlankDot draws empty blocks as a single dot instead of a blank glyph.
func WithBlankDot(on bool) RenderOpt {
	return func(r *Renderer) {
		r.blankDot = on
	}
}

// WithOrigin sets the 1-based screen position each frame is drawn from.
func WithOrigin(row, col int) RenderOpt {
	return func(r *Renderer) {
		r.home = true
		r.row, r.col = row, col
	}
}

// WithoutHome disables cursor positioning, so frames are written inline.
func WithoutHome() RenderOpt {
	return func(r *Renderer) {
		r.home = false
	}
}

// FrameStats describes one rendered frame.
type FrameStats struct {
	Rows         int
	Cols         int
	ColorChanges int
	Bytes        int
}

// Renderer composes binarized images into braille frames. It reuses one
// output buffer across frames and is not safe for concurrent use.
type Renderer struct {
	w         io.Writer
	color     bool
	colorStep int
	blankDot  bool
	home      bool
	row, col  int
	buf       []byte
}

// NewRenderer returns a Renderer writing to w. By default frames are drawn
// from row 2, leaving the first row for the on-screen display, without color
// and without blank-dot substitution.
func NewRenderer(w io.Writer, opts ...RenderOpt) *Renderer {
	r := &Renderer{
		w:         w,
		colorStep: 8,
		home:      true,
		row:       2,
		col:       1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.colorStep < 1 {
		r.colorStep = 1
	}
	return r
}

// Render writes img as one frame in a single Write call.
func (r *Renderer) Render(img *Gray) (FrameStats, error) {
	var stats FrameStats
	r.buf = r.Append(r.buf[:0], img, &stats)
	n, err := r.w.Write(r.buf)
	stats.Bytes = n
	return stats, err
}

// Append appends the encoding of img to dst and records what it wrote in stats.
func (r *Renderer) Append(dst []byte, img *Gray, stats *FrameStats) []byte {
	if r.home {
		dst = appendCursorTo(dst, r.row, r.col)
	}

	prev := -1
	for py := 0; py < img.Height; py += 4 {
		cols := 0
		for px := 0; px < img.Width; px += 2 {
			if r.color {
				level := int(Quantize(BlockMean(img, px, py), r.colorStep))
				if level != prev {
					v := uint8(level)
					dst = appendForeground(dst, v, v, v)
					prev = level
					stats.ColorChanges++
				}
			}
			dst = AppendBraille(dst, PatternAt(img, px, py), r.blankDot)
			cols++
		}
		dst = append(dst, '\n')
		stats.Rows++
		stats.Cols = cols
	}
	if stats.ColorChanges > 0 {
		dst = append(dst, esc+"0m"...)
	}
	return dst
}
