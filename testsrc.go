package dotplay

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
)

// TestPattern is a synthetic video source: a bar rotating over a horizontal
// gradient with a disc sweeping across it. It needs no external decoder.
type TestPattern struct {
	frameClock

	Width, Height int
	Frames        int // 0 means unlimited

	canvas *image.RGBA
}

// NewTestPattern returns a source of frames width x height pixels, fps
// frames per second apart.
func NewTestPattern(width, height, frames int, fps float64) (*TestPattern, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	return &TestPattern{
		frameClock: newFrameClock(fps),
		Width:      width,
		Height:     height,
		Frames:     frames,
		canvas:     image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Decode draws the next frame into dst.
func (tp *TestPattern) Decode(dst *Gray) error {
	tp.hasFrame = false
	n := tp.pts + 1
	if tp.Frames > 0 && n >= int64(tp.Frames) {
		return io.EOF
	}
	tp.draw(n)
	if err := dst.CopyFrom(tp.canvas); err != nil {
		return err
	}
	tp.tick()
	return nil
}

func (tp *TestPattern) draw(n int64) {
	w, h := float64(tp.Width), float64(tp.Height)

	for x := 0; x < tp.Width; x++ {
		v := uint8(x * 255 / max(tp.Width-1, 1))
		for y := 0; y < tp.Height; y++ {
			tp.canvas.SetRGBA(x, y, color.RGBA{v, v, v, 0xff})
		}
	}

	gc := draw2dimg.NewGraphicContext(tp.canvas)

	// One revolution every 4 seconds.
	angle := 2 * math.Pi * float64(n) * tp.timeBase / 4
	length, thickness := math.Min(w, h)*0.8, math.Max(math.Min(w, h)/12, 1)
	gc.Save()
	gc.Translate(w/2, h/2)
	gc.Rotate(angle)
	gc.SetFillColor(color.White)
	gc.SetStrokeColor(color.Black)
	gc.SetLineWidth(math.Max(thickness/4, 1))
	draw2dkit.Rectangle(gc, -length/2, -thickness/2, length/2, thickness/2)
	gc.FillStroke()
	gc.Restore()

	// The disc crosses the frame once every 2 seconds.
	radius := math.Max(math.Min(w, h)/8, 1)
	phase := math.Mod(float64(n)*tp.timeBase/2, 1)
	cx := radius + phase*(w-2*radius)
	gc.SetFillColor(color.Black)
	gc.SetStrokeColor(color.White)
	draw2dkit.Circle(gc, cx, h*3/4, radius)
	gc.FillStroke()
}

func (tp *TestPattern) Close() error { return nil }
