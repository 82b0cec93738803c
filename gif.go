package dotplay

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
)

// GIFOpt configures a GIFDecoder.
type GIFOpt func(dec *GIFDecoder)

// WithLoops plays the animation n times. With n <= 0 the file's own loop
// count is honoured, which may mean forever.
func WithLoops(n int) GIFOpt {
	return func(dec *GIFDecoder) {
		dec.plays = n
	}
}

// GIFDecoder composes the frames of an animated GIF onto a canvas, honouring
// each frame's disposal method, and yields the canvas after every frame.
// Timestamps are in centiseconds.
type GIFDecoder struct {
	gif   *gif.GIF
	plays int // 0 means forever

	canvas   *image.RGBA
	previous *image.RGBA
	index    int
	played   int
	pts      int64
	delay    int64
	hasFrame bool
}

// DecodeGIF reads every frame of an animated GIF from r.
func DecodeGIF(r io.Reader, opts ...GIFOpt) (*GIFDecoder, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	return NewGIFDecoder(g, opts...)
}

// NewGIFDecoder returns a decoder over an already decoded GIF.
func NewGIFDecoder(g *gif.GIF, opts ...GIFOpt) (*GIFDecoder, error) {
	if len(g.Image) == 0 {
		return nil, ErrNoVideoStream
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	for _, frame := range g.Image {
		bounds = bounds.Union(frame.Bounds())
	}
	if err := checkSize(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}

	dec := &GIFDecoder{
		gif:    g,
		canvas: image.NewRGBA(bounds),
		pts:    -1,
	}
	for _, opt := range opts {
		opt(dec)
	}
	if dec.plays <= 0 {
		// image/gif: 0 loops forever, -1 shows once, n shows n+1 times.
		switch g.LoopCount {
		case 0:
			dec.plays = 0
		case -1:
			dec.plays = 1
		default:
			dec.plays = g.LoopCount + 1
		}
	}
	return dec, nil
}

// Decode composes the next frame and copies the canvas into dst.
func (dec *GIFDecoder) Decode(dst *Gray) error {
	dec.hasFrame = false
	if dec.index == len(dec.gif.Image) {
		dec.played++
		if dec.plays > 0 && dec.played >= dec.plays {
			return io.EOF
		}
		dec.index = 0
	}
	i := dec.index

	// Undo the previous frame according to its disposal method.
	if dec.pts >= 0 {
		prev := (i + len(dec.gif.Image) - 1) % len(dec.gif.Image)
		switch dec.disposal(prev) {
		case gif.DisposalBackground:
			draw.Draw(dec.canvas, dec.gif.Image[prev].Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if dec.previous != nil {
				copy(dec.canvas.Pix, dec.previous.Pix)
			}
		}
	}
	if i == 0 {
		draw.Draw(dec.canvas, dec.canvas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	}

	if dec.disposal(i) == gif.DisposalPrevious {
		if dec.previous == nil {
			dec.previous = image.NewRGBA(dec.canvas.Bounds())
		}
		copy(dec.previous.Pix, dec.canvas.Pix)
	}
	frame := dec.gif.Image[i]
	draw.Draw(dec.canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

	if err := dst.CopyFrom(dec.canvas); err != nil {
		return err
	}

	// A frame is shown at the sum of the delays before it.
	dec.pts += dec.delay
	if dec.pts < 0 {
		dec.pts = 0
	}
	dec.delay = dec.frameDelay(i)
	dec.index++
	dec.hasFrame = true
	return nil
}

func (dec *GIFDecoder) disposal(i int) byte {
	if i < len(dec.gif.Disposal) {
		return dec.gif.Disposal[i]
	}
	return 0
}

// frameDelay returns the delay of frame i in centiseconds. Zero delays are
// played at 10 frames per second, as browsers do.
func (dec *GIFDecoder) frameDelay(i int) int64 {
	if i < len(dec.gif.Delay) && dec.gif.Delay[i] > 0 {
		return int64(dec.gif.Delay[i])
	}
	return 10
}

func (dec *GIFDecoder) HasFrame() bool    { return dec.hasFrame }
func (dec *GIFDecoder) PTS() int64        { return dec.pts }
func (dec *GIFDecoder) TimeBase() float64 { return 0.01 }
func (dec *GIFDecoder) Close() error      { return nil }
