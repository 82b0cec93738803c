package dotplay

// Dither returns a Floyd-Steinberg binarization of g around threshold t.
func (g *Gray) Dither(t uint8) *Gray {
	out := &Gray{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	g.dither(out, t)
	return out
}

// DitherInto writes the Floyd-Steinberg binarization of g into dst,
// reallocating dst only when its dimensions differ from g's.
func (g *Gray) DitherInto(dst *Gray, t uint8) error {
	if err := dst.Realloc(g.Width, g.Height); err != nil {
		return err
	}
	g.dither(dst, t)
	return nil
}

// dither diffuses the quantization error of each sample to its unvisited
// neighbours: right 7/16, below-left 3/16, below 5/16, below-right 1/16,
// each truncated toward zero. The accumulator has a one-sample border on
// every side so no neighbour needs a bounds check, and every cell starts at
// 127-t so that the diffusion is centred on t.
func (g *Gray) dither(dst *Gray, t uint8) {
	const border = 1
	w, h := g.Width, g.Height
	stride := w + 2*border
	acc := make([]int32, stride*(h+2*border))
	bias := int32(127) - int32(t)
	for i := range acc {
		acc[i] = bias
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pos := (x + border) + (y+border)*stride
			pixel := int32(g.Pix[x+y*w]) + acc[pos]

			var out int32
			if pixel > int32(t) {
				out = 255
			}
			e := pixel - out

			acc[pos+1] += e * 7 / 16
			acc[pos+stride-1] += e * 3 / 16
			acc[pos+stride] += e * 5 / 16
			acc[pos+stride+1] += e * 1 / 16

			dst.Pix[x+y*w] = uint8(out)
		}
	}
}

// orderedMask is indexed [x&1][y&1].
var orderedMask = [2][2]uint32{
	{0, 2},
	{3, 1},
}

// DitherOrdered returns a 2x2 ordered dither of g. The threshold is scaled
// down by the number of mask cells before comparison.
func (g *Gray) DitherOrdered(t uint8) *Gray {
	out := &Gray{Width: g.Width, Height: g.Height, Pix: make([]uint8, len(g.Pix))}
	adjusted := uint32(t) / 4
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := uint32(g.Pix[x+y*g.Width])
			if v*orderedMask[x&1][y&1]/4 > adjusted {
				out.Pix[x+y*g.Width] = 255
			}
		}
	}
	return out
}
