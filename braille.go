package dotplay

// BrailleBase is the first codepoint of the Unicode braille block. Adding an
// 8-bit dot pattern to it yields one of the block's 256 symbols.
const BrailleBase = 0x2800

// Braille represents an 8 dot braille pattern in x,y coordinates space. Eg:
//
//	+----------+
//	|(0,0)(1,0)|
//	|(0,1)(1,1)|
//	|(0,2)(1,2)|
//	|(0,3)(1,3)|
//	+----------+
type Braille [2][4]int

// Pattern maps each point in braille to a dot identifier and returns the
// dot bits, dot N being bit N-1.
//
//	+------+
//	|(1)(4)|
//	|(2)(5)|
//	|(3)(6)|
//	|(7)(8)|
//	+------+
//
// See https://en.wikipedia.org/wiki/Braille_Patterns#Identifying.2C_naming_and_ordering)
func (b Braille) Pattern() uint8 {
	lowEndian := [8]int{b[0][0], b[0][1], b[0][2], b[1][0], b[1][1], b[1][2], b[0][3], b[1][3]}
	var v uint8
	for i, x := range lowEndian {
		if x != 0 {
			v |= 1 << uint(i)
		}
	}
	return v
}

// dotMasks holds the bit each block cell contributes, indexed [dx][dy].
var dotMasks = func() (masks [2][4]uint8) {
	for dx := range masks {
		for dy := range masks[dx] {
			var b Braille
			b[dx][dy] = 1
			masks[dx][dy] = b.Pattern()
		}
	}
	return masks
}()

// PatternAt assembles the dot pattern of the 2x4 block whose top-left sample
// is (x, y). Samples are expected to be binarized to 0 or 255; each cell
// contributes its mask bit ANDed with the sample. Cells that fall past the
// right or bottom edge contribute nothing.
func PatternAt(img *Gray, x, y int) uint8 {
	var pattern uint8
	for dy := 0; dy < 4; dy++ {
		py := y + dy
		if py >= img.Height {
			break
		}
		row := img.Pix[py*img.Width:]
		for dx := 0; dx < 2; dx++ {
			if x+dx >= img.Width {
				continue
			}
			pattern |= dotMasks[dx][dy] & row[x+dx]
		}
	}
	return pattern
}

// BlockMean returns the mean of the eight samples of the 2x4 block at
// (x, y). Cells past the edge count as black.
func BlockMean(img *Gray, x, y int) uint8 {
	var sum uint32
	for dy := 0; dy < 4 && y+dy < img.Height; dy++ {
		for dx := 0; dx < 2 && x+dx < img.Width; dx++ {
			sum += uint32(img.Pix[(x+dx)+(y+dy)*img.Width])
		}
	}
	return uint8(sum / 8)
}

// Quantize rounds v down to a multiple of step.
func Quantize(v uint8, step int) uint8 {
	if step <= 1 {
		return v
	}
	return uint8(int(v) / step * step)
}

// EncodeBraille returns the UTF-8 encoding of the braille symbol for
// pattern. With blankDot set, an empty pattern is drawn as a single dot so
// that the cell is never rendered as literal whitespace.
func EncodeBraille(pattern uint8, blankDot bool) [3]byte {
	if pattern == 0 && blankDot {
		pattern = 0x01
	}
	cp := uint32(pattern) | BrailleBase
	// Every codepoint of the block lies in 0x0800-0xFFFF, so the
	// three byte form always applies.
	return [3]byte{
		byte(cp>>12) + 0xE0,
		byte((cp>>6)&0x3F) + 0x80,
		byte(cp&0x3F) + 0x80,
	}
}

// AppendBraille appends the encoding of pattern to dst.
func AppendBraille(dst []byte, pattern uint8, blankDot bool) []byte {
	c := EncodeBraille(pattern, blankDot)
	return append(dst, c[0], c[1], c[2])
}
