package dotplay_test

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"io"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/dotplay"
)

var palette = color.Palette{color.Black, color.White, color.Transparent}

// paletted returns a frame covering r filled with palette index i.
func paletted(r image.Rectangle, i uint8) *image.Paletted {
	img := image.NewPaletted(r, palette)
	for p := range img.Pix {
		img.Pix[p] = i
	}
	return img
}

// threeFrames is a 2x2 animation: a full first frame, then one pixel at
// (0,0) with the given disposal, then one pixel at (1,1). Colors are
// palette indexes.
func threeFrames(first, second, third uint8, disposal byte) *gif.GIF {
	return &gif.GIF{
		Image: []*image.Paletted{
			paletted(image.Rect(0, 0, 2, 2), first),
			paletted(image.Rect(0, 0, 1, 1), second),
			paletted(image.Rect(1, 1, 2, 2), third),
		},
		Delay:    []int{5, 7, 9},
		Disposal: []byte{gif.DisposalNone, disposal, gif.DisposalNone},
		Config:   image.Config{Width: 2, Height: 2},
	}
}

func decodeAll(dec dotplay.Decoder) ([][]uint8, []int64) {
	var frames [][]uint8
	var pts []int64
	dst := &dotplay.Gray{}
	for {
		err := dec.Decode(dst)
		if err == io.EOF {
			return frames, pts
		}
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		if dec.HasFrame() {
			frames = append(frames, append([]uint8(nil), dst.Pix...))
			pts = append(pts, dec.PTS())
		}
	}
}

var _ = Describe("GIFDecoder", func() {
	table.DescribeTable("honours disposal",
		func(first, second, third uint8, disposal byte, last []uint8) {
			dec, err := dotplay.NewGIFDecoder(threeFrames(first, second, third, disposal), dotplay.WithLoops(1))
			Expect(err).NotTo(HaveOccurred())
			frames, pts := decodeAll(dec)
			Expect(frames).To(HaveLen(3))
			Expect(frames[2]).To(Equal(last))
			Expect(pts).To(Equal([]int64{0, 5, 12}))
			Expect(dec.TimeBase()).To(Equal(0.01))
		},
		table.Entry("none keeps the pixel", uint8(0), uint8(1), uint8(1), byte(gif.DisposalNone), []uint8{255, 0, 0, 255}),
		table.Entry("background clears it", uint8(0), uint8(1), uint8(1), byte(gif.DisposalBackground), []uint8{0, 0, 0, 255}),
		table.Entry("previous restores what was under it", uint8(1), uint8(0), uint8(0), byte(gif.DisposalPrevious), []uint8{255, 255, 255, 0}),
	)

	It("skips transparent pixels", func() {
		g := threeFrames(1, 2, 1, gif.DisposalNone)
		dec, err := dotplay.NewGIFDecoder(g, dotplay.WithLoops(1))
		Expect(err).NotTo(HaveOccurred())
		frames, _ := decodeAll(dec)
		Expect(frames[1]).To(Equal([]uint8{255, 255, 255, 255}))
	})

	It("loops with continuous timestamps", func() {
		dec, err := dotplay.NewGIFDecoder(threeFrames(0, 1, 1, gif.DisposalNone), dotplay.WithLoops(2))
		Expect(err).NotTo(HaveOccurred())
		frames, pts := decodeAll(dec)
		Expect(frames).To(HaveLen(6))
		Expect(pts).To(Equal([]int64{0, 5, 12, 21, 26, 33}))
		Expect(frames[3]).To(Equal(frames[0]))
	})

	It("honours the file's loop count", func() {
		g := threeFrames(0, 1, 1, gif.DisposalNone)
		g.LoopCount = -1
		dec, err := dotplay.NewGIFDecoder(g)
		Expect(err).NotTo(HaveOccurred())
		frames, _ := decodeAll(dec)
		Expect(frames).To(HaveLen(3))
	})

	It("round trips through the gif encoder", func() {
		var buf bytes.Buffer
		Expect(gif.EncodeAll(&buf, threeFrames(0, 1, 1, gif.DisposalNone))).To(Succeed())
		dec, err := dotplay.DecodeGIF(&buf, dotplay.WithLoops(1))
		Expect(err).NotTo(HaveOccurred())
		frames, _ := decodeAll(dec)
		Expect(frames).To(HaveLen(3))
		Expect(dec.Close()).To(Succeed())
	})

	It("rejects an animation without frames", func() {
		_, err := dotplay.NewGIFDecoder(&gif.GIF{})
		Expect(err).To(MatchError(dotplay.ErrNoVideoStream))
	})
})

var _ = Describe("MJPEGDecoder", func() {
	encode := func(v uint8) []byte {
		img := image.NewGray(image.Rect(0, 0, 16, 8))
		for i := range img.Pix {
			img.Pix[i] = v
		}
		var buf bytes.Buffer
		ExpectWithOffset(1, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})).To(Succeed())
		return buf.Bytes()
	}

	It("splits a stream at image boundaries", func() {
		var stream bytes.Buffer
		stream.WriteString("--boundary\r\n")
		for _, v := range []uint8{0, 128, 255} {
			stream.Write(encode(v))
			stream.WriteString("\r\n")
		}
		dec := dotplay.NewMJPEGDecoder(&stream, 10)
		frames, pts := decodeAll(dec)
		Expect(frames).To(HaveLen(3))
		Expect(pts).To(Equal([]int64{0, 1, 2}))
		Expect(dec.TimeBase()).To(BeNumerically("~", 0.1, 1e-9))
		for i, v := range []int{0, 128, 255} {
			Expect(frames[i]).To(HaveLen(16 * 8))
			Expect(int(frames[i][0])).To(BeNumerically("~", v, 2))
		}
	})

	It("drops a truncated final image", func() {
		data := encode(50)
		stream := append(append([]byte{}, data...), data[:len(data)/2]...)
		dec := dotplay.NewMJPEGDecoder(bytes.NewReader(stream), 0)
		frames, _ := decodeAll(dec)
		Expect(frames).To(HaveLen(1))
		Expect(dec.TimeBase()).To(Equal(1.0 / 25))
	})

	It("fails on a corrupt image", func() {
		dec := dotplay.NewMJPEGDecoder(bytes.NewReader([]byte{0xff, 0xd8, 1, 2, 3, 0xff, 0xd9}), 25)
		Expect(dec.Decode(&dotplay.Gray{})).To(HaveOccurred())
		Expect(dec.HasFrame()).To(BeFalse())
	})
})

var _ = Describe("TestPattern", func() {
	It("draws a fixed number of frames", func() {
		src, err := dotplay.NewTestPattern(64, 36, 3, 25)
		Expect(err).NotTo(HaveOccurred())
		frames, pts := decodeAll(src)
		Expect(frames).To(HaveLen(3))
		Expect(pts).To(Equal([]int64{0, 1, 2}))
		Expect(frames[0]).To(HaveLen(64 * 36))
		Expect(frames[0]).NotTo(Equal(frames[2]))

		// The gradient runs from black on the left to white on the right.
		Expect(frames[0][0]).To(Equal(uint8(0)))
		Expect(frames[0][63]).To(Equal(uint8(255)))
	})

	It("rejects oversized frames", func() {
		_, err := dotplay.NewTestPattern(dotplay.MaxSize+1, 1, 1, 25)
		Expect(err).To(MatchError(dotplay.ErrSizeLimit))
	})
})

var _ = Describe("ParseRate", func() {
	table.DescribeTable("reads ffmpeg rationals",
		func(s string, want float64) {
			Expect(dotplay.ParseRate(s)).To(BeNumerically("~", want, 1e-9))
		},
		table.Entry("ntsc", "30000/1001", 29.97002997),
		table.Entry("integer", "25/1", 25.0),
		table.Entry("plain", "24", 24.0),
		table.Entry("unknown", "0/0", 0.0),
		table.Entry("garbage", "n/a", 0.0),
	)
})
