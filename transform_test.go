package dotplay_test

import (
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/dotplay"
)

var _ = Describe("Transforms", func() {
	Describe("ResizeBilinear", func() {
		table.DescribeTable("keeps a uniform image uniform",
			func(v uint8, w, h int) {
				out, err := flat(7, 5, v).ResizeBilinear(w, h)
				Expect(err).NotTo(HaveOccurred())
				Expect(out.Width).To(Equal(w))
				Expect(out.Height).To(Equal(h))
				Expect(count(out, v)).To(Equal(w * h))
			},
			table.Entry("upscale", uint8(200), 20, 13),
			table.Entry("downscale", uint8(37), 3, 2),
			table.Entry("white", uint8(255), 16, 16),
			table.Entry("mid gray", uint8(127), 9, 31),
		)

		It("blends neighbours and clamps at the edge", func() {
			out, err := grayOf([]uint8{0, 255}).ResizeBilinear(4, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Pix).To(Equal([]uint8{0, 127, 255, 255}))
		})

		It("samples exact pixels when halving", func() {
			src := grayOf(
				[]uint8{1, 2, 3, 4},
				[]uint8{5, 6, 7, 8},
				[]uint8{9, 10, 11, 12},
				[]uint8{13, 14, 15, 16},
			)
			out, err := src.ResizeBilinear(2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Pix).To(Equal([]uint8{1, 3, 9, 11}))
		})

		It("zero fills from an empty source", func() {
			dst := flat(2, 2, 50)
			Expect((&dotplay.Gray{}).ResizeBilinearInto(dst, 3, 3)).To(Succeed())
			Expect(count(dst, 0)).To(Equal(9))
		})

		It("rejects oversized targets", func() {
			_, err := flat(2, 2, 0).ResizeBilinear(dotplay.MaxSize+1, 2)
			Expect(err).To(MatchError(dotplay.ErrSizeLimit))
		})
	})

	Describe("GammaCorrect", func() {
		It("darkens midtones above 1", func() {
			g := grayOf([]uint8{0, 64, 128, 192, 255}).GammaCorrect(2.2)
			Expect(g.Pix).To(Equal([]uint8{0, 12, 56, 137, 255}))
		})

		It("lightens midtones below 1", func() {
			g := grayOf([]uint8{0, 64, 128, 255}).GammaCorrect(0.5)
			Expect(g.Pix).To(Equal([]uint8{0, 128, 181, 255}))
		})

		It("is the identity at 1", func() {
			g := grayOf([]uint8{0, 1, 100, 254, 255})
			Expect(g.Clone().GammaCorrect(1).Pix).To(Equal(g.Pix))
		})
	})

	Describe("BinaryThreshold", func() {
		It("only produces 0 and 255", func() {
			g := grayOf([]uint8{0, 99, 100, 101, 255})
			out := g.BinaryThreshold(100)
			Expect(out.Pix).To(Equal([]uint8{0, 0, 0, 255, 255}))
			Expect(g.Pix).To(Equal([]uint8{0, 99, 100, 101, 255}))
		})
	})

	Describe("Invert", func() {
		It("is its own inverse", func() {
			g := grayOf([]uint8{0, 1, 127, 128, 255})
			once := g.Invert()
			Expect(once.Pix).To(Equal([]uint8{255, 254, 128, 127, 0}))
			Expect(once.Invert().Pix).To(Equal(g.Pix))
		})

		It("can work in place", func() {
			g := grayOf([]uint8{10})
			Expect(g.InvertInPlace()).To(BeIdenticalTo(g))
			Expect(g.Pix).To(Equal([]uint8{245}))
		})
	})
})
