package dotplay_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/kevin-cantwell/dotplay"
)

var _ = Describe("Threshold", func() {
	Describe("Histogram", func() {
		It("counts samples but never black", func() {
			h := grayOf([]uint8{0, 0, 5, 5, 5, 255}).Histogram()
			Expect(h[0]).To(BeZero())
			Expect(h[5]).To(Equal(uint32(3)))
			Expect(h[255]).To(Equal(uint32(1)))
			Expect(h.Total()).To(Equal(uint32(4)))
		})
	})

	Describe("Otsu", func() {
		It("splits a bimodal image between its peaks", func() {
			g := flat(40, 25, 50)
			for i := 500; i < len(g.Pix); i++ {
				g.Pix[i] = 200
			}
			t := g.Otsu()
			Expect(t).To(BeNumerically(">=", 50))
			Expect(t).To(BeNumerically("<", 200))
			Expect(g.BinaryThreshold(t).Pix[:500]).To(HaveEach(uint8(0)))
			Expect(g.BinaryThreshold(t).Pix[500:]).To(HaveEach(uint8(255)))
		})

		It("keeps the lowest threshold on ties", func() {
			var h dotplay.Histogram
			h[50], h[200] = 500, 500
			Expect(h.Otsu()).To(Equal(uint8(50)))
		})

		It("handles spread peaks", func() {
			var h dotplay.Histogram
			h[40], h[60] = 250, 250
			h[180], h[220] = 250, 250
			t := h.Otsu()
			Expect(t).To(BeNumerically(">=", 60))
			Expect(t).To(BeNumerically("<", 180))
		})

		It("returns 0 for a black image", func() {
			Expect(flat(8, 8, 0).Otsu()).To(BeZero())
		})

		It("returns 0 for a single value", func() {
			Expect(flat(8, 8, 90).Otsu()).To(BeZero())
		})
	})

	Describe("checkerboard", func() {
		It("survives gamma, Otsu and thresholding", func() {
			src := checkerboard(8, 8)
			g := src.Clone().GammaCorrect(1.0)
			t := g.Otsu()
			Expect(g.BinaryThreshold(t).Pix).To(Equal(src.Pix))
		})
	})
})
