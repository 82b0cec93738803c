package dotplay

// Histogram counts samples per value. Value 0 is never counted so that
// pure black is not offered as a threshold candidate.
type Histogram [256]uint32

// Histogram counts the occurrences of each sample value in g.
func (g *Gray) Histogram() Histogram {
	var h Histogram
	for _, v := range g.Pix {
		h[v]++
	}
	h[0] = 0
	return h
}

// Total returns the number of samples counted in h.
func (h *Histogram) Total() uint32 {
	var n uint32
	for _, c := range h {
		n += c
	}
	return n
}

// Otsu returns the threshold that maximizes the between-class variance of
// h. Ties keep the lowest threshold. An empty histogram yields 0.
func (h *Histogram) Otsu() uint8 {
	total := h.Total()

	var sum float64
	for i, c := range h {
		sum += float64(i) * float64(c)
	}

	var (
		sumBelow float64
		wBelow   uint32
		varMax   float64
		t        uint8
	)
	for i, c := range h {
		wBelow += c
		if wBelow == 0 {
			continue
		}
		wAbove := total - wBelow
		if wAbove == 0 {
			break
		}
		sumBelow += float64(i) * float64(c)

		meanBelow := sumBelow / float64(wBelow)
		meanAbove := (sum - sumBelow) / float64(wAbove)
		d := meanBelow - meanAbove
		between := float64(wBelow) * float64(wAbove) * d * d

		if between > varMax {
			varMax = between
			t = uint8(i)
		}
	}
	return t
}

// Otsu computes the Otsu threshold of g's histogram.
func (g *Gray) Otsu() uint8 {
	h := g.Histogram()
	return h.Otsu()
}
