package transform

import (
	"image"
	"image/color"
	"sort"

	"github.com/andybons/gogif"
)

// medianCut reduces hist to at most n colors with gogif's median cut.
//
// The quantizer is fed the histogram laid out in color order, one pixel per
// count, so the result depends only on the colors and how often they occur.
// The palette comes back sorted and without duplicates.
func medianCut(hist []colorCount, n int) color.Palette {
	if len(hist) == 0 || n < 1 {
		return nil
	}

	total := 0
	for _, c := range hist {
		total += c.n
	}
	src := image.NewNRGBA(image.Rect(0, 0, total, 1))
	i := 0
	for _, c := range hist {
		r, g, b := uint8(c.key>>16), uint8(c.key>>8), uint8(c.key)
		for k := 0; k < c.n; k++ {
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = r, g, b, 0xff
			i += 4
		}
	}

	pm := image.NewPaletted(src.Bounds(), nil)
	q := &gogif.MedianCutQuantizer{NumColor: n}
	q.Quantize(pm, src.Bounds(), src, image.Point{})

	return sortedPalette(pm.Palette, n)
}

// sortedPalette returns the opaque colors of p ordered by RGB value, with
// duplicates removed and at most n entries.
func sortedPalette(p color.Palette, n int) color.Palette {
	seen := make(map[uint32]bool, len(p))
	keys := make([]uint32, 0, len(p))
	for _, c := range p {
		r, g, b, _ := c.RGBA()
		k := (r>>8)<<16 | (g>>8)<<8 | b>>8
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	if len(keys) > n {
		keys = keys[:n]
	}

	out := make(color.Palette, len(keys))
	for i, k := range keys {
		out[i] = keyColor(k)
	}
	return out
}
