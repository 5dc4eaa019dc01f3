package transform

import (
	"image"
	"image/color"
	"image/color/palette"
	"sort"

	"golang.org/x/image/draw"
)

// alphaCutoff is the alpha below which a pixel becomes fully transparent.
const alphaCutoff = 128

// transparent is the reserved palette entry for see-through pixels.
var transparent = color.RGBA{}

type colorCount struct {
	key uint32 // 0xRRGGBB
	n   int
}

func rgbKey(p []uint8) uint32 {
	return uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
}

func keyColor(k uint32) color.RGBA {
	return color.RGBA{uint8(k >> 16), uint8(k >> 8), uint8(k), 0xff}
}

// binarizeAlpha forces every pixel to be fully opaque or fully transparent
// and reports whether any transparent pixel is left.
func binarizeAlpha(img *image.NRGBA) bool {
	found := false
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+3] < alphaCutoff {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
			found = true
			continue
		}
		img.Pix[i+3] = 0xff
	}
	return found
}

// histogram counts the opaque colors of img, sorted by color.
func histogram(img *image.NRGBA) []colorCount {
	counts := make(map[uint32]int)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		counts[rgbKey(img.Pix[i:])]++
	}
	hist := make([]colorCount, 0, len(counts))
	for k, n := range counts {
		hist = append(hist, colorCount{key: k, n: n})
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].key < hist[j].key })
	return hist
}

// exactPalette returns one entry per color when they fit in limit entries.
func exactPalette(hist []colorCount, withTransparent bool, limit int) (color.Palette, bool) {
	n := len(hist)
	if withTransparent {
		n++
	}
	if n > limit {
		return nil, false
	}
	p := make(color.Palette, 0, n)
	for _, c := range hist {
		p = append(p, keyColor(c.key))
	}
	if withTransparent {
		p = append(p, transparent)
	}
	return p, true
}

// fixedPalette returns the Plan 9 palette, or plan9WithTransparent when a
// transparent entry is needed.
func fixedPalette(withTransparent bool) color.Palette {
	if !withTransparent {
		return append(color.Palette(nil), palette.Plan9...)
	}
	return append(color.Palette(nil), plan9WithTransparent...)
}

// plan9WithTransparent is Plan 9 with its most redundant entry, the one
// closest to an earlier entry, replaced by the transparent color at the end.
// Pure black and pure white are always kept.
var plan9WithTransparent = func() color.Palette {
	p := append(color.Palette(nil), palette.Plan9...)
	drop, best := -1, uint32(1<<32-1)
	for i := 1; i < len(p); i++ {
		if r, g, b, _ := p[i].RGBA(); r == g && g == b && (r == 0 || r == 0xffff) {
			continue
		}
		for j := 0; j < i; j++ {
			if d := rgbDistance(p[i], p[j]); d < best {
				drop, best = i, d
			}
		}
	}
	p = append(p[:drop], p[drop+1:]...)
	return append(p, transparent)
}()

func rgbDistance(a, b color.Color) uint32 {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	dr := int32(ar>>8) - int32(br>>8)
	dg := int32(ag>>8) - int32(bg>>8)
	db := int32(ab>>8) - int32(bb>>8)
	return uint32(dr*dr + dg*dg + db*db)
}

// mapNearest converts img to a paletted image, sending each opaque pixel to
// the closest opaque entry of p and each transparent pixel to the
// transparent entry.
func mapNearest(img *image.NRGBA, p color.Palette) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), p)

	tIndex := -1
	opaque := make([]int, 0, len(p))
	for i, c := range p {
		if _, _, _, a := c.RGBA(); a == 0 {
			if tIndex < 0 {
				tIndex = i
			}
			continue
		}
		opaque = append(opaque, i)
	}

	cache := make(map[uint32]uint8)
	for i, j := 0, 0; i+3 < len(img.Pix); i, j = i+4, j+1 {
		if img.Pix[i+3] == 0 && tIndex >= 0 {
			out.Pix[j] = uint8(tIndex)
			continue
		}
		k := rgbKey(img.Pix[i:])
		idx, ok := cache[k]
		if !ok {
			idx = uint8(nearest(p, opaque, keyColor(k)))
			cache[k] = idx
		}
		out.Pix[j] = idx
	}
	return out
}

// nearest returns the index in candidates closest to c in RGB space. Ties go
// to the lower index.
func nearest(p color.Palette, candidates []int, c color.RGBA) int {
	best, bestDist := 0, uint32(1<<32-1)
	for _, i := range candidates {
		pr, pg, pb, _ := p[i].RGBA()
		dr := int32(pr>>8) - int32(c.R)
		dg := int32(pg>>8) - int32(c.G)
		db := int32(pb>>8) - int32(c.B)
		d := uint32(dr*dr + dg*dg + db*db)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// dither converts img to p with Floyd-Steinberg error diffusion.
func dither(img *image.NRGBA, p color.Palette) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), p)
	draw.FloydSteinberg.Draw(out, out.Bounds(), img, img.Bounds().Min)
	return out
}
