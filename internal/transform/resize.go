package transform

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	"github.com/handiism/img2gif/internal/model"
)

// scaleInto draws src scaled to fill r of dst using the configured filter.
// dst pixels outside r are left untouched.
func scaleInto(dst *image.NRGBA, r image.Rectangle, src image.Image, filter model.ResampleFilter) {
	sb := src.Bounds()
	if sb.Dx() == r.Dx() && sb.Dy() == r.Dy() {
		draw.Draw(dst, r, src, sb.Min, draw.Src)
		return
	}

	switch filter {
	case model.ResampleLanczos:
		out := resize.Resize(uint(r.Dx()), uint(r.Dy()), src, resize.Lanczos3)
		draw.Draw(dst, r, out, out.Bounds().Min, draw.Src)
	case model.ResampleBilinear:
		draw.ApproxBiLinear.Scale(dst, r, src, sb, draw.Src, nil)
	case model.ResampleNearest:
		draw.NearestNeighbor.Scale(dst, r, src, sb, draw.Src, nil)
	default:
		draw.CatmullRom.Scale(dst, r, src, sb, draw.Src, nil)
	}
}
