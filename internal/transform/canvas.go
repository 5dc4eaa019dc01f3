package transform

import (
	"fmt"
	"image"
	"math"

	"github.com/handiism/img2gif/internal/model"
)

// Canvas computes the output size shared by every frame, given the
// configuration and the size of the first decoded frame.
//
//	no width or height     source size
//	one side, aspect on    other side scaled by the same factor
//	one side, aspect off   other side keeps the source size
//	both, aspect on        largest size that fits inside width×height
//	both, aspect off       exactly width×height
//
// Every computed side is at least 1. A result larger than a GIF can hold is
// a model.ErrTransform.
func Canvas(cfg model.GifConfig, srcW, srcH int) (w, h int, err error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, canvasError(fmt.Errorf("source size %dx%d has no area", srcW, srcH))
	}

	tw, th := cfg.Width(), cfg.Height()
	keep := cfg.MaintainAspectRatio()

	switch {
	case tw == 0 && th == 0:
		w, h = srcW, srcH
	case th == 0:
		w, h = tw, srcH
		if keep {
			h = scaled(srcH, float64(tw)/float64(srcW))
		}
	case tw == 0:
		w, h = srcW, th
		if keep {
			w = scaled(srcW, float64(th)/float64(srcH))
		}
	case keep:
		r := fitRect(srcW, srcH, tw, th)
		w, h = r.Dx(), r.Dy()
	default:
		w, h = tw, th
	}

	if w > model.MaxDimension || h > model.MaxDimension {
		return 0, 0, canvasError(fmt.Errorf("canvas %dx%d exceeds the GIF limit of %d", w, h, model.MaxDimension))
	}
	return w, h, nil
}

// fitRect returns the largest rectangle with the aspect ratio of srcW×srcH
// that fits inside dstW×dstH, centered in it.
func fitRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	s := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	w := min(scaled(srcW, s), dstW)
	h := min(scaled(srcH, s), dstH)
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

func scaled(n int, factor float64) int {
	return max(1, int(math.Round(float64(n)*factor)))
}

func canvasError(err error) error {
	return model.NewError(model.ErrTransform, model.StageTransform, "", err)
}
