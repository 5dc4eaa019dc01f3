package transform

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/handiism/img2gif/internal/model"
)

// Transformer brings decoded frames to the shared canvas and converts them
// to paletted images ready for the GIF encoder.
type Transformer struct {
	cfg model.GifConfig
}

// NewTransformer creates a Transformer for one conversion.
func NewTransformer(cfg model.GifConfig) *Transformer {
	return &Transformer{cfg: cfg}
}

// Transform resizes frame to canvas and quantizes it. The returned frame
// holds an *image.Paletted with bounds (0,0)-canvas; the input frame is not
// modified.
//
// A frame whose aspect ratio matches the canvas fills it. Any other frame is
// stretched to the canvas, or, when the aspect ratio is maintained, scaled to
// fit inside it and centered on a transparent background.
func (t *Transformer) Transform(ctx context.Context, frame *model.DecodedFrame, canvas image.Point) (*model.DecodedFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, model.NewError(model.ErrTransform, model.StageTransform, "", errors.New("nil frame"))
	}
	if frame.Image == nil {
		return nil, t.fail(frame, errors.New("frame has no image"))
	}
	sb := frame.Image.Bounds()
	if sb.Empty() {
		return nil, t.fail(frame, fmt.Errorf("source %dx%d has no area", sb.Dx(), sb.Dy()))
	}
	if canvas.X <= 0 || canvas.Y <= 0 || canvas.X > model.MaxDimension || canvas.Y > model.MaxDimension {
		return nil, t.fail(frame, fmt.Errorf("invalid canvas %dx%d", canvas.X, canvas.Y))
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, canvas.X, canvas.Y))
	target := rgba.Bounds()
	if t.cfg.MaintainAspectRatio() && !sameAspect(sb.Dx(), sb.Dy(), canvas.X, canvas.Y) {
		target = fitRect(sb.Dx(), sb.Dy(), canvas.X, canvas.Y)
	}
	scaleInto(rgba, target, frame.Image, t.cfg.Resample())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &model.DecodedFrame{
		Ref:    frame.Ref,
		Image:  t.quantize(rgba),
		Format: frame.Format,
	}, nil
}

// quantize picks the palette for one frame:
//
//	optimize off  exact colors when they fit in 256 entries, else Plan 9
//	optimize on   median cut down to the configured color count
//
// Pixels below half opacity always use a dedicated transparent entry.
func (t *Transformer) quantize(img *image.NRGBA) *image.Paletted {
	hasTransparent := binarizeAlpha(img)
	hist := histogram(img)

	if t.cfg.Optimize() {
		budget := t.cfg.MaxColors()
		if hasTransparent {
			budget--
		}
		p := medianCut(hist, budget)
		if hasTransparent || len(p) == 0 {
			p = append(p, transparent)
		}
		return mapNearest(img, p)
	}

	if p, ok := exactPalette(hist, hasTransparent, model.DefaultMaxColors); ok {
		return mapNearest(img, p)
	}
	p := fixedPalette(hasTransparent)
	if t.cfg.Dither() {
		return dither(img, p)
	}
	return mapNearest(img, p)
}

func (t *Transformer) fail(frame *model.DecodedFrame, err error) error {
	return model.NewFrameError(model.ErrTransform, model.StageTransform, frame.Ref, err)
}

// sameAspect reports whether a w×h image matches the cw×ch canvas ratio
// within the half pixel lost when the canvas size was rounded.
func sameAspect(w, h, cw, ch int) bool {
	d := int64(w)*int64(ch) - int64(h)*int64(cw)
	if d < 0 {
		d = -d
	}
	return 2*d <= int64(max(w, h))
}
