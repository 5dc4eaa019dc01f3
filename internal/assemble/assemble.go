package assemble

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"path/filepath"

	ioutils "github.com/handiism/img2gif/internal/io"
	"github.com/handiism/img2gif/internal/model"
)

// Assembler encodes transformed frames into one GIF file.
type Assembler struct{}

// NewAssembler creates a new Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble writes frames, in order, to outputPath and returns the size of
// the written file.
//
// Every frame must be an *image.Paletted with the same bounds. All frames
// get cfg.DelayCentiseconds() and the file carries cfg.Loop() as its loop
// count. The output is written atomically: on any failure outputPath is
// left as it was.
func (a *Assembler) Assemble(ctx context.Context, frames []*model.DecodedFrame, cfg model.GifConfig, outputPath string) (int64, error) {
	anim, err := a.build(frames, cfg)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(outputPath)
	ok, err := ioutils.DirExists(dir)
	if err != nil {
		return 0, model.NewError(model.ErrEncoding, model.StageAssemble, outputPath, err)
	}
	if !ok {
		return 0, model.NewError(model.ErrInputNotFound, model.StageAssemble, dir, errors.New("output directory does not exist"))
	}

	n, err := ioutils.WriteFileAtomic(ctx, outputPath, 0o644, func(w io.Writer) error {
		return gif.EncodeAll(w, anim)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return 0, err
		}
		return 0, model.NewError(model.ErrEncoding, model.StageAssemble, outputPath, err)
	}
	return n, nil
}

func (a *Assembler) build(frames []*model.DecodedFrame, cfg model.GifConfig) (*gif.GIF, error) {
	if len(frames) == 0 {
		return nil, model.NewError(model.ErrEncoding, model.StageAssemble, "", errors.New("no frames to encode"))
	}

	anim := &gif.GIF{
		Image:     make([]*image.Paletted, 0, len(frames)),
		Delay:     make([]int, 0, len(frames)),
		Disposal:  make([]byte, 0, len(frames)),
		LoopCount: cfg.Loop(),
	}

	var bounds image.Rectangle
	for i, f := range frames {
		if f == nil {
			return nil, model.NewError(model.ErrEncoding, model.StageAssemble, "", fmt.Errorf("frame %d is nil", i))
		}
		pm, ok := f.Paletted()
		if !ok {
			return nil, model.NewFrameError(model.ErrEncoding, model.StageAssemble, f.Ref, fmt.Errorf("frame is %T, not paletted", f.Image))
		}
		if i == 0 {
			bounds = pm.Bounds()
		} else if pm.Bounds() != bounds {
			return nil, model.NewFrameError(model.ErrEncoding, model.StageAssemble, f.Ref,
				fmt.Errorf("frame bounds %v differ from the first frame %v", pm.Bounds(), bounds))
		}
		if len(pm.Palette) == 0 || len(pm.Palette) > 256 {
			return nil, model.NewFrameError(model.ErrEncoding, model.StageAssemble, f.Ref,
				fmt.Errorf("palette has %d colors", len(pm.Palette)))
		}

		anim.Image = append(anim.Image, pm)
		anim.Delay = append(anim.Delay, cfg.DelayCentiseconds())
		anim.Disposal = append(anim.Disposal, disposal(pm))
	}

	anim.Config = image.Config{
		ColorModel: anim.Image[0].Palette,
		Width:      bounds.Max.X,
		Height:     bounds.Max.Y,
	}
	return anim, nil
}

// disposal clears a frame with see-through pixels before the next one is
// drawn, so it does not show through.
func disposal(pm *image.Paletted) byte {
	for _, c := range pm.Palette {
		if _, _, _, a := c.RGBA(); a == 0 {
			return gif.DisposalBackground
		}
	}
	return gif.DisposalNone
}
