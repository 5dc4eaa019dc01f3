package decode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
	"golang.org/x/image/draw"

	"github.com/handiism/img2gif/internal/model"
)

// DefaultMaxPixels rejects frames above 100 megapixels before allocating them.
const DefaultMaxPixels = 100_000_000

// Decoder decodes frame files.
type Decoder struct {
	maxPixels int64
}

// NewDecoder creates a Decoder. maxPixels bounds width×height of a frame;
// zero or negative means DefaultMaxPixels.
func NewDecoder(maxPixels int64) *Decoder {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Decoder{maxPixels: maxPixels}
}

// Decode reads and decodes the frame at ref.Path. Multi-frame GIFs
// contribute their first frame.
func (d *Decoder) Decode(ctx context.Context, ref model.FrameReference) (frame *model.DecodedFrame, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(ref.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewFrameError(model.ErrInputNotFound, model.StageDecode, ref, err)
		}
		return nil, model.NewFrameError(model.ErrCorruptImage, model.StageDecode, ref, err)
	}
	defer f.Close()

	// Some decoders panic on hostile input instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			frame = nil
			err = model.NewFrameError(model.ErrCorruptImage, model.StageDecode, ref, fmt.Errorf("decoder panic: %v", r))
		}
	}()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return nil, classify(ref, err)
	}
	if px := int64(cfg.Width) * int64(cfg.Height); px > d.maxPixels {
		return nil, model.NewFrameError(model.ErrCorruptImage, model.StageDecode, ref,
			fmt.Errorf("%s image too large: %dx%d exceeds %d pixels", format, cfg.Width, cfg.Height, d.maxPixels))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, model.NewFrameError(model.ErrCorruptImage, model.StageDecode, ref, err)
	}
	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, classify(ref, err)
	}
	if screen := image.Rect(0, 0, cfg.Width, cfg.Height); format == "gif" && img.Bounds() != screen {
		img = onScreen(img, screen)
	}

	return &model.DecodedFrame{Ref: ref, Image: img, Format: format}, nil
}

// onScreen places a GIF frame that covers only part of its logical screen at
// its offset on a transparent image of the full screen size.
func onScreen(img image.Image, screen image.Rectangle) image.Image {
	out := image.NewNRGBA(screen)
	b := img.Bounds()
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// Formats returns the registered decoder names, in a fixed order.
func Formats() []string {
	return []string{"png", "jpeg", "gif", "bmp", "tiff", "webp"}
}

func classify(ref model.FrameReference, err error) error {
	if errors.Is(err, image.ErrFormat) {
		return model.NewFrameError(model.ErrUnsupportedFormat, model.StageDecode, ref, errors.New("content matches no known image signature"))
	}
	return model.NewFrameError(model.ErrCorruptImage, model.StageDecode, ref, err)
}
