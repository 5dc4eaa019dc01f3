package model

import (
	"fmt"
	"image"
	"path/filepath"
)

// FrameReference is a resolved handle to one source image.
//
// Index is the frame's zero-based position in the resolved order and never
// changes once resolution completes, even if earlier frames are later
// skipped.
type FrameReference struct {
	Path  string
	Index int
}

// Name returns the base file name of the frame.
func (r FrameReference) Name() string {
	return filepath.Base(r.Path)
}

func (r FrameReference) String() string {
	return fmt.Sprintf("#%d %s", r.Index+1, r.Path)
}

// DecodedFrame is an in-memory raster together with the reference it came
// from. Format is the decoder name reported by image.Decode ("png",
// "jpeg", ...). After the transform stage Image is an *image.Paletted whose
// bounds start at the origin.
type DecodedFrame struct {
	Ref    FrameReference
	Image  image.Image
	Format string
}

// Width returns the frame width in pixels.
func (f *DecodedFrame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *DecodedFrame) Height() int {
	return f.Image.Bounds().Dy()
}

// Paletted returns the frame as an *image.Paletted, or false if it has not
// been through the transform stage.
func (f *DecodedFrame) Paletted() (*image.Paletted, bool) {
	p, ok := f.Image.(*image.Paletted)
	return p, ok
}
