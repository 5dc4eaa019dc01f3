// Package model defines the core data structures shared by every stage of
// the img2gif pipeline.
//
// # Frames
//
// FrameReference is an ordered handle to one source image, produced by the
// source package. DecodedFrame carries the raster for that reference while a
// single stage owns it:
//
//	ref := model.FrameReference{Path: "frames/001.png", Index: 0}
//	frame := &model.DecodedFrame{Ref: ref, Image: img, Format: "png"}
//
// # Configuration
//
// GifConfig is immutable and can only be built through NewGifConfig, which
// validates every field up front:
//
//	cfg, err := model.NewGifConfig(model.GifOptions{
//	    FPS:                 12,
//	    Loop:                0,
//	    Width:               480,
//	    MaintainAspectRatio: true,
//	    Optimize:            true,
//	})
//	if errors.Is(err, model.ErrConfiguration) {
//	    // contradictory or out-of-range options
//	}
//
// Frame timing is stored once, as a time.Duration per frame. FPS() and
// DelayCentiseconds() are derived from it.
//
// # Errors
//
// Every failure returned by the pipeline is an *Error carrying a kind
// sentinel (ErrInputNotFound, ErrEmptyInput, ErrUnsupportedFormat,
// ErrCorruptImage, ErrTransform, ErrEncoding, ErrConfiguration), the stage
// that failed and, for per-frame failures, the frame path and index.
package model
