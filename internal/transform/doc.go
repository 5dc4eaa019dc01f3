// Package transform normalizes decoded frames for the GIF encoder.
//
// Canvas decides the output size once, from the first decoded frame and the
// configured width, height and aspect ratio flag. Transform then brings each
// frame to that canvas and reduces it to a palette:
//
//	w, h, err := transform.Canvas(cfg, first.Width(), first.Height())
//	t := transform.NewTransformer(cfg)
//	out, err := t.Transform(ctx, frame, image.Pt(w, h))
//	pm, _ := out.Paletted()
//
// # Resampling
//
// Catmull-Rom, bilinear and nearest-neighbor scaling use the kernels of
// golang.org/x/image/draw. Lanczos uses github.com/nfnt/resize.
//
// # Palettes
//
// Without optimization a frame with at most 256 colors keeps them exactly;
// larger frames are mapped to the Plan 9 palette, with Floyd-Steinberg
// dithering unless it is disabled. With optimization each frame gets its
// own median-cut palette of at most MaxColors entries and no dithering.
//
// Quantization is deterministic: the same frame and configuration always
// produce the same palette and pixels.
package transform
