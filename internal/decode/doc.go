// Package decode loads a single frame file into memory.
//
// Formats are recognized by their signature, not by the file extension:
//
//	d := decode.NewDecoder(0)
//	frame, err := d.Decode(ctx, ref)
//	switch {
//	case errors.Is(err, model.ErrUnsupportedFormat):
//	    // content matches no registered format
//	case errors.Is(err, model.ErrCorruptImage):
//	    // recognized, but truncated or malformed
//	}
//
// PNG, JPEG and GIF decoders come from the standard library. BMP, TIFF and
// WebP are registered from golang.org/x/image. An animated GIF contributes
// only its first frame.
//
// Before the full decode the header is read with image.DecodeConfig, and
// frames larger than the decoder's pixel limit are rejected without
// allocating their raster.
package decode
