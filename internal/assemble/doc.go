// Package assemble encodes transformed frames into an animated GIF.
//
// The assembler takes frames in their final order, all paletted and of one
// size, and writes them with a uniform per-frame delay and the configured
// loop count:
//
//	a := assemble.NewAssembler()
//	n, err := a.Assemble(ctx, frames, cfg, "out.gif")
//
// A single frame produces a static GIF. A loop count of 0 loops forever; N
// plays the animation N more times.
//
// The file is written through ioutils.WriteFileAtomic, so a failed or
// canceled encode never leaves a partial GIF at the output path. The output
// directory must already exist.
package assemble
