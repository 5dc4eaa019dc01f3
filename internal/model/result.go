package model

import "fmt"

// FrameWarning records a frame that was skipped under the skip error policy.
type FrameWarning struct {
	Ref   FrameReference
	Stage Stage
	Err   error
}

func (w FrameWarning) String() string {
	return fmt.Sprintf("skipped %s frame %s: %v", w.Stage, w.Ref, w.Err)
}

// ConversionResult describes a finished conversion.
type ConversionResult struct {
	// OutputPath is the GIF that was written.
	OutputPath string

	// FrameCount is the number of frames actually encoded.
	FrameCount int

	// Width and Height are the canvas size shared by every frame.
	Width  int
	Height int

	// Bytes is the size of the written file.
	Bytes int64

	// Warnings lists the frames skipped in skip mode, in frame order.
	Warnings []FrameWarning
}

// Skipped returns the number of frames that were dropped.
func (r *ConversionResult) Skipped() int {
	return len(r.Warnings)
}
