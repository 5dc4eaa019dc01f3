// Package convert provides the orchestration logic that turns a sequence of
// still images into one animated GIF.
//
// # Converter
//
// The Converter coordinates the entire conversion:
//
//  1. Check that the output directory exists
//  2. Resolve the input into ordered frame references
//  3. Decode frames concurrently
//  4. Compute the canvas from the first decoded frame
//  5. Resize and quantize frames concurrently
//  6. Encode the GIF and write it atomically
//
// # Basic Usage
//
//	converter := convert.NewConverter(logger, func(event convert.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	result, err := converter.Convert(ctx, []string{"./frames"}, "out.gif", 0.1, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ConvertWithConfig takes a full model.GifConfig for resizing, palette and
// error policy options.
//
// # Concurrency
//
// Decoding and transforming run on an errgroup limited to cfg.Workers()
// goroutines. Results are written into index-addressed slots, so the
// encoded order always matches the resolved order.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Stage   model.Stage
//	    Done    int
//	    Total   int
//	}
//
// # Frame Errors
//
// With model.PolicyAbort the first frame that fails to decode or transform
// cancels the conversion and nothing is written. With model.PolicySkip the
// frame is dropped and recorded in ConversionResult.Warnings; if every frame
// is dropped the conversion fails with model.ErrEmptyInput.
package convert
