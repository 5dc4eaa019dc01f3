package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/img2gif/internal/assemble"
	"github.com/handiism/img2gif/internal/decode"
	ioutils "github.com/handiism/img2gif/internal/io"
	"github.com/handiism/img2gif/internal/log"
	"github.com/handiism/img2gif/internal/model"
	"github.com/handiism/img2gif/internal/source"
	"github.com/handiism/img2gif/internal/transform"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a conversion progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	Stage   model.Stage

	// Done and Total count frames through the current stage.
	Done  int
	Total int
}

// Converter runs the resolve, decode, transform and assemble stages for one
// conversion at a time.
type Converter struct {
	logger    log.Logger
	decoder   *decode.Decoder
	assembler *assemble.Assembler

	total       int32
	decoded     int32
	transformed int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewConverter creates a new Converter. A nil logger discards log output;
// onProgress may be nil. onProgress is called from worker goroutines and
// must be safe for concurrent use.
func NewConverter(logger log.Logger, onProgress func(ProgressEvent)) *Converter {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Converter{
		logger:     logger,
		decoder:    decode.NewDecoder(decode.DefaultMaxPixels),
		assembler:  assemble.NewAssembler(),
		onProgress: onProgress,
	}
}

// Convert is the simple entry point: durationSeconds per frame (0 means one
// second) and loop replays (0 loops forever), defaults for everything else.
func (c *Converter) Convert(ctx context.Context, input []string, outputPath string, durationSeconds float64, loop int) (*model.ConversionResult, error) {
	cfg, err := model.NewGifConfig(model.GifOptions{Duration: durationSeconds, Loop: loop})
	if err != nil {
		return nil, err
	}
	return c.ConvertWithConfig(ctx, input, outputPath, cfg)
}

// ConvertWithConfig converts input to an animated GIF at outputPath.
//
// input is either a single directory or an ordered list of files. The
// output directory is checked before anything is read. Under the abort
// policy the first failing frame stops the conversion; under the skip
// policy failing frames are dropped and listed in the result's Warnings.
//
// Only one conversion may run on a Converter at a time.
func (c *Converter) ConvertWithConfig(ctx context.Context, input []string, outputPath string, cfg model.GifConfig) (*model.ConversionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	if err := checkOutput(outputPath); err != nil {
		return nil, err
	}

	refs, err := source.NewResolver(cfg.Sort()).Resolve(ctx, input)
	if err != nil {
		return nil, err
	}
	c.reset(len(refs))
	c.logger.Info("resolved frames", log.Int("count", len(refs)), log.String("output", outputPath))
	c.progress(ProgressEvent{Message: fmt.Sprintf("Found %d frames", len(refs)), Level: LevelInfo, Stage: model.StageResolve, Total: len(refs)})

	decoded, warnings, err := runStage(ctx, c, cfg, model.StageDecode, refs,
		func(r model.FrameReference) model.FrameReference { return r },
		c.decodeFrame)
	if err != nil {
		return nil, err
	}
	frames := compact(decoded)
	if len(frames) == 0 {
		return nil, allSkipped(model.StageDecode, len(refs))
	}

	w, h, err := transform.Canvas(cfg, frames[0].Width(), frames[0].Height())
	if err != nil {
		return nil, err
	}
	c.logger.Info("canvas", log.Int("width", w), log.Int("height", h), log.String("from", frames[0].Ref.Path))

	t := transform.NewTransformer(cfg)
	canvas := image.Pt(w, h)
	transformed, more, err := runStage(ctx, c, cfg, model.StageTransform, frames,
		func(f *model.DecodedFrame) model.FrameReference { return f.Ref },
		func(ctx context.Context, f *model.DecodedFrame) (*model.DecodedFrame, error) {
			return c.transformFrame(ctx, t, f, canvas)
		})
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, more...)
	frames = compact(transformed)
	if len(frames) == 0 {
		return nil, allSkipped(model.StageTransform, len(refs))
	}

	c.progress(ProgressEvent{Message: fmt.Sprintf("Encoding %d frames", len(frames)), Level: LevelInfo, Stage: model.StageAssemble, Total: len(frames)})
	n, err := c.assembler.Assemble(ctx, frames, cfg, outputPath)
	if err != nil {
		c.logger.Error("assemble failed", log.String("output", outputPath), log.Err(err))
		return nil, err
	}

	result := &model.ConversionResult{
		OutputPath: outputPath,
		FrameCount: len(frames),
		Width:      w,
		Height:     h,
		Bytes:      n,
		Warnings:   sortWarnings(warnings),
	}
	c.logger.Info("wrote gif",
		log.String("output", outputPath),
		log.Int("frames", result.FrameCount),
		log.Int("skipped", result.Skipped()),
		log.Int64("bytes", n),
		log.Duration("elapsed", time.Since(start)))
	c.progress(ProgressEvent{
		Message: fmt.Sprintf("Wrote %s (%d frames, %dx%d, %d bytes)", outputPath, result.FrameCount, w, h, n),
		Level:   LevelSuccess,
		Stage:   model.StageAssemble,
		Done:    result.FrameCount,
		Total:   len(refs),
	})
	return result, nil
}

// Progress returns the frame counters of the running or last conversion.
func (c *Converter) Progress() (decoded, transformed, total int) {
	return int(atomic.LoadInt32(&c.decoded)), int(atomic.LoadInt32(&c.transformed)), int(atomic.LoadInt32(&c.total))
}

// SupportedFormats returns the recognized input file extensions.
func SupportedFormats() []string {
	return source.SupportedExtensions()
}

func (c *Converter) decodeFrame(ctx context.Context, ref model.FrameReference) (*model.DecodedFrame, error) {
	f, err := c.decoder.Decode(ctx, ref)
	if err != nil {
		return nil, err
	}
	done := int(atomic.AddInt32(&c.decoded, 1))
	c.logger.Debug("decoded frame", log.Int("index", ref.Index), log.String("path", ref.Path),
		log.String("format", f.Format), log.Int("width", f.Width()), log.Int("height", f.Height()))
	c.progress(ProgressEvent{
		Message: fmt.Sprintf("Decoded %s (%s %dx%d)", ref.Name(), f.Format, f.Width(), f.Height()),
		Level:   LevelVerbose,
		Stage:   model.StageDecode,
		Done:    done,
		Total:   int(atomic.LoadInt32(&c.total)),
	})
	return f, nil
}

func (c *Converter) transformFrame(ctx context.Context, t *transform.Transformer, f *model.DecodedFrame, canvas image.Point) (*model.DecodedFrame, error) {
	out, err := t.Transform(ctx, f, canvas)
	if err != nil {
		return nil, err
	}
	done := int(atomic.AddInt32(&c.transformed, 1))
	c.progress(ProgressEvent{
		Message: fmt.Sprintf("Prepared %s", f.Ref.Name()),
		Level:   LevelVerbose,
		Stage:   model.StageTransform,
		Done:    done,
		Total:   int(atomic.LoadInt32(&c.total)),
	})
	return out, nil
}

// runStage applies fn to every item with at most cfg.Workers() calls in
// flight. Each result is stored in the slot of its input, so the output keeps
// frame order no matter which worker finishes first.
//
// Under the abort policy the first failure cancels the remaining work and
// the failure with the lowest frame index is returned. Under the skip policy
// failures become warnings and leave a nil slot. Cancellation of ctx is
// always returned as an error.
func runStage[T any](ctx context.Context, c *Converter, cfg model.GifConfig, stage model.Stage, items []T,
	refOf func(T) model.FrameReference, fn func(context.Context, T) (*model.DecodedFrame, error),
) ([]*model.DecodedFrame, []model.FrameWarning, error) {
	out := make([]*model.DecodedFrame, len(items))
	errs := make([]error, len(items))
	abort := cfg.ErrorPolicy() == model.PolicyAbort

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers())

	for i, item := range items {
		i, item := i, item
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := fn(gctx, item)
			if err != nil {
				errs[i] = err
				if abort || isCanceled(err) {
					return err
				}
				return nil
			}
			out[i] = f
			return nil
		})
	}

	waitErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if waitErr != nil {
		for _, err := range errs {
			if err != nil && !isCanceled(err) {
				c.logger.Error("frame failed", log.String("stage", string(stage)), log.Err(err))
				c.progress(ProgressEvent{Message: err.Error(), Level: LevelError, Stage: stage})
				return nil, nil, err
			}
		}
		return nil, nil, waitErr
	}

	var warnings []model.FrameWarning
	for i, err := range errs {
		if err == nil {
			continue
		}
		ref := refOf(items[i])
		warnings = append(warnings, model.FrameWarning{Ref: ref, Stage: stage, Err: err})
		c.logger.Warn("skipped frame", log.String("stage", string(stage)), log.Int("index", ref.Index),
			log.String("path", ref.Path), log.Err(err))
		c.progress(ProgressEvent{Message: fmt.Sprintf("Skipped %s: %v", ref.Name(), err), Level: LevelWarning, Stage: stage})
	}
	return out, warnings, nil
}

func (c *Converter) reset(total int) {
	atomic.StoreInt32(&c.total, int32(total))
	atomic.StoreInt32(&c.decoded, 0)
	atomic.StoreInt32(&c.transformed, 0)
}

func (c *Converter) progress(event ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(event)
	}
}

func checkOutput(outputPath string) error {
	if outputPath == "" {
		return model.NewError(model.ErrConfiguration, model.StageConfig, "", errors.New("output path is empty"))
	}
	dir := filepath.Dir(outputPath)
	ok, err := ioutils.DirExists(dir)
	if err != nil {
		return model.NewError(model.ErrInputNotFound, model.StageResolve, dir, err)
	}
	if !ok {
		return model.NewError(model.ErrInputNotFound, model.StageResolve, dir, errors.New("output directory does not exist"))
	}
	return nil
}

func compact(frames []*model.DecodedFrame) []*model.DecodedFrame {
	out := make([]*model.DecodedFrame, 0, len(frames))
	for _, f := range frames {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func allSkipped(stage model.Stage, total int) error {
	return model.NewError(model.ErrEmptyInput, stage, "", fmt.Errorf("all %d frames were skipped", total))
}

// sortWarnings orders warnings by frame index; decode and transform
// warnings are collected separately.
func sortWarnings(w []model.FrameWarning) []model.FrameWarning {
	sort.SliceStable(w, func(i, j int) bool { return w[i].Ref.Index < w[j].Ref.Index })
	return w
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
