package model

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultFrameDuration is used when neither FPS nor Duration is given.
	DefaultFrameDuration = time.Second

	// DefaultMaxColors is the GIF palette limit.
	DefaultMaxColors = 256

	// MaxDimension is the largest width or height a GIF logical screen can hold.
	MaxDimension = math.MaxUint16

	// maxDelayCentiseconds is the largest per-frame delay a GIF can hold.
	maxDelayCentiseconds = math.MaxUint16
)

// ErrorPolicy selects what happens when a single frame fails to decode or
// transform.
type ErrorPolicy string

const (
	// PolicyAbort stops the conversion at the first failing frame (default).
	PolicyAbort ErrorPolicy = "abort"

	// PolicySkip drops failing frames and records them as warnings.
	PolicySkip ErrorPolicy = "skip"
)

// ParseErrorPolicy accepts "abort", "skip" and the long forms
// "skip-and-warn" and "best-effort". The empty string means PolicyAbort.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "skip", "skip-and-warn", "best-effort":
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown frame error policy %q (use 'abort' or 'skip')", s)
	}
}

// ResampleFilter selects the interpolation kernel used when resizing.
type ResampleFilter string

const (
	ResampleCatmullRom ResampleFilter = "catmull-rom" // Default, sharp and smooth.
	ResampleBilinear   ResampleFilter = "bilinear"
	ResampleNearest    ResampleFilter = "nearest" // Keeps hard edges for pixel art.
	ResampleLanczos    ResampleFilter = "lanczos"
)

// ParseResampleFilter validates a filter name. The empty string means
// ResampleCatmullRom.
func ParseResampleFilter(s string) (ResampleFilter, error) {
	switch f := ResampleFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ResampleCatmullRom, nil
	case ResampleCatmullRom, ResampleBilinear, ResampleNearest, ResampleLanczos:
		return f, nil
	default:
		return "", fmt.Errorf("unknown resample filter %q (use catmull-rom, bilinear, nearest or lanczos)", s)
	}
}

// SortOrder selects how directory entries are ordered.
type SortOrder string

const (
	// SortLexical orders file names byte by byte (default).
	SortLexical SortOrder = "lexical"

	// SortNatural compares digit runs numerically, so frame2 sorts before frame10.
	SortNatural SortOrder = "natural"
)

// ParseSortOrder validates a sort order name. The empty string means SortLexical.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortLexical, nil
	case SortLexical, SortNatural:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (use 'lexical' or 'natural')", s)
	}
}

// GifOptions is the mutable input to NewGifConfig. Zero values mean "unset"
// and pick the documented default.
type GifOptions struct {
	// FPS is frames per second. Mutually exclusive with Duration.
	FPS float64

	// Duration is seconds per frame. Mutually exclusive with FPS.
	Duration float64

	// Loop is the number of replays; 0 loops forever.
	Loop int

	// Width and Height are the target size; 0 leaves the axis unset.
	Width  int
	Height int

	MaintainAspectRatio bool
	Optimize            bool

	ErrorPolicy ErrorPolicy
	Resample    ResampleFilter
	Sort        SortOrder

	// MaxColors bounds the optimized palette (2..256). 0 means 256.
	MaxColors int

	// DisableDither turns off Floyd-Steinberg dithering for the fixed palette.
	DisableDither bool

	// Workers bounds parallel decode/transform work. 0 means one per CPU.
	Workers int
}

// GifConfig is the validated, immutable configuration of one conversion.
// Build it with NewGifConfig; the zero value is not valid.
type GifConfig struct {
	frameDuration time.Duration
	loop          int
	width         int
	height        int
	keepAspect    bool
	optimize      bool
	policy        ErrorPolicy
	resample      ResampleFilter
	sort          SortOrder
	maxColors     int
	dither        bool
	workers       int
}

// NewGifConfig validates opts and returns the canonical configuration.
// All violations are reported as ErrConfiguration.
func NewGifConfig(opts GifOptions) (GifConfig, error) {
	d, err := frameDuration(opts.FPS, opts.Duration)
	if err != nil {
		return GifConfig{}, configError(err)
	}

	if opts.Loop < 0 {
		return GifConfig{}, configError(fmt.Errorf("loop must be >= 0, got %d", opts.Loop))
	}
	if opts.Loop > math.MaxUint16 {
		return GifConfig{}, configError(fmt.Errorf("loop must be <= %d, got %d", math.MaxUint16, opts.Loop))
	}
	if err := checkDimension("width", opts.Width); err != nil {
		return GifConfig{}, configError(err)
	}
	if err := checkDimension("height", opts.Height); err != nil {
		return GifConfig{}, configError(err)
	}

	policy, err := ParseErrorPolicy(string(opts.ErrorPolicy))
	if err != nil {
		return GifConfig{}, configError(err)
	}
	resample, err := ParseResampleFilter(string(opts.Resample))
	if err != nil {
		return GifConfig{}, configError(err)
	}
	order, err := ParseSortOrder(string(opts.Sort))
	if err != nil {
		return GifConfig{}, configError(err)
	}

	colors := opts.MaxColors
	if colors == 0 {
		colors = DefaultMaxColors
	}
	if colors < 2 || colors > DefaultMaxColors {
		return GifConfig{}, configError(fmt.Errorf("colors must be between 2 and %d, got %d", DefaultMaxColors, opts.MaxColors))
	}

	if opts.Workers < 0 {
		return GifConfig{}, configError(fmt.Errorf("workers must be >= 0, got %d", opts.Workers))
	}

	return GifConfig{
		frameDuration: d,
		loop:          opts.Loop,
		width:         opts.Width,
		height:        opts.Height,
		keepAspect:    opts.MaintainAspectRatio,
		optimize:      opts.Optimize,
		policy:        policy,
		resample:      resample,
		sort:          order,
		maxColors:     colors,
		dither:        !opts.DisableDither,
		workers:       opts.Workers,
	}, nil
}

// DefaultGifConfig returns the configuration used when the caller gives no
// options: one second per frame, infinite loop, no resize.
func DefaultGifConfig() GifConfig {
	cfg, _ := NewGifConfig(GifOptions{})
	return cfg
}

func frameDuration(fps, seconds float64) (time.Duration, error) {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps < 0 {
		return 0, fmt.Errorf("fps must be a positive number, got %v", fps)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("duration must be a positive number, got %v", seconds)
	}

	var secs float64
	switch {
	case fps > 0 && seconds > 0:
		return 0, fmt.Errorf("set either fps (%v) or duration (%v), not both", fps, seconds)
	case fps > 0:
		secs = 1 / fps
	case seconds > 0:
		secs = seconds
	default:
		return DefaultFrameDuration, nil
	}

	// Checked in seconds so huge values cannot overflow time.Duration.
	if math.Round(secs*100) > maxDelayCentiseconds {
		return 0, fmt.Errorf("frame duration %gs exceeds the GIF maximum of %v", secs, time.Duration(maxDelayCentiseconds)*10*time.Millisecond)
	}
	d := time.Duration(seconds * float64(time.Second))
	if fps > 0 {
		d = time.Duration(float64(time.Second) / fps)
	}
	if d <= 0 {
		return 0, fmt.Errorf("frame duration rounds to zero (fps %v)", fps)
	}
	return d, nil
}

func checkDimension(name string, v int) error {
	if v < 0 {
		return fmt.Errorf("%s must be >= 0, got %d", name, v)
	}
	if v > MaxDimension {
		return fmt.Errorf("%s must be <= %d, got %d", name, MaxDimension, v)
	}
	return nil
}

func configError(err error) error {
	return NewError(ErrConfiguration, StageConfig, "", err)
}

func centiseconds(d time.Duration) int {
	return int(math.Round(float64(d) / float64(10*time.Millisecond)))
}

// FrameDuration is the canonical display time of every frame.
func (c GifConfig) FrameDuration() time.Duration { return c.frameDuration }

// Seconds returns the frame duration in seconds.
func (c GifConfig) Seconds() float64 { return c.frameDuration.Seconds() }

// FPS returns the frame rate derived from the frame duration.
func (c GifConfig) FPS() float64 { return float64(time.Second) / float64(c.frameDuration) }

// DelayCentiseconds returns the per-frame delay as stored in the GIF,
// rounded to the nearest centisecond. Durations shorter than 5ms are
// clamped to 1cs, since most viewers treat a 0 delay as "as slow as
// possible".
func (c GifConfig) DelayCentiseconds() int {
	cs := centiseconds(c.frameDuration)
	if cs < 1 {
		return 1
	}
	return cs
}

// Loop returns the replay count written to the GIF (0 = forever).
func (c GifConfig) Loop() int { return c.loop }

// Width returns the configured target width, 0 if unset.
func (c GifConfig) Width() int { return c.width }

// Height returns the configured target height, 0 if unset.
func (c GifConfig) Height() int { return c.height }

// MaintainAspectRatio reports whether resizing preserves the source aspect ratio.
func (c GifConfig) MaintainAspectRatio() bool { return c.keepAspect }

// Optimize reports whether frames are quantized to an adaptive palette.
func (c GifConfig) Optimize() bool { return c.optimize }

// ErrorPolicy returns the per-frame failure policy.
func (c GifConfig) ErrorPolicy() ErrorPolicy { return c.policy }

// Resample returns the resize kernel.
func (c GifConfig) Resample() ResampleFilter { return c.resample }

// Sort returns the directory ordering.
func (c GifConfig) Sort() SortOrder { return c.sort }

// MaxColors returns the palette bound used when optimizing.
func (c GifConfig) MaxColors() int { return c.maxColors }

// Dither reports whether the fixed palette is applied with error diffusion.
func (c GifConfig) Dither() bool { return c.dither }

// Workers returns the decode/transform parallelism, resolving 0 to the CPU count.
func (c GifConfig) Workers() int {
	if c.workers > 0 {
		return c.workers
	}
	return runtime.NumCPU()
}

// ShouldResize reports whether a target width or height is configured.
func (c GifConfig) ShouldResize() bool {
	return c.width > 0 || c.height > 0
}

// Options returns the options that reproduce this configuration. Timing is
// always expressed as Duration.
func (c GifConfig) Options() GifOptions {
	return GifOptions{
		Duration:            c.frameDuration.Seconds(),
		Loop:                c.loop,
		Width:               c.width,
		Height:              c.height,
		MaintainAspectRatio: c.keepAspect,
		Optimize:            c.optimize,
		ErrorPolicy:         c.policy,
		Resample:            c.resample,
		Sort:                c.sort,
		MaxColors:           c.maxColors,
		DisableDither:       !c.dither,
		Workers:             c.workers,
	}
}
