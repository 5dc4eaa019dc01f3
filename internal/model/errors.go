package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error matches exactly one of these with errors.Is.
var (
	// ErrInputNotFound is returned when an input path or the output directory does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrEmptyInput is returned when no recognized frames are found, or none survive skip mode.
	ErrEmptyInput = errors.New("no frames found")

	// ErrUnsupportedFormat is returned when a file's content matches no registered image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrCorruptImage is returned when a recognized image fails to decode.
	ErrCorruptImage = errors.New("corrupt image")

	// ErrTransform is returned when a frame cannot be normalized to the output canvas.
	ErrTransform = errors.New("transform failed")

	// ErrEncoding is returned when the GIF cannot be encoded or written.
	ErrEncoding = errors.New("encoding failed")

	// ErrConfiguration is returned for contradictory or out-of-range options.
	ErrConfiguration = errors.New("invalid configuration")
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageConfig    Stage = "config"
	StageResolve   Stage = "resolve"
	StageDecode    Stage = "decode"
	StageTransform Stage = "transform"
	StageAssemble  Stage = "assemble"
)

// Error is the concrete error type returned by every pipeline stage.
//
// Kind is one of the Err* sentinels above. Index is the zero-based frame
// position, or -1 when the error is not tied to a single frame.
type Error struct {
	Kind  error
	Stage Stage
	Path  string
	Index int
	Err   error
}

// NewError returns an *Error that is not tied to a frame.
func NewError(kind error, stage Stage, path string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Path: path, Index: -1, Err: err}
}

// NewFrameError returns an *Error for the frame identified by ref.
func NewFrameError(kind error, stage Stage, ref FrameReference, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Path: ref.Path, Index: ref.Index, Err: err}
}

// Error formats as "<stage> frame #<n> (<path>): <kind>: <cause>", omitting
// the parts that are not set.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Stage != "" {
		b.WriteString(string(e.Stage))
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " frame #%d", e.Index+1)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		if e.Kind != nil {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return strings.TrimPrefix(b.String(), " ")
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// KindOf returns the kind sentinel carried by err, or nil if err is not
// (and does not wrap) an *Error.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
