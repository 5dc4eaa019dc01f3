package decode

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/img2gif/internal/model"
	"github.com/handiism/img2gif/internal/testutil"
)

func TestDecode_Formats(t *testing.T) {
	dir := t.TempDir()
	paths := testutil.Formats(t, dir, 150, 120)

	tests := []struct {
		key    string
		format string
	}{
		{"png", "png"},
		{"jpg", "jpeg"},
		{"jpeg", "jpeg"},
		{"bmp", "bmp"},
	}

	d := NewDecoder(0)
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			ref := model.FrameReference{Path: paths[tt.key], Index: 0}
			frame, err := d.Decode(context.Background(), ref)
			if err != nil {
				t.Fatalf("Decode(%s) unexpected error: %v", ref.Path, err)
			}
			if frame.Format != tt.format {
				t.Errorf("Format = %q, want %q", frame.Format, tt.format)
			}
			if frame.Width() != 150 || frame.Height() != 120 {
				t.Errorf("size = %dx%d, want 150x120", frame.Width(), frame.Height())
			}
			if frame.Ref != ref {
				t.Errorf("Ref = %v, want %v", frame.Ref, ref)
			}
		})
	}
}

func TestDecode_SignatureBeatsExtension(t *testing.T) {
	dir := t.TempDir()
	// A JPEG saved with a .png name is still decoded.
	path := testutil.WriteJPEG(t, dir, "mislabeled.png", testutil.Gradient(20, 10))

	frame, err := NewDecoder(0).Decode(context.Background(), model.FrameReference{Path: path})
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if frame.Format != "jpeg" {
		t.Errorf("Format = %q, want jpeg", frame.Format)
	}
}

func TestDecode_GIFFrameKeepsLogicalScreen(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	frame := image.NewPaletted(image.Rect(10, 10, 20, 20), color.Palette{red, color.RGBA{}})
	anim := &gif.GIF{
		Image:  []*image.Paletted{frame},
		Delay:  []int{10},
		Config: image.Config{ColorModel: frame.Palette, Width: 100, Height: 100},
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatal(err)
	}
	path := testutil.WriteRaw(t, t.TempDir(), "offset.gif", buf.Bytes())

	got, err := NewDecoder(0).Decode(context.Background(), model.FrameReference{Path: path})
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if b := got.Image.Bounds(); b != image.Rect(0, 0, 100, 100) {
		t.Fatalf("Bounds() = %v, want the 100x100 logical screen", b)
	}
	if r, _, _, a := got.Image.At(15, 15).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("pixel inside the frame = (%d, %d), want opaque red", r>>8, a>>8)
	}
	if _, _, _, a := got.Image.At(0, 0).RGBA(); a != 0 {
		t.Errorf("pixel outside the frame alpha = %d, want transparent", a>>8)
	}
}

func TestDecode_Errors(t *testing.T) {
	dir := t.TempDir()
	text := testutil.WriteRaw(t, dir, "text.png", []byte("this is not an image"))
	empty := testutil.WriteRaw(t, dir, "empty.jpg", nil)
	truncated := testutil.WriteTruncatedPNG(t, dir, "truncated.png")

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "text with image extension", path: text, want: model.ErrUnsupportedFormat},
		{name: "empty file", path: empty, want: model.ErrUnsupportedFormat},
		{name: "truncated png", path: truncated, want: model.ErrCorruptImage},
		{name: "missing file", path: filepath.Join(dir, "gone.png"), want: model.ErrInputNotFound},
	}

	d := NewDecoder(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := model.FrameReference{Path: tt.path, Index: 4}
			_, err := d.Decode(context.Background(), ref)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("error %q should name %s", err, tt.path)
			}
			if !strings.Contains(err.Error(), "frame #5") {
				t.Errorf("error %q should name the frame index", err)
			}
		})
	}
}

func TestDecode_MaxPixels(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePNG(t, dir, "big.png", testutil.Solid(100, 100, testutil.Colors[0]))

	_, err := NewDecoder(5000).Decode(context.Background(), model.FrameReference{Path: path})
	if !errors.Is(err, model.ErrCorruptImage) {
		t.Errorf("Decode() error = %v, want ErrCorruptImage", err)
	}
}

func TestDecode_Canceled(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WritePNG(t, dir, "a.png", testutil.Solid(4, 4, testutil.Colors[1]))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDecoder(0).Decode(ctx, model.FrameReference{Path: path}); !errors.Is(err, context.Canceled) {
		t.Errorf("Decode() error = %v, want context.Canceled", err)
	}
}
