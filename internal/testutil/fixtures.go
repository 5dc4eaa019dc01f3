// Package testutil generates image fixtures for package tests: solid color
// sequences, the same picture in several formats, frames of different sizes
// and broken files.
package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// Colors used by Sequence, in order.
var Colors = []color.RGBA{
	{255, 100, 100, 255}, // red
	{100, 255, 100, 255}, // green
	{100, 100, 255, 255}, // blue
	{255, 255, 100, 255}, // yellow
	{255, 100, 255, 255}, // magenta
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Gradient returns a w×h image with red increasing left to right and green
// increasing top to bottom.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(255 * x / w), uint8(255 * y / h), 128, 255})
		}
	}
	return img
}

// WritePNG encodes img as PNG at dir/name and returns the path.
func WritePNG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	return write(t, dir, name, func(f *os.File) error { return png.Encode(f, img) })
}

// WriteJPEG encodes img as JPEG at dir/name and returns the path.
func WriteJPEG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	return write(t, dir, name, func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 95}) })
}

// WriteBMP encodes img as BMP at dir/name and returns the path.
func WriteBMP(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	return write(t, dir, name, func(f *os.File) error { return bmp.Encode(f, img) })
}

// WriteRaw writes data verbatim at dir/name and returns the path.
func WriteRaw(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteTruncatedPNG writes a PNG with a valid signature whose data stops
// halfway, so the format is recognized but decoding fails.
func WriteTruncatedPNG(t testing.TB, dir, name string) string {
	t.Helper()
	full := WritePNG(t, dir, name, Gradient(32, 32))
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}
	return WriteRaw(t, dir, name, data[:len(data)/2])
}

// Sequence writes count solid-color PNG frames named prefix_001.png,
// prefix_002.png, ... and returns their paths in order.
func Sequence(t testing.TB, dir string, count, w, h int, prefix string) []string {
	t.Helper()
	paths := make([]string, count)
	for i := 0; i < count; i++ {
		c := Colors[i%len(Colors)]
		paths[i] = WritePNG(t, dir, fmt.Sprintf("%s_%03d.png", prefix, i+1), Solid(w, h, c))
	}
	return paths
}

// Formats writes the same gradient as PNG, JPG, JPEG and BMP.
func Formats(t testing.TB, dir string, w, h int) map[string]string {
	t.Helper()
	img := Gradient(w, h)
	return map[string]string{
		"png":  WritePNG(t, dir, "test_image.png", img),
		"jpg":  WriteJPEG(t, dir, "test_image.jpg", img),
		"jpeg": WriteJPEG(t, dir, "test_image.jpeg", img),
		"bmp":  WriteBMP(t, dir, "test_image.bmp", img),
	}
}

// Sizes writes frames of 100x100, 200x100, 100x200 and 300x300.
func Sizes(t testing.TB, dir string) []string {
	t.Helper()
	sizes := [][2]int{{100, 100}, {200, 100}, {100, 200}, {300, 300}}
	paths := make([]string, len(sizes))
	for i, s := range sizes {
		name := fmt.Sprintf("size_%dx%d.png", s[0], s[1])
		paths[i] = WritePNG(t, dir, name, Solid(s[0], s[1], Colors[i%len(Colors)]))
	}
	return paths
}

func write(t testing.TB, dir, name string, encode func(*os.File) error) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	return path
}
