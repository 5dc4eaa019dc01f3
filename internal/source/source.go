package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"github.com/handiism/img2gif/internal/model"
)

// Recognized image extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// SupportedExtensions returns the recognized extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(imageExtensions))
	for ext := range imageExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupported reports whether path has a recognized image extension.
func IsSupported(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Resolver resolves inputs into frame references.
type Resolver struct {
	order model.SortOrder
}

// NewResolver creates a Resolver that sorts directory listings by order.
func NewResolver(order model.SortOrder) *Resolver {
	if order == "" {
		order = model.SortLexical
	}
	return &Resolver{order: order}
}

// Resolve returns the ordered, non-empty frame references for inputs.
func (r *Resolver) Resolve(ctx context.Context, inputs []string) ([]model.FrameReference, error) {
	if len(inputs) == 0 {
		return nil, model.NewError(model.ErrEmptyInput, model.StageResolve, "", errors.New("no input given"))
	}

	var paths []string
	if len(inputs) == 1 {
		info, err := stat(inputs[0])
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			paths, err = r.listDir(ctx, inputs[0])
			if err != nil {
				return nil, err
			}
			if len(paths) == 0 {
				return nil, model.NewError(model.ErrEmptyInput, model.StageResolve, inputs[0],
					fmt.Errorf("no files with extensions %s", strings.Join(SupportedExtensions(), " ")))
			}
			return references(paths), nil
		}
	}

	for _, p := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := stat(p)
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() {
			return nil, model.NewError(model.ErrInputNotFound, model.StageResolve, p, errors.New("not a regular file"))
		}
		if IsSupported(p) {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, model.NewError(model.ErrEmptyInput, model.StageResolve, strings.Join(inputs, ", "),
			errors.New("no file has a recognized image extension"))
	}
	return references(paths), nil
}

// listDir returns the recognized regular files directly inside dir, sorted
// by file name.
func (r *Resolver) listDir(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, model.NewError(model.ErrInputNotFound, model.StageResolve, dir, err)
	}

	var names []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !IsSupported(e.Name()) {
			continue
		}
		// Follow symlinks; a link to a regular file counts as a frame.
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}

	less := nameLess(r.order)
	sort.SliceStable(names, func(i, j int) bool { return less(names[i], names[j]) })

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// nameLess returns the file name comparison for order. Natural order
// compares digit runs by value, so "frame2.png" sorts before "frame10.png".
func nameLess(order model.SortOrder) func(a, b string) bool {
	if order == model.SortNatural {
		return natural.Less
	}
	return func(a, b string) bool { return a < b }
}

func stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewError(model.ErrInputNotFound, model.StageResolve, path, errors.New("no such file or directory"))
		}
		return nil, model.NewError(model.ErrInputNotFound, model.StageResolve, path, err)
	}
	return info, nil
}

func references(paths []string) []model.FrameReference {
	refs := make([]model.FrameReference, len(paths))
	for i, p := range paths {
		refs[i] = model.FrameReference{Path: p, Index: i}
	}
	return refs
}
