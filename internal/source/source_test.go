package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/handiism/img2gif/internal/model"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func names(refs []model.FrameReference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name()
	}
	return out
}

func TestResolve_Directory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "c.png", "a.JPG", "b.jpeg", "notes.txt", "d.BMP", "e.gif", "f.tiff", "g.webp", "README")
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	refs, err := NewResolver(model.SortLexical).Resolve(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}

	want := []string{"a.JPG", "b.jpeg", "c.png", "d.BMP", "e.gif", "f.tiff", "g.webp"}
	if got := names(refs); !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	for i, r := range refs {
		if r.Index != i {
			t.Errorf("refs[%d].Index = %d, want %d", i, r.Index, i)
		}
		if filepath.Dir(r.Path) != dir {
			t.Errorf("refs[%d].Path = %q, want it inside %q", i, r.Path, dir)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame_010.png", "frame_002.png", "frame_001.png", "frame_100.png")

	r := NewResolver(model.SortLexical)
	first, err := r.Resolve(context.Background(), []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), []string{dir})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: Resolve() = %v, want %v", i, again, first)
		}
	}
}

func TestResolve_NaturalOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame10.png", "frame2.png", "frame1.png", "frame100.png")

	lexical, err := NewResolver(model.SortLexical).Resolve(context.Background(), []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := names(lexical), []string{"frame1.png", "frame10.png", "frame100.png", "frame2.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("lexical = %v, want %v", got, want)
	}

	natural, err := NewResolver(model.SortNatural).Resolve(context.Background(), []string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := names(natural), []string{"frame1.png", "frame2.png", "frame10.png", "frame100.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("natural = %v, want %v", got, want)
	}
}

func TestResolve_ExplicitList(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.png", "a.png", "skip.txt")

	inputs := []string{
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "skip.txt"),
		filepath.Join(dir, "a.png"),
	}
	refs, err := NewResolver(model.SortLexical).Resolve(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if got, want := names(refs), []string{"b.png", "a.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v (caller order)", got, want)
	}
	if refs[1].Index != 1 {
		t.Errorf("refs[1].Index = %d, want 1", refs[1].Index)
	}
}

func TestResolve_SingleFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "only.png")

	refs, err := NewResolver("").Resolve(context.Background(), []string{filepath.Join(dir, "only.png")})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if len(refs) != 1 || refs[0].Name() != "only.png" {
		t.Errorf("Resolve() = %v, want [only.png]", refs)
	}
}

func TestResolve_Errors(t *testing.T) {
	empty := t.TempDir()
	textOnly := t.TempDir()
	touch(t, textOnly, "a.txt", "b.md")

	tests := []struct {
		name   string
		inputs []string
		want   error
	}{
		{name: "missing directory", inputs: []string{filepath.Join(empty, "nope")}, want: model.ErrInputNotFound},
		{name: "missing file in list", inputs: []string{filepath.Join(textOnly, "a.txt"), filepath.Join(empty, "x.png")}, want: model.ErrInputNotFound},
		{name: "directory in list", inputs: []string{empty, textOnly}, want: model.ErrInputNotFound},
		{name: "empty directory", inputs: []string{empty}, want: model.ErrEmptyInput},
		{name: "no recognized files", inputs: []string{textOnly}, want: model.ErrEmptyInput},
		{name: "unsupported single file", inputs: []string{filepath.Join(textOnly, "a.txt")}, want: model.ErrEmptyInput},
		{name: "no inputs", inputs: nil, want: model.ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(model.SortLexical).Resolve(context.Background(), tt.inputs)
			if !errors.Is(err, tt.want) {
				t.Errorf("Resolve(%v) error = %v, want %v", tt.inputs, err, tt.want)
			}
		})
	}
}

func TestNameLess(t *testing.T) {
	tests := []struct {
		order model.SortOrder
		a, b  string
		want  bool
	}{
		{model.SortNatural, "frame2", "frame10", true},
		{model.SortNatural, "frame10", "frame2", false},
		{model.SortNatural, "a", "b", true},
		{model.SortNatural, "frame", "frame1", true},
		{model.SortNatural, "x9y", "x9z", true},
		{model.SortNatural, "img99999999999999999999", "img100000000000000000000", true},
		{model.SortLexical, "frame2", "frame10", false},
		{model.SortLexical, "frame10", "frame2", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.order)+"/"+tt.a+"<"+tt.b, func(t *testing.T) {
			if got := nameLess(tt.order)(tt.a, tt.b); got != tt.want {
				t.Errorf("nameLess(%s)(%q, %q) = %v, want %v", tt.order, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	for _, want := range []string{".png", ".jpg", ".jpeg", ".bmp"} {
		found := false
		for _, e := range exts {
			if e == want {
				found = true
			}
		}
		if !found {
			t.Errorf("SupportedExtensions() = %v, missing %q", exts, want)
		}
	}

	exts[0] = ".mutated"
	if IsSupported("x.mutated") {
		t.Error("SupportedExtensions() should return a copy")
	}
}
