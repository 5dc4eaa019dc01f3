package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/img2gif/internal/model"
	"github.com/handiism/img2gif/internal/testutil"
)

// isolate keeps the user's settings file and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"IMG2GIF_FPS", "IMG2GIF_DURATION", "IMG2GIF_LOOP", "IMG2GIF_ON_ERROR"} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func loopCount(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	return g.LoopCount
}

func TestRun_Convert(t *testing.T) {
	isolate(t)
	in := t.TempDir()
	testutil.Sequence(t, in, 3, 16, 16, "frame")
	out := filepath.Join(t.TempDir(), "out.gif")

	code, stdout, stderr := execute(t, "--fps", "10", "--loop", "2", in, out)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "3 frames") {
		t.Errorf("stdout missing summary:\n%s", stdout)
	}
	if got := loopCount(t, out); got != 2 {
		t.Errorf("LoopCount = %d, want 2", got)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	isolate(t)
	good := t.TempDir()
	testutil.Sequence(t, good, 2, 8, 8, "frame")
	bad := t.TempDir()
	testutil.WriteTruncatedPNG(t, bad, "a.png")
	out := filepath.Join(t.TempDir(), "out.gif")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "missing output", args: []string{good}, want: exitUsage},
		{name: "unknown flag", args: []string{"--bogus", good, out}, want: exitUsage},
		{name: "fps and duration", args: []string{"--fps", "10", "--duration", "1", good, out}, want: exitUsage},
		{name: "bad policy", args: []string{"--on-error", "retry", good, out}, want: exitUsage},
		{name: "verbose and quiet", args: []string{"-v", "-q", good, out}, want: exitUsage},
		{name: "missing config file", args: []string{"--config", filepath.Join(good, "none.toml"), good, out}, want: exitUsage},
		{name: "corrupt frame", args: []string{bad, out}, want: exitFailure},
		{name: "missing input", args: []string{filepath.Join(good, "nope"), out}, want: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(t, tt.args...)
			if code != tt.want {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.want, stderr)
			}
			if !strings.Contains(stderr, "Error") {
				t.Errorf("stderr has no error message: %q", stderr)
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Errorf("output written on failure")
			}
		})
	}
}

func TestRun_ErrorNamesFrame(t *testing.T) {
	isolate(t)
	in := t.TempDir()
	testutil.Sequence(t, in, 2, 8, 8, "frame")
	testutil.WriteRaw(t, in, "frame_003.png", []byte("not an image"))
	out := filepath.Join(t.TempDir(), "out.gif")

	code, _, stderr := execute(t, "-q", in, out)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	for _, want := range []string{"decode", "frame #3", "frame_003.png", "unsupported image format"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr %q missing %q", stderr, want)
		}
	}
}

func TestRun_Precedence(t *testing.T) {
	isolate(t)
	in := t.TempDir()
	testutil.Sequence(t, in, 2, 8, 8, "frame")
	cfgFile := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(cfgFile, []byte("loop = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		env  string
		args []string
		want int
	}{
		{name: "settings file", args: []string{"--config", cfgFile}, want: 3},
		{name: "environment beats file", env: "5", args: []string{"--config", cfgFile}, want: 5},
		{name: "flag beats both", env: "5", args: []string{"--config", cfgFile, "--loop", "1"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("IMG2GIF_LOOP", tt.env)
			out := filepath.Join(t.TempDir(), "out.gif")
			args := append(append([]string{"-q"}, tt.args...), in, out)

			code, _, stderr := execute(t, args...)
			if code != exitOK {
				t.Fatalf("exit code = %d, stderr: %s", code, stderr)
			}
			if got := loopCount(t, out); got != tt.want {
				t.Errorf("LoopCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRun_ListFormats(t *testing.T) {
	isolate(t)
	code, stdout, _ := execute(t, "--list-formats")
	if code != exitOK {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, want := range []string{".png", ".jpeg", ".bmp", "webp"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %s:\n%s", want, stdout)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{context.Canceled, exitInterrupted},
		{fmt.Errorf("decode: %w", context.Canceled), exitInterrupted},
		{usageError{errors.New("bad flag")}, exitUsage},
		{model.NewError(model.ErrConfiguration, model.StageConfig, "", nil), exitUsage},
		{model.NewError(model.ErrEncoding, model.StageAssemble, "out.gif", nil), exitFailure},
		{errors.New("other"), exitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRun_VerboseWithWorkers(t *testing.T) {
	isolate(t)
	in := t.TempDir()
	testutil.Sequence(t, in, 32, 8, 8, "frame")
	out := filepath.Join(t.TempDir(), "out.gif")

	code, stdout, stderr := execute(t, "-v", "--workers", "8", in, out)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if got := strings.Count(stderr, "decoded frame"); got != 32 {
		t.Errorf("stderr has %d decoded frame lines, want 32", got)
	}
	if !strings.Contains(stdout, "32 frames") {
		t.Errorf("stdout missing summary:\n%s", stdout)
	}
}
