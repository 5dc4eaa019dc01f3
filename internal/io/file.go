package ioutils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteFileAtomic writes a file through write so that path either keeps its
// previous content or holds the complete new content.
//
// The data goes to a renameio pending file in the same directory, which is
// synced and renamed over path. If write fails, ctx is canceled, or any step
// after it fails, the pending file is removed and path is left untouched.
//
// Parameters:
//   - ctx: checked before every write, so cancellation stops long encodes
//   - path: destination file; its directory must exist
//   - perm: mode of the final file
//   - write: produces the content
//
// Returns the number of bytes written.
//
// Example:
//
//	n, err := WriteFileAtomic(ctx, "out.gif", 0o644, func(w io.Writer) error {
//	    return gif.EncodeAll(w, anim)
//	})
func WriteFileAtomic(ctx context.Context, path string, perm os.FileMode, write func(w io.Writer) error) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	pending, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithStaticPermissions(perm))
	if err != nil {
		return 0, err
	}
	defer pending.Cleanup()

	cw := &contextWriter{ctx: ctx, w: pending}
	if err := write(cw); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return 0, fmt.Errorf("replace %s: %w", path, err)
	}
	return cw.n, nil
}

// contextWriter fails every Write once its context is done.
type contextWriter struct {
	ctx context.Context
	w   io.Writer
	n   int64
}

func (c *contextWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// DirExists reports whether path names an existing directory.
//
// A missing path is (false, nil); any other stat failure is returned.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
