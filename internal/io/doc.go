// Package ioutils provides file system utilities.
//
// This package contains functions for:
//   - Atomic file writes
//   - Directory checks and creation
//
// # Atomic Writes
//
// WriteFileAtomic streams content into a renameio pending file next to the
// destination and renames it into place only after everything succeeded.
// A failed or canceled write never leaves a partial file behind:
//
//	n, err := ioutils.WriteFileAtomic(ctx, "/out/anim.gif", 0o644, func(w io.Writer) error {
//	    return gif.EncodeAll(w, anim)
//	})
//
// # Directories
//
//	ok, err := ioutils.DirExists("/out")
//	err = ioutils.EnsureDir("/home/me/.img2gif")
package ioutils
