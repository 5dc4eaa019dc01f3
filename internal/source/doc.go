// Package source turns the caller's input into an ordered list of frame
// references.
//
// A single directory argument lists the recognized image files directly
// inside it, sorted by file name so the order never depends on the
// filesystem. Any other argument list is taken as an explicit, already
// ordered list of files:
//
//	r := source.NewResolver(model.SortLexical)
//	refs, err := r.Resolve(ctx, []string{"./frames"})
//	refs, err = r.Resolve(ctx, []string{"b.png", "a.png"}) // keeps b, a
//
// Files whose extension is not recognized are dropped silently. Missing
// paths fail with model.ErrInputNotFound and an empty result fails with
// model.ErrEmptyInput. Nothing is decoded here.
package source
