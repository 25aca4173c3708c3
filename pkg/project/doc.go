// Package project ties a block palette and a workspace to persistent storage.
//
// A [Project] owns the palette, the live workspace with its layout engine,
// snap resolver and code generator, and a [store.Store] that holds the saved
// snapshot under one key. Load and Import rebuild the workspace aside and swap
// it in only when the whole payload applies, so a bad payload leaves the
// project untouched.
//
//	p := project.New(project.Options{Store: st})
//	if _, err := p.Load(ctx); err != nil {
//		return err
//	}
//	code, err := p.Generate(ctx, "python")
//
// Every operation reports to the hooks registered in package observability.
package project
