package project

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/drag"
	errs "github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/observability"
	"github.com/matzehuels/blockstack/pkg/palette"
	"github.com/matzehuels/blockstack/pkg/snapshot"
	"github.com/matzehuels/blockstack/pkg/store"
)

// Snapshot operation names reported to hooks.
const (
	OpLoad   = "load"
	OpSave   = "save"
	OpImport = "import"
	OpExport = "export"
)

// =============================================================================
// Persistence
// =============================================================================

// Load restores the saved project and reports whether saved state existed.
// Without it the project starts over with the configured palette and an
// empty workspace. A saved payload without definitions gets the configured
// palette too.
func (p *Project) Load(ctx context.Context) (bool, error) {
	start := time.Now()
	observability.Project().OnSnapshotStart(ctx, OpLoad)
	found, err := p.load(ctx)
	observability.Project().OnSnapshotComplete(ctx, OpLoad, p.state.ws.Len(), time.Since(start), err)
	if err == nil {
		p.logger.Debug("loaded project", "key", p.opts.Key, "found", found, "blocks", p.state.ws.Len())
	}
	return found, err
}

func (p *Project) load(ctx context.Context) (bool, error) {
	data, err := p.read(ctx)
	if errors.Is(err, store.ErrNotFound) {
		pal, err := p.opts.Palette()
		if err != nil {
			return false, err
		}
		p.palette, p.state = pal, p.newState()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s, err := snapshot.Decode(data)
	if err != nil {
		return true, err
	}
	var pal *palette.Palette
	if s.Has(snapshot.PartDefinitions) {
		pal, err = palette.New(s.Definitions...)
	} else {
		pal, err = p.opts.Palette()
	}
	if err != nil {
		return true, err
	}
	st, err := p.restore(s)
	if err != nil {
		return true, err
	}
	p.palette, p.state = pal, st
	return true, nil
}

// Save writes the palette and every block to the store.
func (p *Project) Save(ctx context.Context) error {
	start := time.Now()
	observability.Project().OnSnapshotStart(ctx, OpSave)
	err := p.save(ctx, p.palette, p.state)
	observability.Project().OnSnapshotComplete(ctx, OpSave, p.state.ws.Len(), time.Since(start), err)
	return err
}

func (p *Project) save(ctx context.Context, pal *palette.Palette, st *state) error {
	s, err := snapshot.Capture(st.ws, pal.Definitions())
	if err != nil {
		return err
	}
	s.SavedAt = time.Now().UnixMilli()
	data, err := snapshot.Encode(s)
	if err != nil {
		return err
	}
	if err := p.write(ctx, data); err != nil {
		return err
	}
	p.logger.Debug("saved project", "key", p.opts.Key, "blocks", len(s.Instances), "bytes", len(data))
	return nil
}

// Reset deletes the saved state and starts over with the configured palette
// and an empty workspace.
func (p *Project) Reset(ctx context.Context) error {
	pal, err := p.opts.Palette()
	if err != nil {
		return err
	}
	if err := p.opts.Store.Delete(ctx, p.opts.Key); err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "delete %s", p.opts.Key)
	}
	p.palette, p.state = pal, p.newState()
	p.logger.Debug("reset project", "key", p.opts.Key)
	return nil
}

func (p *Project) read(ctx context.Context) ([]byte, error) {
	start := time.Now()
	data, err := p.opts.Store.Load(ctx, p.opts.Key)
	found := err == nil
	hookErr := err
	if errors.Is(err, store.ErrNotFound) {
		hookErr = nil
	}
	observability.Store().OnStoreRead(ctx, p.opts.Backend, len(data), found, time.Since(start), hookErr)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, errs.Wrap(errs.ErrCodeStoreUnavailable, err, "load %s", p.opts.Key)
	}
	return data, err
}

func (p *Project) write(ctx context.Context, data []byte) error {
	start := time.Now()
	err := p.opts.Store.Save(ctx, p.opts.Key, data)
	observability.Store().OnStoreWrite(ctx, p.opts.Backend, len(data), time.Since(start), err)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStoreUnavailable, err, "save %s", p.opts.Key)
	}
	return nil
}

// restore builds a fresh state holding the instances of s.
func (p *Project) restore(s *snapshot.Snapshot) (*state, error) {
	st := p.newState()
	if s.Has(snapshot.PartInstances) {
		if err := snapshot.Restore(st.ws, s, p.logger); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// =============================================================================
// Code Generation
// =============================================================================

// Generate emits code for every root block. An empty lang uses the project
// default.
func (p *Project) Generate(ctx context.Context, lang string) (string, error) {
	if lang == "" {
		lang = p.opts.Language
	}
	start := time.Now()
	observability.Project().OnGenerateStart(ctx, lang, p.state.ws.Len())
	code, err := p.state.gen.Generate(lang)
	observability.Project().OnGenerateComplete(ctx, lang, len(code), time.Since(start), err)
	if err != nil {
		return "", err
	}
	p.logger.Debug("generated", "lang", lang, "bytes", len(code), "duration", time.Since(start))
	return code, nil
}

// =============================================================================
// Export and Import
// =============================================================================

// Export encodes the sections named by kind (see snapshot.ParseKind). The
// project kind also carries code generated for lang.
func (p *Project) Export(ctx context.Context, kind, lang string) ([]byte, error) {
	start := time.Now()
	observability.Project().OnSnapshotStart(ctx, OpExport)
	data, err := p.export(ctx, kind, lang)
	observability.Project().OnSnapshotComplete(ctx, OpExport, p.state.ws.Len(), time.Since(start), err)
	return data, err
}

func (p *Project) export(ctx context.Context, kind, lang string) ([]byte, error) {
	parts, err := snapshot.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	s, err := snapshot.Capture(p.state.ws, p.palette.Definitions())
	if err != nil {
		return nil, err
	}
	if parts&snapshot.PartCode != 0 {
		if lang == "" {
			lang = p.opts.Language
		}
		code, err := p.Generate(ctx, lang)
		if err != nil {
			return nil, err
		}
		s.Code, s.Language = code, lang
		s.Parts |= snapshot.PartCode
	}
	s = s.Only(parts)
	s.SavedAt = time.Now().UnixMilli()
	return snapshot.Encode(s)
}

// ImportResult describes what an import replaced.
type ImportResult struct {
	Parts  snapshot.Part
	Blocks int
	// Code and Language are set when the payload carried generated code.
	Code     string
	Language string
}

// Import applies a snapshot payload and saves the result.
//
// Definitions, when present, replace the palette. Instances, when present,
// replace the workspace. The import is all-or-nothing: the new palette and
// workspace are built aside, saved, and swapped in only when the save
// succeeds.
func (p *Project) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	start := time.Now()
	observability.Project().OnSnapshotStart(ctx, OpImport)
	res, pal, st, err := p.importSnapshot(data)
	blocks := 0
	if res != nil {
		blocks = res.Blocks
	}
	observability.Project().OnSnapshotComplete(ctx, OpImport, blocks, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	observability.Project().OnSnapshotStart(ctx, OpSave)
	err = p.save(ctx, pal, st)
	observability.Project().OnSnapshotComplete(ctx, OpSave, st.ws.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	p.palette, p.state = pal, st
	return res, nil
}

func (p *Project) importSnapshot(data []byte) (*ImportResult, *palette.Palette, *state, error) {
	s, err := snapshot.Decode(data)
	if err != nil {
		return nil, nil, nil, err
	}
	if s.Parts == snapshot.PartNone {
		return nil, nil, nil, errs.New(errs.ErrCodeInvalidSnapshot, "snapshot has no definitions, instances or code")
	}

	pal := p.palette
	if s.Has(snapshot.PartDefinitions) {
		if pal, err = palette.New(s.Definitions...); err != nil {
			return nil, nil, nil, err
		}
	}
	st := p.state
	if s.Has(snapshot.PartInstances) {
		if st, err = p.restore(s); err != nil {
			return nil, nil, nil, err
		}
	}

	res := &ImportResult{Parts: s.Parts, Blocks: st.ws.Len()}
	if s.Has(snapshot.PartCode) {
		res.Code, res.Language = s.Code, s.Language
	}
	p.logger.Debug("imported snapshot", "definitions", len(s.Definitions), "instances", len(s.Instances))
	return res, pal, st, nil
}

// =============================================================================
// Dragging
// =============================================================================

// Drag moves block id along path with a drag session and drops it at the
// last point. The pointer grabs the block at its top-left corner.
func (p *Project) Drag(ctx context.Context, id string, path ...geom.Point) (drag.Outcome, error) {
	if len(path) == 0 {
		return drag.Outcome{}, errs.New(errs.ErrCodeInvalidInput, "drag needs at least one point")
	}
	box, ok := p.state.layout.BoundingBox(id)
	if !ok {
		return drag.Outcome{}, errs.New(errs.ErrCodeBlockNotFound, "block %s not found", id)
	}
	sess := drag.NewSession(p.state.ws, p.state.resolver, p.logger)
	if err := sess.Start(id, box.Origin()); err != nil {
		return drag.Outcome{}, err
	}
	return p.finishDrag(ctx, sess, path)
}

// DropNew instantiates def at the first point of path, drags it along the
// rest and drops it at the last point.
func (p *Project) DropNew(ctx context.Context, def block.Definition, path ...geom.Point) (drag.Outcome, error) {
	if len(path) == 0 {
		return drag.Outcome{}, errs.New(errs.ErrCodeInvalidInput, "drop needs at least one point")
	}
	sess := drag.NewSession(p.state.ws, p.state.resolver, p.logger)
	if _, err := sess.StartFromPalette(def, path[0]); err != nil {
		return drag.Outcome{}, err
	}
	return p.finishDrag(ctx, sess, path)
}

func (p *Project) finishDrag(ctx context.Context, sess *drag.Session, path []geom.Point) (drag.Outcome, error) {
	last := len(path) - 1
	for _, pt := range path[:last] {
		if err := sess.Move(pt); err != nil {
			out, _ := sess.Cancel()
			return out, err
		}
	}
	out, err := sess.End(path[last])
	observability.Project().OnDrop(ctx, out.State.String(), out.Target.Kind.String())
	return out, err
}
