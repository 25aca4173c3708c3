package project

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockstack/pkg/codegen"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/layout"
	"github.com/matzehuels/blockstack/pkg/palette"
	"github.com/matzehuels/blockstack/pkg/snap"
	"github.com/matzehuels/blockstack/pkg/store"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// Options configures a Project. Every field is optional.
type Options struct {
	// Store persists the project. Defaults to a memory store.
	Store store.Store
	// Backend names the store in metrics. Defaults to "memory" or "custom".
	Backend string
	// Key is the store key. Defaults to store.DefaultKey.
	Key string

	// Palette returns the palette used when nothing is saved. Defaults to
	// palette.Default.
	Palette func() (*palette.Palette, error)
	// Language is the generation language when none is given.
	Language string

	// Bounds is the drawing surface. Defaults to layout.DefaultBounds.
	Bounds geom.Rect
	// Trash is an optional deletion target.
	Trash *geom.Rect
	// Snap holds the hit-testing tolerances. Defaults to snap.DefaultOptions.
	Snap *snap.Options

	// IDGenerator overrides instance id generation.
	IDGenerator func() string
	Logger      *log.Logger
}

func (o *Options) setDefaults() {
	if o.Store == nil {
		o.Store = store.NewMemoryStore()
		if o.Backend == "" {
			o.Backend = string(store.BackendMemory)
		}
	}
	if o.Backend == "" {
		o.Backend = "custom"
	}
	if o.Key == "" {
		o.Key = store.DefaultKey
	}
	if o.Palette == nil {
		o.Palette = func() (*palette.Palette, error) { return palette.Default(), nil }
	}
	if o.Language == "" {
		o.Language = codegen.DefaultLanguage
	}
	if o.Bounds == (geom.Rect{}) {
		o.Bounds = layout.DefaultBounds
	}
	if o.Snap == nil {
		def := snap.DefaultOptions()
		o.Snap = &def
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Project ties a palette and a workspace to a store, a layout, a snap
// resolver and a code generator.
//
// A Project is not safe for concurrent use.
type Project struct {
	opts    Options
	logger  *log.Logger
	palette *palette.Palette
	state   *state
}

// state is everything derived from one workspace. Import and Load build a
// new state and swap it in whole.
type state struct {
	ws       *workspace.Workspace
	layout   *layout.Engine
	resolver *snap.Resolver
	gen      *codegen.Generator
}

// New creates a project with the default palette and an empty workspace.
// Call Load to restore saved state.
func New(opts Options) *Project {
	opts.setDefaults()
	p := &Project{opts: opts, logger: opts.Logger, palette: palette.Default()}
	p.state = p.newState()
	return p
}

func (p *Project) newState() *state {
	wsOpts := []workspace.Option{workspace.WithLogger(p.logger)}
	if p.opts.IDGenerator != nil {
		wsOpts = append(wsOpts, workspace.WithIDGenerator(p.opts.IDGenerator))
	}
	ws := workspace.New(wsOpts...)

	layoutOpts := []layout.Option{layout.WithBounds(p.opts.Bounds), layout.WithLogger(p.logger)}
	if p.opts.Trash != nil {
		layoutOpts = append(layoutOpts, layout.WithTrash(*p.opts.Trash))
	}
	eng := layout.Bind(ws, layoutOpts...)

	return &state{
		ws:       ws,
		layout:   eng,
		resolver: snap.NewResolver(ws, eng, *p.opts.Snap),
		gen:      codegen.New(ws, codegen.WithLogger(p.logger)),
	}
}

// Workspace returns the live workspace. The pointer changes after Load,
// Import and Reset.
func (p *Project) Workspace() *workspace.Workspace { return p.state.ws }

// Layout returns the geometry provider of the live workspace.
func (p *Project) Layout() *layout.Engine { return p.state.layout }

// Resolver returns the snap resolver of the live workspace.
func (p *Project) Resolver() *snap.Resolver { return p.state.resolver }

// Generator returns the code generator of the live workspace.
func (p *Project) Generator() *codegen.Generator { return p.state.gen }

// Palette returns the palette.
func (p *Project) Palette() *palette.Palette { return p.palette }

// Language returns the default generation language.
func (p *Project) Language() string { return p.opts.Language }

// Key returns the store key.
func (p *Project) Key() string { return p.opts.Key }

// Close releases the store.
func (p *Project) Close() error { return p.opts.Store.Close() }
