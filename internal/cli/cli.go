// Package cli implements the blockstack command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockstack/pkg/buildinfo"
	"github.com/matzehuels/blockstack/pkg/config"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/observability"
	"github.com/matzehuels/blockstack/pkg/observability/prom"
	"github.com/matzehuels/blockstack/pkg/palette"
	"github.com/matzehuels/blockstack/pkg/project"
	"github.com/matzehuels/blockstack/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "blockstack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// status receives transient progress output such as spinners.
	status io.Writer

	// Flag values shared by every command.
	configPath string
	backend    string
	key        string
	verbose    bool

	cfg     *config.Config
	metrics *prom.Collector

	// lookupEnv reads configuration overrides; os.LookupEnv outside tests.
	lookupEnv func(string) (string, bool)
	// newID overrides block id generation.
	newID func() string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		status:    w,
		lookupEnv: os.LookupEnv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Blockstack composes code from visual blocks",
		Long: `Blockstack keeps a workspace of visual programming blocks (commands,
containers, reporters and booleans), lets you compose them by nesting and
plugging, and generates source code from the composition.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blockstack/config.toml)")
	flags.StringVar(&c.backend, "store", "", "store backend: "+strings.Join(backendNames(), ", "))
	flags.StringVar(&c.key, "key", "", "store key of the project")

	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.detachCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func backendNames() []string {
	names := make([]string, len(store.Backends))
	for i, b := range store.Backends {
		names[i] = string(b)
	}
	return names
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once per process: file, then environment,
// then flags.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path, required := c.configPath, true
	if path == "" {
		required = false
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
		}
		path = p
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(c.lookupEnv)
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if c.key != "" {
		cfg.Store.Key = c.key
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", path, "store", cfg.Store.Backend, "key", cfg.StoreKey())

	if cfg.Metrics.Textfile != "" && c.metrics == nil {
		c.metrics = prom.NewCollector()
		observability.SetProjectHooks(c.metrics)
		observability.SetStoreHooks(c.metrics)
	}
	c.cfg = &cfg
	return c.cfg, nil
}

func (c *CLI) writeMetrics() error {
	if c.metrics == nil || c.cfg == nil {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.cfg.Metrics.Textfile); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write metrics")
	}
	c.Logger.Debug("wrote metrics", "path", c.cfg.Metrics.Textfile)
	return nil
}

// =============================================================================
// Project Access
// =============================================================================

// openProject opens the configured store and loads the saved project.
func (c *CLI) openProject(ctx context.Context) (*project.Project, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	prog.done("opened store", "backend", cfg.Store.Backend)

	opts := project.Options{
		Store:    st,
		Backend:  cfg.Store.Backend,
		Key:      cfg.StoreKey(),
		Language: cfg.Language,
		Bounds:   geom.Rect{Right: cfg.Workspace.Width, Bottom: cfg.Workspace.Height},
		Logger:   c.Logger,

		IDGenerator: c.newID,
	}
	if cfg.Palette != "" {
		path := cfg.Palette
		opts.Palette = func() (*palette.Palette, error) { return palette.LoadFile(path) }
	}

	p := project.New(opts)
	found, err := p.Load(ctx)
	if err != nil {
		p.Close()
		return nil, err
	}
	c.Logger.Debug("opened project", "found", found, "blocks", p.Workspace().Len())
	return p, nil
}

// openStore connects the configured backend, animating a spinner while a
// network backend dials.
func (c *CLI) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch store.Backend(strings.ToLower(cfg.Store.Backend)) {
	case store.BackendRedis, store.BackendMongo, store.BackendPostgres:
		sp := newSpinner(ctx, c.status, "Connecting to "+cfg.Store.Backend+"...")
		sp.Start()
		defer sp.Stop()
	}
	return store.Open(ctx, cfg.StoreConfig())
}

// view runs fn against the loaded project without saving.
func (c *CLI) view(ctx context.Context, fn func(*project.Project) error) error {
	p, err := c.openProject(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	return fn(p)
}

// mutate runs fn against the loaded project and saves it when fn succeeds.
func (c *CLI) mutate(ctx context.Context, fn func(*project.Project) error) error {
	p, err := c.openProject(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := fn(p); err != nil {
		return err
	}
	return p.Save(ctx)
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parsePoint parses "x,y".
func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return geom.Point{}, errors.New(errors.ErrCodeInvalidInput, "point %q must be two numbers", s)
	}
	return geom.Point{X: x, Y: y}, nil
}

// resolveID accepts a full block id or a unique prefix of one.
func resolveID(p *project.Project, arg string) (string, error) {
	if err := errors.ValidateBlockID(arg); err != nil {
		return "", err
	}
	ws := p.Workspace()
	if _, ok := ws.Get(arg); ok {
		return arg, nil
	}
	var matches []string
	for _, id := range ws.IDs() {
		if strings.HasPrefix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.New(errors.ErrCodeBlockNotFound, "no block %q", arg)
	case 1:
		return matches[0], nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "block prefix %q is ambiguous (%d matches)", arg, len(matches))
}

// splitPair parses "name<sep>value".
func splitPair(s, sep, what string) (string, string, error) {
	k, v, ok := strings.Cut(s, sep)
	if !ok || k == "" {
		return "", "", errors.New(errors.ErrCodeInvalidInput, "%s %q must be name%svalue", what, s, sep)
	}
	return k, v, nil
}

// shortID abbreviates generated ids for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// readInput reads path, or r when path is "-".
func readInput(r io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(r)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
