package codegen

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// DefaultLanguage is the fallback template language.
const DefaultLanguage = "javascript"

// Language describes a target language.
type Language struct {
	Name string
	// Indent is non-empty for indentation-sensitive languages. It is applied
	// to a body whose placeholder starts an unindented template line.
	Indent string
}

// IndentSensitive reports whether nesting is expressed by indentation.
func (l Language) IndentSensitive() bool { return l.Indent != "" }

var builtin = []Language{
	{Name: "javascript"},
	{Name: "python", Indent: "    "},
	{Name: "c"},
}

// Languages returns the built-in target languages.
func Languages() []Language { return slices.Clone(builtin) }

// conventionalBodies are the placeholder names that receive a body when the
// block designates none.
var conventionalBodies = []string{"body", "then", "else"}

// =============================================================================
// Generator
// =============================================================================

// Option configures a Generator.
type Option func(*Generator)

// WithFallback sets the language whose template is used when a block has none
// for the requested language.
func WithFallback(lang string) Option {
	return func(g *Generator) { g.fallback = lang }
}

// WithLanguages registers additional target languages, replacing built-ins of
// the same name.
func WithLanguages(langs ...Language) Option {
	return func(g *Generator) {
		for _, l := range langs {
			g.langs[l.Name] = l
		}
	}
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// Generator produces source text from the blocks of a workspace.
type Generator struct {
	ws       *workspace.Workspace
	fallback string
	langs    map[string]Language
	logger   *log.Logger
}

// New creates a generator over ws.
func New(ws *workspace.Workspace, opts ...Option) *Generator {
	g := &Generator{
		ws:       ws,
		fallback: DefaultLanguage,
		langs:    make(map[string]Language, len(builtin)),
		logger:   log.Default(),
	}
	for _, l := range builtin {
		g.langs[l.Name] = l
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Language returns the settings for name. Unknown names are accepted and
// generate through the fallback templates.
func (g *Generator) Language(name string) Language {
	if l, ok := g.langs[name]; ok {
		return l
	}
	return Language{Name: name}
}

// Languages returns the names of the registered languages, sorted.
func (g *Generator) Languages() []string {
	return slices.Sorted(maps.Keys(g.langs))
}

// Generate emits every root block in registry order, skipping empty output,
// joined by newlines. Each call uses a fresh [Run].
func (g *Generator) Generate(lang string) (string, error) {
	r, err := g.NewRun(lang)
	if err != nil {
		return "", err
	}
	return r.Roots(), nil
}

// NewRun starts a generation run for lang.
func (g *Generator) NewRun(lang string) (*Run, error) {
	if err := errors.ValidateLanguage(lang); err != nil {
		return nil, err
	}
	return &Run{
		g:         g,
		lang:      g.Language(lang),
		functions: make(map[string]string),
	}, nil
}

// =============================================================================
// Run
// =============================================================================

// Run is one generation pass. It owns the function table filled by function
// definitions and read by call sites; the table lives only as long as the run.
type Run struct {
	g         *Generator
	lang      Language
	functions map[string]string
}

// Language returns the target language of the run.
func (r *Run) Language() Language { return r.lang }

// Functions returns a copy of the function table.
func (r *Run) Functions() map[string]string { return maps.Clone(r.functions) }

// Roots generates every parentless block in registry order.
func (r *Run) Roots() string {
	var parts []string
	for _, b := range r.g.ws.Roots() {
		if code := r.generate(b); code != "" {
			parts = append(parts, code)
		}
	}
	r.g.logger.Debug("generated code", "lang", r.lang.Name, "roots", len(parts), "functions", len(r.functions))
	return strings.Join(parts, "\n")
}

// Block generates the code of block id and its descendants. An unknown id
// yields the empty string.
func (r *Run) Block(id string) string {
	b, ok := r.g.ws.Get(id)
	if !ok {
		return ""
	}
	return r.generate(b)
}

func (r *Run) template(b *block.Instance) string {
	if t, ok := b.Template(r.lang.Name); ok {
		return t
	}
	if t, ok := b.Template(r.g.fallback); ok {
		return t
	}
	return ""
}

var definitionRe = regexp.MustCompile(`^(\w+)\s*=\s*%(\w+)$`)

func (r *Run) generate(b *block.Instance) string {
	tmpl := r.template(b)

	inputs := make(map[string]value, len(b.Inputs))
	for _, name := range b.InputOrder {
		in := b.Inputs[name]
		text := in.Literal
		if in.Occupied() {
			if child, ok := r.g.ws.Get(in.ChildID); ok {
				text = r.generate(child)
			}
		}
		inputs[name] = value{text: text}
	}

	var inner []string
	for _, id := range b.Nested {
		if code := r.Block(id); code != "" {
			inner = append(inner, code)
		}
	}
	body := strings.Join(inner, "\n")

	bodies := bodyNames(b)
	withInputs := r.fill(tmpl, inputs)

	if m := definitionRe.FindStringSubmatch(withInputs); m != nil && bodies[m[2]] && body != "" {
		r.functions[m[1]] = body
		r.g.logger.Debug("hoisted function", "name", m[1], "block", b.ID)
		return ""
	}
	if fn, ok := r.functions[strings.TrimSpace(withInputs)]; ok {
		return fn
	}

	all := maps.Clone(inputs)
	for name := range bodies {
		all[name] = value{text: body, body: true}
	}
	return cleanup(r.fill(tmpl, all))
}

// bodyNames returns the placeholder names that receive b's nested code: the
// designated container var, or the conventional names when there is none.
// Input names always win over body names.
func bodyNames(b *block.Instance) map[string]bool {
	names := make(map[string]bool, len(conventionalBodies))
	if b.ContainerVar != "" {
		names[b.ContainerVar] = true
	} else {
		for _, n := range conventionalBodies {
			names[n] = true
		}
	}
	for n := range b.Inputs {
		delete(names, n)
	}
	return names
}

// =============================================================================
// Substitution
// =============================================================================

type value struct {
	text string
	body bool
}

var tokenRe = regexp.MustCompile(`%(\w+)`)

// fill replaces every %name token found in values in a single left-to-right
// pass; inserted text is never scanned again. A token matches whole words
// only, so %a never rewrites the start of %ab. Lines after the first of a
// multi-line value are prefixed with the leading whitespace of the token's
// template line.
func (r *Run) fill(tmpl string, values map[string]value) string {
	var sb strings.Builder
	last := 0
	for _, m := range tokenRe.FindAllStringSubmatchIndex(tmpl, -1) {
		v, ok := values[tmpl[m[2]:m[3]]]
		if !ok {
			continue
		}
		start := strings.LastIndexByte(tmpl[:m[0]], '\n') + 1
		lead := leadingSpace(tmpl[start:m[0]])
		text := v.text
		if v.body && r.lang.IndentSensitive() && start > 0 && m[0] == start {
			text = indent(r.lang.Indent, text, true)
		}
		sb.WriteString(tmpl[last:m[0]])
		sb.WriteString(indent(lead, text, false))
		last = m[1]
	}
	sb.WriteString(tmpl[last:])
	return sb.String()
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// indent prefixes non-empty lines of s with prefix. The first line is
// prefixed only when first is set.
func indent(prefix, s string, first bool) string {
	if prefix == "" || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" || (i == 0 && !first) {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

var (
	declQuoteRe   = regexp.MustCompile(`(\b(?:local|var|let|const|int|float|string|auto|char|double|bool|def|function)\s+)"([^"]+)"(\s*=)`)
	assignQuoteRe = regexp.MustCompile(`=(\s*)"([^"]+)"`)
)

// cleanup strips quotes around a name in declaration position and around a
// value right after '='.
func cleanup(s string) string {
	s = declQuoteRe.ReplaceAllString(s, "${1}${2}${3}")
	return assignQuoteRe.ReplaceAllString(s, "=${1}${2}")
}
