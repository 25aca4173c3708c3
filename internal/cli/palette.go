package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/palette"
	"github.com/matzehuels/blockstack/pkg/project"
)

func (c *CLI) paletteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Manage the block definitions of the project",
	}
	cmd.AddCommand(c.paletteListCommand())
	cmd.AddCommand(c.paletteAddCommand())
	cmd.AddCommand(c.paletteRemoveCommand())
	cmd.AddCommand(c.palettePickCommand())
	cmd.AddCommand(c.paletteExportCommand())
	return cmd
}

// =============================================================================
// list
// =============================================================================

func (c *CLI) paletteListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List block definitions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.view(cmd.Context(), func(p *project.Project) error {
				fmt.Fprintln(cmd.OutOrStdout(), paletteTable(p.Palette().Definitions()))
				return nil
			})
		},
	}
}

func paletteTable(defs []block.Definition) string {
	rows := make([][]string, 0, len(defs))
	for i, d := range defs {
		langs := slices.Sorted(maps.Keys(d.Templates))
		rows = append(rows, []string{
			strconv.Itoa(i),
			swatch(d.Color),
			block.DisplayName(d.Label),
			string(d.Kind),
			strings.Join(langs, ", "),
		})
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorFaint)).
		Headers("#", "", "Block", "Kind", "Templates").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0 || col == 4:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// =============================================================================
// add
// =============================================================================

func (c *CLI) paletteAddCommand() *cobra.Command {
	var (
		kind         string
		color        string
		containerVar string
		templates    []string
		file         string
	)

	cmd := &cobra.Command{
		Use:   "add [label]",
		Short: "Add a block definition",
		Long: `Add a block definition to the palette.

Placeholders in the label (%name) become input slots:

  blockstack palette add 'print %value' --kind command \
      --template 'javascript=console.log(%value);' --template 'python=print(%value)'

With --file, every definition in a .toml, .yaml or .json palette file is added.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var defs []block.Definition
			switch {
			case file != "" && len(args) == 0:
				pal, err := palette.LoadFile(file)
				if err != nil {
					return err
				}
				defs = pal.Definitions()
			case file == "" && len(args) == 1:
				d := block.Definition{
					Label:        args[0],
					Kind:         block.Kind(kind),
					Color:        color,
					ContainerVar: containerVar,
					Templates:    make(map[string]string, len(templates)),
				}
				for _, t := range templates {
					lang, code, err := splitPair(t, "=", "template")
					if err != nil {
						return err
					}
					d.Templates[lang] = strings.ReplaceAll(code, `\n`, "\n")
				}
				defs = []block.Definition{d}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "give either a label or --file")
			}

			return c.mutate(cmd.Context(), func(p *project.Project) error {
				for _, d := range defs {
					if err := p.Palette().Add(d); err != nil {
						return err
					}
				}
				printSuccess(cmd.OutOrStdout(), "Added %s", plural(len(defs), "definition"))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(block.KindCommand), "block kind: command, container, function, reporter, boolean")
	cmd.Flags().StringVar(&color, "color", "", "display color (#rrggbb)")
	cmd.Flags().StringVar(&containerVar, "container-var", "", "body placeholder of container and function blocks")
	cmd.Flags().StringArrayVarP(&templates, "template", "t", nil, `code template as lang=code (\n for newlines, repeatable)`)
	cmd.Flags().StringVarP(&file, "file", "f", "", "add every definition of a palette file")
	return cmd
}

// =============================================================================
// remove
// =============================================================================

func (c *CLI) paletteRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <index|label>",
		Aliases: []string{"rm"},
		Short:   "Remove a block definition",
		Long:    `Remove a definition by palette index or label. Placed blocks keep working.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				idx, err := findDefinition(p.Palette(), args[0])
				if err != nil {
					return err
				}
				d, err := p.Palette().Remove(idx)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Removed %s", block.DisplayName(d.Label))
				return nil
			})
		},
	}
}

// findDefinition resolves a palette index or label.
func findDefinition(pal *palette.Palette, arg string) (int, error) {
	if i, err := strconv.Atoi(arg); err == nil {
		if _, ok := pal.Get(i); !ok {
			return 0, errors.New(errors.ErrCodeNotFound, "no definition at index %d", i)
		}
		return i, nil
	}
	_, i, ok := pal.Find(arg)
	if !ok {
		return 0, errors.New(errors.ErrCodeNotFound, "no definition %q", arg)
	}
	return i, nil
}

// =============================================================================
// pick
// =============================================================================

func (c *CLI) palettePickCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose a definition interactively and drop it on the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePoint(at)
			if err != nil {
				return err
			}
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				def, ok, err := runPicker(cmd.Context(), p.Palette().Definitions(), cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !ok {
					printInfo(cmd.OutOrStdout(), "Nothing picked")
					return nil
				}
				return dropNew(cmd.Context(), cmd.OutOrStdout(), p, def, pos)
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "20,20", "drop position x,y")
	return cmd
}

// dropNew places def with a drag session so it snaps like a palette drop.
func dropNew(ctx context.Context, w io.Writer, p *project.Project, def block.Definition, pos geom.Point) error {
	out, err := p.DropNew(ctx, def, pos)
	if err != nil {
		return err
	}
	printSuccess(w, "Added %s %s", block.DisplayName(def.Label), StyleHighlight.Render(shortID(out.BlockID)))
	printOutcome(w, out)
	return nil
}

// =============================================================================
// export
// =============================================================================

func (c *CLI) paletteExportCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the palette as a TOML, YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := palette.Format(format)
			switch {
			case format != "":
			case output == "" || output == "-":
				f = palette.FormatTOML
			default:
				var err error
				if f, err = palette.FormatOf(output); err != nil {
					return err
				}
			}
			return c.view(cmd.Context(), func(p *project.Project) error {
				var buf bytes.Buffer
				if err := palette.Write(&buf, p.Palette(), f); err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
					return err
				}
				if output != "" && output != "-" {
					printFile(cmd.OutOrStdout(), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&format, "format", "", "toml, yaml or json (default from the file extension)")
	return cmd
}
