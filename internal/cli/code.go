package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockstack/pkg/buildinfo"
	"github.com/matzehuels/blockstack/pkg/codegen"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/project"
	"github.com/matzehuels/blockstack/pkg/render/nodelink"
	"github.com/matzehuels/blockstack/pkg/snapshot"
)

// =============================================================================
// generate
// =============================================================================

func (c *CLI) generateCommand() *cobra.Command {
	var (
		lang   string
		output string
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate code from the workspace",
		Long: `Generate code for every top-level block, in the order the blocks were
created. Blocks without a template for the language fall back to their
javascript template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.view(cmd.Context(), func(p *project.Project) error {
				code, err := p.Generate(cmd.Context(), lang)
				if err != nil {
					return err
				}
				if code != "" {
					code += "\n"
				}
				return writeOutput(cmd.OutOrStdout(), output, []byte(code))
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "target language (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.RegisterFlagCompletionFunc("lang", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, l := range codegen.Languages() {
			names = append(names, l.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// =============================================================================
// export / import
// =============================================================================

func (c *CLI) exportCommand() *cobra.Command {
	var (
		lang   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <definitions|instances|project>",
		Short: "Write the palette, the workspace or both as JSON",
		Long: `Export a snapshot payload.

  definitions  the palette
  instances    every block on the workspace
  project      both, plus the generated code for --lang`,
		ValidArgs: snapshot.Kinds,
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.view(cmd.Context(), func(p *project.Project) error {
				data, err := p.Export(cmd.Context(), args[0], lang)
				if err != nil {
					return err
				}
				if err := writeOutput(cmd.OutOrStdout(), output, append(data, '\n')); err != nil {
					return err
				}
				if output != "" && output != "-" {
					printFile(cmd.OutOrStdout(), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language of the code section (project only)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Load a snapshot payload into the project",
		Long: `Import a payload written by export (or by the browser editor). Definitions
replace the palette and instances replace the workspace; sections missing
from the payload are kept. Nothing changes if any part of the payload is
invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return c.view(cmd.Context(), func(p *project.Project) error {
				res, err := p.Import(cmd.Context(), data)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				var parts []string
				if res.Parts&snapshot.PartDefinitions != 0 {
					parts = append(parts, plural(p.Palette().Len(), "definition"))
				}
				if res.Parts&snapshot.PartInstances != 0 {
					parts = append(parts, plural(res.Blocks, "block"))
				}
				if len(parts) == 0 {
					parts = append(parts, "nothing")
				}
				printSuccess(w, "Imported %s", strings.Join(parts, " and "))
				if res.Code != "" {
					printKeyValue(w, "code", res.Language)
					fmt.Fprintln(w, StyleDim.Render(res.Code))
				}
				return nil
			})
		},
	}
}

// =============================================================================
// graph
// =============================================================================

// Graph output formats.
const (
	graphDOT = "dot"
	graphSVG = "svg"
)

func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the composition as a node-link diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != graphDOT && format != graphSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q (want dot or svg)", format)
			}
			return c.view(cmd.Context(), func(p *project.Project) error {
				dot := nodelink.ToDOT(p.Workspace(), nodelink.Options{Detailed: detailed})
				data := []byte(dot)
				if format == graphSVG {
					prog := newProgress(c.Logger)
					svg, err := nodelink.RenderSVG(cmd.Context(), dot)
					if err != nil {
						return err
					}
					prog.done("rendered graph", "blocks", p.Workspace().Len())
					data = svg
				}
				if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
					return err
				}
				if output != "" && output != "-" {
					printFile(cmd.OutOrStdout(), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", graphDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show ids, kinds and positions")
	return cmd
}

// =============================================================================
// reset / version
// =============================================================================

func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved project and start over with the default palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.view(cmd.Context(), func(p *project.Project) error {
				if err := p.Reset(cmd.Context()); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Reset %s", p.Key())
				return nil
			})
		},
	}
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
