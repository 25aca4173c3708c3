package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockstack/pkg/block"
	"github.com/matzehuels/blockstack/pkg/drag"
	"github.com/matzehuels/blockstack/pkg/errors"
	"github.com/matzehuels/blockstack/pkg/geom"
	"github.com/matzehuels/blockstack/pkg/project"
	"github.com/matzehuels/blockstack/pkg/render/nodelink"
	"github.com/matzehuels/blockstack/pkg/snap"
	"github.com/matzehuels/blockstack/pkg/workspace"
)

// =============================================================================
// add
// =============================================================================

func (c *CLI) addCommand() *cobra.Command {
	var (
		at    string
		into  string
		input string
		sets  []string
	)

	cmd := &cobra.Command{
		Use:               "add <label|index>",
		ValidArgsFunction: c.completeLabels,
		Short:             "Place a block from the palette",
		Long: `Place a block from the palette on the workspace.

The block is looked up by label ("repeat %times times"), display name
("repeat _ times") or palette index. Literals are set with --set, and the block
can be nested into a container with --into or plugged into an input slot
with --input parent:var.`,
		Example: `  blockstack add "repeat _ times" --set times=3
  blockstack add "say _" --into 3f2a --set 'text="hi"'
  blockstack add 5 --input 9c1e:text --set a=1 --set b=2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePoint(at)
			if err != nil {
				return err
			}
			if into != "" && input != "" {
				return errors.New(errors.ErrCodeInvalidInput, "--into and --input are exclusive")
			}
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				idx, err := findDefinition(p.Palette(), args[0])
				if err != nil {
					return err
				}
				def, _ := p.Palette().Get(idx)
				ws := p.Workspace()
				b := ws.Instantiate(def, pos)

				for _, s := range sets {
					name, value, err := splitPair(s, "=", "--set")
					if err != nil {
						return err
					}
					if err := ws.SetLiteral(b.ID, name, value); err != nil {
						return err
					}
				}

				switch {
				case into != "":
					parent, err := resolveID(p, into)
					if err != nil {
						return err
					}
					if err := ws.AttachToContainer(b.ID, parent); err != nil {
						return err
					}
				case input != "":
					ref, name, err := splitPair(input, ":", "--input")
					if err != nil {
						return err
					}
					parent, err := resolveID(p, ref)
					if err != nil {
						return err
					}
					if err := ws.AttachToInput(b.ID, parent, name); err != nil {
						return err
					}
				}

				printSuccess(cmd.OutOrStdout(), "Added %s %s", nodelink.Display(b), StyleHighlight.Render(b.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "20,20", "top-level position x,y")
	cmd.Flags().StringVar(&into, "into", "", "container block to nest into")
	cmd.Flags().StringVar(&input, "input", "", "input slot to plug into, as block:var")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "input literal as var=value (repeatable)")
	return cmd
}

// =============================================================================
// set / detach / rm
// =============================================================================

func (c *CLI) setCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "set <block> <var> <value>",
		ValidArgsFunction: c.completeBlockIDs,
		Short:             "Set the literal text of an input slot",
		Args:              cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				id, err := resolveID(p, args[0])
				if err != nil {
					return err
				}
				if err := p.Workspace().SetLiteral(id, args[1], args[2]); err != nil {
					return err
				}
				b, _ := p.Workspace().Get(id)
				printSuccess(cmd.OutOrStdout(), "%s", nodelink.Display(b))
				return nil
			})
		},
	}
}

func (c *CLI) detachCommand() *cobra.Command {
	var inputs bool

	cmd := &cobra.Command{
		Use:               "detach <block>",
		ValidArgsFunction: c.completeBlockIDs,
		Short:             "Move a block out of its parent onto the workspace",
		Long: `Detach a block from its container or input slot. The block stays where
it was drawn. With --inputs, the blocks plugged into its slots are detached
instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				id, err := resolveID(p, args[0])
				if err != nil {
					return err
				}
				ws := p.Workspace()
				if inputs {
					if err := ws.DetachInputs(id); err != nil {
						return err
					}
					printSuccess(cmd.OutOrStdout(), "Detached inputs of %s", shortID(id))
					return nil
				}
				if err := ws.Detach(id); err != nil {
					return err
				}
				b, _ := ws.Get(id)
				printSuccess(cmd.OutOrStdout(), "Detached %s at %s", shortID(id), b.Position)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&inputs, "inputs", false, "detach the blocks plugged into the input slots")
	return cmd
}

func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <block>",
		ValidArgsFunction: c.completeBlockIDs,
		Aliases:           []string{"remove"},
		Short:             "Delete a block and everything inside it",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				id, err := resolveID(p, args[0])
				if err != nil {
					return err
				}
				n := 1 + len(p.Workspace().Descendants(id))
				if err := p.Workspace().Remove(id); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Removed %s", plural(n, "block"))
				return nil
			})
		},
	}
}

// =============================================================================
// ls
// =============================================================================

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "Show the workspace as a tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.view(cmd.Context(), func(p *project.Project) error {
				w := cmd.OutOrStdout()
				ws := p.Workspace()
				if ws.Len() == 0 {
					printInfo(w, "Workspace is empty")
					return nil
				}
				fmt.Fprintln(w, workspaceTree(ws))
				return nil
			})
		},
	}
}

// workspaceTree renders every root block with its inputs and body.
func workspaceTree(ws *workspace.Workspace) string {
	t := tree.New().Enumerator(tree.RoundedEnumerator).EnumeratorStyle(StyleDim)
	for _, b := range ws.Roots() {
		t.Child(blockNode(ws, b, "").Root(blockLine(b, "") + StyleDim.Render(" @ "+b.Position.String())))
	}
	return t.String()
}

func blockNode(ws *workspace.Workspace, b *block.Instance, slot string) *tree.Tree {
	t := tree.Root(blockLine(b, slot)).Enumerator(tree.RoundedEnumerator).EnumeratorStyle(StyleDim)
	for _, name := range b.InputOrder {
		if in := b.Inputs[name]; in != nil && in.Occupied() {
			if child, ok := ws.Get(in.ChildID); ok {
				t.Child(blockNode(ws, child, name))
			}
		}
	}
	for _, cid := range b.Nested {
		if child, ok := ws.Get(cid); ok {
			t.Child(blockNode(ws, child, ""))
		}
	}
	return t
}

func blockLine(b *block.Instance, slot string) string {
	line := swatch(b.Color) + " " + nodelink.Display(b) + " " + StyleHighlight.Render(shortID(b.ID))
	if slot != "" {
		line = StyleDim.Render(slot+":") + " " + line
	}
	return line
}

// =============================================================================
// drag
// =============================================================================

func (c *CLI) dragCommand() *cobra.Command {
	var (
		to  string
		via []string
	)

	cmd := &cobra.Command{
		Use:               "drag <block>",
		ValidArgsFunction: c.completeBlockIDs,
		Short:             "Drag a block and drop it at a point",
		Long: `Drag a block along a pointer path and drop it where the path ends.

The pointer grabs the block at its top-left corner. The drop snaps like the
editor does: into a free input slot under the pointer (reporters and
booleans), into the body of the deepest container under the pointer, or
below a command block. Dropping outside the workspace deletes the block.`,
		Example: `  blockstack drag 9c1e --to 150,150
  blockstack drag 9c1e --via 400,300 --to 2000,2000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := make([]geom.Point, 0, len(via)+1)
			for _, s := range append(via, to) {
				pt, err := parsePoint(s)
				if err != nil {
					return err
				}
				path = append(path, pt)
			}
			return c.mutate(cmd.Context(), func(p *project.Project) error {
				id, err := resolveID(p, args[0])
				if err != nil {
					return err
				}
				out, err := p.Drag(cmd.Context(), id, path...)
				printOutcome(cmd.OutOrStdout(), out)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "drop point x,y")
	cmd.Flags().StringArrayVar(&via, "via", nil, "intermediate pointer sample x,y (repeatable)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// printOutcome describes how a drag session ended.
func printOutcome(w io.Writer, out drag.Outcome) {
	id := StyleHighlight.Render(shortID(out.BlockID))
	switch out.State {
	case drag.Deleted:
		printWarning(w, "Deleted %s", shortID(out.BlockID))
	case drag.Attached:
		parent := StyleHighlight.Render(shortID(out.Target.ParentID))
		if out.Target.Kind == snap.Input {
			printInfo(w, "%s plugged into %s:%s", id, parent, out.Target.Var)
		} else {
			printInfo(w, "%s nested in %s", id, parent)
		}
	case drag.Floating:
		if out.Target.Kind == snap.Below {
			printInfo(w, "%s placed below %s at %s", id, StyleHighlight.Render(shortID(out.Target.ParentID)), out.Position)
		} else {
			printInfo(w, "%s floating at %s", id, out.Position)
		}
	}
}
