package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for blockstack.

  bash:        source <(blockstack completion bash)
  zsh:         blockstack completion zsh > "${fpath[1]}/_blockstack"
  fish:        blockstack completion fish | source
  powershell:  blockstack completion powershell | Out-String | Invoke-Expression

Completion of block ids and palette labels reads the saved project.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}

// completeBlockIDs completes the ids of the saved workspace.
func (c *CLI) completeBlockIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	p, err := c.openProject(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer p.Close()
	var ids []string
	for _, b := range p.Workspace().Blocks() {
		ids = append(ids, b.ID+"\t"+b.Label)
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeLabels completes palette labels.
func (c *CLI) completeLabels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	p, err := c.openProject(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer p.Close()
	var labels []string
	for _, d := range p.Palette().Definitions() {
		labels = append(labels, d.Label+"\t"+string(d.Kind))
	}
	return labels, cobra.ShellCompDirectiveNoFileComp
}
