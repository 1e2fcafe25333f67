package cli

import (
	"context"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/registry"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gridboard.

Widget ids and types complete from the current dashboard and catalog.

  $ source <(gridboard completion bash)
  $ gridboard completion zsh > "${fpath[1]}/_gridboard"
  $ gridboard completion fish > ~/.config/fish/completions/gridboard.fish
  PS> gridboard completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}

// =============================================================================
// Argument Completion
// =============================================================================

// completeWidgetIDs completes the first n positional arguments with widget
// ids from the persisted layout.
func (c *CLI) completeWidgetIDs(n int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) >= n {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		widgets, ok := c.completionWidgets(cmd)
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return widgetCandidates(widgets, args, toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

// completeResize completes a widget id, then the sizes its type supports.
func (c *CLI) completeResize(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return c.completeWidgetIDs(1)(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	widgets, ok := c.completionWidgets(cmd)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	w, ok := layout.Find(widgets, args[0])
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return registry.NewCatalog().SupportedSizes(w.Type), cobra.ShellCompDirectiveNoFileComp
}

// completeTypes completes widget types from the built-in catalog.
func completeTypes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, t := range registry.NewCatalog().Types() {
		if strings.HasPrefix(t.ID, toComplete) {
			out = append(out, t.ID+"\t"+t.Title)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completionWidgets loads the layout without logging; completion output
// must contain nothing but candidates.
func (c *CLI) completionWidgets(cmd *cobra.Command) ([]layout.Widget, bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	quiet := log.New(io.Discard)
	s, err := c.openSession(withLogger(ctx, quiet), sessionOptions{logger: quiet})
	if err != nil {
		return nil, false
	}
	widgets := s.mgr.Widgets()
	_ = s.close(ctx)
	return widgets, true
}

// widgetCandidates returns "id\ttype size" entries matching prefix, skipping
// ids already given.
func widgetCandidates(widgets []layout.Widget, given []string, prefix string) []string {
	var out []string
	for _, w := range layout.SortVisual(widgets) {
		if !strings.HasPrefix(w.ID, prefix) || slices.Contains(given, w.ID) {
			continue
		}
		out = append(out, w.ID+"\t"+w.Type+" "+w.Size)
	}
	return out
}
