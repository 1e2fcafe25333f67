package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/registry"
	"github.com/matzehuels/gridboard/pkg/state"
)

// =============================================================================
// Inspection Commands
// =============================================================================

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var handles bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render the dashboard grid in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				widgets := s.mgr.Widgets()
				eng := s.mgr.Engine()

				view := defaultGridView()
				view.Handles = handles

				fmt.Println(StyleTitle.Render("Dashboard " + s.cfg.Store.Dashboard))
				fmt.Println(view.Render(widgets, eng))
				printStats(len(widgets), eng.Bottom(widgets), eng.Cols, string(s.backend))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&handles, "handles", false, "draw resize handles")
	return cmd
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List widgets in visual order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				fmt.Println(widgetTable(s.mgr.Widgets()))
				return nil
			})
		},
	}
}

// typesCommand creates the types command.
func (c *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the widget types and the sizes they support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(typeTable(registry.NewCatalog()))
			return nil
		},
	}
}

func widgetTable(widgets []layout.Widget) string {
	rows := make([][]string, 0, len(widgets))
	for _, w := range layout.SortVisual(widgets) {
		created := "—"
		if !w.CreatedAt.IsZero() {
			created = w.CreatedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{w.ID, w.Type, w.Size, w.Position.String(), created})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Type", "Size", "Position", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if col == 0 {
				return StyleHighlight
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func typeTable(cat *registry.Catalog) string {
	var rows [][]string
	for _, t := range cat.Types() {
		rows = append(rows, []string{t.ID, t.Title, t.DefaultSize, strings.Join(cat.SupportedSizes(t.ID), " ")})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Title", "Default", "Sizes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// =============================================================================
// Mutation Commands
// =============================================================================

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		id       string
		size     string
		at       string
		settings []string
	)

	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Add a widget at the first free position or at --at",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := state.WidgetSpec{ID: id, Type: args[0], Size: size}
			if at != "" {
				pos, err := parsePosition(at)
				if err != nil {
					return err
				}
				spec.Position = &pos
			}
			kv, err := parseSettings(settings)
			if err != nil {
				return err
			}
			spec.Settings = kv

			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				w, err := s.mgr.AddWidget(spec)
				if err != nil {
					return err
				}
				printSuccess("Added %s %s at %s", w.Type, StyleHighlight.Render(w.ID), w.Position)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "widget id (generated when empty)")
	cmd.Flags().StringVar(&size, "size", "", "size id, e.g. 2x1 (type default when empty)")
	cmd.Flags().StringVar(&at, "at", "", "position as col,row")
	cmd.Flags().StringArrayVar(&settings, "set", nil, "setting as key=value (repeatable)")
	return cmd
}

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a widget",
		Args:    cobra.ExactArgs(1),

		ValidArgsFunction: c.completeWidgetIDs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				if err := s.mgr.RemoveWidget(args[0]); err != nil {
					return err
				}
				printSuccess("Removed %s", args[0])
				return nil
			})
		},
	}
}

// moveCommand creates the move command.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <col,row>",
		Short: "Move a widget, pushing colliding widgets aside",
		Args:  cobra.ExactArgs(2),

		ValidArgsFunction: c.completeWidgetIDs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[1])
			if err != nil {
				return err
			}
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				if err := s.mgr.MoveWidget(args[0], pos); err != nil {
					return err
				}
				printSuccess("Moved %s to %s", args[0], pos)
				return nil
			})
		},
	}
}

// swapCommand creates the swap command.
func (c *CLI) swapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <id> <id>",
		Short: "Swap the positions of two widgets",
		Args:  cobra.ExactArgs(2),

		ValidArgsFunction: c.completeWidgetIDs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				if err := s.mgr.SwapWidgets(args[0], args[1]); err != nil {
					return err
				}
				printSuccess("Swapped %s and %s", args[0], args[1])
				return nil
			})
		},
	}
}

// resizeCommand creates the resize command.
func (c *CLI) resizeCommand() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "resize <id> <size>",
		Short: "Change a widget's size, optionally re-anchoring it with --at",
		Args:  cobra.ExactArgs(2),

		ValidArgsFunction: c.completeResize,
		RunE: func(cmd *cobra.Command, args []string) error {
			var anchor *layout.Position
			if at != "" {
				pos, err := parsePosition(at)
				if err != nil {
					return err
				}
				anchor = &pos
			}
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				if err := s.mgr.ResizeWidgetAt(args[0], args[1], anchor); err != nil {
					return err
				}
				w, _ := s.mgr.Widget(args[0])
				printSuccess("Resized %s to %s at %s", args[0], w.Size, w.Position)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "new anchor as col,row")
	return cmd
}

// compactCommand creates the compact command.
func (c *CLI) compactCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Pull every widget up as far as it fits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				changed, err := s.mgr.Compact()
				if err != nil {
					return err
				}
				if !changed {
					printInfo("Layout is already compact")
					return nil
				}
				printSuccess("Compacted layout")
				return nil
			})
		},
	}
}

// resetCommand creates the reset command.
func (c *CLI) resetCommand() *cobra.Command {
	var empty bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Replace the layout with the default template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)
			return c.withSession(ctx, func(s *session) error {
				var widgets []layout.Widget
				if empty {
					widgets = []layout.Widget{}
				}
				if err := s.mgr.Reset(widgets); err != nil {
					return err
				}
				printSuccess("Reset dashboard %s (%d widgets)", s.cfg.Store.Dashboard, len(s.mgr.Widgets()))
				printNextStep("Arrange it", "gridboard edit")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&empty, "empty", false, "start from an empty grid instead of the template")
	return cmd
}

// =============================================================================
// Argument Parsing
// =============================================================================

// parsePosition parses "col,row".
func parsePosition(s string) (layout.Position, error) {
	colStr, rowStr, ok := strings.Cut(s, ",")
	if !ok {
		return layout.Position{}, errors.New(errors.ErrCodeInvalidPosition, "position %q must be col,row", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return layout.Position{}, errors.New(errors.ErrCodeInvalidPosition, "position %q: bad column", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return layout.Position{}, errors.New(errors.ErrCodeInvalidPosition, "position %q: bad row", s)
	}
	if col < 0 || row < 0 {
		return layout.Position{}, errors.New(errors.ErrCodeInvalidPosition, "position %q cannot be negative", s)
	}
	return layout.Position{Col: col, Row: row}, nil
}

// parseSettings parses key=value pairs. Values that look like numbers or
// booleans are stored as such.
func parseSettings(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "setting %q must be key=value", p)
		}
		out[strings.TrimSpace(k)] = settingValue(v)
	}
	return out, nil
}

func settingValue(v string) any {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
