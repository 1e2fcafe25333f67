package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/internal/config"
	"github.com/matzehuels/gridboard/pkg/dragdrop"
	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/state"
)

// editorTick drives redraws while a long-press timer may fire.
const editorTick = 100 * time.Millisecond

// headerLines is the number of lines drawn above the grid.
const headerLines = 2

// Editor styles
var (
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the dashboard interactively with the mouse",
		Long: `Open the dashboard in a full-screen terminal editor.

Press and hold a widget to enter edit mode, then drag it to move or swap it.
Drag the ◢ handle in a widget's bottom-right corner to resize it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			// Log lines would tear the alternate screen.
			quiet := log.New(io.Discard)
			rec := observability.NewRecorder(32)
			arb := &editorArbiter{}

			s, err := c.openSessionWith(ctx, cfg, sessionOptions{
				logger:  quiet,
				hooks:   []observability.LayoutHooks{rec},
				arbiter: arb,
			})
			if err != nil {
				return err
			}

			m := newEditorModel(s.mgr, cfg, rec, arb, quiet)
			_, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()

			if err := s.close(context.WithoutCancel(ctx)); err != nil {
				printWarning("Could not save layout: %s", errors.UserMessage(err))
				return err
			}
			if runErr != nil && !stderrors.Is(runErr, tea.ErrProgramKilled) {
				return runErr
			}
			printSuccess("Saved dashboard %s", s.cfg.Store.Dashboard)
			return nil
		},
	}
}

// =============================================================================
// Gesture Arbiter
// =============================================================================

// editorArbiter records whether the editor owns the pointer. The terminal
// has no native scroll to block, so it only feeds the status line.
type editorArbiter struct {
	suspended atomic.Bool
}

func (a *editorArbiter) Suspend() { a.suspended.Store(true) }
func (a *editorArbiter) Resume()  { a.suspended.Store(false) }

// =============================================================================
// EditorModel
// =============================================================================

type tickMsg time.Time

// editorModel is the bubbletea model for the interactive editor. Mouse
// events in terminal cells are scaled into the controller's pixel space so
// the configured thresholds keep their meaning.
type editorModel struct {
	mgr  *state.Manager
	ctrl *dragdrop.Controller
	rec  *observability.Recorder
	arb  *editorArbiter
	view gridView

	scaleX, scaleY float64

	selected string
	err      error
}

func newEditorModel(mgr *state.Manager, cfg config.Config, rec *observability.Recorder, arb *editorArbiter, logger *log.Logger) *editorModel {
	view := defaultGridView()
	view.MinRows = 2

	dd := cfg.DragDrop()
	// A terminal has no scroll gesture competing with vertical drags.
	dd.ScrollThreshold = math.Inf(1)

	metrics := dd.Metrics
	return &editorModel{
		mgr: mgr,
		ctrl: dragdrop.New(mgr,
			dragdrop.WithConfig(dd),
			dragdrop.WithHooks(rec),
			dragdrop.WithLogger(logger),
		),
		rec:    rec,
		arb:    arb,
		view:   view,
		scaleX: (metrics.CellWidth + metrics.Gap) / float64(view.pitch()),
		scaleY: (metrics.CellHeight + metrics.Gap) / float64(view.CellHeight),
	}
}

// toPixels converts a terminal cell to controller coordinates. The point is
// the center of the character so round-trips land inside the right cell.
func (m *editorModel) toPixels(x, y int) (float64, float64) {
	gy := y - headerLines
	return (float64(x) + 0.5) * m.scaleX, (float64(gy) + 0.5) * m.scaleY
}

func (m *editorModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(editorTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *editorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.PointerCancel()
		return m, tea.Quit
	case "esc":
		if m.ctrl.Phase() != dragdrop.Idle {
			m.ctrl.PointerCancel()
		} else {
			m.mgr.ExitEditMode()
		}
	case "e":
		m.mgr.ToggleEditMode()
	case "u":
		m.err = m.mgr.Undo()
	case "r":
		m.err = m.mgr.Redo()
	case "c":
		_, m.err = m.mgr.Compact()
	case "x", "delete":
		if m.selected != "" && m.mgr.EditMode() {
			m.err = m.mgr.RemoveWidget(m.selected)
			m.selected = ""
		}
	case "+", "-":
		if m.selected != "" && m.mgr.EditMode() {
			m.err = m.cycleSize(msg.String() == "+")
		}
	}
	return m, nil
}

// cycleSize steps the selected widget through its supported sizes.
func (m *editorModel) cycleSize(up bool) error {
	w, ok := m.mgr.Widget(m.selected)
	if !ok {
		return nil
	}
	reg := m.mgr.Registry()
	sizes := reg.SupportedSizes(w.Type)
	current := reg.NormalizeSizeID(w.Size)
	for i, s := range sizes {
		if s != current {
			continue
		}
		next := i - 1
		if up {
			next = i + 1
		}
		if next < 0 || next >= len(sizes) {
			return nil
		}
		return m.mgr.ResizeWidgetAt(w.ID, sizes[next], nil)
	}
	return nil
}

func (m *editorModel) handleMouse(msg tea.MouseMsg) {
	x, y := m.toPixels(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.err = nil
		w, handle, ok := m.view.hit(m.mgr.Widgets(), m.mgr.Engine(), msg.X, msg.Y-headerLines)
		if !ok {
			m.selected = ""
			return
		}
		m.selected = w.ID
		m.ctrl.PointerDown(dragdrop.PointerEvent{WidgetID: w.ID, X: x, Y: y, OnResizeHandle: handle})
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(x, y)
	case tea.MouseActionRelease:
		if _, err := m.ctrl.PointerUp(x, y); err != nil {
			m.err = err
		}
	}
}

func (m *editorModel) View() string {
	var b strings.Builder

	header := StyleTitle.Render("gridboard") + "  " + editBadge(m.mgr.EditMode())
	if m.arb.suspended.Load() {
		header += StyleDim.Render("  pointer captured")
	}
	if label := m.mgr.UndoLabel(); label != "" {
		header += StyleDim.Render("  undo: " + label)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(editorErrorStyle.Render(errors.UserMessage(m.err)))
	default:
		b.WriteString(editorStatusStyle.Render(m.statusLine()))
	}
	b.WriteString("\n")
	b.WriteString(editorHelpStyle.Render("hold to edit · drag to move · ◢ resize · e edit · u/r undo/redo · c compact · +/- size · x remove · q quit"))
	return b.String()
}

func (m *editorModel) renderGrid() string {
	view := m.view
	view.Handles = m.mgr.EditMode()
	view.Highlight = m.selected

	widgets := m.mgr.Widgets()
	p := m.ctrl.Preview()
	switch p.Phase {
	case dragdrop.Dragging:
		r := layout.RectAt(p.Placeholder, p.Footprint)
		view.Placeholder = &r
		view.InvalidDrop = !p.Valid
		view.Highlight = p.WidgetID
		if p.Intent == dragdrop.IntentReflow {
			widgets = withPositions(widgets, p.Reflow)
			view.SkipWidgetID = p.WidgetID
		}
	case dragdrop.Resizing:
		r := layout.RectAt(p.Placeholder, p.Footprint)
		view.Placeholder = &r
		view.Highlight = p.WidgetID
	}
	return view.Render(widgets, m.mgr.Engine())
}

// withPositions returns a copy of widgets with the given positions applied.
func withPositions(widgets []layout.Widget, positions map[string]layout.Position) []layout.Widget {
	out := layout.Clone(widgets)
	for i := range out {
		if p, ok := positions[out[i].ID]; ok {
			out[i].Position = p
		}
	}
	return out
}

func (m *editorModel) statusLine() string {
	p := m.ctrl.Preview()
	switch p.Phase {
	case dragdrop.Dragging:
		s := fmt.Sprintf("%s → %s (%s)", p.WidgetID, p.Placeholder, p.Intent)
		if p.SwapWith != "" {
			s += " with " + p.SwapWith
		}
		return s
	case dragdrop.Resizing:
		return fmt.Sprintf("%s → %s", p.WidgetID, p.Size)
	case dragdrop.Pressing:
		return "hold to edit " + p.WidgetID
	}
	if ev, ok := m.rec.Last(); ok {
		return ev.String()
	}
	return fmt.Sprintf("%d widgets", len(m.mgr.Widgets()))
}
