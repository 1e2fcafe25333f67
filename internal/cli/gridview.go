package cli

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Grid View - terminal rendering of a layout
// =============================================================================

// Owners of a canvas cell that are not widgets.
const (
	ownerFree        = -1
	ownerPlaceholder = -2
)

// gridView maps grid cells onto terminal characters. One column is
// CellWidth characters plus Gap blank characters; one row is CellHeight
// lines with no vertical gap.
type gridView struct {
	CellWidth  int
	CellHeight int
	Gap        int

	// MinRows pads the view below the layout so there is room to drop.
	MinRows int

	// Highlight draws one widget emphasized; Handles draws resize handles.
	Highlight string
	Handles   bool

	// Placeholder outlines a drop target. Invalid targets are drawn red.
	Placeholder  *layout.Rect
	InvalidDrop  bool
	SkipWidgetID string
}

func defaultGridView() gridView {
	return gridView{CellWidth: 14, CellHeight: 4, Gap: 1}
}

func (v gridView) pitch() int { return v.CellWidth + v.Gap }

// origin returns the top-left character of a grid cell.
func (v gridView) origin(col, row int) (x, y int) {
	return col * v.pitch(), row * v.CellHeight
}

// box returns the character bounds of a rect, inclusive.
func (v gridView) box(r layout.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = v.origin(r.Col, r.Row)
	x1 = x0 + r.Cols*v.pitch() - v.Gap - 1
	y1 = y0 + r.Rows*v.CellHeight - 1
	return x0, y0, x1, y1
}

// cellAt returns the grid cell under a character, or false inside a gap.
func (v gridView) cellAt(x, y int) (layout.Position, bool) {
	if x < 0 || y < 0 || v.pitch() <= 0 || v.CellHeight <= 0 {
		return layout.Position{}, false
	}
	if x%v.pitch() >= v.CellWidth {
		return layout.Position{}, false
	}
	return layout.Position{Col: x / v.pitch(), Row: y / v.CellHeight}, true
}

// hit reports the widget drawn under a character and whether the character
// is that widget's resize handle (its two bottom-right characters).
func (v gridView) hit(widgets []layout.Widget, eng *grid.Engine, x, y int) (layout.Widget, bool, bool) {
	for _, w := range widgets {
		x0, y0, x1, y1 := v.box(eng.Rect(w))
		if x < x0 || x > x1 || y < y0 || y > y1 {
			continue
		}
		return w, y == y1 && x >= x1-1, true
	}
	return layout.Widget{}, false, false
}

type canvasCell struct {
	r     rune
	owner int
}

// Render draws the layout. Widgets are boxes colored by type; free cells
// show a dim dot.
func (v gridView) Render(widgets []layout.Widget, eng *grid.Engine) string {
	rows := max(eng.Bottom(widgets), v.MinRows, 1)
	if v.Placeholder != nil {
		rows = max(rows, v.Placeholder.Bottom())
	}
	width := eng.Cols*v.pitch() - v.Gap
	height := rows * v.CellHeight

	canvas := make([][]canvasCell, height)
	for y := range canvas {
		canvas[y] = make([]canvasCell, width)
		for x := range canvas[y] {
			canvas[y][x] = canvasCell{r: ' ', owner: ownerFree}
		}
	}

	occ := eng.OccupiedCells(widgets)
	for row := range rows {
		for col := range eng.Cols {
			if occ.Has(col, row) {
				continue
			}
			x, y := v.origin(col, row)
			canvas[y+v.CellHeight/2][x+v.CellWidth/2].r = '·'
		}
	}

	colors := typeColorIndex(widgets)
	for i, w := range widgets {
		if w.ID == v.SkipWidgetID {
			continue
		}
		x0, y0, x1, y1 := v.box(eng.Rect(w))
		drawBox(canvas, x0, y0, x1, y1, i, boxRounded)
		if v.Handles {
			set(canvas, x1, y1, '◢', i)
		}
		inner := x1 - x0 - 1
		writeText(canvas, x0+1, y0+1, truncate(" "+w.Type, inner), i)
		if y1-y0 > 2 {
			writeText(canvas, x0+1, y0+2, truncate(" "+w.ID, inner), i)
		}
		if y1-y0 > 3 {
			writeText(canvas, x0+1, y0+3, truncate(" "+w.Size, inner), i)
		}
	}

	if v.Placeholder != nil {
		x0, y0, x1, y1 := v.box(*v.Placeholder)
		drawBox(canvas, x0, y0, x1, y1, ownerPlaceholder, boxDashed)
	}

	styles := make([]lipgloss.Style, len(widgets))
	for i, w := range widgets {
		styles[i] = lipgloss.NewStyle().Foreground(widgetColors[colors[w.Type]%len(widgetColors)])
		if w.ID == v.Highlight {
			styles[i] = styleHighlighted
		}
	}
	placeholder := stylePlaceholder
	if v.InvalidDrop {
		placeholder = styleInvalidDrop
	}

	lines := make([]string, height)
	for y, line := range canvas {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(line); x++ {
			if x < len(line) && line[x].owner == line[start].owner {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, c := range line[start:x] {
				run = append(run, c.r)
			}
			switch owner := line[start].owner; {
			case owner == ownerFree:
				b.WriteString(styleFreeCell.Render(string(run)))
			case owner == ownerPlaceholder:
				b.WriteString(placeholder.Render(string(run)))
			default:
				b.WriteString(styles[owner].Render(string(run)))
			}
			start = x
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// typeColorIndex assigns color slots to widget types in sorted order.
func typeColorIndex(widgets []layout.Widget) map[string]int {
	var types []string
	for _, w := range widgets {
		types = append(types, w.Type)
	}
	slices.Sort(types)
	types = slices.Compact(types)

	idx := make(map[string]int, len(types))
	for i, t := range types {
		idx[t] = i
	}
	return idx
}

// =============================================================================
// Canvas Drawing
// =============================================================================

type boxChars struct {
	tl, tr, bl, br, h, v rune
}

var (
	boxRounded = boxChars{'╭', '╮', '╰', '╯', '─', '│'}
	boxDashed  = boxChars{'┌', '┐', '└', '┘', '┄', '┆'}
)

func set(canvas [][]canvasCell, x, y int, r rune, owner int) {
	if y < 0 || y >= len(canvas) || x < 0 || x >= len(canvas[y]) {
		return
	}
	canvas[y][x] = canvasCell{r: r, owner: owner}
}

func drawBox(canvas [][]canvasCell, x0, y0, x1, y1, owner int, c boxChars) {
	fill := owner != ownerPlaceholder
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case y == y0 && x == x0:
				set(canvas, x, y, c.tl, owner)
			case y == y0 && x == x1:
				set(canvas, x, y, c.tr, owner)
			case y == y1 && x == x0:
				set(canvas, x, y, c.bl, owner)
			case y == y1 && x == x1:
				set(canvas, x, y, c.br, owner)
			case y == y0 || y == y1:
				set(canvas, x, y, c.h, owner)
			case x == x0 || x == x1:
				set(canvas, x, y, c.v, owner)
			case fill:
				set(canvas, x, y, ' ', owner)
			}
		}
	}
}

func writeText(canvas [][]canvasCell, x, y int, s string, owner int) {
	for i, r := range []rune(s) {
		set(canvas, x+i, y, r, owner)
	}
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
