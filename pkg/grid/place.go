package grid

import (
	"cmp"
	"slices"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Free-slot Search
// =============================================================================

// FindFreePosition returns the first cell, scanning top to bottom and left to
// right, where a cols x rows footprint fits among every widget not in
// excludeIDs. If nothing fits within maxRow+rows+1 rows it falls back to
// column 0 one row below the lowest widget.
func (e *Engine) FindFreePosition(widgets []layout.Widget, cols, rows int, excludeIDs ...string) layout.Position {
	occ := e.OccupiedCells(widgets, excludeIDs...)
	bottom := e.Bottom(widgets, excludeIDs...)
	if pos, ok := e.scan(occ, cols, rows, bottom+rows+1); ok {
		return pos
	}
	return layout.Position{Col: 0, Row: bottom}
}

// scan returns the first position in row-major order whose footprint fits
// entirely above limitRow.
func (e *Engine) scan(occ CellSet, cols, rows, limitRow int) (layout.Position, bool) {
	for row := 0; row+rows <= limitRow; row++ {
		for col := 0; col+cols <= e.Cols; col++ {
			if e.CanPlace(col, row, cols, rows, occ) {
				return layout.Position{Col: col, Row: row}, true
			}
		}
	}
	return layout.Position{}, false
}

// =============================================================================
// Collisions
// =============================================================================

// CollidingWidgets returns, in input order, every widget other than excludeID
// whose footprint overlaps r.
func (e *Engine) CollidingWidgets(widgets []layout.Widget, excludeID string, r layout.Rect) []layout.Widget {
	var out []layout.Widget
	for _, w := range widgets {
		if w.ID == excludeID {
			continue
		}
		if e.Rect(w).Overlaps(r) {
			out = append(out, w)
		}
	}
	return out
}

// DisplaceColliding keeps the widget priorityID where it is and moves every
// widget overlapping it to the first free slot. Colliders are re-homed
// smallest footprint first (ties in visual order); each search ignores only
// the widget being moved, so the priority widget and already re-homed widgets
// stay blocked. It returns the new layout and whether anything moved.
func (e *Engine) DisplaceColliding(widgets []layout.Widget, priorityID string) ([]layout.Widget, bool) {
	out := layout.Clone(widgets)
	p, ok := layout.Find(out, priorityID)
	if !ok {
		return out, false
	}

	colliders := e.CollidingWidgets(out, priorityID, e.Rect(p))
	if len(colliders) == 0 {
		return out, false
	}
	slices.SortStableFunc(colliders, func(a, b layout.Widget) int {
		return cmp.Or(
			cmp.Compare(e.Footprint(a).Area(), e.Footprint(b).Area()),
			layout.CompareVisual(a, b),
		)
	})

	for _, c := range colliders {
		f := e.Footprint(c)
		pos := e.FindFreePosition(out, f.Cols, f.Rows, c.ID)
		out[layout.Index(out, c.ID)].Position = pos
	}
	return out, true
}

// =============================================================================
// Reflow
// =============================================================================

// ComputeReflowLayout pins draggedID at target and re-places every other
// widget, in visual order, at the first free slot. The returned map holds a
// position for every widget including the dragged one. It returns false,
// and no map, when the target is out of bounds or any widget cannot be placed
// above max(current bottom, target bottom).
func (e *Engine) ComputeReflowLayout(widgets []layout.Widget, draggedID string, target layout.Position) (map[string]layout.Position, bool) {
	d, ok := layout.Find(widgets, draggedID)
	if !ok {
		return nil, false
	}
	df := e.Footprint(d)
	if !e.InBounds(target.Col, target.Row, df.Cols, df.Rows) {
		return nil, false
	}

	limit := max(e.Bottom(widgets), target.Row+df.Rows)
	occ := make(CellSet)
	occ.Add(layout.RectAt(target, df))
	result := map[string]layout.Position{draggedID: target}

	for _, w := range layout.SortVisual(widgets) {
		if w.ID == draggedID {
			continue
		}
		f := e.Footprint(w)
		pos, ok := e.scan(occ, f.Cols, f.Rows, limit)
		if !ok {
			return nil, false
		}
		occ.Add(layout.RectAt(pos, f))
		result[w.ID] = pos
	}
	return result, true
}
