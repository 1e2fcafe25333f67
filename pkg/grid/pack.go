package grid

import (
	"math"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// Compact walks every widget, top to bottom and left to right, upward one row
// at a time while the cell above stays free. Columns never change.
func (e *Engine) Compact(widgets []layout.Widget) []layout.Widget {
	out := layout.Clone(widgets)
	for _, w := range layout.SortVisual(out) {
		i := layout.Index(out, w.ID)
		f := e.Footprint(out[i])
		occ := e.OccupiedCells(out, w.ID)
		pos := out[i].Position
		for pos.Row > 0 && e.CanPlace(pos.Col, pos.Row-1, f.Cols, f.Rows, occ) {
			pos.Row--
		}
		out[i].Position = pos
	}
	return out
}

// Repack rebuilds a collision-free layout from untrusted positions. Widgets
// are visited in visual order; each keeps its position (clamped into the grid)
// when that is still free and otherwise takes the first free slot.
func (e *Engine) Repack(widgets []layout.Widget) []layout.Widget {
	out := layout.Clone(widgets)
	occ := make(CellSet)
	bottom := 0

	for _, w := range layout.SortVisual(out) {
		i := layout.Index(out, w.ID)
		f := e.Footprint(w)
		pos := layout.Position{
			Col: clamp(w.Position.Col, 0, e.Cols-f.Cols),
			Row: max(0, w.Position.Row),
		}
		if !e.CanPlace(pos.Col, pos.Row, f.Cols, f.Rows, occ) {
			pos, _ = e.scan(occ, f.Cols, f.Rows, bottom+f.Rows)
		}
		r := layout.RectAt(pos, f)
		occ.Add(r)
		bottom = max(bottom, r.Bottom())
		out[i].Position = pos
	}
	return out
}

// Rescale maps positions authored on a grid fromCols wide onto this grid by
// scaling both coordinates by Cols/fromCols and rounding. The result is not
// collision-free; pass it through [Engine.Repack].
func (e *Engine) Rescale(widgets []layout.Widget, fromCols int) []layout.Widget {
	out := layout.Clone(widgets)
	if fromCols <= 0 || fromCols == e.Cols {
		return out
	}
	ratio := float64(e.Cols) / float64(fromCols)
	for i := range out {
		out[i].Position = layout.Position{
			Col: int(math.Round(float64(out[i].Position.Col) * ratio)),
			Row: int(math.Round(float64(out[i].Position.Row) * ratio)),
		}
	}
	return out
}

// Validate reports the first widget that is out of bounds, shares an id with
// an earlier widget, or overlaps an earlier widget.
func (e *Engine) Validate(widgets []layout.Widget) error {
	seen := make(map[string]layout.Rect, len(widgets))
	for _, w := range widgets {
		r := e.Rect(w)
		if err := errors.ValidatePosition(r.Col, r.Row, r.Cols, e.Cols); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPosition, err, "widget %q", w.ID)
		}
		if _, dup := seen[w.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate widget id %q", w.ID)
		}
		for id, other := range seen {
			if r.Overlaps(other) {
				return errors.New(errors.ErrCodePlacement, "widgets %q and %q overlap", id, w.ID)
			}
		}
		seen[w.ID] = r
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
