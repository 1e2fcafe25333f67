package grid

import (
	"slices"

	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/registry"
)

// DefaultCols is the grid width used when none is configured.
const DefaultCols = 4

// Engine evaluates layouts for a grid of fixed width.
type Engine struct {
	Cols     int
	Registry registry.Registry
}

// New returns an engine for a grid cols wide. Non-positive widths fall back
// to [DefaultCols].
func New(cols int, reg registry.Registry) *Engine {
	if cols <= 0 {
		cols = DefaultCols
	}
	return &Engine{Cols: cols, Registry: reg}
}

// =============================================================================
// Footprints
// =============================================================================

// Footprint resolves w's size through the registry. Unknown sizes resolve to
// 1x1; widths are clamped to the grid.
func (e *Engine) Footprint(w layout.Widget) layout.Footprint {
	return e.SizeFootprint(w.Size)
}

// SizeFootprint resolves a size id the same way [Engine.Footprint] does.
func (e *Engine) SizeFootprint(sizeID string) layout.Footprint {
	f, ok := e.Registry.Size(sizeID)
	if !ok {
		f = layout.Footprint{Cols: 1, Rows: 1}
	}
	f.Cols = max(1, min(f.Cols, e.Cols))
	f.Rows = max(1, f.Rows)
	return f
}

// Rect returns the cells w covers at its current position.
func (e *Engine) Rect(w layout.Widget) layout.Rect {
	return layout.RectAt(w.Position, e.Footprint(w))
}

// Bottom returns the first row below every widget not in excludeIDs.
// An empty layout has a bottom of 0.
func (e *Engine) Bottom(widgets []layout.Widget, excludeIDs ...string) int {
	bottom := 0
	for _, w := range widgets {
		if slices.Contains(excludeIDs, w.ID) {
			continue
		}
		bottom = max(bottom, e.Rect(w).Bottom())
	}
	return bottom
}

// =============================================================================
// Occupancy
// =============================================================================

// CellSet is a set of occupied grid cells.
type CellSet map[layout.Position]struct{}

// Has reports whether the cell is occupied.
func (s CellSet) Has(col, row int) bool {
	_, ok := s[layout.Position{Col: col, Row: row}]
	return ok
}

// Add marks every cell of r as occupied.
func (s CellSet) Add(r layout.Rect) {
	for _, c := range r.Cells() {
		s[c] = struct{}{}
	}
}

// OccupiedCells returns the cells covered by every widget not in excludeIDs.
func (e *Engine) OccupiedCells(widgets []layout.Widget, excludeIDs ...string) CellSet {
	occ := make(CellSet)
	for _, w := range widgets {
		if slices.Contains(excludeIDs, w.ID) {
			continue
		}
		occ.Add(e.Rect(w))
	}
	return occ
}

// InBounds reports whether a cols x rows footprint at (col, row) fits the grid.
func (e *Engine) InBounds(col, row, cols, rows int) bool {
	return col >= 0 && row >= 0 && cols >= 1 && rows >= 1 && col+cols <= e.Cols
}

// CanPlace reports whether a cols x rows footprint fits at (col, row) without
// leaving the grid or touching an occupied cell.
func (e *Engine) CanPlace(col, row, cols, rows int, occupied CellSet) bool {
	if !e.InBounds(col, row, cols, rows) {
		return false
	}
	for r := row; r < row+rows; r++ {
		for c := col; c < col+cols; c++ {
			if occupied.Has(c, r) {
				return false
			}
		}
	}
	return true
}

