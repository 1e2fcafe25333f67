package layout

import (
	"fmt"
	"time"
)

// GridVersion is the current layout format version stored in [Meta].
const GridVersion = 2

// =============================================================================
// Geometry
// =============================================================================

// Position is the zero-based grid cell of a widget's top-left corner.
type Position struct {
	Col int `json:"col" bson:"col" yaml:"col"`
	Row int `json:"row" bson:"row" yaml:"row"`
}

// String returns "col,row".
func (p Position) String() string { return fmt.Sprintf("%d,%d", p.Col, p.Row) }

// Footprint is a widget's size in grid cells. Both dimensions are at least 1.
type Footprint struct {
	Cols int `json:"cols" bson:"cols" yaml:"cols"`
	Rows int `json:"rows" bson:"rows" yaml:"rows"`
}

// Area returns the number of cells covered.
func (f Footprint) Area() int { return f.Cols * f.Rows }

// String returns the canonical "CxR" form.
func (f Footprint) String() string { return fmt.Sprintf("%dx%d", f.Cols, f.Rows) }

// Rect is a footprint anchored at a position.
type Rect struct {
	Col, Row   int
	Cols, Rows int
}

// RectAt anchors f at p.
func RectAt(p Position, f Footprint) Rect {
	return Rect{Col: p.Col, Row: p.Row, Cols: f.Cols, Rows: f.Rows}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.Col + r.Cols }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Row + r.Rows }

// Overlaps reports whether r and o share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.Col < o.Right() && r.Right() > o.Col && r.Row < o.Bottom() && r.Bottom() > o.Row
}

// Cells enumerates every cell of r in row-major order.
func (r Rect) Cells() []Position {
	cells := make([]Position, 0, r.Cols*r.Rows)
	for row := r.Row; row < r.Bottom(); row++ {
		for col := r.Col; col < r.Right(); col++ {
			cells = append(cells, Position{Col: col, Row: row})
		}
	}
	return cells
}

// =============================================================================
// Widget
// =============================================================================

// Widget is a placed rectangular block on the dashboard grid.
//
// Size is a registry identifier, never a cached footprint: legacy aliases are
// re-resolved on every lookup so remapped sizes stay consistent.
type Widget struct {
	ID        string         `json:"id" bson:"id" yaml:"id"`
	Type      string         `json:"type" bson:"type" yaml:"type"`
	Size      string         `json:"size" bson:"size" yaml:"size"`
	Position  Position       `json:"position" bson:"position" yaml:"position"`
	Settings  map[string]any `json:"settings,omitempty" bson:"settings,omitempty" yaml:"settings,omitempty"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
}

// =============================================================================
// Meta
// =============================================================================

// Meta is the companion record persisted next to a layout. A GridCols that
// differs from the running grid width triggers a one-time migration.
type Meta struct {
	GridVersion int       `json:"gridVersion" bson:"gridVersion" yaml:"gridVersion"`
	GridCols    int       `json:"gridCols" bson:"gridCols" yaml:"gridCols"`
	MigratedAt  time.Time `json:"migratedAt,omitzero" bson:"migratedAt,omitempty" yaml:"migratedAt,omitempty"`
}
