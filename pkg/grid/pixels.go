package grid

import (
	"math"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// Metrics describes how grid cells map onto the host's pixel space.
type Metrics struct {
	CellWidth  float64
	CellHeight float64
	Gap        float64
	OriginX    float64
	OriginY    float64
}

func (m Metrics) pitch() (float64, float64) {
	return m.CellWidth + m.Gap, m.CellHeight + m.Gap
}

// PixelsToGrid snaps a pixel coordinate to the nearest cell origin. The
// column is clamped into [0, Cols-1] and the row to zero or more.
func (e *Engine) PixelsToGrid(m Metrics, x, y float64) layout.Position {
	px, py := m.pitch()
	if px <= 0 || py <= 0 {
		return layout.Position{}
	}
	col := int(math.Round((x - m.OriginX) / px))
	row := int(math.Round((y - m.OriginY) / py))
	return layout.Position{
		Col: clamp(col, 0, e.Cols-1),
		Row: max(0, row),
	}
}

// GridToPixels returns the pixel origin of a cell. The column is clamped
// into [0, Cols-1].
func (e *Engine) GridToPixels(m Metrics, col, row int) (x, y float64) {
	px, py := m.pitch()
	col = clamp(col, 0, e.Cols-1)
	return m.OriginX + float64(col)*px, m.OriginY + float64(row)*py
}
