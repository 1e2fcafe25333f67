package dragdrop

import (
	"maps"
	"math"

	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// Intent is what a drop at the current target would do.
type Intent int

const (
	IntentNone Intent = iota
	IntentMove
	IntentSwap
	IntentReflow
	IntentResize
)

func (i Intent) String() string {
	switch i {
	case IntentMove:
		return "move"
	case IntentSwap:
		return "swap"
	case IntentReflow:
		return "reflow"
	case IntentResize:
		return "resize"
	default:
		return "none"
	}
}

// =============================================================================
// Drag Tracking
// =============================================================================

// track maps the pointer to a target cell and re-resolves the intent.
// Must be called with mu held.
func (c *Controller) track(x, y float64) {
	eng := c.layout.Engine()
	f := c.g.footprint
	cell := eng.PixelsToGrid(c.cfg.Metrics, x-c.g.grabX, y-c.g.grabY)
	cell.Col = max(0, min(cell.Col, eng.Cols-f.Cols))

	prevTarget, prevIntent := c.g.target, c.g.intent
	c.g.target = cell
	c.resolve()
	if c.g.target == prevTarget && c.g.intent == prevIntent {
		return
	}
	id, target, intent := c.g.id, c.g.target, c.g.intent.String()
	c.emit(func(h observability.DragHooks) { h.OnDragMoved(id, target, intent) })
}

// resolve picks the drop intent for the current target: Move when the
// target is free, Swap when it overlaps exactly one widget of the same
// footprint, Reflow when everyone else can be re-placed around it, and None
// otherwise.
func (c *Controller) resolve() {
	c.g.intent, c.g.swapWith, c.g.reflow = IntentNone, "", nil
	if c.g.target == c.g.origin {
		c.g.intent = IntentMove
		return
	}

	eng := c.layout.Engine()
	widgets := c.layout.Widgets()
	r := layout.RectAt(c.g.target, c.g.footprint)
	colliding := eng.CollidingWidgets(widgets, c.g.id, r)

	switch {
	case len(colliding) == 0:
		c.g.intent = IntentMove
		return
	case len(colliding) == 1 && eng.Footprint(colliding[0]) == c.g.footprint:
		c.g.intent = IntentSwap
		c.g.swapWith = colliding[0].ID
		return
	}
	if positions, ok := eng.ComputeReflowLayout(widgets, c.g.id, c.g.target); ok {
		c.g.intent = IntentReflow
		c.g.reflow = positions
	}
}

// =============================================================================
// Resize Tracking
// =============================================================================

// trackResize snaps the handle under the pointer to the nearest size the
// widget's type supports. Must be called with mu held.
func (c *Controller) trackResize(x, y float64) {
	eng := c.layout.Engine()
	m := c.cfg.Metrics
	ox, oy := eng.GridToPixels(m, c.g.origin.Col, c.g.origin.Row)

	// The handle sits on the bottom-right corner, so the pointer's distance
	// from the origin plus one gap spans the desired number of pitches.
	wantCols := (x - ox + m.Gap) / (m.CellWidth + m.Gap)
	wantRows := (y - oy + m.Gap) / (m.CellHeight + m.Gap)

	best, bestDist := c.g.size, math.Inf(1)
	for _, size := range c.layout.Registry().SupportedSizes(c.g.typ) {
		f := eng.SizeFootprint(size)
		d := math.Hypot(float64(f.Cols)-wantCols, float64(f.Rows)-wantRows)
		if d < bestDist {
			best, bestDist = size, d
		}
	}
	c.g.size = best
}

// =============================================================================
// Preview
// =============================================================================

// Preview describes the gesture in progress for renderers.
type Preview struct {
	Phase    Phase
	WidgetID string

	// Ghost is the pixel origin of the widget following the pointer.
	GhostX, GhostY float64

	// Placeholder is the grid cell the widget would land on.
	Placeholder layout.Position
	Footprint   layout.Footprint
	Intent      Intent
	Valid       bool
	SwapWith    string
	Reflow      map[string]layout.Position

	// Size is the snapped size while resizing.
	Size string
}

// Preview returns the current gesture state. It is zero except for Phase
// while idle.
func (c *Controller) Preview() Preview {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := Preview{Phase: c.phase}
	if c.phase == Idle {
		return p
	}
	p.WidgetID = c.g.id
	p.Footprint = c.g.footprint
	p.Placeholder = c.g.origin
	switch c.phase {
	case Dragging:
		p.GhostX = c.g.lastX - c.g.grabX
		p.GhostY = c.g.lastY - c.g.grabY
		p.Placeholder = c.g.target
		p.Intent = c.g.intent
		p.Valid = c.g.intent != IntentNone
		p.SwapWith = c.g.swapWith
		p.Reflow = maps.Clone(c.g.reflow)
	case Resizing:
		p.Size = c.g.size
		p.Footprint = c.layout.Engine().SizeFootprint(c.g.size)
		p.Intent = IntentResize
		p.Valid = true
	}
	return p
}
