// Package grid implements the geometry of a gridboard dashboard: occupancy,
// collision detection, free-slot search, forced displacement, reflow,
// compaction and pixel/cell conversion.
//
// # Model
//
// The grid is [Engine.Cols] columns wide and unbounded downward. A widget
// occupies the cells [col, col+cols) x [row, row+rows), where the footprint is
// always resolved through the [registry.Registry] from the widget's size id.
// Unknown sizes fall back to 1x1 so a layout written by a newer catalog still
// loads.
//
// Every method treats its widget slice as a read-only view. Methods that
// produce a new arrangement ([Engine.DisplaceColliding], [Engine.Compact],
// [Engine.Repack]) return a fresh slice; [Engine.ComputeReflowLayout] returns a
// position map and leaves applying it to the caller.
//
// # Tie-break
//
// Whenever several free slots are legal, the first one found scanning rows
// top to bottom and columns left to right wins. All placement decisions go
// through that scan, so the same input always produces the same layout:
//
//	e := grid.New(4, registry.NewCatalog())
//	pos := e.FindFreePosition(widgets, 2, 1) // deterministic
//
// # Displacement and Reflow
//
// [Engine.DisplaceColliding] keeps one widget pinned and re-homes everything
// that overlaps it, smallest footprint first. It runs a single pass and the
// pinned widget is part of the occupancy every re-homed widget must avoid, so
// it always terminates without a residual overlap.
//
// [Engine.ComputeReflowLayout] pins a dragged widget at a target and greedily
// re-places everyone else in visual order. The result is all-or-nothing and
// may not grow the layout past max(current bottom, target bottom), which is
// what lets a drop onto a fully packed area fail instead of silently pushing
// widgets off the bottom.
//
// # Pixels
//
// [Metrics] carries the host's cell size, gap and origin. [Engine.PixelsToGrid]
// snaps to the nearest cell and clamps the column into [0, Cols-1];
// [Engine.GridToPixels] is its inverse for cell origins.
package grid
