package grid

import (
	"fmt"
	"testing"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/registry"
)

func newEngine() *Engine {
	return New(4, registry.NewCatalog())
}

func widget(id, size string, col, row int) layout.Widget {
	return layout.Widget{ID: id, Type: "stats", Size: size, Position: layout.Position{Col: col, Row: row}}
}

func pos(col, row int) layout.Position {
	return layout.Position{Col: col, Row: row}
}

// assertDisjoint fails the test if any two widgets share a cell or any widget
// leaves the grid.
func assertDisjoint(t *testing.T, e *Engine, widgets []layout.Widget) {
	t.Helper()
	if err := e.Validate(widgets); err != nil {
		t.Fatalf("layout invalid: %v\n%s", err, dump(widgets))
	}
}

func dump(widgets []layout.Widget) string {
	s := ""
	for _, w := range widgets {
		s += fmt.Sprintf("  %s %s @ %v\n", w.ID, w.Size, w.Position)
	}
	return s
}

func TestFootprint(t *testing.T) {
	e := newEngine()

	tests := []struct {
		size string
		want layout.Footprint
	}{
		{"2x2", layout.Footprint{Cols: 2, Rows: 2}},
		{"large", layout.Footprint{Cols: 2, Rows: 2}},
		{"unknown", layout.Footprint{Cols: 1, Rows: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			if got := e.Footprint(layout.Widget{Size: tt.size}); got != tt.want {
				t.Errorf("Footprint(%q) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}

	narrow := New(2, registry.NewCatalog())
	if got := narrow.Footprint(layout.Widget{Size: "4x2"}); got.Cols != 2 {
		t.Errorf("footprint not clamped to grid width: %v", got)
	}
}

func TestOccupiedCellsSideBySide(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x2", 0, 0),
		widget("B", "2x2", 2, 0),
	}
	assertDisjoint(t, e, widgets)

	occ := e.OccupiedCells(widgets)
	want := []layout.Position{
		pos(0, 0), pos(1, 0), pos(0, 1), pos(1, 1),
		pos(2, 0), pos(3, 0), pos(2, 1), pos(3, 1),
	}
	if len(occ) != len(want) {
		t.Fatalf("len(occ) = %d, want %d", len(occ), len(want))
	}
	for _, c := range want {
		if !occ.Has(c.Col, c.Row) {
			t.Errorf("cell %v not occupied", c)
		}
	}

	excluded := e.OccupiedCells(widgets, "A")
	if excluded.Has(0, 0) || !excluded.Has(2, 0) {
		t.Error("excludeIDs not honored")
	}
}

func TestCanPlace(t *testing.T) {
	e := newEngine()
	occ := e.OccupiedCells([]layout.Widget{widget("A", "2x1", 1, 0)})

	tests := []struct {
		name                 string
		col, row, cols, rows int
		want                 bool
	}{
		{"free", 0, 1, 4, 1, true},
		{"overlap", 0, 0, 2, 1, false},
		{"right edge", 3, 0, 1, 1, true},
		{"past right edge", 3, 2, 2, 1, false},
		{"negative col", -1, 2, 1, 1, false},
		{"negative row", 0, -1, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.CanPlace(tt.col, tt.row, tt.cols, tt.rows, occ); got != tt.want {
				t.Errorf("CanPlace() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindFreePosition(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x2", 0, 0),
		widget("B", "1x1", 2, 0),
	}

	tests := []struct {
		name       string
		cols, rows int
		exclude    []string
		want       layout.Position
	}{
		{"single cell fills gap", 1, 1, nil, pos(3, 0)},
		{"wide goes below", 4, 1, nil, pos(0, 2)},
		{"2x1 beside A", 2, 1, nil, pos(2, 1)},
		{"excluding A frees origin", 2, 2, []string{"A"}, pos(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.FindFreePosition(widgets, tt.cols, tt.rows, tt.exclude...)
			if got != tt.want {
				t.Errorf("FindFreePosition() = %v, want %v", got, tt.want)
			}
			// Determinism: same input, same answer.
			if again := e.FindFreePosition(widgets, tt.cols, tt.rows, tt.exclude...); again != got {
				t.Errorf("FindFreePosition not deterministic: %v then %v", got, again)
			}
		})
	}

	if got := e.FindFreePosition(nil, 2, 2); got != pos(0, 0) {
		t.Errorf("empty layout: got %v", got)
	}
}

func TestCollidingWidgets(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x2", 0, 0),
		widget("B", "2x1", 2, 0),
		widget("C", "2x1", 2, 1),
	}

	got := e.CollidingWidgets(widgets, "A", layout.Rect{Col: 1, Row: 0, Cols: 2, Rows: 2})
	if len(got) != 2 || got[0].ID != "B" || got[1].ID != "C" {
		t.Errorf("CollidingWidgets = %v, want [B C]", got)
	}
}

func TestDisplaceCollidingAfterWidening(t *testing.T) {
	e := newEngine()
	// A was resized to 4x2 in place and now overlaps B.
	widgets := []layout.Widget{
		widget("A", "4x2", 0, 0),
		widget("B", "2x2", 2, 0),
	}

	out, moved := e.DisplaceColliding(widgets, "A")
	if !moved {
		t.Fatal("expected displacement")
	}
	assertDisjoint(t, e, out)

	if a, _ := layout.Find(out, "A"); a.Position != pos(0, 0) {
		t.Errorf("priority widget moved to %v", a.Position)
	}
	if b, _ := layout.Find(out, "B"); b.Position != pos(0, 2) {
		t.Errorf("B displaced to %v, want (0,2)", b.Position)
	}
	if widgets[1].Position != pos(2, 0) {
		t.Error("input slice was mutated")
	}
}

func TestDisplaceCollidingSmallestFirst(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("big", "2x2", 0, 0),
		widget("small", "1x1", 2, 1),
		widget("P", "4x2", 0, 0),
	}

	out, moved := e.DisplaceColliding(widgets, "P")
	if !moved {
		t.Fatal("expected displacement")
	}
	assertDisjoint(t, e, out)

	small, _ := layout.Find(out, "small")
	big, _ := layout.Find(out, "big")
	if small.Position != pos(0, 2) {
		t.Errorf("small = %v, want (0,2)", small.Position)
	}
	if big.Position != pos(1, 2) {
		t.Errorf("big = %v, want (1,2)", big.Position)
	}
}

func TestDisplaceCollidingNoop(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{widget("A", "1x1", 0, 0), widget("B", "1x1", 1, 0)}

	if _, moved := e.DisplaceColliding(widgets, "A"); moved {
		t.Error("nothing collides, nothing should move")
	}
	if _, moved := e.DisplaceColliding(widgets, "missing"); moved {
		t.Error("unknown priority id should be a no-op")
	}
}

func TestDisplaceCollidingTerminatesOnCrowdedGrid(t *testing.T) {
	e := newEngine()
	var widgets []layout.Widget
	for i := 0; i < 16; i++ {
		widgets = append(widgets, widget(fmt.Sprintf("w%02d", i), "1x1", i%4, i/4))
	}
	widgets = append(widgets, widget("P", "4x2", 0, 1))

	out, moved := e.DisplaceColliding(widgets, "P")
	if !moved {
		t.Fatal("expected displacement")
	}
	assertDisjoint(t, e, out)
}

func TestComputeReflowLayout(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x1", 0, 0),
		widget("B", "2x1", 2, 0),
		widget("C", "4x1", 0, 1),
		widget("D", "2x1", 0, 2),
	}

	// Dragging D to the top-right pushes the others around.
	got, ok := e.ComputeReflowLayout(widgets, "D", pos(2, 0))
	if !ok {
		t.Fatal("reflow failed")
	}
	if len(got) != len(widgets) {
		t.Fatalf("reflow map has %d entries, want %d", len(got), len(widgets))
	}
	want := map[string]layout.Position{
		"D": pos(2, 0),
		"A": pos(0, 0),
		"B": pos(0, 1),
		"C": pos(0, 2),
	}
	for id, p := range want {
		if got[id] != p {
			t.Errorf("%s = %v, want %v", id, got[id], p)
		}
	}

	applied := layout.Clone(widgets)
	for i := range applied {
		applied[i].Position = got[applied[i].ID]
	}
	assertDisjoint(t, e, applied)
}

func TestComputeReflowLayoutFailsOnPackedArea(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x2", 0, 0),
		widget("B", "2x1", 2, 0),
		widget("C", "2x1", 2, 1),
	}

	if got, ok := e.ComputeReflowLayout(widgets, "A", pos(1, 0)); ok || got != nil {
		t.Errorf("expected failure, got %v", got)
	}
	if _, ok := e.ComputeReflowLayout(widgets, "A", pos(3, 0)); ok {
		t.Error("out-of-bounds target must fail")
	}
	if _, ok := e.ComputeReflowLayout(widgets, "missing", pos(0, 0)); ok {
		t.Error("unknown widget must fail")
	}
}

func TestCompact(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x1", 0, 3),
		widget("B", "1x1", 3, 5),
		widget("C", "2x1", 0, 6),
	}

	out := e.Compact(widgets)
	assertDisjoint(t, e, out)

	want := map[string]layout.Position{"A": pos(0, 0), "B": pos(3, 0), "C": pos(0, 1)}
	for id, p := range want {
		if w, _ := layout.Find(out, id); w.Position != p {
			t.Errorf("%s = %v, want %v", id, w.Position, p)
		}
	}
	// Insertion order preserved.
	if out[0].ID != "A" || out[2].ID != "C" {
		t.Error("Compact reordered the layout")
	}
}

func TestRepackResolvesOverlaps(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{
		widget("A", "2x2", 0, 0),
		widget("B", "2x2", 1, 1),
		widget("C", "1x1", 7, 0),
	}

	out := e.Repack(widgets)
	assertDisjoint(t, e, out)

	if a, _ := layout.Find(out, "A"); a.Position != pos(0, 0) {
		t.Errorf("A moved to %v", a.Position)
	}
	if c, _ := layout.Find(out, "C"); c.Position != pos(3, 0) {
		t.Errorf("C = %v, want clamped (3,0)", c.Position)
	}
	if b, _ := layout.Find(out, "B"); b.Position != pos(2, 1) {
		t.Errorf("B = %v, want (2,1)", b.Position)
	}
}

func TestRescaleThenRepack(t *testing.T) {
	e := newEngine()
	widgets := []layout.Widget{widget("A", "1x1", 1, 1)}

	out := e.Repack(e.Rescale(widgets, 2))
	if out[0].Position != pos(2, 2) {
		t.Errorf("migrated position = %v, want (2,2)", out[0].Position)
	}

	crowded := []layout.Widget{
		widget("A", "2x1", 0, 0),
		widget("B", "1x1", 0, 1),
		widget("C", "1x2", 1, 1),
		widget("D", "1x1", 0, 2),
	}
	assertDisjoint(t, e, e.Repack(e.Rescale(crowded, 2)))

	// Halving lands B on A and C on B; each is placed by the scan in visual order.
	halved := e.Repack(e.Rescale([]layout.Widget{
		widget("C", "1x1", 4, 0),
		widget("B", "2x2", 2, 0),
		widget("A", "2x2", 0, 0),
	}, 8))
	assertDisjoint(t, e, halved)
	want := map[string]layout.Position{"A": pos(0, 0), "B": pos(2, 0), "C": pos(0, 2)}
	for id, p := range want {
		if w, _ := layout.Find(halved, id); w.Position != p {
			t.Errorf("%s = %v, want %v", id, w.Position, p)
		}
	}
}

func TestValidate(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name    string
		widgets []layout.Widget
		code    errors.Code
	}{
		{"ok", []layout.Widget{widget("A", "2x2", 0, 0), widget("B", "2x2", 2, 0)}, ""},
		{"overlap", []layout.Widget{widget("A", "2x2", 0, 0), widget("B", "2x2", 1, 1)}, errors.ErrCodePlacement},
		{"out of bounds", []layout.Widget{widget("A", "2x2", 3, 0)}, errors.ErrCodeInvalidPosition},
		{"duplicate", []layout.Widget{widget("A", "1x1", 0, 0), widget("A", "1x1", 2, 0)}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Validate(tt.widgets)
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestPixelMapping(t *testing.T) {
	e := newEngine()
	m := Metrics{CellWidth: 100, CellHeight: 80, Gap: 10, OriginX: 20, OriginY: 40}

	tests := []struct {
		name string
		x, y float64
		want layout.Position
	}{
		{"origin", 20, 40, pos(0, 0)},
		{"nearest rounds down", 70, 80, pos(0, 0)},
		{"nearest rounds up", 80, 90, pos(1, 1)},
		{"far right clamps", 2000, 40, pos(3, 0)},
		{"left of origin clamps", -500, -500, pos(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.PixelsToGrid(m, tt.x, tt.y); got != tt.want {
				t.Errorf("PixelsToGrid(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	x, y := e.GridToPixels(m, 2, 3)
	if x != 240 || y != 310 {
		t.Errorf("GridToPixels(2,3) = %v,%v want 240,310", x, y)
	}
	if p := e.PixelsToGrid(m, x, y); p != pos(2, 3) {
		t.Errorf("round trip = %v", p)
	}
	if x, _ := e.GridToPixels(m, 9, 0); x != 350 {
		t.Errorf("GridToPixels clamps column: got %v", x)
	}
}
