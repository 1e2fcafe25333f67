package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/registry"
)

func testWidgets() []layout.Widget {
	return []layout.Widget{
		{ID: "A", Type: "chart", Size: "2x2", Position: layout.Position{Col: 0, Row: 0}},
		{ID: "B", Type: "clock", Size: "1x1", Position: layout.Position{Col: 2, Row: 0}},
	}
}

func TestGridViewCellAt(t *testing.T) {
	v := defaultGridView()

	tests := []struct {
		x, y   int
		want   layout.Position
		wantOK bool
	}{
		{0, 0, layout.Position{Col: 0, Row: 0}, true},
		{13, 3, layout.Position{Col: 0, Row: 0}, true},
		{14, 0, layout.Position{}, false}, // gap
		{15, 4, layout.Position{Col: 1, Row: 1}, true},
		{-1, 0, layout.Position{}, false},
	}

	for _, tt := range tests {
		got, ok := v.cellAt(tt.x, tt.y)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("cellAt(%d, %d) = %v, %v; want %v, %v", tt.x, tt.y, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestGridViewHit(t *testing.T) {
	v := defaultGridView()
	eng := grid.New(4, registry.NewCatalog())
	widgets := testWidgets()

	w, handle, ok := v.hit(widgets, eng, 5, 3)
	if !ok || w.ID != "A" || handle {
		t.Errorf("hit(5,3) = %q handle=%v ok=%v, want A body", w.ID, handle, ok)
	}

	// A spans two columns: 2*15-1 = 29 characters wide, 8 lines tall.
	w, handle, ok = v.hit(widgets, eng, 28, 7)
	if !ok || w.ID != "A" || !handle {
		t.Errorf("hit(28,7) = %q handle=%v ok=%v, want A handle", w.ID, handle, ok)
	}

	w, _, ok = v.hit(widgets, eng, 32, 1)
	if !ok || w.ID != "B" {
		t.Errorf("hit(32,1) = %q ok=%v, want B", w.ID, ok)
	}

	if _, _, ok := v.hit(widgets, eng, 5, 10); ok {
		t.Error("hit below the layout should miss")
	}
}

func TestGridViewRender(t *testing.T) {
	v := defaultGridView()
	v.Handles = true
	eng := grid.New(4, registry.NewCatalog())

	out := v.Render(testWidgets(), eng)

	if lines := strings.Split(out, "\n"); len(lines) != 2*v.CellHeight {
		t.Errorf("Render() has %d lines, want %d", len(lines), 2*v.CellHeight)
	}
	for _, want := range []string{"chart", "clock", "◢", "·"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestGridViewRenderPlaceholder(t *testing.T) {
	v := defaultGridView()
	eng := grid.New(4, registry.NewCatalog())
	r := layout.Rect{Col: 0, Row: 2, Cols: 1, Rows: 1}
	v.Placeholder = &r

	out := v.Render(testWidgets(), eng)

	if lines := strings.Split(out, "\n"); len(lines) != 3*v.CellHeight {
		t.Errorf("Render() has %d lines, want room for the placeholder", len(lines))
	}
}

func TestGridViewRenderSkipsDraggedWidget(t *testing.T) {
	v := defaultGridView()
	v.SkipWidgetID = "B"
	eng := grid.New(4, registry.NewCatalog())

	out := v.Render(testWidgets(), eng)
	if strings.Contains(out, "clock") {
		t.Error("Render() drew the skipped widget")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"abcdef", 4, "abc…"},
		{"ab", 4, "ab"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestWithPositions(t *testing.T) {
	widgets := testWidgets()
	out := withPositions(widgets, map[string]layout.Position{"B": {Col: 0, Row: 2}})

	if out[1].Position != (layout.Position{Col: 0, Row: 2}) {
		t.Errorf("B = %v, want (0,2)", out[1].Position)
	}
	if widgets[1].Position != (layout.Position{Col: 2, Row: 0}) {
		t.Error("withPositions modified its input")
	}
}
