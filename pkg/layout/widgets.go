package layout

import (
	"cmp"
	"maps"
	"slices"
)

// Clone returns a copy of widgets that shares no state with the input. Each
// Settings map is copied one level deep.
func Clone(widgets []Widget) []Widget {
	if widgets == nil {
		return nil
	}
	out := slices.Clone(widgets)
	for i := range out {
		out[i].Settings = maps.Clone(out[i].Settings)
	}
	return out
}

// CompareVisual orders widgets by row, then column, then id.
func CompareVisual(a, b Widget) int {
	return cmp.Or(
		cmp.Compare(a.Position.Row, b.Position.Row),
		cmp.Compare(a.Position.Col, b.Position.Col),
		cmp.Compare(a.ID, b.ID),
	)
}

// SortVisual returns a copy of widgets in visual (row-major) order.
// The input is left untouched.
func SortVisual(widgets []Widget) []Widget {
	out := Clone(widgets)
	slices.SortStableFunc(out, CompareVisual)
	return out
}

// Index returns the index of the widget with the given id, or -1.
func Index(widgets []Widget, id string) int {
	return slices.IndexFunc(widgets, func(w Widget) bool { return w.ID == id })
}

// Find returns the widget with the given id.
func Find(widgets []Widget, id string) (Widget, bool) {
	if i := Index(widgets, id); i >= 0 {
		return widgets[i], true
	}
	return Widget{}, false
}

// Positions returns a map of widget id to position.
func Positions(widgets []Widget) map[string]Position {
	out := make(map[string]Position, len(widgets))
	for _, w := range widgets {
		out[w.ID] = w.Position
	}
	return out
}
