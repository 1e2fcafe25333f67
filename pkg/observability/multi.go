package observability

import (
	"time"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// MultiLayout returns LayoutHooks that forward every event to each of hooks
// in order. Nil entries are skipped.
func MultiLayout(hooks ...LayoutHooks) LayoutHooks {
	var m multiLayout
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiLayout []LayoutHooks

func (m multiLayout) OnLayoutLoaded(source string, n int) {
	for _, h := range m {
		h.OnLayoutLoaded(source, n)
	}
}

func (m multiLayout) OnLayoutChanged(reason string, n int) {
	for _, h := range m {
		h.OnLayoutChanged(reason, n)
	}
}

func (m multiLayout) OnMigrated(from, to int) {
	for _, h := range m {
		h.OnMigrated(from, to)
	}
}

func (m multiLayout) OnWidgetAdded(w layout.Widget) {
	for _, h := range m {
		h.OnWidgetAdded(w)
	}
}

func (m multiLayout) OnWidgetRemoved(id string) {
	for _, h := range m {
		h.OnWidgetRemoved(id)
	}
}

func (m multiLayout) OnWidgetMoved(id string, from, to layout.Position) {
	for _, h := range m {
		h.OnWidgetMoved(id, from, to)
	}
}

func (m multiLayout) OnWidgetResized(id, from, to string) {
	for _, h := range m {
		h.OnWidgetResized(id, from, to)
	}
}

func (m multiLayout) OnWidgetsSwapped(a, b string) {
	for _, h := range m {
		h.OnWidgetsSwapped(a, b)
	}
}

func (m multiLayout) OnUndo(label string) {
	for _, h := range m {
		h.OnUndo(label)
	}
}

func (m multiLayout) OnRedo(label string) {
	for _, h := range m {
		h.OnRedo(label)
	}
}

func (m multiLayout) OnEditModeEntered() {
	for _, h := range m {
		h.OnEditModeEntered()
	}
}

func (m multiLayout) OnEditModeExited() {
	for _, h := range m {
		h.OnEditModeExited()
	}
}

func (m multiLayout) OnPersisted(bytes int, d time.Duration) {
	for _, h := range m {
		h.OnPersisted(bytes, d)
	}
}

func (m multiLayout) OnPersistFailed(err error) {
	for _, h := range m {
		h.OnPersistFailed(err)
	}
}

// MultiDrag returns DragHooks that forward every event to each of hooks in
// order. Nil entries are skipped.
func MultiDrag(hooks ...DragHooks) DragHooks {
	var m multiDrag
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

type multiDrag []DragHooks

func (m multiDrag) OnDragStarted(id string, origin layout.Position) {
	for _, h := range m {
		h.OnDragStarted(id, origin)
	}
}

func (m multiDrag) OnDragMoved(id string, target layout.Position, intent string) {
	for _, h := range m {
		h.OnDragMoved(id, target, intent)
	}
}

func (m multiDrag) OnDropped(id string, target layout.Position, intent string) {
	for _, h := range m {
		h.OnDropped(id, target, intent)
	}
}

func (m multiDrag) OnDragCancelled(id, reason string) {
	for _, h := range m {
		h.OnDragCancelled(id, reason)
	}
}

func (m multiDrag) OnResizeStarted(id, size string) {
	for _, h := range m {
		h.OnResizeStarted(id, size)
	}
}

func (m multiDrag) OnResizeEnded(id, size string, committed bool) {
	for _, h := range m {
		h.OnResizeEnded(id, size, committed)
	}
}
