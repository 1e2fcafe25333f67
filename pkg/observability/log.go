package observability

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// LogHooks logs every layout and drag event. Routine events go to debug,
// persistence failures to warn.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l. A nil logger discards.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.New(io.Discard)
	}
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnLayoutLoaded(source string, n int) {
	h.logger.Info("layout loaded", "source", source, "widgets", n)
}

func (h *LogHooks) OnLayoutChanged(reason string, n int) {
	h.logger.Debug("layout changed", "reason", reason, "widgets", n)
}

func (h *LogHooks) OnMigrated(from, to int) {
	h.logger.Info("layout migrated", "from_cols", from, "to_cols", to)
}

func (h *LogHooks) OnWidgetAdded(w layout.Widget) {
	h.logger.Debug("widget added", "id", w.ID, "type", w.Type, "size", w.Size, "pos", w.Position)
}

func (h *LogHooks) OnWidgetRemoved(id string) {
	h.logger.Debug("widget removed", "id", id)
}

func (h *LogHooks) OnWidgetMoved(id string, from, to layout.Position) {
	h.logger.Debug("widget moved", "id", id, "from", from, "to", to)
}

func (h *LogHooks) OnWidgetResized(id, from, to string) {
	h.logger.Debug("widget resized", "id", id, "from", from, "to", to)
}

func (h *LogHooks) OnWidgetsSwapped(a, b string) {
	h.logger.Debug("widgets swapped", "a", a, "b", b)
}

func (h *LogHooks) OnUndo(label string) { h.logger.Debug("undo", "action", label) }

func (h *LogHooks) OnRedo(label string) { h.logger.Debug("redo", "action", label) }

func (h *LogHooks) OnEditModeEntered() { h.logger.Debug("edit mode entered") }

func (h *LogHooks) OnEditModeExited() { h.logger.Debug("edit mode exited") }

func (h *LogHooks) OnPersisted(bytes int, d time.Duration) {
	h.logger.Debug("layout persisted", "bytes", bytes, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnPersistFailed(err error) {
	h.logger.Warn("layout persist failed", "err", err)
}

func (h *LogHooks) OnDragStarted(id string, origin layout.Position) {
	h.logger.Debug("drag started", "id", id, "origin", origin)
}

func (h *LogHooks) OnDragMoved(id string, target layout.Position, intent string) {
	h.logger.Debug("drag moved", "id", id, "target", target, "intent", intent)
}

func (h *LogHooks) OnDropped(id string, target layout.Position, intent string) {
	h.logger.Debug("dropped", "id", id, "target", target, "intent", intent)
}

func (h *LogHooks) OnDragCancelled(id, reason string) {
	h.logger.Debug("drag cancelled", "id", id, "reason", reason)
}

func (h *LogHooks) OnResizeStarted(id, size string) {
	h.logger.Debug("resize started", "id", id, "size", size)
}

func (h *LogHooks) OnResizeEnded(id, size string, committed bool) {
	h.logger.Debug("resize ended", "id", id, "size", size, "committed", committed)
}

// Ensure LogHooks implements both hook interfaces.
var (
	_ LayoutHooks = (*LogHooks)(nil)
	_ DragHooks   = (*LogHooks)(nil)
)
