package state

import (
	"maps"
	"reflect"
	"slices"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/history"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// =============================================================================
// Call Options
// =============================================================================

// CallOption adjusts a single mutation.
type CallOption func(*callOptions)

type callOptions struct {
	skipHistory bool
	label       string
}

// SkipHistory applies a mutation without pushing an undo snapshot.
// The redo stack is left untouched as well.
func SkipHistory() CallOption {
	return func(o *callOptions) { o.skipHistory = true }
}

// Label overrides the history label recorded for a mutation.
func Label(label string) CallOption {
	return func(o *callOptions) { o.label = label }
}

func applyCallOptions(defaultLabel string, opts []CallOption) callOptions {
	o := callOptions{label: defaultLabel}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WidgetSpec describes a widget to add. Empty fields take registry defaults;
// a nil Position lets the engine pick the first free slot.
type WidgetSpec struct {
	ID       string
	Type     string
	Size     string
	Position *layout.Position
	Settings map[string]any
}

// Update lists the fields of a widget to change. Nil fields are kept.
type Update struct {
	Size     *string
	Position *layout.Position
	Settings map[string]any
}

// =============================================================================
// Commit
// =============================================================================

// commit installs next as the live layout. Must be called with mu held.
func (m *Manager) commit(next []layout.Widget, reason string, o callOptions) {
	prev := m.widgets
	if !o.skipHistory {
		m.history.Push(history.MakeSnapshot(prev, o.label))
	}
	m.install(prev, next, reason)
}

// install replaces the live layout without touching history.
func (m *Manager) install(prev, next []layout.Widget, reason string) {
	m.widgets = next
	m.version++
	m.markDirty()
	m.emitMoves(prev, next)
	n := len(next)
	m.emit(func(h observability.LayoutHooks) { h.OnLayoutChanged(reason, n) })
}

// emitMoves queues a moved event for every widget whose position differs.
func (m *Manager) emitMoves(prev, next []layout.Widget) {
	before := layout.Positions(prev)
	for _, w := range next {
		from, ok := before[w.ID]
		if !ok || from == w.Position {
			continue
		}
		id, to := w.ID, w.Position
		m.emit(func(h observability.LayoutHooks) { h.OnWidgetMoved(id, from, to) })
	}
}

func (m *Manager) lookup(id string) (int, error) {
	i := layout.Index(m.widgets, id)
	if i < 0 {
		return -1, errors.New(errors.ErrCodeWidgetNotFound, "widget %q not found", id)
	}
	return i, nil
}

func samePositions(a, b []layout.Widget) bool {
	return slices.EqualFunc(a, b, func(x, y layout.Widget) bool {
		return x.ID == y.ID && x.Position == y.Position && x.Size == y.Size
	})
}

// sameSettings treats nil and empty maps as equal.
func sameSettings(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// clampCol keeps a footprint cols wide inside the grid.
func (m *Manager) clampCol(col, cols int) int {
	return max(0, min(col, m.engine.Cols-cols))
}

// =============================================================================
// Add / Remove / Update
// =============================================================================

// AddWidget creates a widget through the registry and places it. With an
// explicit position, widgets in the way are displaced; otherwise the first
// free slot is used.
func (m *Manager) AddWidget(spec WidgetSpec, opts ...CallOption) (layout.Widget, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return layout.Widget{}, err
	}

	if spec.ID != "" {
		if err := errors.ValidateWidgetID(spec.ID); err != nil {
			return layout.Widget{}, err
		}
		if layout.Index(m.widgets, spec.ID) >= 0 {
			return layout.Widget{}, errors.New(errors.ErrCodeInvalidInput, "widget %q already exists", spec.ID)
		}
	}

	w, err := m.reg.CreateWidget(spec.Type, layout.Widget{
		ID:        spec.ID,
		Size:      spec.Size,
		Settings:  maps.Clone(spec.Settings),
		CreatedAt: m.clock.Now().UTC(),
	})
	if err != nil {
		return layout.Widget{}, err
	}

	f := m.engine.Footprint(w)
	next := layout.Clone(m.widgets)
	if spec.Position != nil {
		p := *spec.Position
		if err := errors.ValidatePosition(p.Col, p.Row, f.Cols, m.engine.Cols); err != nil {
			return layout.Widget{}, err
		}
		w.Position = p
		next = append(next, w)
		next, _ = m.engine.DisplaceColliding(next, w.ID)
	} else {
		w.Position = m.engine.FindFreePosition(next, f.Cols, f.Rows)
		next = append(next, w)
	}

	m.commit(next, "add", applyCallOptions("add "+w.Type, opts))
	added := w
	m.emit(func(h observability.LayoutHooks) { h.OnWidgetAdded(added) })
	return w, nil
}

// RemoveWidget deletes a widget. Remaining widgets keep their positions.
func (m *Manager) RemoveWidget(id string, opts ...CallOption) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}
	i, err := m.lookup(id)
	if err != nil {
		return err
	}

	next := layout.Clone(m.widgets)
	label := "remove " + next[i].Type
	next = slices.Delete(next, i, i+1)
	m.commit(next, "remove", applyCallOptions(label, opts))
	m.emit(func(h observability.LayoutHooks) { h.OnWidgetRemoved(id) })
	return nil
}

// UpdateWidget changes a widget's size, position and settings in one step.
// Settings replace the existing map. Widgets overlapping the result are
// displaced. An update that changes nothing records no history.
func (m *Manager) UpdateWidget(id string, u Update, opts ...CallOption) (layout.Widget, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return layout.Widget{}, err
	}
	i, err := m.lookup(id)
	if err != nil {
		return layout.Widget{}, err
	}

	next := layout.Clone(m.widgets)
	w := next[i]
	fromSize := w.Size
	if u.Size != nil {
		size := m.reg.NormalizeSizeID(*u.Size)
		if !m.reg.SupportsSize(w.Type, size) {
			return layout.Widget{}, errors.New(errors.ErrCodeUnsupportedSize, "widget type %q does not support size %q", w.Type, *u.Size)
		}
		w.Size = size
	}
	f := m.engine.Footprint(w)
	if u.Position != nil {
		p := *u.Position
		if err := errors.ValidatePosition(p.Col, p.Row, f.Cols, m.engine.Cols); err != nil {
			return layout.Widget{}, err
		}
		w.Position = p
	} else {
		w.Position.Col = m.clampCol(w.Position.Col, f.Cols)
	}
	if u.Settings != nil {
		w.Settings = maps.Clone(u.Settings)
	}
	next[i] = w
	next, _ = m.engine.DisplaceColliding(next, id)
	if samePositions(m.widgets, next) && sameSettings(m.widgets[i].Settings, w.Settings) {
		return layout.Clone(m.widgets)[i], nil
	}

	m.commit(next, "update", applyCallOptions("update "+w.Type, opts))
	if fromSize != w.Size {
		toSize := w.Size
		m.emit(func(h observability.LayoutHooks) { h.OnWidgetResized(id, fromSize, toSize) })
	}
	w.Settings = maps.Clone(w.Settings)
	return w, nil
}

// =============================================================================
// Move / Swap / Reflow
// =============================================================================

// MoveWidget places a widget at pos and displaces whatever it lands on.
// Moving a widget onto its own position is a no-op.
func (m *Manager) MoveWidget(id string, pos layout.Position, opts ...CallOption) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}
	i, err := m.lookup(id)
	if err != nil {
		return err
	}
	w := m.widgets[i]
	f := m.engine.Footprint(w)
	if err := errors.ValidatePosition(pos.Col, pos.Row, f.Cols, m.engine.Cols); err != nil {
		return err
	}
	if w.Position == pos {
		return nil
	}

	next := layout.Clone(m.widgets)
	next[i].Position = pos
	next, _ = m.engine.DisplaceColliding(next, id)
	m.commit(next, "move", applyCallOptions("move "+w.Type, opts))
	return nil
}

// SwapWidgets exchanges the positions of two widgets. Each keeps its own
// size; a wider widget landing near the right edge is shifted left to stay
// inside the grid, and anything it then overlaps is displaced.
func (m *Manager) SwapWidgets(a, b string, opts ...CallOption) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}
	if a == b {
		return errors.New(errors.ErrCodeInvalidInput, "cannot swap widget %q with itself", a)
	}
	ia, err := m.lookup(a)
	if err != nil {
		return err
	}
	ib, err := m.lookup(b)
	if err != nil {
		return err
	}

	next := layout.Clone(m.widgets)
	wa, wb := next[ia], next[ib]
	fa, fb := m.engine.Footprint(wa), m.engine.Footprint(wb)
	next[ia].Position = layout.Position{Col: m.clampCol(wb.Position.Col, fa.Cols), Row: wb.Position.Row}
	next[ib].Position = layout.Position{Col: m.clampCol(wa.Position.Col, fb.Cols), Row: wa.Position.Row}
	next, _ = m.engine.DisplaceColliding(next, a)
	next, _ = m.engine.DisplaceColliding(next, b)

	m.commit(next, "swap", applyCallOptions("swap "+wa.Type+" and "+wb.Type, opts))
	m.emit(func(h observability.LayoutHooks) { h.OnWidgetsSwapped(a, b) })
	return nil
}

// ApplyPositions moves several widgets at once, typically the result of
// grid.Engine.ComputeReflowLayout, as a single history step. Each moved
// widget then displaces anything it overlaps, so a stale or partial map
// still leaves the grid free of overlaps.
func (m *Manager) ApplyPositions(positions map[string]layout.Position, opts ...CallOption) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}

	next := layout.Clone(m.widgets)
	for _, id := range slices.Sorted(maps.Keys(positions)) {
		i, err := m.lookup(id)
		if err != nil {
			return err
		}
		p := positions[id]
		f := m.engine.Footprint(next[i])
		if err := errors.ValidatePosition(p.Col, p.Row, f.Cols, m.engine.Cols); err != nil {
			return err
		}
		next[i].Position = p
	}
	for _, id := range slices.Sorted(maps.Keys(positions)) {
		next, _ = m.engine.DisplaceColliding(next, id)
	}
	if samePositions(m.widgets, next) {
		return nil
	}

	m.commit(next, "reflow", applyCallOptions("rearrange", opts))
	return nil
}

// =============================================================================
// Resize
// =============================================================================

// ResizeWidgetAt changes a widget's size. With a nil pos the widget keeps
// its anchor, shifted left if the new width would overflow the grid.
func (m *Manager) ResizeWidgetAt(id, size string, pos *layout.Position, opts ...CallOption) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}
	i, err := m.lookup(id)
	if err != nil {
		return err
	}
	w := m.widgets[i]
	if err := errors.ValidateSizeID(size); err != nil {
		return err
	}
	norm := m.reg.NormalizeSizeID(size)
	if !m.reg.SupportsSize(w.Type, norm) {
		return errors.New(errors.ErrCodeUnsupportedSize, "widget type %q does not support size %q", w.Type, size)
	}

	f := m.engine.SizeFootprint(norm)
	target := layout.Position{Col: m.clampCol(w.Position.Col, f.Cols), Row: w.Position.Row}
	if pos != nil {
		if err := errors.ValidatePosition(pos.Col, pos.Row, f.Cols, m.engine.Cols); err != nil {
			return err
		}
		target = *pos
	}
	if norm == w.Size && target == w.Position {
		return nil
	}

	next := layout.Clone(m.widgets)
	next[i].Size = norm
	next[i].Position = target
	next, _ = m.engine.DisplaceColliding(next, id)

	m.commit(next, "resize", applyCallOptions("resize "+w.Type, opts))
	if norm != w.Size {
		from := w.Size
		m.emit(func(h observability.LayoutHooks) { h.OnWidgetResized(id, from, norm) })
	}
	return nil
}

// =============================================================================
// Whole-layout Operations
// =============================================================================

// Compact pulls every widget upward as far as it fits. It reports whether
// anything moved.
func (m *Manager) Compact(opts ...CallOption) (bool, error) {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return false, err
	}
	next := m.engine.Compact(m.widgets)
	if samePositions(m.widgets, next) {
		return false, nil
	}
	m.commit(next, "compact", applyCallOptions("compact", opts))
	return true, nil
}

// Reset replaces the layout. A nil slice installs the default template;
// otherwise sizes are normalized and the widgets repacked.
func (m *Manager) Reset(widgets []layout.Widget, opts ...CallOption) error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}

	var next []layout.Widget
	if widgets == nil {
		next = m.buildTemplate()
	} else {
		seen := make(map[string]bool, len(widgets))
		for _, w := range widgets {
			if err := errors.ValidateWidgetID(w.ID); err != nil {
				return err
			}
			if seen[w.ID] {
				return errors.New(errors.ErrCodeInvalidInput, "duplicate widget id %q", w.ID)
			}
			seen[w.ID] = true
		}
		next = m.engine.Repack(m.normalize(widgets))
	}

	m.commit(next, "reset", applyCallOptions("reset", opts))
	return nil
}

// =============================================================================
// Undo / Redo
// =============================================================================

// Undo restores the layout before the most recent recorded mutation.
func (m *Manager) Undo() error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}
	label := m.history.UndoLabel()
	snap, ok := m.history.Undo(history.MakeSnapshot(m.widgets, label))
	if !ok {
		return errors.New(errors.ErrCodeHistoryEmpty, "nothing to undo")
	}
	m.install(m.widgets, snap.Widgets, "undo")
	m.emit(func(h observability.LayoutHooks) { h.OnUndo(label) })
	return nil
}

// Redo reapplies the most recently undone mutation.
func (m *Manager) Redo() error {
	m.mu.Lock()
	defer m.unlock()
	if err := m.checkReady(); err != nil {
		return err
	}
	label := m.history.RedoLabel()
	snap, ok := m.history.Redo(history.MakeSnapshot(m.widgets, label))
	if !ok {
		return errors.New(errors.ErrCodeHistoryEmpty, "nothing to redo")
	}
	m.install(m.widgets, snap.Widgets, "redo")
	m.emit(func(h observability.LayoutHooks) { h.OnRedo(label) })
	return nil
}
