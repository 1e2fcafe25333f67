package state

import (
	"context"

	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// Sources reported through LayoutHooks.OnLayoutLoaded.
const (
	SourceStore    = "store"
	SourceDefault  = "default"
	SourceMigrated = "migrated"
	SourceRepacked = "repacked"
)

// =============================================================================
// Init
// =============================================================================

// Init loads the persisted layout, migrating it when the grid width changed,
// and installs the default template on first run. Calling Init again is a
// no-op. Storage read failures are logged and treated as an empty store; the
// resulting layout is only written once it is mutated.
func (m *Manager) Init(ctx context.Context) error {
	if err := errors.ValidateStoreKey(m.layoutKey); err != nil {
		return err
	}
	if err := errors.ValidateStoreKey(m.metaKey); err != nil {
		return err
	}

	m.mu.Lock()
	if m.ready {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	cols := m.engine.Cols
	meta, metaOK := m.loadMeta(ctx)
	widgets, found, readErr := m.loadLayout(ctx)

	var (
		source    string
		dirty     bool
		metaDirty bool
		migrated  = -1
	)
	switch {
	case readErr != nil && !found:
		m.logger.Warn("layout store unavailable, using default template", "err", readErr)
		widgets, source = nil, SourceDefault
	case !found:
		widgets, source = nil, SourceDefault
		dirty, metaDirty = true, true
	case widgets == nil:
		m.logger.Warn("stored layout unreadable, using default template")
		source = SourceDefault
		dirty, metaDirty = true, true
	case !metaOK:
		widgets = m.engine.Repack(m.normalize(widgets))
		source = SourceRepacked
		dirty, metaDirty = true, true
	case meta.GridCols != cols:
		migrated = meta.GridCols
		widgets = m.engine.Repack(m.normalize(m.engine.Rescale(widgets, meta.GridCols)))
		source = SourceMigrated
		dirty, metaDirty = true, true
	default:
		widgets = m.normalize(widgets)
		source = SourceStore
		if err := m.engine.Validate(widgets); err != nil {
			m.logger.Warn("stored layout invalid, repacking", "err", err)
			widgets = m.engine.Repack(widgets)
			dirty = true
		}
		metaDirty = meta.GridVersion != layout.GridVersion
	}

	m.mu.Lock()
	if m.ready {
		m.mu.Unlock()
		return nil
	}
	if source == SourceDefault {
		widgets = m.buildTemplate()
	}
	m.widgets = widgets
	m.meta = layout.Meta{GridVersion: layout.GridVersion, GridCols: cols}
	if metaOK && migrated < 0 {
		m.meta.MigratedAt = meta.MigratedAt
	}
	if migrated >= 0 || source == SourceRepacked {
		m.meta.MigratedAt = m.clock.Now().UTC()
	}
	m.dirty, m.metaDirty = dirty, metaDirty
	m.ready = true
	m.version++
	n := len(widgets)
	if migrated >= 0 {
		from := migrated
		m.emit(func(h observability.LayoutHooks) { h.OnMigrated(from, cols) })
	}
	m.emit(func(h observability.LayoutHooks) { h.OnLayoutLoaded(source, n) })
	m.unlock()

	m.logger.Debug("layout loaded", "source", source, "widgets", n, "cols", cols)
	if metaDirty {
		// Write migrated metadata now so migration never runs twice.
		_ = m.Flush(ctx)
	}
	return nil
}

// loadMeta reports false when the metadata is absent or unreadable.
func (m *Manager) loadMeta(ctx context.Context) (layout.Meta, bool) {
	data, ok, err := m.store.Get(ctx, m.metaKey)
	if err != nil || !ok {
		return layout.Meta{}, false
	}
	var meta layout.Meta
	if err := m.codec.Unmarshal(data, &meta); err != nil || meta.GridCols <= 0 {
		return layout.Meta{}, false
	}
	return meta, true
}

// loadLayout returns found=true with nil widgets when data exists but cannot
// be decoded.
func (m *Manager) loadLayout(ctx context.Context) ([]layout.Widget, bool, error) {
	data, ok, err := m.store.Get(ctx, m.layoutKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	var widgets []layout.Widget
	if err := m.codec.Unmarshal(data, &widgets); err != nil {
		return nil, true, nil
	}
	if widgets == nil {
		widgets = []layout.Widget{}
	}
	return widgets, true, nil
}

// normalize re-resolves sizes through the registry and drops records that
// cannot be placed: empty or duplicate ids. A size the widget's type does not
// support falls back to the type's default size.
func (m *Manager) normalize(widgets []layout.Widget) []layout.Widget {
	out := make([]layout.Widget, 0, len(widgets))
	seen := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		if w.ID == "" || seen[w.ID] {
			m.logger.Warn("dropping widget with missing or duplicate id", "id", w.ID, "type", w.Type)
			continue
		}
		seen[w.ID] = true
		w.Size = m.reg.NormalizeSizeID(w.Size)
		if t, ok := m.reg.Type(w.Type); ok && !t.Supports(w.Size) {
			w.Size = t.DefaultSize
		}
		w.Position.Col = max(0, w.Position.Col)
		w.Position.Row = max(0, w.Position.Row)
		out = append(out, w)
	}
	return out
}

// =============================================================================
// Writes
// =============================================================================

// markDirty flags the layout for writing and restarts the debounce timer.
// Must be called with mu held.
func (m *Manager) markDirty() {
	m.dirty = true
	m.scheduleWrite()
}

func (m *Manager) scheduleWrite() {
	if m.closed {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = m.clock.AfterFunc(m.debounce, m.onTimer)
}

func (m *Manager) onTimer() {
	// Failures are logged and reported through hooks by Flush.
	_ = m.Flush(context.Background())
}

// Flush writes pending changes immediately. Hosts call it when the app is
// backgrounded or about to exit. On failure the changes stay pending and the
// next mutation schedules another attempt.
func (m *Manager) Flush(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	writeLayout, writeMeta := m.dirty, m.metaDirty
	if !writeLayout && !writeMeta {
		m.mu.Unlock()
		return nil
	}
	widgets := layout.Clone(m.widgets)
	meta := m.meta
	m.dirty, m.metaDirty = false, false
	m.mu.Unlock()

	start := m.clock.Now()
	n, err := m.write(ctx, widgets, meta, writeLayout, writeMeta)

	m.mu.Lock()
	if err != nil {
		m.dirty = m.dirty || writeLayout
		m.metaDirty = m.metaDirty || writeMeta
		m.logger.Warn("persist layout failed", "err", err)
		m.emit(func(h observability.LayoutHooks) { h.OnPersistFailed(err) })
		m.unlock()
		return errors.Wrap(errors.ErrCodeStorage, err, "persist layout")
	}
	elapsed := m.clock.Now().Sub(start)
	m.logger.Debug("layout persisted", "bytes", n, "widgets", len(widgets))
	m.emit(func(h observability.LayoutHooks) { h.OnPersisted(n, elapsed) })
	m.unlock()
	return nil
}

// write stores the layout before its metadata, so an interrupted migration
// is retried on the next start.
func (m *Manager) write(ctx context.Context, widgets []layout.Widget, meta layout.Meta, writeLayout, writeMeta bool) (int, error) {
	total := 0
	if writeLayout {
		if widgets == nil {
			widgets = []layout.Widget{}
		}
		data, err := m.codec.Marshal(widgets)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
		}
		if err := m.store.Set(ctx, m.layoutKey, data); err != nil {
			return 0, err
		}
		total += len(data)
	}
	if writeMeta {
		data, err := m.codec.Marshal(meta)
		if err != nil {
			return total, errors.Wrap(errors.ErrCodeInternal, err, "encode layout meta")
		}
		if err := m.store.Set(ctx, m.metaKey, data); err != nil {
			return total, err
		}
		total += len(data)
	}
	return total, nil
}

// Close stops the debounce timer and flushes pending changes. The store is
// not closed; it belongs to the caller.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
	return m.Flush(ctx)
}
