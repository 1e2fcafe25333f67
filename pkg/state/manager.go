package state

import (
	"io"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/clock"
	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/history"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/registry"
	"github.com/matzehuels/gridboard/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// DefaultDebounce is the quiet period before a coalesced write.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultLayoutKey and DefaultMetaKey are the store keys used when none
	// are configured. Wrap the store with store.Scoped to namespace them.
	DefaultLayoutKey = "layout"
	DefaultMetaKey   = "meta"
)

// GestureArbiter is told to suspend competing host gestures (page swipes,
// scroll capture) while edit mode is active.
type GestureArbiter interface {
	Suspend()
	Resume()
}

// NoopArbiter ignores suspend and resume.
type NoopArbiter struct{}

func (NoopArbiter) Suspend() {}
func (NoopArbiter) Resume()  {}

// =============================================================================
// Manager
// =============================================================================

// Manager owns a dashboard layout.
type Manager struct {
	mu       sync.Mutex
	writeMu  sync.Mutex
	reg      registry.Registry
	store    store.Store
	engine   *grid.Engine
	history  *history.History
	widgets  []layout.Widget
	meta     layout.Meta
	editMode bool
	ready    bool
	closed   bool
	version  uint64

	// persistence
	clock     clock.Clock
	debounce  time.Duration
	timer     clock.Timer
	dirty     bool
	metaDirty bool
	codec     layout.Codec
	layoutKey string
	metaKey   string

	template []TemplateWidget
	hooks    observability.LayoutHooks
	arbiter  GestureArbiter
	logger   *log.Logger

	// pending holds hook calls queued under mu; unlock runs them.
	pending []func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithCols sets the grid width.
func WithCols(cols int) Option {
	return func(m *Manager) { m.engine = grid.New(cols, m.reg) }
}

// WithHistoryDepth bounds the undo and redo stacks.
func WithHistoryDepth(depth int) Option {
	return func(m *Manager) { m.history = history.New(depth) }
}

// WithDebounce sets the write debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// WithClock sets the clock driving the debounce timer and timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h observability.LayoutHooks) Option {
	return func(m *Manager) {
		if h != nil {
			m.hooks = h
		}
	}
}

// WithArbiter sets the gesture arbiter notified on edit mode changes.
func WithArbiter(a GestureArbiter) Option {
	return func(m *Manager) {
		if a != nil {
			m.arbiter = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithKeys overrides the store keys for the layout and its metadata.
func WithKeys(layoutKey, metaKey string) Option {
	return func(m *Manager) {
		m.layoutKey = layoutKey
		m.metaKey = metaKey
	}
}

// WithCodec sets the persisted encoding.
func WithCodec(c layout.Codec) Option {
	return func(m *Manager) {
		if c != nil {
			m.codec = c
		}
	}
}

// WithTemplate replaces the default template installed on first run and by
// Reset(nil).
func WithTemplate(t []TemplateWidget) Option {
	return func(m *Manager) { m.template = t }
}

// New creates a Manager. Call [Manager.Init] before using it.
// A nil store behaves like store.NullStore.
func New(reg registry.Registry, st store.Store, opts ...Option) *Manager {
	if st == nil {
		st = store.NewNullStore()
	}
	m := &Manager{
		reg:       reg,
		store:     st,
		history:   history.New(history.DefaultMaxDepth),
		clock:     clock.Real,
		debounce:  DefaultDebounce,
		codec:     layout.JSON,
		layoutKey: DefaultLayoutKey,
		metaKey:   DefaultMetaKey,
		template:  DefaultTemplate(),
		hooks:     observability.NoopLayoutHooks{},
		arbiter:   NoopArbiter{},
		logger:    log.New(io.Discard),
	}
	m.engine = grid.New(grid.DefaultCols, reg)
	for _, o := range opts {
		o(m)
	}
	return m
}

// =============================================================================
// Locking
// =============================================================================

// emit queues a hook call. Must be called with mu held.
func (m *Manager) emit(f func(h observability.LayoutHooks)) {
	h := m.hooks
	m.pending = append(m.pending, func() { f(h) })
}

// unlock releases mu and runs the hook calls queued while it was held.
func (m *Manager) unlock() {
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

func (m *Manager) checkReady() error {
	if !m.ready {
		return errors.New(errors.ErrCodeInternal, "layout manager not initialized")
	}
	return nil
}

// =============================================================================
// Read Side
// =============================================================================

// Widgets returns a copy of the layout in insertion order.
func (m *Manager) Widgets() []layout.Widget {
	m.mu.Lock()
	defer m.mu.Unlock()
	return layout.Clone(m.widgets)
}

// Widget returns a copy of the widget with the given id.
func (m *Manager) Widget(id string) (layout.Widget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := layout.Find(m.widgets, id)
	w.Settings = maps.Clone(w.Settings)
	return w, ok
}

// Engine returns the grid engine. It is immutable and safe to share.
func (m *Manager) Engine() *grid.Engine {
	return m.engine
}

// Registry returns the registry the manager resolves sizes with.
func (m *Manager) Registry() registry.Registry {
	return m.reg
}

// Cols returns the grid width.
func (m *Manager) Cols() int {
	return m.engine.Cols
}

// Meta returns the layout metadata.
func (m *Manager) Meta() layout.Meta {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meta
}

// CanUndo reports whether Undo would succeed.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanUndo()
}

// CanRedo reports whether Redo would succeed.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanRedo()
}

// UndoLabel describes the action Undo would revert.
func (m *Manager) UndoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.UndoLabel()
}

// RedoLabel describes the action Redo would reapply.
func (m *Manager) RedoLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.RedoLabel()
}

// Version increases on every committed change. Renderers poll it to decide
// whether to redraw.
func (m *Manager) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Dirty reports whether a write is pending.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirty || m.metaDirty
}

// =============================================================================
// Edit Mode
// =============================================================================

// EditMode reports whether edit mode is active.
func (m *Manager) EditMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editMode
}

// EnterEditMode activates edit mode and suspends competing host gestures.
// It returns false if edit mode was already active.
func (m *Manager) EnterEditMode() bool {
	m.mu.Lock()
	if m.editMode {
		m.mu.Unlock()
		return false
	}
	m.editMode = true
	arbiter := m.arbiter
	m.pending = append(m.pending, arbiter.Suspend)
	m.emit(func(h observability.LayoutHooks) { h.OnEditModeEntered() })
	m.unlock()
	return true
}

// ExitEditMode deactivates edit mode and resumes host gestures.
// It returns false if edit mode was not active.
func (m *Manager) ExitEditMode() bool {
	m.mu.Lock()
	if !m.editMode {
		m.mu.Unlock()
		return false
	}
	m.editMode = false
	arbiter := m.arbiter
	m.pending = append(m.pending, arbiter.Resume)
	m.emit(func(h observability.LayoutHooks) { h.OnEditModeExited() })
	m.unlock()
	return true
}

// ToggleEditMode flips edit mode and returns the new state.
func (m *Manager) ToggleEditMode() bool {
	if m.EnterEditMode() {
		return true
	}
	m.ExitEditMode()
	return false
}
