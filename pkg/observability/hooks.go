// Package observability provides lifecycle hooks for the layout engine.
//
// Hooks are the only coupling surface between the engine and whatever renders
// or records it. The state manager and the drag & drop controller each take
// their hooks as a constructor option; there is no global registry, so two
// dashboards in one process never observe each other.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Fan out to several implementations with [MultiLayout] and [MultiDrag]
//
// Hooks are always invoked after the emitting component has released its
// lock, so an implementation may call back into the manager or controller.
//
// # Usage
//
//	logHooks := observability.NewLogHooks(logger)
//	rec := observability.NewRecorder(32)
//	mgr := state.New(reg, st,
//	    state.WithHooks(observability.MultiLayout(logHooks, rec)))
package observability

import (
	"time"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the state manager.
type LayoutHooks interface {
	// Lifecycle events
	OnLayoutLoaded(source string, widgets int)
	OnLayoutChanged(reason string, widgets int)
	OnMigrated(fromCols, toCols int)

	// Widget events
	OnWidgetAdded(w layout.Widget)
	OnWidgetRemoved(id string)
	OnWidgetMoved(id string, from, to layout.Position)
	OnWidgetResized(id, fromSize, toSize string)
	OnWidgetsSwapped(a, b string)

	// History events
	OnUndo(label string)
	OnRedo(label string)

	// Edit mode events
	OnEditModeEntered()
	OnEditModeExited()

	// Persistence events
	OnPersisted(bytes int, duration time.Duration)
	OnPersistFailed(err error)
}

// =============================================================================
// Drag Hooks
// =============================================================================

// DragHooks receives events from the drag & drop controller.
type DragHooks interface {
	OnDragStarted(id string, origin layout.Position)
	OnDragMoved(id string, target layout.Position, intent string)
	OnDropped(id string, target layout.Position, intent string)
	OnDragCancelled(id string, reason string)

	OnResizeStarted(id, size string)
	OnResizeEnded(id, size string, committed bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutLoaded(string, int)                             {}
func (NoopLayoutHooks) OnLayoutChanged(string, int)                            {}
func (NoopLayoutHooks) OnMigrated(int, int)                                    {}
func (NoopLayoutHooks) OnWidgetAdded(layout.Widget)                            {}
func (NoopLayoutHooks) OnWidgetRemoved(string)                                 {}
func (NoopLayoutHooks) OnWidgetMoved(string, layout.Position, layout.Position) {}
func (NoopLayoutHooks) OnWidgetResized(string, string, string)                 {}
func (NoopLayoutHooks) OnWidgetsSwapped(string, string)                        {}
func (NoopLayoutHooks) OnUndo(string)                                          {}
func (NoopLayoutHooks) OnRedo(string)                                          {}
func (NoopLayoutHooks) OnEditModeEntered()                                     {}
func (NoopLayoutHooks) OnEditModeExited()                                      {}
func (NoopLayoutHooks) OnPersisted(int, time.Duration)                         {}
func (NoopLayoutHooks) OnPersistFailed(error)                                  {}

// NoopDragHooks is a no-op implementation of DragHooks.
type NoopDragHooks struct{}

func (NoopDragHooks) OnDragStarted(string, layout.Position)       {}
func (NoopDragHooks) OnDragMoved(string, layout.Position, string) {}
func (NoopDragHooks) OnDropped(string, layout.Position, string)   {}
func (NoopDragHooks) OnDragCancelled(string, string)              {}
func (NoopDragHooks) OnResizeStarted(string, string)              {}
func (NoopDragHooks) OnResizeEnded(string, string, bool)          {}

// Ensure no-op hooks implement their interfaces.
var (
	_ LayoutHooks = NoopLayoutHooks{}
	_ DragHooks   = NoopDragHooks{}
)
