// Package state owns the authoritative widget list of a dashboard.
//
// A [Manager] is constructed explicitly and initialized once:
//
//	mgr := state.New(reg, st,
//	    state.WithCols(4),
//	    state.WithHooks(observability.NewLogHooks(logger)),
//	    state.WithLogger(logger))
//	if err := mgr.Init(ctx); err != nil { ... }
//	defer mgr.Close(ctx)
//
// # Mutations
//
// Every mutation ([Manager.AddWidget], [Manager.MoveWidget],
// [Manager.SwapWidgets], [Manager.ApplyPositions], [Manager.ResizeWidgetAt],
// ...) runs synchronously, restores the no-overlap invariant through the grid
// engine's displacement, pushes a structural snapshot of the pre-mutation
// list onto the undo stack (unless called with [SkipHistory]), schedules a
// debounced write and emits hooks. A failed mutation returns a coded
// *errors.Error and changes nothing: no history entry, no write, no hook.
//
// # Persistence
//
// Writes are debounced: each mutation resets a timer and only the last state
// of a burst is written. [Manager.Flush] writes immediately and is what hosts
// call when the app is backgrounded; [Manager.Close] flushes and stops the
// timer. Storage failures are logged and reported through
// LayoutHooks.OnPersistFailed; the in-memory layout stays authoritative and
// the next write retries.
//
// # Migration
//
// [Manager.Init] compares the persisted [layout.Meta] with the running grid
// width. A different width scales positions by newCols/oldCols, re-resolves
// sizes through the registry and repacks. Missing metadata next to a stored
// layout repacks at the current width; no layout at all installs the default
// template. New metadata is written immediately so migration runs once.
//
// # Concurrency
//
// All methods are safe for concurrent use. Hooks and the gesture arbiter are
// invoked after the manager's lock is released, so they may call back into
// the manager.
package state
