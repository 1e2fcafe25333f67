// Package pkg provides the core libraries for gridboard dashboard layouts.
//
// # Overview
//
// Gridboard arranges widgets on a grid that is a fixed number of columns wide
// and grows downward without bound. Widgets never overlap: every edit, from a
// single move to a full import, is resolved against the grid before it is
// accepted. The pkg directory is organized into three areas:
//
//  1. Model and geometry: [layout], [registry], [grid]
//  2. State and interaction: [state], [history], [dragdrop]
//  3. Infrastructure: [store], [export], [observability], [errors], [clock]
//
// # Architecture
//
// The typical data flow through gridboard:
//
//	pointer events / CLI / HTTP
//	         ↓
//	    [dragdrop] package (gesture state machine, drop intent)
//	         ↓
//	    [state] package (authoritative widget list, undo/redo, edit mode)
//	         ↓
//	    [grid] package (collision, displacement, reflow, compaction)
//	         ↓
//	    [store] package (debounced, versioned persistence)
//
// # Quick Start
//
// Load a dashboard, move a widget and persist it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/gridboard/pkg/layout"
//	    "github.com/matzehuels/gridboard/pkg/registry"
//	    "github.com/matzehuels/gridboard/pkg/state"
//	    "github.com/matzehuels/gridboard/pkg/store"
//	)
//
//	mgr := state.New(registry.NewCatalog(), store.NewMemoryStore())
//	if err := mgr.Init(ctx); err != nil {
//	    return err
//	}
//	defer mgr.Close(ctx)
//
//	err := mgr.MoveWidget("clock-1", layout.Position{Col: 2, Row: 0})
//
// # Main Packages
//
// [layout] - The persisted widget record, positions, footprints, rects and
// the versioned layout envelope with its codecs (json, yaml, cbor).
//
// [registry] - Widget types and canonical size identifiers. The built-in
// catalog resolves "2x1"-style sizes to footprints and creates widgets.
//
// [grid] - Occupancy, collision detection, free-slot search, forced
// displacement, reflow previews, compaction and pixel/cell conversion.
//
// [history] - Bounded undo/redo stacks of labelled layout snapshots.
//
// [state] - The [state.Manager] owns the widget list. It validates every
// mutation through the grid engine, records history, tracks edit mode and
// schedules debounced writes.
//
// [dragdrop] - Pointer gesture controller: long press to arm, drag to move,
// swap or reflow, and corner handles to resize.
//
// [store] - Key-value persistence with redis, mongo, sqlite, file, memory and
// null backends plus a fallback chain for "auto".
//
// [export] - Interchange formats for layouts, including Graphviz dot and svg
// previews.
//
// [observability] - Lifecycle hooks for logging and tests.
package pkg
