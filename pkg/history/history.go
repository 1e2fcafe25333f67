// Package history keeps bounded undo/redo stacks of layout snapshots.
//
// The model is linear editor history: pushing a new snapshot after an undo
// discards the redo stack. Snapshots are structural copies made with
// [layout.Clone]; the stacks never share a slice with the live layout.
package history

import "github.com/matzehuels/gridboard/pkg/layout"

// DefaultMaxDepth bounds each stack when no depth is configured.
const DefaultMaxDepth = 50

// Snapshot captures a layout at a point in time.
type Snapshot struct {
	Widgets []layout.Widget
	Label   string // Human-readable description (e.g. "move clock")
}

// MakeSnapshot copies widgets into a snapshot with a label.
func MakeSnapshot(widgets []layout.Widget, label string) Snapshot {
	return Snapshot{Widgets: layout.Clone(widgets), Label: label}
}

// History manages undo/redo stacks of layout snapshots. It is not safe for
// concurrent use; the state manager serializes access.
type History struct {
	undoStack []Snapshot
	redoStack []Snapshot
	maxDepth  int
}

// New creates a History holding at most maxDepth snapshots per stack.
// Non-positive depths use [DefaultMaxDepth].
func New(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &History{maxDepth: maxDepth}
}

// Push saves a snapshot onto the undo stack and clears the redo stack.
// Call it with the pre-mutation state, before the mutation is applied.
// The oldest snapshot is evicted when the stack is full.
func (h *History) Push(s Snapshot) {
	h.undoStack = appendBounded(h.undoStack, s, h.maxDepth)
	h.redoStack = nil
}

// Undo pops the most recent snapshot from the undo stack and pushes current
// onto the redo stack. It returns false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = appendBounded(h.redoStack, current, h.maxDepth)
	return last, true
}

// Redo pops the most recent snapshot from the redo stack and pushes current
// onto the undo stack. It returns false when there is nothing to redo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = appendBounded(h.undoStack, current, h.maxDepth)
	return last, true
}

// CanUndo returns true if there is at least one snapshot to undo.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if there is at least one snapshot to redo.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// UndoLabel returns the label of the snapshot Undo would restore.
func (h *History) UndoLabel() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Label
}

// RedoLabel returns the label of the snapshot Redo would restore.
func (h *History) RedoLabel() string {
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].Label
}

// Depths returns the sizes of the undo and redo stacks.
func (h *History) Depths() (undo, redo int) {
	return len(h.undoStack), len(h.redoStack)
}

// Clear removes all undo and redo history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

func appendBounded(stack []Snapshot, s Snapshot, maxDepth int) []Snapshot {
	stack = append(stack, s)
	if len(stack) > maxDepth {
		stack = stack[len(stack)-maxDepth:]
	}
	return stack
}
