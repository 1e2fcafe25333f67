package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridboard/pkg/layout"
)

func layoutAt(col int) []layout.Widget {
	return []layout.Widget{{ID: "a", Size: "1x1", Position: layout.Position{Col: col}}}
}

func TestNewHistory(t *testing.T) {
	h := New(0)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, DefaultMaxDepth, h.maxDepth)
}

func TestPushAndUndo(t *testing.T) {
	h := New(10)
	h.Push(MakeSnapshot(layoutAt(0), "first"))
	h.Push(MakeSnapshot(layoutAt(1), "second"))

	require.True(t, h.CanUndo())
	assert.Equal(t, "second", h.UndoLabel())
	assert.Equal(t, "", h.RedoLabel())

	restored, ok := h.Undo(MakeSnapshot(layoutAt(2), "current"))
	require.True(t, ok)
	assert.Equal(t, "second", restored.Label)
	assert.Equal(t, 1, restored.Widgets[0].Position.Col)
	assert.True(t, h.CanRedo())
	assert.Equal(t, "current", h.RedoLabel())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(10)
	before := layoutAt(0)
	after := layoutAt(3)
	h.Push(MakeSnapshot(before, "move"))

	undone, ok := h.Undo(MakeSnapshot(after, ""))
	require.True(t, ok)
	assert.Equal(t, before, undone.Widgets)

	redone, ok := h.Redo(MakeSnapshot(undone.Widgets, ""))
	require.True(t, ok)
	assert.Equal(t, after, redone.Widgets)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestPushClearsRedo(t *testing.T) {
	h := New(10)
	h.Push(MakeSnapshot(layoutAt(0), "a"))
	_, _ = h.Undo(MakeSnapshot(layoutAt(1), "b"))
	require.True(t, h.CanRedo())

	h.Push(MakeSnapshot(layoutAt(2), "c"))
	assert.False(t, h.CanRedo())
}

func TestEmptyStacks(t *testing.T) {
	h := New(10)
	_, ok := h.Undo(Snapshot{})
	assert.False(t, ok)
	_, ok = h.Redo(Snapshot{})
	assert.False(t, ok)
}

func TestMaxDepthEvictsOldest(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		h.Push(MakeSnapshot(layoutAt(i), fmt.Sprintf("s%d", i)))
	}
	undo, redo := h.Depths()
	assert.Equal(t, 3, undo)
	assert.Equal(t, 0, redo)

	var labels []string
	for h.CanUndo() {
		s, _ := h.Undo(Snapshot{})
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"s4", "s3", "s2"}, labels)
}

func TestSnapshotIsIndependent(t *testing.T) {
	live := layoutAt(0)
	s := MakeSnapshot(live, "x")
	live[0].Position.Col = 3
	assert.Equal(t, 0, s.Widgets[0].Position.Col)
}

func TestClear(t *testing.T) {
	h := New(10)
	h.Push(MakeSnapshot(layoutAt(0), "a"))
	_, _ = h.Undo(MakeSnapshot(layoutAt(1), "b"))
	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
