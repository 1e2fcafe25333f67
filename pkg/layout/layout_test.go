package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectOverlaps(t *testing.T) {
	a := Rect{Col: 0, Row: 0, Cols: 2, Rows: 2}

	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"identical", a, true},
		{"adjacent right", Rect{Col: 2, Row: 0, Cols: 2, Rows: 2}, false},
		{"adjacent below", Rect{Col: 0, Row: 2, Cols: 2, Rows: 1}, false},
		{"corner overlap", Rect{Col: 1, Row: 1, Cols: 2, Rows: 2}, true},
		{"contained", Rect{Col: 1, Row: 1, Cols: 1, Rows: 1}, true},
		{"diagonal touch", Rect{Col: 2, Row: 2, Cols: 1, Rows: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a), "overlap must be symmetric")
		})
	}
}

func TestRectCells(t *testing.T) {
	cells := Rect{Col: 1, Row: 2, Cols: 2, Rows: 2}.Cells()
	assert.Equal(t, []Position{{1, 2}, {2, 2}, {1, 3}, {2, 3}}, cells)
}

func TestSortVisualLeavesInputUntouched(t *testing.T) {
	in := []Widget{
		{ID: "c", Position: Position{Col: 0, Row: 1}},
		{ID: "b", Position: Position{Col: 2, Row: 0}},
		{ID: "a", Position: Position{Col: 0, Row: 0}},
	}
	out := SortVisual(in)

	assert.Equal(t, []string{"a", "b", "c"}, ids(out))
	assert.Equal(t, []string{"c", "b", "a"}, ids(in))
}

func TestCloneIsIndependent(t *testing.T) {
	in := []Widget{{ID: "a", Position: Position{Col: 1, Row: 1}}}
	in[0].Settings = map[string]any{"tz": "UTC"}
	out := Clone(in)
	out[0].Position.Col = 3
	out[0].Settings["tz"] = "CET"

	assert.Equal(t, 1, in[0].Position.Col)
	assert.Equal(t, "UTC", in[0].Settings["tz"])
	assert.Nil(t, Clone(nil))
	assert.Nil(t, Clone([]Widget{{ID: "a"}})[0].Settings)
}

func TestFind(t *testing.T) {
	widgets := []Widget{{ID: "a"}, {ID: "b"}}

	w, ok := Find(widgets, "b")
	require.True(t, ok)
	assert.Equal(t, "b", w.ID)

	_, ok = Find(widgets, "zzz")
	assert.False(t, ok)
	assert.Equal(t, -1, Index(widgets, "zzz"))
}

func TestCodecEquivalence(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	widgets := []Widget{
		{
			ID:       "w1",
			Type:     "notes",
			Size:     "2x1",
			Position: Position{Col: 2, Row: 3},
			Settings: map[string]any{
				"title":  "Groceries",
				"pinned": true,
				"style":  map[string]any{"color": "amber"},
				"tags":   []any{"home", "weekly"},
			},
			CreatedAt: created,
		},
		{ID: "w2", Type: "clock", Size: "1x1", CreatedAt: created},
	}

	for _, name := range []string{CodecJSON, CodecCBOR, CodecYAML} {
		t.Run(name, func(t *testing.T) {
			codec, err := CodecByName(name)
			require.NoError(t, err)
			assert.Equal(t, name, codec.Name())

			data, err := codec.Marshal(widgets)
			require.NoError(t, err)

			var got []Widget
			require.NoError(t, codec.Unmarshal(data, &got))
			require.Len(t, got, 2)

			assert.Equal(t, widgets[0].ID, got[0].ID)
			assert.Equal(t, widgets[0].Position, got[0].Position)
			assert.True(t, got[0].CreatedAt.Equal(created))
			assert.Equal(t, "Groceries", got[0].Settings["title"])
			assert.Equal(t, true, got[0].Settings["pinned"])
			assert.Equal(t, map[string]any{"color": "amber"}, got[0].Settings["style"])
			assert.Equal(t, []any{"home", "weekly"}, got[0].Settings["tags"])
			assert.Equal(t, widgets[1].Size, got[1].Size)
		})
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	w := []Widget{{ID: "a", Settings: map[string]any{"z": "1", "a": "2", "m": "3"}}}

	first, err := CBOR.Marshal(w)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := CBOR.Marshal(w)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCodecByNameUnknown(t *testing.T) {
	_, err := CodecByName("xml")
	assert.Error(t, err)

	c, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, CodecJSON, c.Name())
}

func ids(ws []Widget) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}
