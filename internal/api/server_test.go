package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridboard/pkg/clock"
	"github.com/matzehuels/gridboard/pkg/dragdrop"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/registry"
	"github.com/matzehuels/gridboard/pkg/state"
	"github.com/matzehuels/gridboard/pkg/store"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type rig struct {
	mem  *store.MemoryStore
	mgr  *state.Manager
	srv  *Server
	http http.Handler
}

func newRig(t *testing.T, widgets ...layout.Widget) *rig {
	t.Helper()
	n := 0
	cat := registry.NewCatalog(
		registry.WithIDGenerator(func() string { n++; return fmt.Sprintf("w%d", n) }),
		registry.WithNow(func() time.Time { return epoch }),
	)
	clk := clock.NewFake(epoch)
	mem := store.NewMemoryStore()
	mgr := state.New(cat, mem, state.WithClock(clk))
	require.NoError(t, mgr.Init(context.Background()))
	if widgets == nil {
		widgets = []layout.Widget{}
	}
	require.NoError(t, mgr.Reset(widgets, state.SkipHistory()))

	cfg := dragdrop.DefaultConfig()
	cfg.Metrics = grid.Metrics{CellWidth: 100, CellHeight: 100}
	ctrl := dragdrop.New(mgr, dragdrop.WithConfig(cfg), dragdrop.WithClock(clk))

	srv := New(mgr, ctrl, nil)
	return &rig{mem: mem, mgr: mgr, srv: srv, http: srv.Handler()}
}

func (r *rig) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.http.ServeHTTP(rec, req)
	return rec
}

func decodeLayout(t *testing.T, rec *httptest.ResponseRecorder) LayoutResponse {
	t.Helper()
	var resp LayoutResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func wid(id, typ, size string, col, row int) layout.Widget {
	return layout.Widget{ID: id, Type: typ, Size: size, Position: layout.Position{Col: col, Row: row}, CreatedAt: epoch}
}

func pair() []layout.Widget {
	return []layout.Widget{wid("A", "chart", "2x2", 0, 0), wid("B", "chart", "2x2", 2, 0)}
}

func positions(widgets []layout.Widget) map[string]layout.Position {
	return layout.Positions(widgets)
}

// =============================================================================
// Layout
// =============================================================================

func TestGetLayout(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodGet, "/layout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeLayout(t, rec)
	assert.Len(t, resp.Widgets, 2)
	assert.Equal(t, 4, resp.Cols)
	assert.Equal(t, 2, resp.Rows)
	assert.False(t, resp.CanUndo)
	assert.False(t, resp.EditMode)
}

func TestReplaceLayout(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodPut, "/layout", []layout.Widget{
		wid("X", "chart", "2x2", 0, 0),
		wid("Y", "clock", "1x1", 1, 0),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeLayout(t, rec)
	require.Len(t, resp.Widgets, 2)
	got := positions(resp.Widgets)
	assert.Equal(t, layout.Position{Col: 0, Row: 0}, got["X"])
	assert.Equal(t, layout.Position{Col: 2, Row: 0}, got["Y"], "overlapping widgets are repacked")
	assert.Equal(t, "replace", resp.UndoLabel)
}

func TestExportFormats(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodGet, "/layout/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id: A")

	rec = r.do(t, http.MethodGet, "/layout/export?format=dot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph")

	rec = r.do(t, http.MethodGet, "/layout/export?format=png", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "UNSUPPORTED", decodeError(t, rec).Code)
}

// =============================================================================
// Widgets
// =============================================================================

func TestAddWidget(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodPost, "/widgets", AddRequest{Type: "clock"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got layout.Widget
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "w1", got.ID)
	assert.Equal(t, "1x1", got.Size)
	assert.Equal(t, layout.Position{Col: 0, Row: 2}, got.Position)
}

func TestAddWidgetErrors(t *testing.T) {
	r := newRig(t, pair()...)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"unknown type", AddRequest{Type: "radar"}, http.StatusNotFound, "TYPE_NOT_FOUND"},
		{"unsupported size", AddRequest{Type: "clock", Size: "4x2"}, http.StatusUnprocessableEntity, "UNSUPPORTED_SIZE"},
		{"duplicate id", AddRequest{ID: "A", Type: "clock"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed body", `{"type":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"kind":"clock"}`, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := r.do(t, http.MethodPost, "/widgets", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
	assert.Len(t, r.mgr.Widgets(), 2)
}

func TestGetUpdateRemoveWidget(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodGet, "/widgets/A", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	size := "2x1"
	rec = r.do(t, http.MethodPatch, "/widgets/A", UpdateRequest{Size: &size, Settings: map[string]any{"kind": "bar"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var got layout.Widget
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "2x1", got.Size)
	assert.Equal(t, "bar", got.Settings["kind"])

	rec = r.do(t, http.MethodDelete, "/widgets/A", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = r.do(t, http.MethodGet, "/widgets/A", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "WIDGET_NOT_FOUND", decodeError(t, rec).Code)
}

func TestMoveAndUndo(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodPost, "/widgets/A/move", layout.Position{Col: 2, Row: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeLayout(t, rec)
	got := positions(resp.Widgets)
	assert.Equal(t, layout.Position{Col: 2, Row: 0}, got["A"])
	assert.Equal(t, layout.Position{Col: 0, Row: 0}, got["B"], "displaced into the first free slot")
	assert.True(t, resp.CanUndo)

	rec = r.do(t, http.MethodPost, "/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, positions(pair()), positions(decodeLayout(t, rec).Widgets))

	rec = r.do(t, http.MethodPost, "/undo", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "HISTORY_EMPTY", decodeError(t, rec).Code)

	rec = r.do(t, http.MethodPost, "/widgets/missing/move", layout.Position{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwapResizeCompact(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodPost, "/swap", SwapRequest{A: "A", B: "B"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := positions(decodeLayout(t, rec).Widgets)
	assert.Equal(t, layout.Position{Col: 2, Row: 0}, got["A"])
	assert.Equal(t, layout.Position{Col: 0, Row: 0}, got["B"])

	rec = r.do(t, http.MethodPost, "/widgets/B/resize", ResizeRequest{Size: "2x1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = r.do(t, http.MethodPost, "/widgets/B/resize", ResizeRequest{Size: "1x1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = r.do(t, http.MethodPost, "/compact", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

// =============================================================================
// Edit mode & pointer
// =============================================================================

func TestEditMode(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodPut, "/edit-mode", EditModeRequest{Enabled: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeLayout(t, rec).EditMode)

	rec = r.do(t, http.MethodPut, "/edit-mode", EditModeRequest{Enabled: false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeLayout(t, rec).EditMode)
}

func TestPointerDragSwaps(t *testing.T) {
	r := newRig(t, pair()...)
	r.do(t, http.MethodPut, "/edit-mode", EditModeRequest{Enabled: true})

	rec := r.do(t, http.MethodPost, "/pointer", PointerRequest{Type: "down", WidgetID: "A", X: 50, Y: 50})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = r.do(t, http.MethodPost, "/pointer", PointerRequest{Type: "move", X: 250, Y: 50})
	require.Equal(t, http.StatusOK, rec.Code)
	var preview PointerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, "dragging", preview.Phase)
	assert.Equal(t, "swap", preview.Intent)
	assert.Equal(t, "B", preview.SwapWith)
	require.NotNil(t, preview.Placeholder)
	assert.Equal(t, layout.Position{Col: 2, Row: 0}, *preview.Placeholder)

	rec = r.do(t, http.MethodPost, "/pointer", PointerRequest{Type: "up", X: 250, Y: 50})
	require.Equal(t, http.StatusOK, rec.Code)
	var done PointerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&done))
	assert.Equal(t, "idle", done.Phase)
	assert.Equal(t, "swap", done.Committed)

	got := positions(r.mgr.Widgets())
	assert.Equal(t, layout.Position{Col: 2, Row: 0}, got["A"])
	assert.Equal(t, layout.Position{Col: 0, Row: 0}, got["B"])
}

func TestPointerErrors(t *testing.T) {
	r := newRig(t, pair()...)

	rec := r.do(t, http.MethodPost, "/pointer", PointerRequest{Type: "hover"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = r.do(t, http.MethodPost, "/pointer", PointerRequest{Type: "down"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = r.do(t, http.MethodGet, "/pointer", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview PointerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, "idle", preview.Phase)
}

// =============================================================================
// Persistence
// =============================================================================

func TestFlushWritesStore(t *testing.T) {
	r := newRig(t, pair()...)
	r.do(t, http.MethodPost, "/widgets/A/move", layout.Position{Col: 0, Row: 3})

	rec := r.do(t, http.MethodPost, "/flush", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeLayout(t, rec).Dirty)

	_, ok, err := r.mem.Get(context.Background(), state.DefaultLayoutKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServeFlushesOnShutdown(t *testing.T) {
	r := newRig(t, pair()...)
	require.NoError(t, r.mgr.MoveWidget("A", layout.Position{Col: 0, Row: 4}))
	require.True(t, r.mgr.Dirty())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.srv.Serve(ctx, l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/layout")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, r.mgr.Dirty())
}

func TestVersion(t *testing.T) {
	r := newRig(t)

	rec := r.do(t, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gridboard")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor("STORAGE"))
	assert.Equal(t, http.StatusConflict, statusFor("PLACEMENT_FAILED"))
	assert.Equal(t, http.StatusInternalServerError, statusFor("SOMETHING_NEW"))
}
