package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridboard/pkg/buildinfo"
	"github.com/matzehuels/gridboard/pkg/dragdrop"
	"github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/export"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/state"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// Payloads
// =============================================================================

// LayoutResponse is the body of GET /layout and of every mutating route.
type LayoutResponse struct {
	Widgets   []layout.Widget `json:"widgets"`
	Cols      int             `json:"cols"`
	Rows      int             `json:"rows"`
	Version   uint64          `json:"version"`
	EditMode  bool            `json:"editMode"`
	CanUndo   bool            `json:"canUndo"`
	CanRedo   bool            `json:"canRedo"`
	UndoLabel string          `json:"undoLabel,omitempty"`
	RedoLabel string          `json:"redoLabel,omitempty"`
	Dirty     bool            `json:"dirty"`
}

// AddRequest is the body of POST /widgets.
type AddRequest struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Size     string           `json:"size"`
	Position *layout.Position `json:"position"`
	Settings map[string]any   `json:"settings"`
}

// UpdateRequest is the body of PATCH /widgets/{id}.
type UpdateRequest struct {
	Size     *string          `json:"size"`
	Position *layout.Position `json:"position"`
	Settings map[string]any   `json:"settings"`
}

// ResizeRequest is the body of POST /widgets/{id}/resize.
type ResizeRequest struct {
	Size     string           `json:"size"`
	Position *layout.Position `json:"position"`
}

// SwapRequest is the body of POST /swap.
type SwapRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// EditModeRequest is the body of PUT /edit-mode.
type EditModeRequest struct {
	Enabled bool `json:"enabled"`
}

// PointerRequest is the body of POST /pointer. Coordinates are in the
// pixel space of the configured grid metrics.
type PointerRequest struct {
	Type         string  `json:"type"`
	WidgetID     string  `json:"widgetId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	ResizeHandle bool    `json:"resizeHandle"`
}

// PointerResponse reports the controller state after a pointer event.
type PointerResponse struct {
	Phase       string                     `json:"phase"`
	WidgetID    string                     `json:"widgetId,omitempty"`
	Intent      string                     `json:"intent,omitempty"`
	Valid       bool                       `json:"valid"`
	Placeholder *layout.Position           `json:"placeholder,omitempty"`
	SwapWith    string                     `json:"swapWith,omitempty"`
	Reflow      map[string]layout.Position `json:"reflow,omitempty"`
	Size        string                     `json:"size,omitempty"`
	GhostX      float64                    `json:"ghostX"`
	GhostY      float64                    `json:"ghostY"`
	Committed   string                     `json:"committed,omitempty"`
}

// =============================================================================
// Layout
// =============================================================================

func (s *Server) layoutResponse() LayoutResponse {
	widgets := layout.SortVisual(s.mgr.Widgets())
	return LayoutResponse{
		Widgets:   widgets,
		Cols:      s.mgr.Cols(),
		Rows:      s.mgr.Engine().Bottom(widgets),
		Version:   s.mgr.Version(),
		EditMode:  s.mgr.EditMode(),
		CanUndo:   s.mgr.CanUndo(),
		CanRedo:   s.mgr.CanRedo(),
		UndoLabel: s.mgr.UndoLabel(),
		RedoLabel: s.mgr.RedoLabel(),
		Dirty:     s.mgr.Dirty(),
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.layoutResponse())
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	var widgets []layout.Widget
	if !s.decode(w, r, &widgets) {
		return
	}
	if widgets == nil {
		widgets = []layout.Widget{}
	}
	s.mutate(w, s.mgr.Reset(widgets, state.Label("replace")))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := export.Export(r.Context(), f, s.mgr.Widgets(), s.mgr.Engine(), export.Options{Detailed: true})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(f))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentType(f export.Format) string {
	switch f {
	case export.FormatYAML:
		return "application/yaml"
	case export.FormatCBOR:
		return "application/cbor"
	case export.FormatDOT:
		return "text/vnd.graphviz"
	case export.FormatSVG:
		return "image/svg+xml"
	default:
		return "application/json"
	}
}

// =============================================================================
// Widgets
// =============================================================================

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if !s.decode(w, r, &req) {
		return
	}
	widget, err := s.mgr.AddWidget(state.WidgetSpec{
		ID:       req.ID,
		Type:     req.Type,
		Size:     req.Size,
		Position: req.Position,
		Settings: req.Settings,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, widget)
}

func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	widget, ok := s.mgr.Widget(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeWidgetNotFound, "widget %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, widget)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	widget, err := s.mgr.UpdateWidget(chi.URLParam(r, "id"), state.Update{
		Size:     req.Size,
		Position: req.Position,
		Settings: req.Settings,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, widget)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.RemoveWidget(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var pos layout.Position
	if !s.decode(w, r, &pos) {
		return
	}
	s.mutate(w, s.mgr.MoveWidget(chi.URLParam(r, "id"), pos))
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutate(w, s.mgr.ResizeWidgetAt(chi.URLParam(r, "id"), req.Size, req.Position))
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req SwapRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.mutate(w, s.mgr.SwapWidgets(req.A, req.B))
}

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	_, err := s.mgr.Compact()
	s.mutate(w, err)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, s.mgr.Undo())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, s.mgr.Redo())
}

func (s *Server) handleEditMode(w http.ResponseWriter, r *http.Request) {
	var req EditModeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Enabled {
		s.mgr.EnterEditMode()
	} else {
		s.ctrl.PointerCancel()
		s.mgr.ExitEditMode()
	}
	writeJSON(w, http.StatusOK, s.layoutResponse())
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.Flush(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.layoutResponse())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(buildinfo.String() + "\n"))
}

// mutate writes the layout after a successful operation, or the error.
func (s *Server) mutate(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.layoutResponse())
}

// =============================================================================
// Pointer
// =============================================================================

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !s.decode(w, r, &req) {
		return
	}

	var committed dragdrop.Intent
	switch req.Type {
	case "down":
		if req.WidgetID == "" {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "pointer down needs a widgetId"))
			return
		}
		s.ctrl.PointerDown(dragdrop.PointerEvent{
			WidgetID:       req.WidgetID,
			X:              req.X,
			Y:              req.Y,
			OnResizeHandle: req.ResizeHandle,
		})
	case "move":
		s.ctrl.PointerMove(req.X, req.Y)
	case "up":
		intent, err := s.ctrl.PointerUp(req.X, req.Y)
		if err != nil {
			s.writeError(w, err)
			return
		}
		committed = intent
	case "cancel":
		s.ctrl.PointerCancel()
	default:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown pointer event %q", req.Type))
		return
	}

	resp := previewResponse(s.ctrl.Preview())
	if committed != dragdrop.IntentNone {
		resp.Committed = committed.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, previewResponse(s.ctrl.Preview()))
}

func previewResponse(p dragdrop.Preview) PointerResponse {
	resp := PointerResponse{Phase: p.Phase.String()}
	if p.Phase == dragdrop.Idle {
		return resp
	}
	placeholder := p.Placeholder
	resp.WidgetID = p.WidgetID
	resp.Placeholder = &placeholder
	resp.Valid = p.Valid
	resp.SwapWith = p.SwapWith
	resp.Reflow = p.Reflow
	resp.Size = p.Size
	resp.GhostX = p.GhostX
	resp.GhostY = p.GhostY
	if p.Intent != dragdrop.IntentNone {
		resp.Intent = p.Intent.String()
	}
	return resp
}

// =============================================================================
// Encoding
// =============================================================================

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
