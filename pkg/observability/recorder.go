package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/gridboard/pkg/layout"
)

// Event is one recorded hook invocation.
type Event struct {
	Name   string
	Detail string
}

// String returns "name detail".
func (e Event) String() string {
	if e.Detail == "" {
		return e.Name
	}
	return e.Name + " " + e.Detail
}

// Recorder keeps the most recent events in a bounded buffer. It implements
// both hook interfaces and is safe for concurrent use; the terminal editor
// uses it for its status line and tests use it to assert on emitted events.
type Recorder struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewRecorder returns a recorder holding at most limit events. A
// non-positive limit keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

func (r *Recorder) record(name, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: name, Detail: fmt.Sprintf(format, args...)})
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
}

// Events returns a copy of the recorded events, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Names returns the recorded event names, oldest first.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

// Count returns how many recorded events have the given name.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *Recorder) OnLayoutLoaded(source string, n int)  { r.record("loaded", "%s %d", source, n) }
func (r *Recorder) OnLayoutChanged(reason string, n int) { r.record("changed", "%s %d", reason, n) }
func (r *Recorder) OnMigrated(from, to int)              { r.record("migrated", "%d->%d", from, to) }
func (r *Recorder) OnWidgetAdded(w layout.Widget)        { r.record("added", "%s", w.ID) }
func (r *Recorder) OnWidgetRemoved(id string)            { r.record("removed", "%s", id) }
func (r *Recorder) OnWidgetsSwapped(a, b string)         { r.record("swapped", "%s %s", a, b) }
func (r *Recorder) OnUndo(label string)                  { r.record("undo", "%s", label) }
func (r *Recorder) OnRedo(label string)                  { r.record("redo", "%s", label) }
func (r *Recorder) OnEditModeEntered()                   { r.record("edit_entered", "") }
func (r *Recorder) OnEditModeExited()                    { r.record("edit_exited", "") }
func (r *Recorder) OnPersistFailed(err error)            { r.record("persist_failed", "%v", err) }

func (r *Recorder) OnWidgetMoved(id string, from, to layout.Position) {
	r.record("moved", "%s %v->%v", id, from, to)
}

func (r *Recorder) OnWidgetResized(id, from, to string) {
	r.record("resized", "%s %s->%s", id, from, to)
}

func (r *Recorder) OnPersisted(bytes int, _ time.Duration) {
	r.record("persisted", "%d", bytes)
}

func (r *Recorder) OnDragStarted(id string, origin layout.Position) {
	r.record("drag_started", "%s %v", id, origin)
}

func (r *Recorder) OnDragMoved(id string, target layout.Position, intent string) {
	r.record("drag_moved", "%s %v %s", id, target, intent)
}

func (r *Recorder) OnDropped(id string, target layout.Position, intent string) {
	r.record("dropped", "%s %v %s", id, target, intent)
}

func (r *Recorder) OnDragCancelled(id, reason string) {
	r.record("drag_cancelled", "%s %s", id, reason)
}

func (r *Recorder) OnResizeStarted(id, size string) {
	r.record("resize_started", "%s %s", id, size)
}

func (r *Recorder) OnResizeEnded(id, size string, committed bool) {
	r.record("resize_ended", "%s %s %t", id, size, committed)
}

// Ensure Recorder implements both hook interfaces.
var (
	_ LayoutHooks = (*Recorder)(nil)
	_ DragHooks   = (*Recorder)(nil)
)
