package dragdrop

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridboard/pkg/clock"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/registry"
	"github.com/matzehuels/gridboard/pkg/state"
)

// =============================================================================
// Phases
// =============================================================================

// Phase is the controller's current state.
type Phase int

const (
	Idle Phase = iota
	Pressing
	Armed
	Dragging
	Resizing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pressing:
		return "pressing"
	case Armed:
		return "armed"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Cancellation reasons reported through DragHooks.OnDragCancelled.
const (
	ReasonJitter    = "jitter"
	ReasonScroll    = "scroll"
	ReasonReleased  = "released"
	ReasonNoChange  = "no_change"
	ReasonInvalid   = "invalid"
	ReasonRejected  = "rejected"
	ReasonCancelled = "cancelled"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds gesture thresholds. Distances are in the same pixel units as
// the grid metrics. An infinite ScrollThreshold disables scroll cancellation.
type Config struct {
	LongPress       time.Duration
	Jitter          float64
	DragThreshold   float64
	ScrollThreshold float64
	Metrics         grid.Metrics
}

// DefaultConfig returns the default thresholds for a 100x100 cell grid with
// 8px gaps.
func DefaultConfig() Config {
	return Config{
		LongPress:       500 * time.Millisecond,
		Jitter:          10,
		DragThreshold:   12,
		ScrollThreshold: 24,
		Metrics:         grid.Metrics{CellWidth: 100, CellHeight: 100, Gap: 8},
	}
}

// Layout is the editable layout a controller drives. *state.Manager
// implements it.
type Layout interface {
	Widget(id string) (layout.Widget, bool)
	Widgets() []layout.Widget
	Engine() *grid.Engine
	Registry() registry.Registry
	EditMode() bool
	EnterEditMode() bool
	MoveWidget(id string, pos layout.Position, opts ...state.CallOption) error
	SwapWidgets(a, b string, opts ...state.CallOption) error
	ApplyPositions(positions map[string]layout.Position, opts ...state.CallOption) error
	ResizeWidgetAt(id, size string, pos *layout.Position, opts ...state.CallOption) error
}

var _ Layout = (*state.Manager)(nil)

// PointerEvent is a pointer-down on a widget.
type PointerEvent struct {
	WidgetID       string
	X, Y           float64
	OnResizeHandle bool
}

// =============================================================================
// Controller
// =============================================================================

// Controller interprets pointer events for one layout. It is safe for
// concurrent use; hooks and layout commits run after its lock is released.
type Controller struct {
	mu     sync.Mutex
	layout Layout
	cfg    Config
	clock  clock.Clock
	hooks  observability.DragHooks
	logger *log.Logger

	phase   Phase
	g       gesture
	seq     uint64
	timer   clock.Timer
	pending []func()
}

// gesture holds the state of the gesture in progress.
type gesture struct {
	id        string
	typ       string
	seq       uint64
	startX    float64
	startY    float64
	grabX     float64
	grabY     float64
	lastX     float64
	lastY     float64
	origin    layout.Position
	footprint layout.Footprint
	longPress bool

	// dragging
	target   layout.Position
	intent   Intent
	swapWith string
	reflow   map[string]layout.Position

	// resizing
	startSize string
	size      string
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfig sets the gesture thresholds. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		d := DefaultConfig()
		if cfg.LongPress <= 0 {
			cfg.LongPress = d.LongPress
		}
		if cfg.Jitter <= 0 {
			cfg.Jitter = d.Jitter
		}
		if cfg.DragThreshold <= 0 {
			cfg.DragThreshold = d.DragThreshold
		}
		if cfg.ScrollThreshold <= 0 {
			cfg.ScrollThreshold = d.ScrollThreshold
		}
		if cfg.Metrics.CellWidth <= 0 || cfg.Metrics.CellHeight <= 0 {
			cfg.Metrics = d.Metrics
		}
		c.cfg = cfg
	}
}

// WithClock sets the clock driving the long-press timer.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithHooks sets the drag hooks.
func WithHooks(h observability.DragHooks) Option {
	return func(c *Controller) {
		if h != nil {
			c.hooks = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a controller for l.
func New(l Layout, opts ...Option) *Controller {
	c := &Controller{
		layout: l,
		cfg:    DefaultConfig(),
		clock:  clock.Real,
		hooks:  observability.NoopDragHooks{},
		logger: log.New(io.Discard),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns the controller's thresholds and metrics.
func (c *Controller) Config() Config {
	return c.cfg
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// =============================================================================
// Locking
// =============================================================================

func (c *Controller) emit(f func(h observability.DragHooks)) {
	h := c.hooks
	c.pending = append(c.pending, func() { f(h) })
}

// unlock releases mu and runs the calls queued while it was held.
func (c *Controller) unlock() {
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

// reset tears down the gesture. Must be called with mu held.
func (c *Controller) reset() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.phase = Idle
	c.g = gesture{}
}

func distance(dx, dy float64) float64 {
	return math.Hypot(dx, dy)
}

// =============================================================================
// Pointer Events
// =============================================================================

// PointerDown starts a gesture on a widget. It is ignored while another
// gesture is in progress or when the widget is unknown.
func (c *Controller) PointerDown(ev PointerEvent) {
	c.mu.Lock()
	defer c.unlock()
	if c.phase != Idle {
		return
	}
	w, ok := c.layout.Widget(ev.WidgetID)
	if !ok {
		return
	}

	eng := c.layout.Engine()
	ox, oy := eng.GridToPixels(c.cfg.Metrics, w.Position.Col, w.Position.Row)
	c.seq++
	c.g = gesture{
		id:        w.ID,
		typ:       w.Type,
		seq:       c.seq,
		startX:    ev.X,
		startY:    ev.Y,
		lastX:     ev.X,
		lastY:     ev.Y,
		grabX:     ev.X - ox,
		grabY:     ev.Y - oy,
		origin:    w.Position,
		footprint: eng.Footprint(w),
		target:    w.Position,
	}

	editing := c.layout.EditMode()
	switch {
	case ev.OnResizeHandle && editing:
		c.phase = Resizing
		c.g.startSize = w.Size
		c.g.size = w.Size
		id, size := w.ID, w.Size
		c.emit(func(h observability.DragHooks) { h.OnResizeStarted(id, size) })
	case editing:
		c.phase = Armed
	default:
		c.phase = Pressing
		seq := c.seq
		c.timer = c.clock.AfterFunc(c.cfg.LongPress, func() { c.longPressFired(seq) })
	}
}

// longPressFired arms the pressed widget and enters edit mode.
func (c *Controller) longPressFired(seq uint64) {
	c.mu.Lock()
	if c.phase != Pressing || c.g.seq != seq {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.phase = Armed
	c.g.longPress = true
	c.pending = append(c.pending, func() { c.layout.EnterEditMode() })
	c.unlock()
}

// PointerMove advances the gesture in progress.
func (c *Controller) PointerMove(x, y float64) {
	c.mu.Lock()
	defer c.unlock()

	dx, dy := x-c.g.startX, y-c.g.startY
	switch c.phase {
	case Pressing:
		if distance(dx, dy) > c.cfg.Jitter {
			c.cancel(ReasonJitter)
		}
	case Armed:
		// Vertical movement stays armed until it passes the scroll threshold.
		// Long-press arms never scroll.
		dist := distance(dx, dy)
		vertical := !c.g.longPress && !math.IsInf(c.cfg.ScrollThreshold, 1) &&
			math.Abs(dy) > 2*math.Abs(dx)
		switch {
		case vertical && dist > c.cfg.ScrollThreshold:
			c.cancel(ReasonScroll)
			return
		case vertical:
		case dist > c.cfg.DragThreshold:
			c.phase = Dragging
			id, origin := c.g.id, c.g.origin
			c.emit(func(h observability.DragHooks) { h.OnDragStarted(id, origin) })
			c.track(x, y)
		}
	case Dragging:
		c.track(x, y)
	case Resizing:
		c.trackResize(x, y)
	}
	c.g.lastX, c.g.lastY = x, y
}

// PointerUp ends the gesture, committing a drag or resize when it changes
// the layout. It returns the committed intent, IntentNone when nothing was
// committed, and the layout's error when a commit was rejected.
func (c *Controller) PointerUp(x, y float64) (Intent, error) {
	c.mu.Lock()
	switch c.phase {
	case Idle:
		c.mu.Unlock()
		return IntentNone, nil
	case Pressing:
		c.reset()
		c.unlock()
		return IntentNone, nil
	case Armed:
		c.cancel(ReasonReleased)
		c.unlock()
		return IntentNone, nil
	case Resizing:
		c.trackResize(x, y)
		g := c.g
		c.reset()
		c.unlock()
		return c.commitResize(g)
	}

	c.track(x, y)
	g := c.g
	c.reset()
	c.unlock()
	return c.commitDrag(g)
}

// PointerCancel aborts any gesture without changing the layout.
func (c *Controller) PointerCancel() {
	c.mu.Lock()
	defer c.unlock()
	switch c.phase {
	case Idle:
	case Resizing:
		id, size := c.g.id, c.g.startSize
		c.reset()
		c.emit(func(h observability.DragHooks) { h.OnResizeEnded(id, size, false) })
	default:
		c.cancel(ReasonCancelled)
	}
}

// cancel abandons the gesture. Must be called with mu held.
func (c *Controller) cancel(reason string) {
	id := c.g.id
	c.reset()
	c.emit(func(h observability.DragHooks) { h.OnDragCancelled(id, reason) })
}

// =============================================================================
// Commit
// =============================================================================

func (c *Controller) commitDrag(g gesture) (Intent, error) {
	if g.target == g.origin {
		c.hooks.OnDragCancelled(g.id, ReasonNoChange)
		return IntentNone, nil
	}

	var err error
	switch g.intent {
	case IntentMove:
		err = c.layout.MoveWidget(g.id, g.target)
	case IntentSwap:
		err = c.layout.SwapWidgets(g.id, g.swapWith)
	case IntentReflow:
		err = c.layout.ApplyPositions(g.reflow)
	default:
		c.hooks.OnDragCancelled(g.id, ReasonInvalid)
		return IntentNone, nil
	}
	if err != nil {
		c.logger.Warn("drop rejected", "widget", g.id, "intent", g.intent, "err", err)
		c.hooks.OnDragCancelled(g.id, ReasonRejected)
		return IntentNone, err
	}

	c.logger.Debug("dropped", "widget", g.id, "target", g.target, "intent", g.intent)
	c.hooks.OnDropped(g.id, g.target, g.intent.String())
	return g.intent, nil
}

func (c *Controller) commitResize(g gesture) (Intent, error) {
	if g.size == g.startSize {
		c.hooks.OnResizeEnded(g.id, g.startSize, false)
		return IntentNone, nil
	}
	if err := c.layout.ResizeWidgetAt(g.id, g.size, nil); err != nil {
		c.logger.Warn("resize rejected", "widget", g.id, "size", g.size, "err", err)
		c.hooks.OnResizeEnded(g.id, g.startSize, false)
		return IntentNone, err
	}
	c.hooks.OnResizeEnded(g.id, g.size, true)
	return IntentResize, nil
}
