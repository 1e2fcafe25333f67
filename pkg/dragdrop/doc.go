// Package dragdrop turns a raw pointer event stream into layout edits.
//
// A [Controller] is an explicit state machine with a single phase field:
//
//	Idle --down--> Pressing --long press--> Armed --move > threshold--> Dragging --up--> Idle
//	  \--down (edit mode)------------------> Armed
//	  \--down on resize handle (edit mode)-> Resizing --up--> Idle
//
// Outside edit mode a press must be held for the long-press duration before
// a widget arms; moving further than the jitter threshold first abandons the
// gesture so taps and scrolls pass through. A gesture armed directly in edit
// mode is abandoned when its first significant movement is predominantly
// vertical and longer than the scroll threshold, which keeps page scrolling
// usable while editing.
//
// While dragging, the pointer minus its grab offset is mapped to a grid cell
// and the drop intent is resolved in order: Move (target free), Swap (exactly
// one overlapped widget with the same footprint), Reflow (the engine can
// re-place everyone else around the target) and None. [Controller.Preview]
// exposes the ghost, the placeholder cell and the intent for renderers.
//
// Release commits the last intent through the [Layout] when the target
// differs from the starting cell; anything else tears the gesture down with
// no layout change and no history entry.
//
// The long-press timer runs on an injected [clock.Clock], so gestures are
// fully testable with [clock.Fake].
package dragdrop
