// Package viewport computes the visible time/value window of the live plot.
//
// The controller runs in one of three modes. In live mode the time window
// trails the wall clock: it always ends at the time elapsed since the first
// sample of the session was seen. Any pan, zoom or committed drag switches to
// manual mode, where the window stays where the user put it until
// ResetToLive. While a drag-to-zoom gesture is in progress the window is
// frozen in drag-preview mode so the selection box does not slide under the
// pointer.
//
// Time is in milliseconds of session time; values are in sample units.
package viewport

import (
	"math"
	"time"

	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
)

// Mode is the controller mode.
type Mode int

const (
	ModeLive Mode = iota
	ModeManual
	ModeDragPreview
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "live"
	case ModeManual:
		return "manual"
	case ModeDragPreview:
		return "drag"
	}
	return "unknown"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Range is a closed interval with Min < Max.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Span() float64 { return r.Max - r.Min }

func (r Range) Shift(d float64) Range { return Range{Min: r.Min + d, Max: r.Max + d} }

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r Range) valid(minSpan float64) bool {
	finite := !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && !math.IsInf(r.Min, 0) && !math.IsInf(r.Max, 0)
	return finite && r.Span() > 0 && r.Span() >= minSpan
}

// Window is the visible rectangle.
type Window struct {
	X Range `json:"x"`
	Y Range `json:"y"`
}

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// Options are the tuning constants of the controller.
type Options struct {
	// Window is the width of the trailing live window.
	Window time.Duration
	// PanStep and FinePanStep are the pan distance per wheel notch in
	// percent of the visible span.
	PanStep     float64
	FinePanStep float64
	// ZoomFactor scales the span per wheel notch; greater than one.
	ZoomFactor float64
	// Values is the value window used in live mode and after a reset.
	Values Range
	// MinSpan is the smallest span a zoom or drag may produce on either axis.
	MinSpan float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Window:      10 * time.Second,
		PanStep:     5,
		FinePanStep: 1,
		ZoomFactor:  1.1,
		Values:      Range{Min: 0, Max: 5.5},
		MinSpan:     1e-6,
	}
}

type drag struct {
	start, end Point
	hasEnd     bool
	xs, ys     plot.LinearScale
}

// Controller owns the viewport. It is not safe for concurrent use.
type Controller struct {
	clock timeutil.Clock
	opts  Options

	mode   Mode
	resume Mode
	x, y   Range

	firstSeen time.Time
	seen      bool

	drag *drag
}

// New returns a live controller driven by clock.
func New(clock timeutil.Clock, opts Options) *Controller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	c := &Controller{clock: clock, opts: opts, y: opts.Values}
	c.x = c.liveX()
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Options returns the tuning in use.
func (c *Controller) Options() Options { return c.opts }

// Elapsed returns the wall-clock time since the first sample was seen.
func (c *Controller) Elapsed() time.Duration {
	if !c.seen {
		return 0
	}
	return c.clock.Since(c.firstSeen)
}

// MarkFirstSeen records the live clock origin on the first non-empty batch
// of a session. The origin is back-dated by span, the time covered by that
// batch, so all of it is on screen at once. Later calls are ignored until
// ResetSession.
func (c *Controller) MarkFirstSeen(span time.Duration) {
	if c.seen {
		return
	}
	c.firstSeen = c.clock.Now().Add(-span)
	c.seen = true
}

// ResetSession forgets the live clock origin for a new session.
func (c *Controller) ResetSession() {
	c.seen = false
	c.firstSeen = time.Time{}
}

func (c *Controller) liveX() Range {
	end := float64(c.Elapsed()) / float64(time.Millisecond)
	return Range{Min: end - float64(c.opts.Window)/float64(time.Millisecond), Max: end}
}

func (c *Controller) currentX() Range {
	if c.mode == ModeLive {
		return c.liveX()
	}
	return c.x
}

// Frame computes the window for this frame.
func (c *Controller) Frame() Window {
	return Window{X: c.currentX(), Y: c.y}
}

// Pan shifts the time window by span/100 * dir * step, where step is the
// fine step when fine is set. It is ignored while dragging.
func (c *Controller) Pan(dir float64, fine bool) bool {
	if c.drag != nil || dir == 0 {
		return false
	}
	step := c.opts.PanStep
	if fine {
		step = c.opts.FinePanStep
	}
	r := c.currentX()
	c.x = r.Shift(r.Span() / 100 * dir * step)
	c.mode = ModeManual
	return true
}

// ZoomAround scales the time window around anchor. A positive dir widens
// the window by the zoom factor, a negative one narrows it; the anchor keeps
// its relative position on screen.
func (c *Controller) ZoomAround(anchor, dir float64) bool {
	if c.drag != nil || dir == 0 || math.IsNaN(anchor) || math.IsInf(anchor, 0) {
		return false
	}
	k := c.opts.ZoomFactor
	if dir < 0 {
		k = 1 / k
	}
	r := c.currentX()
	lo := anchor - (anchor-r.Min)*k
	next := Range{Min: lo, Max: lo + r.Span()*k}
	if !next.valid(c.opts.MinSpan) {
		return false
	}
	c.x = next
	c.mode = ModeManual
	return true
}

// BeginDrag starts a drag-to-zoom gesture at p. The window freezes at its
// current position; xs and ys map the frozen window to the screen.
func (c *Controller) BeginDrag(p Point, xs, ys plot.LinearScale) {
	if c.drag == nil {
		c.resume = c.mode
	}
	c.x = c.currentX()
	c.mode = ModeDragPreview
	c.drag = &drag{start: p, xs: xs, ys: ys}
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.drag != nil }

// UpdateDrag moves the free corner of the selection.
func (c *Controller) UpdateDrag(p Point) {
	if c.drag == nil {
		return
	}
	c.drag.end = p
	c.drag.hasEnd = true
}

// DragBox returns the selection in domain coordinates, normalised so that
// Min <= Max on both axes. It is false before the pointer has moved.
func (c *Controller) DragBox() (Window, bool) {
	d := c.drag
	if d == nil || !d.hasEnd {
		return Window{}, false
	}
	fx, tx := d.xs.Invert(d.start.X), d.xs.Invert(d.end.X)
	fy, ty := d.ys.Invert(d.start.Y), d.ys.Invert(d.end.Y)
	return Window{
		X: Range{Min: math.Min(fx, tx), Max: math.Max(fx, tx)},
		Y: Range{Min: math.Min(fy, ty), Max: math.Max(fy, ty)},
	}, true
}

// DragRect returns the selection corners in screen space for drawing the
// overlay.
func (c *Controller) DragRect() (from, to Point, ok bool) {
	if c.drag == nil || !c.drag.hasEnd {
		return Point{}, Point{}, false
	}
	return c.drag.start, c.drag.end, true
}

// EndDrag commits the selection as the new time and value window. A drag
// without a proper rectangle restores the mode in effect before it began.
func (c *Controller) EndDrag() bool {
	box, ok := c.DragBox()
	c.drag = nil
	if !ok || !box.X.valid(c.opts.MinSpan) || !box.Y.valid(c.opts.MinSpan) {
		c.mode = c.resume
		return false
	}
	c.x, c.y = box.X, box.Y
	c.mode = ModeManual
	return true
}

// CancelDrag abandons a drag without changing the window.
func (c *Controller) CancelDrag() {
	if c.drag == nil {
		return
	}
	c.drag = nil
	c.mode = c.resume
}

// ResetToLive drops every manual override, including the value window.
func (c *Controller) ResetToLive() {
	c.drag = nil
	c.mode = ModeLive
	c.y = c.opts.Values
}
