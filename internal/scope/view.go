// Package scope ties one sample session to a point buffer, a viewport and a
// hit tester, and produces the per-frame picture a renderer draws.
package scope

import (
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/hittest"
	"github.com/banshee-data/beacon.scope/internal/monitoring"
	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/stream"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

var logf = monitoring.Component("scope")

// Options configure a View.
type Options struct {
	Viewport      viewport.Options
	HitRadiusPx   float64
	InfinityClamp float64
	// BufferCapacity preallocates the point buffer.
	BufferCapacity int
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		Viewport:       viewport.DefaultOptions(),
		HitRadiusPx:    hittest.DefaultRadiusPx,
		InfinityClamp:  1e6,
		BufferCapacity: 4096,
	}
}

// Frame is everything a renderer needs for one paint.
type Frame struct {
	Window viewport.Window
	Mode   viewport.Mode
	XScale plot.LinearScale
	YScale plot.LinearScale

	// Points are the buffered points inside the time window.
	Points    plot.Points
	Total     int
	Stats     plot.Stats
	Highlight hittest.Result
	Last      *beacon.Sample

	// DragFrom and DragTo are the selection corners while dragging.
	Dragging         bool
	DragFrom, DragTo viewport.Point
	DragBox          viewport.Window

	State     stream.State
	LastError string
	Header    beacon.Header
}

// View is safe for concurrent use: session events arrive on one goroutine
// while the renderer drives frames and gestures from another.
type View struct {
	mu sync.Mutex

	buf    *plot.PointBuffer
	vp     *viewport.Controller
	tester hittest.Tester
	clamp  float64

	width, height float64
	xs, ys        plot.LinearScale
	pointer       viewport.Point
	hasPointer    bool
	highlight     hittest.Result
	highlights    chan hittest.Result

	gen       uint64
	state     stream.State
	lastError string
	header    beacon.Header

	sub      *stream.Subscription
	pumpDone chan struct{}
}

// NewView returns a detached view in live mode.
func NewView(clock timeutil.Clock, opts Options) *View {
	if opts.InfinityClamp <= 0 {
		opts.InfinityClamp = 1e6
	}
	return &View{
		buf:        plot.NewPointBuffer(opts.BufferCapacity),
		vp:         viewport.New(clock, opts.Viewport),
		tester:     hittest.New(opts.HitRadiusPx),
		clamp:      opts.InfinityClamp,
		highlights: make(chan hittest.Result, 1),
	}
}

// Attach subscribes to s. A previous attachment is detached first.
func (v *View) Attach(s *stream.Session) {
	v.Detach()

	sub := s.Subscribe(stream.TopicState, stream.TopicError, stream.TopicHeader, stream.TopicSamples)
	done := make(chan struct{})
	v.mu.Lock()
	v.sub = sub
	v.pumpDone = done
	v.mu.Unlock()

	go v.pump(sub, done)
}

// Detach unsubscribes from the session. It is safe to call when detached.
func (v *View) Detach() {
	v.mu.Lock()
	sub, done := v.sub, v.pumpDone
	v.sub, v.pumpDone = nil, nil
	v.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Unsubscribe()
	<-done
}

func (v *View) pump(sub *stream.Subscription, done chan struct{}) {
	defer close(done)
	for {
		select {
		case ev := <-sub.C():
			v.Handle(ev)
		case <-sub.Done():
			return
		}
	}
}

// Handle applies one session event.
func (v *View) Handle(ev stream.Event) {
	switch ev.Topic {
	case stream.TopicState:
		v.mu.Lock()
		v.state = ev.State
		switch ev.State {
		case stream.StateConnecting:
			v.resetLocked(ev.Generation)
		case stream.StateDisconnected:
			if ev.Err != nil {
				v.lastError = ev.Err.Error()
			}
		}
		v.mu.Unlock()

	case stream.TopicError:
		v.mu.Lock()
		if ev.Err != nil {
			v.lastError = ev.Err.Error()
		}
		v.mu.Unlock()

	case stream.TopicHeader:
		v.mu.Lock()
		if ev.Generation == v.gen {
			v.header = ev.Header
		}
		v.mu.Unlock()

	case stream.TopicSamples:
		v.mu.Lock()
		stale := ev.Generation != v.gen
		v.mu.Unlock()
		if stale {
			return
		}
		v.Ingest(ev.Samples)
	}
}

// resetLocked clears everything tied to the previous session.
func (v *View) resetLocked(gen uint64) {
	v.gen = gen
	v.buf.Clear()
	v.vp.ResetSession()
	v.header = nil
	v.lastError = ""
	v.setHighlightLocked(hittest.Result{})
}

// Ingest appends one decoded batch. Samples without a finite time or a
// plottable distance are skipped, as are samples older than the newest
// point.
func (v *View) Ingest(samples []beacon.Sample) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, s := range samples {
		y, ok := plot.PlotValue(s.Dist, v.clamp)
		if !ok {
			continue
		}
		err := v.buf.Append(plot.Point{X: s.Time * 1000, Y: y, Sample: s})
		switch {
		case errors.Is(err, plot.ErrOutOfOrder):
			logf("skipping out of order sample at t=%.3f", s.Time)
		case err != nil:
			logf("skipping sample: %v", err)
		}
	}

	snap := v.buf.Snapshot()
	if len(snap) > 0 {
		span := snap[len(snap)-1].X - snap[0].X
		v.vp.MarkFirstSeen(time.Duration(span * float64(time.Millisecond)))
	}
	v.hitTestLocked()
}

// SetGeometry sets the plot area size in pixels.
func (v *View) SetGeometry(width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
	v.updateScalesLocked(v.vp.Frame())
}

func (v *View) updateScalesLocked(w viewport.Window) {
	v.xs = plot.NewLinearScale(w.X.Min, w.X.Max, 0, v.width)
	v.ys = plot.NewLinearScale(w.Y.Min, w.Y.Max, v.height, 0)
}

// Frame recomputes the viewport and hit test and returns the picture to
// draw.
func (v *View) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()

	win := v.vp.Frame()
	v.updateScalesLocked(win)
	visible := v.buf.Snapshot().Visible(win.X.Min, win.X.Max)
	v.hitTestWithLocked(visible)

	f := Frame{
		Window:    win,
		Mode:      v.vp.Mode(),
		XScale:    v.xs,
		YScale:    v.ys,
		Points:    visible,
		Total:     v.buf.Len(),
		Stats:     plot.WindowStats(visible),
		Highlight: v.highlight,
		State:     v.state,
		LastError: v.lastError,
		Header:    v.header,
	}
	if last, ok := v.buf.Last(); ok {
		s := last.Sample
		f.Last = &s
	}
	if from, to, ok := v.vp.DragRect(); ok {
		f.Dragging = true
		f.DragFrom, f.DragTo = from, to
		f.DragBox, _ = v.vp.DragBox()
	}
	return f
}

// Mode returns the viewport mode.
func (v *View) Mode() viewport.Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp.Mode()
}

// Wheel handles one wheel notch. dir is the sign of the scroll. With zoom
// set the time window scales around the point nearest the pointer, and is
// left alone when there is none; otherwise it pans, by the fine step when
// fine is set.
func (v *View) Wheel(dir float64, zoom, fine bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.updateScalesLocked(v.vp.Frame())
	if !zoom {
		return v.vp.Pan(dir, fine)
	}
	cand, ok := v.backendLocked(nil).NearestPoint()
	if !ok {
		return false
	}
	return v.vp.ZoomAround(cand.X, dir)
}

// PointerMove records the pointer position and extends a drag in progress.
func (v *View) PointerMove(p viewport.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pointer, v.hasPointer = p, true
	v.vp.UpdateDrag(p)
	v.hitTestLocked()
}

// PointerLeave forgets the pointer.
func (v *View) PointerLeave() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hasPointer = false
	v.setHighlightLocked(hittest.Result{})
}

// PointerDown starts a drag-to-zoom when drag is set; a plain press only
// moves the pointer.
func (v *View) PointerDown(p viewport.Point, drag bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pointer, v.hasPointer = p, true
	if !drag {
		return
	}
	v.updateScalesLocked(v.vp.Frame())
	v.vp.BeginDrag(p, v.xs, v.ys)
}

// PointerUp finishes a drag and reports whether a new window was committed.
func (v *View) PointerUp(p viewport.Point) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.vp.Dragging() {
		return false
	}
	v.vp.UpdateDrag(p)
	return v.vp.EndDrag()
}

// CancelDrag abandons a drag in progress.
func (v *View) CancelDrag() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vp.CancelDrag()
}

// ResetToLive returns to the trailing live window.
func (v *View) ResetToLive() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vp.ResetToLive()
}

// Highlight returns the current hit test result.
func (v *View) Highlight() hittest.Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlight
}

// Highlights delivers hit test changes. Only the latest unread change is
// kept.
func (v *View) Highlights() <-chan hittest.Result {
	return v.highlights
}

// Snapshot returns the buffered points.
func (v *View) Snapshot() plot.Points {
	return v.buf.Snapshot()
}

func (v *View) hitTestLocked() {
	win := v.vp.Frame()
	v.hitTestWithLocked(v.buf.Snapshot().Visible(win.X.Min, win.X.Max))
}

func (v *View) hitTestWithLocked(visible plot.Points) {
	v.setHighlightLocked(v.tester.Test(v.backendLocked(visible), v.buf.Snapshot()))
}

func (v *View) setHighlightLocked(r hittest.Result) {
	if r.OK == v.highlight.OK && r.Index == v.highlight.Index && r.Point.X == v.highlight.Point.X {
		return
	}
	v.highlight = r
	select {
	case <-v.highlights:
	default:
	}
	v.highlights <- r
}

// backendLocked captures the rendered state for the hit tester. A nil
// visible slice is computed from the current window.
func (v *View) backendLocked(visible plot.Points) backend {
	if visible == nil {
		win := v.vp.Frame()
		visible = v.buf.Snapshot().Visible(win.X.Min, win.X.Max)
	}
	return backend{
		points:     visible,
		xs:         v.xs,
		ys:         v.ys,
		pointer:    v.pointer,
		hasPointer: v.hasPointer,
	}
}

// backend is the chart widget as the hit tester sees it.
type backend struct {
	points     plot.Points
	xs, ys     plot.LinearScale
	pointer    viewport.Point
	hasPointer bool
}

func (b backend) NearestPoint() (plot.Point, bool) {
	if !b.hasPointer {
		return plot.Point{}, false
	}
	i, ok := plot.Nearest(b.points, b.xs, b.pointer.X)
	if !ok {
		return plot.Point{}, false
	}
	return b.points[i], true
}

func (b backend) PointerPos() (viewport.Point, bool) {
	return b.pointer, b.hasPointer
}

func (b backend) PixelPoint(p plot.Point) viewport.Point {
	return viewport.Point{X: b.xs.Apply(p.X), Y: b.ys.Apply(p.Y)}
}
