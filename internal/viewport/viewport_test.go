package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/timeutil"
)

func newController(t *testing.T) (*Controller, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(clock, DefaultOptions()), clock
}

func TestLiveWindowTrailsClock(t *testing.T) {
	c, clock := newController(t)
	assert.Equal(t, ModeLive, c.Mode())
	assert.Equal(t, Window{X: Range{-10000, 0}, Y: Range{0, 5.5}}, c.Frame())

	c.MarkFirstSeen(0)
	clock.Advance(2500 * time.Millisecond)
	first := c.Frame()
	assert.Equal(t, Range{-7500, 2500}, first.X)

	for _, dt := range []time.Duration{16 * time.Millisecond, time.Second, 3 * time.Millisecond} {
		clock.Advance(dt)
		next := c.Frame()
		want := float64(dt / time.Millisecond)
		assert.InDelta(t, want, next.X.Min-first.X.Min, 1e-9)
		assert.InDelta(t, want, next.X.Max-first.X.Max, 1e-9)
		first = next
	}
}

func TestMarkFirstSeenBackdates(t *testing.T) {
	c, clock := newController(t)
	c.MarkFirstSeen(400 * time.Millisecond)
	assert.Equal(t, Range{-9600, 400}, c.Frame().X)

	clock.Advance(time.Second)
	c.MarkFirstSeen(5 * time.Second)
	assert.Equal(t, Range{-8600, 1400}, c.Frame().X, "origin is only set once per session")

	c.ResetSession()
	assert.Equal(t, time.Duration(0), c.Elapsed())
	c.MarkFirstSeen(0)
	assert.Equal(t, Range{-10000, 0}, c.Frame().X)
}

func TestPan(t *testing.T) {
	c, _ := newController(t)
	c.MarkFirstSeen(20 * time.Second)

	require.True(t, c.Pan(1, false))
	assert.Equal(t, ModeManual, c.Mode())
	assert.Equal(t, Range{10500, 20500}, c.Frame().X)

	require.True(t, c.Pan(-1, true))
	assert.Equal(t, Range{10400, 20400}, c.Frame().X)

	assert.False(t, c.Pan(0, false))
	assert.Equal(t, Range{0, 5.5}, c.Frame().Y, "pan never touches the value window")
}

func TestPanFreezesLiveWindow(t *testing.T) {
	c, clock := newController(t)
	c.MarkFirstSeen(0)
	clock.Advance(10 * time.Second)
	c.Pan(1, false)
	before := c.Frame()

	clock.Advance(5 * time.Second)
	assert.Equal(t, before, c.Frame())
}

func TestZoomAround(t *testing.T) {
	tests := []struct {
		name   string
		anchor float64
		dir    float64
		want   Range
	}{
		{"widen around centre", 5000, 1, Range{-500, 10500}},
		{"narrow around centre", 5000, -1, Range{5000 - 5000/1.1, 5000 + 5000/1.1}},
		{"widen around left edge", 0, 1, Range{0, 11000}},
		{"widen around point", 2000, 1, Range{-200, 10800}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t)
			c.MarkFirstSeen(10 * time.Second)
			require.Equal(t, Range{0, 10000}, c.Frame().X)

			require.True(t, c.ZoomAround(tt.anchor, tt.dir))
			got := c.Frame().X
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
			assert.Equal(t, ModeManual, c.Mode())
		})
	}
}

func TestZoomAroundRejectsDegenerate(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSpan = 9500
	c := New(timeutil.NewMockClock(time.Unix(0, 0)), opts)
	c.MarkFirstSeen(10 * time.Second)

	assert.False(t, c.ZoomAround(5000, -1))
	assert.Equal(t, ModeLive, c.Mode())
	assert.True(t, c.ZoomAround(5000, 1))
}

// 200x100 px plot over [0, 10000] ms and [0, 5] units.
func dragScales() (plot.LinearScale, plot.LinearScale) {
	return plot.NewLinearScale(0, 10000, 0, 200), plot.NewLinearScale(0, 5, 100, 0)
}

func TestDragToZoomRoundTrip(t *testing.T) {
	c, clock := newController(t)
	c.MarkFirstSeen(10 * time.Second)
	xs, ys := dragScales()

	c.BeginDrag(Point{X: 150, Y: 20}, xs, ys)
	assert.Equal(t, ModeDragPreview, c.Mode())
	_, ok := c.DragBox()
	assert.False(t, ok, "no box before the pointer moves")

	c.UpdateDrag(Point{X: 50, Y: 80})
	box, ok := c.DragBox()
	require.True(t, ok)
	assert.Equal(t, Range{2500, 7500}, box.X)
	assert.InDelta(t, 1.0, box.Y.Min, 1e-9)
	assert.InDelta(t, 4.0, box.Y.Max, 1e-9)

	clock.Advance(3 * time.Second)
	assert.Equal(t, Range{0, 10000}, c.Frame().X, "window is frozen while dragging")

	require.True(t, c.EndDrag())
	assert.Equal(t, ModeManual, c.Mode())
	assert.Equal(t, box, c.Frame())

	c.ResetToLive()
	assert.Equal(t, ModeLive, c.Mode())
	assert.Equal(t, Window{X: Range{3000, 13000}, Y: Range{0, 5.5}}, c.Frame())
}

func TestDragWithoutRectangle(t *testing.T) {
	c, clock := newController(t)
	c.MarkFirstSeen(10 * time.Second)
	xs, ys := dragScales()

	c.BeginDrag(Point{X: 10, Y: 10}, xs, ys)
	assert.False(t, c.EndDrag(), "click without moving")
	assert.Equal(t, ModeLive, c.Mode())

	c.BeginDrag(Point{X: 10, Y: 10}, xs, ys)
	c.UpdateDrag(Point{X: 10, Y: 90})
	assert.False(t, c.EndDrag(), "zero width box")
	assert.Equal(t, ModeLive, c.Mode())

	clock.Advance(time.Second)
	assert.Equal(t, Range{1000, 11000}, c.Frame().X)

	c.Pan(1, false)
	manual := c.Frame()
	c.BeginDrag(Point{X: 10, Y: 10}, xs, ys)
	c.CancelDrag()
	assert.Equal(t, ModeManual, c.Mode())
	assert.Equal(t, manual, c.Frame())
}

func TestGesturesIgnoredWhileDragging(t *testing.T) {
	c, _ := newController(t)
	xs, ys := dragScales()
	c.BeginDrag(Point{X: 10, Y: 10}, xs, ys)

	assert.False(t, c.Pan(1, false))
	assert.False(t, c.ZoomAround(0, 1))
	assert.True(t, c.Dragging())

	c.UpdateDrag(Point{X: 30, Y: 40})
	from, to, ok := c.DragRect()
	require.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 10}, from)
	assert.Equal(t, Point{X: 30, Y: 40}, to)

	c.ResetToLive()
	assert.False(t, c.Dragging())
}
