// Package hittest maps the pointer to the sample under it.
package hittest

import (
	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

// DefaultRadiusPx is the acceptance radius around a rendered point.
const DefaultRadiusPx = 5

// Backend is the view of the rendering backend the tester needs: the point
// the chart considers nearest to the pointer, the pointer itself, and the
// mapping of a point to screen space.
type Backend interface {
	NearestPoint() (plot.Point, bool)
	PointerPos() (viewport.Point, bool)
	PixelPoint(p plot.Point) viewport.Point
}

// Result is the outcome of a hit test. OK is false for "none".
type Result struct {
	OK     bool
	Index  int
	Point  plot.Point
	Sample beacon.Sample
}

// Tester accepts the backend's nearest point when it lies strictly within
// RadiusPx of the pointer.
type Tester struct {
	RadiusPx float64
}

// New returns a tester with the given radius, or DefaultRadiusPx when
// radius is not positive.
func New(radius float64) Tester {
	if radius <= 0 {
		radius = DefaultRadiusPx
	}
	return Tester{RadiusPx: radius}
}

// Test resolves the backend's candidate against points, the time-ordered
// buffer the chart was drawn from.
func (t Tester) Test(b Backend, points plot.Points) Result {
	cand, ok := b.NearestPoint()
	if !ok {
		return Result{}
	}
	pointer, ok := b.PointerPos()
	if !ok {
		return Result{}
	}
	px := b.PixelPoint(cand)
	dx, dy := px.X-pointer.X, px.Y-pointer.Y
	if dx*dx+dy*dy >= t.RadiusPx*t.RadiusPx {
		return Result{}
	}
	i, ok := Search(points, cand.X)
	if !ok {
		return Result{}
	}
	return Result{OK: true, Index: i, Point: points[i], Sample: points[i].Sample}
}

// Search finds x in points by binary search. It returns the index of the
// first point with X >= x, so an exact match or the one right after it, and
// false when x lies past the end of the buffer.
func Search(points plot.Points, x float64) (int, bool) {
	i := points.Search(x)
	if i < 0 || i >= len(points) {
		return 0, false
	}
	return i, true
}
