package hittest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/viewport"
)

// fakeBackend renders points with identity scales so pixel distance equals
// domain distance.
type fakeBackend struct {
	candidate  plot.Point
	hasCand    bool
	pointer    viewport.Point
	hasPointer bool
}

func (f fakeBackend) NearestPoint() (plot.Point, bool)       { return f.candidate, f.hasCand }
func (f fakeBackend) PointerPos() (viewport.Point, bool)     { return f.pointer, f.hasPointer }
func (f fakeBackend) PixelPoint(p plot.Point) viewport.Point { return viewport.Point{X: p.X, Y: p.Y} }

func buffer() plot.Points {
	var pts plot.Points
	for i, x := range []float64{0, 10, 20, 30, 40} {
		pts = append(pts, plot.Point{X: x, Y: 5, Sample: beacon.Sample{Time: x / 1000, Dist: float64(i)}})
	}
	return pts
}

func TestThreshold(t *testing.T) {
	points := buffer()
	tester := New(0)
	require.Equal(t, float64(DefaultRadiusPx), tester.RadiusPx)

	tests := []struct {
		name    string
		pointer viewport.Point
		want    bool
	}{
		{"on the point", viewport.Point{X: 20, Y: 5}, true},
		{"inside", viewport.Point{X: 23, Y: 8.9}, true},
		{"exactly on the radius", viewport.Point{X: 23, Y: 9}, false},
		{"outside", viewport.Point{X: 20, Y: 11}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fakeBackend{candidate: points[2], hasCand: true, pointer: tt.pointer, hasPointer: true}
			res := tester.Test(b, points)
			assert.Equal(t, tt.want, res.OK)
			if tt.want {
				assert.Equal(t, 2, res.Index)
				assert.Equal(t, 2.0, res.Sample.Dist)
			}
		})
	}
}

func TestNoCandidate(t *testing.T) {
	points := buffer()
	tester := New(5)

	assert.False(t, tester.Test(fakeBackend{hasPointer: true}, points).OK)
	assert.False(t, tester.Test(fakeBackend{candidate: points[0], hasCand: true}, points).OK)

	stale := fakeBackend{candidate: plot.Point{X: 50, Y: 5}, hasCand: true, pointer: viewport.Point{X: 50, Y: 5}, hasPointer: true}
	assert.False(t, tester.Test(stale, points).OK, "candidate past the buffer end")
	assert.False(t, tester.Test(stale, nil).OK)
}

func TestSearch(t *testing.T) {
	points := buffer()
	tests := []struct {
		x      float64
		want   int
		wantOK bool
	}{
		{0, 0, true},
		{-1, 0, true},
		{10, 1, true},
		{10.5, 2, true},
		{40, 4, true},
		{40.1, 0, false},
	}
	for _, tt := range tests {
		got, ok := Search(points, tt.x)
		assert.Equal(t, tt.wantOK, ok, "Search(%v)", tt.x)
		assert.Equal(t, tt.want, got, "Search(%v)", tt.x)
	}

	_, ok := Search(nil, 0)
	assert.False(t, ok)
}
