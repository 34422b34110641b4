// Package plot holds the data structures shared by every rendering backend:
// the time-ordered point buffer, linear scales between domain and screen
// space, and the nearest-rendered-point query.
package plot

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/banshee-data/beacon.scope/internal/beacon"
)

var (
	// ErrOutOfOrder is returned when a point is older than the buffer tail.
	ErrOutOfOrder = errors.New("point older than buffer tail")

	// ErrNonFiniteTime is returned for points without a usable time.
	ErrNonFiniteTime = errors.New("point time is not finite")
)

// Point is one rendered sample. X is session time in milliseconds and Y the
// plotted value.
type Point struct {
	X, Y   float64
	Sample beacon.Sample
}

// Points is a slice of points ordered by X ascending.
type Points []Point

// Search returns the index of the first point with X >= x, or len(p).
func (p Points) Search(x float64) int {
	return sort.Search(len(p), func(i int) bool { return p[i].X >= x })
}

// Visible returns the sub-slice with from <= X <= to.
func (p Points) Visible(from, to float64) Points {
	lo := p.Search(from)
	hi := sort.Search(len(p), func(i int) bool { return p[i].X > to })
	if lo >= hi {
		return nil
	}
	return p[lo:hi]
}

// PointBuffer is the append-only point store behind a plot. Appends and
// Clear may race with readers holding a Snapshot; a snapshot never changes
// after it is taken.
type PointBuffer struct {
	mu     sync.RWMutex
	points Points
}

// NewPointBuffer returns an empty buffer with room for capacity points.
func NewPointBuffer(capacity int) *PointBuffer {
	return &PointBuffer{points: make(Points, 0, capacity)}
}

// Append adds p at the tail. Points must arrive in non-decreasing X order.
func (b *PointBuffer) Append(p Point) error {
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) {
		return ErrNonFiniteTime
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := len(b.points); n > 0 && p.X < b.points[n-1].X {
		return ErrOutOfOrder
	}
	b.points = append(b.points, p)
	return nil
}

// Len returns the number of buffered points.
func (b *PointBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.points)
}

// Snapshot returns the points appended so far. The capacity is clipped so
// later appends cannot write into the returned slice.
func (b *PointBuffer) Snapshot() Points {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.points)
	return b.points[:n:n]
}

// Last returns the newest point.
func (b *PointBuffer) Last() (Point, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.points) == 0 {
		return Point{}, false
	}
	return b.points[len(b.points)-1], true
}

// Clear drops every point. Existing snapshots keep their contents.
func (b *PointBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.points = make(Points, 0, cap(b.points))
}

// PlotValue maps a sample value onto the plot. Infinite values are pinned
// to ±clamp so out of range readings stay visible; NaN is not plottable.
func PlotValue(v, clamp float64) (float64, bool) {
	switch {
	case math.IsNaN(v):
		return 0, false
	case math.IsInf(v, 1):
		return clamp, true
	case math.IsInf(v, -1):
		return -clamp, true
	}
	return v, true
}
