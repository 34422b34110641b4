package plot

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xs(points Points) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.X
	}
	return out
}

func filled(t *testing.T, x ...float64) *PointBuffer {
	t.Helper()
	b := NewPointBuffer(len(x))
	for _, v := range x {
		require.NoError(t, b.Append(Point{X: v, Y: v / 10}))
	}
	return b
}

func TestPointBufferAppendOrder(t *testing.T) {
	b := filled(t, 0, 100, 100, 250)
	assert.Equal(t, 4, b.Len())

	assert.ErrorIs(t, b.Append(Point{X: 200}), ErrOutOfOrder)
	assert.ErrorIs(t, b.Append(Point{X: math.NaN()}), ErrNonFiniteTime)
	assert.ErrorIs(t, b.Append(Point{X: math.Inf(1)}), ErrNonFiniteTime)
	assert.Equal(t, 4, b.Len())

	last, ok := b.Last()
	require.True(t, ok)
	assert.Equal(t, 250.0, last.X)
}

func TestPointBufferSnapshotIsStable(t *testing.T) {
	b := filled(t, 1, 2, 3)
	snap := b.Snapshot()

	require.NoError(t, b.Append(Point{X: 4}))
	assert.Len(t, snap, 3)
	assert.Equal(t, 4, b.Len())

	b.Clear()
	assert.Equal(t, 0, b.Len())
	_, ok := b.Last()
	assert.False(t, ok)
	if diff := cmp.Diff([]float64{1, 2, 3}, xs(snap)); diff != "" {
		t.Errorf("snapshot changed after Clear (-want +got):\n%s", diff)
	}

	require.NoError(t, b.Append(Point{X: 0}), "cleared buffer accepts earlier times")
}

func TestPointsSearchAndVisible(t *testing.T) {
	points := filled(t, 0, 10, 20, 20, 30).Snapshot()

	tests := []struct {
		x    float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{5, 1},
		{10, 1},
		{20, 2},
		{25, 4},
		{30, 4},
		{31, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, points.Search(tt.x), "Search(%v)", tt.x)
	}

	assert.Equal(t, []float64{10, 20, 20}, xs(points.Visible(5, 20)))
	assert.Equal(t, []float64{0, 10, 20, 20, 30}, xs(points.Visible(-100, 100)))
	assert.Empty(t, points.Visible(11, 19))
	assert.Empty(t, points.Visible(40, 50))
}

func TestPlotValue(t *testing.T) {
	v, ok := PlotValue(1.25, 1e6)
	assert.True(t, ok)
	assert.Equal(t, 1.25, v)

	v, ok = PlotValue(math.Inf(1), 1e6)
	assert.True(t, ok)
	assert.Equal(t, 1e6, v)

	v, ok = PlotValue(math.Inf(-1), 1e6)
	assert.True(t, ok)
	assert.Equal(t, -1e6, v)

	_, ok = PlotValue(math.NaN(), 1e6)
	assert.False(t, ok)
}
