package plot

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the finite distances of a set of points.
type Stats struct {
	Count      int     `json:"count"`
	OutOfRange int     `json:"out_of_range"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"stddev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// WindowStats computes Stats over the samples behind points. Infinite
// distances are counted as out of range and excluded from the moments.
func WindowStats(points Points) Stats {
	var st Stats
	values := make([]float64, 0, len(points))
	for _, p := range points {
		d := p.Sample.Dist
		switch {
		case math.IsInf(d, 0):
			st.OutOfRange++
		case !math.IsNaN(d):
			values = append(values, d)
		}
	}
	st.Count = len(values)
	if st.Count == 0 {
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(values, nil)
	if st.Count == 1 {
		st.StdDev = 0
	}
	st.Min = floats.Min(values)
	st.Max = floats.Max(values)
	return st
}
