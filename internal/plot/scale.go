package plot

// LinearScale maps a domain interval onto a screen interval. The screen
// interval may be reversed, as it is for a y axis growing downwards.
type LinearScale struct {
	DomainMin, DomainMax float64
	RangeMin, RangeMax   float64
}

// NewLinearScale returns the scale mapping [d0, d1] onto [r0, r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{DomainMin: d0, DomainMax: d1, RangeMin: r0, RangeMax: r1}
}

// Apply converts a domain value to screen space.
func (s LinearScale) Apply(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return s.RangeMin
	}
	return s.RangeMin + (v-s.DomainMin)/span*(s.RangeMax-s.RangeMin)
}

// Invert converts a screen coordinate back to the domain.
func (s LinearScale) Invert(px float64) float64 {
	span := s.RangeMax - s.RangeMin
	if span == 0 {
		return s.DomainMin
	}
	return s.DomainMin + (px-s.RangeMin)/span*(s.DomainMax-s.DomainMin)
}

// Nearest returns the index of the rendered point whose screen x is closest
// to pointerX. It is the candidate a chart widget reports for the pointer;
// distance acceptance is left to the caller.
func Nearest(points Points, xs LinearScale, pointerX float64) (int, bool) {
	if len(points) == 0 {
		return 0, false
	}
	i := points.Search(xs.Invert(pointerX))
	switch {
	case i == 0:
		return 0, true
	case i == len(points):
		return len(points) - 1, true
	}
	before := pointerX - xs.Apply(points[i-1].X)
	after := xs.Apply(points[i].X) - pointerX
	if before < 0 {
		before = -before
	}
	if after < 0 {
		after = -after
	}
	if before <= after {
		return i - 1, true
	}
	return i, true
}
