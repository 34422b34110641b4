package beacon

import (
	"math"
	"strings"
)

// Known header field names.
const (
	FieldDist = "dist"
	FieldFreq = "freq"
	FieldPos  = "pos"
	FieldTemp = "temp"
	FieldTime = "time"
	FieldVel  = "vel"
)

// Position is the toolhead position reported with a sample.
type Position struct {
	X, Y, Z float64
}

// Sample is one decoded telemetry reading. Time is in seconds relative to the
// first row of the session once it has passed through a Decoder.
//
// Numeric fields that were missing or null in the row hold NaN. Values that
// could not be read as numbers are kept verbatim in Extra under their header
// name, next to any header fields the decoder does not know about.
type Sample struct {
	Dist float64
	Freq float64
	Pos  *Position
	Temp float64
	Time float64
	Vel  *float64

	Extra map[string]any
}

func newSample() Sample {
	nan := math.NaN()
	return Sample{Dist: nan, Freq: nan, Temp: nan, Time: nan}
}

// Field returns the value stored under a header name. Known numeric fields
// are returned as float64, pos as *Position and vel as *float64.
func (s Sample) Field(name string) (any, bool) {
	switch name {
	case FieldDist:
		return s.Dist, true
	case FieldFreq:
		return s.Freq, true
	case FieldTemp:
		return s.Temp, true
	case FieldTime:
		return s.Time, true
	case FieldPos:
		return s.Pos, s.Pos != nil
	case FieldVel:
		return s.Vel, s.Vel != nil
	}
	v, ok := s.Extra[name]
	return v, ok
}

func (s *Sample) setExtra(name string, v any) {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra[name] = v
}

// Header is the ordered field list that maps row positions to Sample fields.
type Header []string

// Sample zips a raw row against the header. Values past the end of the header
// are dropped; fields past the end of the row keep their zero state.
func (h Header) Sample(row []any) Sample {
	return h.sample(row, false)
}

func (h Header) sample(row []any, legacyNegInf bool) Sample {
	s := newSample()
	n := min(len(row), len(h))
	for i := 0; i < n; i++ {
		name, raw := h[i], row[i]
		switch name {
		case FieldDist, FieldFreq, FieldTemp, FieldTime:
			v, ok := numeric(raw, legacyNegInf)
			if !ok && raw != nil {
				s.setExtra(name, raw)
			}
			switch name {
			case FieldDist:
				s.Dist = v
			case FieldFreq:
				s.Freq = v
			case FieldTemp:
				s.Temp = v
			case FieldTime:
				s.Time = v
			}
		case FieldPos:
			s.Pos = position(raw, legacyNegInf)
		case FieldVel:
			if v, ok := numeric(raw, legacyNegInf); ok {
				s.Vel = &v
			} else if raw != nil {
				s.setExtra(name, raw)
			}
		default:
			if v, ok := numeric(raw, legacyNegInf); ok {
				s.setExtra(name, v)
			} else {
				s.setExtra(name, raw)
			}
		}
	}
	return s
}

// position is only well formed with exactly three numeric components.
func position(raw any, legacyNegInf bool) *Position {
	arr, ok := raw.([]any)
	if !ok || len(arr) != 3 {
		return nil
	}
	var c [3]float64
	for i, v := range arr {
		f, ok := numeric(v, legacyNegInf)
		if !ok {
			return nil
		}
		c[i] = f
	}
	return &Position{X: c[0], Y: c[1], Z: c[2]}
}

// numeric converts a parsed JSON value to float64. Sentinel strings become
// ±Inf or NaN; any other string is not a number. With legacyNegInf the
// negative infinity sentinel decodes to +Inf, matching older viewers.
func numeric(raw any, legacyNegInf bool) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		return sentinel(v, legacyNegInf)
	}
	return math.NaN(), false
}

func sentinel(s string, legacyNegInf bool) (float64, bool) {
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity", "+infinity":
		return math.Inf(1), true
	case "-inf", "-infinity":
		if legacyNegInf {
			return math.Inf(1), true
		}
		return math.Inf(-1), true
	case "nan":
		return math.NaN(), true
	}
	return math.NaN(), false
}
