package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/banshee-data/beacon.scope/internal/beacon"
	"github.com/banshee-data/beacon.scope/internal/plot"
	"github.com/banshee-data/beacon.scope/internal/units"
)

// Field is one labelled value of the readout.
type Field struct {
	Label string
	Value string
}

// Readout titles.
const (
	TitleCursor = "Sample under cursor"
	TitleLast   = "Last sample"
)

// FormatNumber renders v with prec decimals. NaN renders as "-".
func FormatNumber(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// SampleFields formats the known fields of s in display order, with
// distance and velocity in unit.
func SampleFields(s *beacon.Sample, unit string) []Field {
	if s == nil {
		return nil
	}
	suffix := ""
	if unit != "" && unit != units.MM {
		suffix = " " + unit
	}
	pos := "-"
	if s.Pos != nil {
		pos = strings.Join([]string{
			FormatNumber(s.Pos.X, 2),
			FormatNumber(s.Pos.Y, 2),
			FormatNumber(s.Pos.Z, 2),
		}, ",")
	}
	vel := "-"
	if s.Vel != nil {
		vel = FormatNumber(units.ConvertDistance(*s.Vel, unit), 2) + suffix
	}
	return []Field{
		{"Dist", FormatNumber(units.ConvertDistance(s.Dist, unit), 4) + suffix},
		{"Freq", FormatNumber(s.Freq, 3)},
		{"Pos", pos},
		{"Temp", FormatNumber(s.Temp, 1)},
		{"Time", FormatNumber(s.Time, 3)},
		{"Vel", vel},
	}
}

// StatsFields summarises the samples in the visible window.
func StatsFields(st plot.Stats) []Field {
	if st.Count == 0 {
		return nil
	}
	f := []Field{
		{"n", fmt.Sprint(st.Count)},
		{"mean", FormatNumber(st.Mean, 4)},
		{"sd", FormatNumber(st.StdDev, 4)},
		{"min", FormatNumber(st.Min, 4)},
		{"max", FormatNumber(st.Max, 4)},
	}
	if st.OutOfRange > 0 {
		f = append(f, Field{"oor", fmt.Sprint(st.OutOfRange)})
	}
	return f
}

// PlainFields joins fields as "Label value" pairs for line output.
func PlainFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Label + " " + f.Value
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFields(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = m.styles.Label.Render(f.Label) + " " + m.styles.Value.Render(f.Value)
	}
	return strings.Join(parts, "   ")
}
