package tui

import (
	"fmt"
	"math"
	"strings"
)

// FormatTime renders a time-axis value in milliseconds as seconds with
// millisecond precision, switching to m:ss.sss from one minute on.
func FormatTime(ms float64) string {
	secs := ms / 1000
	if secs < 60 {
		return fmt.Sprintf("%.3f", secs)
	}
	mins := math.Floor(secs / 60)
	secs -= mins * 60
	if secs < 10 {
		return fmt.Sprintf("%.0f:0%.3f", mins, secs)
	}
	return fmt.Sprintf("%.0f:%.3f", mins, secs)
}

// FormatValue renders a value-axis tick.
func FormatValue(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// Ticks returns round values between lo and hi, roughly count of them,
// stepping by 1, 2 or 5 times a power of ten.
func Ticks(lo, hi float64, count int) []float64 {
	if count < 1 || !(hi > lo) || math.IsInf(hi-lo, 0) {
		return nil
	}
	step := tickStep(lo, hi, count)
	if step <= 0 {
		return nil
	}
	var out []float64
	for i := math.Ceil(lo / step); i*step <= hi; i++ {
		v := i * step
		if v == 0 {
			v = 0 // no -0
		}
		out = append(out, v)
	}
	return out
}

// TimeTicks is Ticks without the negative values a window can reach
// before the first sample.
func TimeTicks(lo, hi float64, count int) []float64 {
	all := Ticks(lo, hi, count)
	out := all[:0]
	for _, t := range all {
		if t >= 0 {
			out = append(out, t)
		}
	}
	return out
}

func tickStep(lo, hi float64, count int) float64 {
	raw := (hi - lo) / float64(count)
	pow := math.Pow(10, math.Floor(math.Log10(raw)))
	switch e := raw / pow; {
	case e >= math.Sqrt(50):
		return 10 * pow
	case e >= math.Sqrt(10):
		return 5 * pow
	case e >= math.Sqrt(2):
		return 2 * pow
	default:
		return pow
	}
}

// placeLabels writes labels into a line of width cells, centring each on
// its column and dropping any that would overlap the previous one.
func placeLabels(width int, cols []int, labels []string) string {
	line := []rune(strings.Repeat(" ", max(width, 0)))
	next := 0
	for i, col := range cols {
		l := []rune(labels[i])
		start := max(col-len(l)/2, 0)
		if start < next {
			continue
		}
		if start+len(l) > width {
			start = width - len(l)
			if start < next || start < 0 {
				continue
			}
		}
		copy(line[start:], l)
		next = start + len(l) + 1
	}
	return string(line)
}
