package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "0.000"},
		{1234, "1.234"},
		{59999, "59.999"},
		{60000, "1:00.000"},
		{65250, "1:05.250"},
		{125500, "2:05.500"},
		{600000, "10:00.000"},
		{671000, "11:11.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.ms), "%v ms", tt.ms)
	}
}

func TestTicks(t *testing.T) {
	assert.Equal(t, []float64{0, 2000, 4000, 6000, 8000, 10000}, Ticks(0, 10000, 5))
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, Ticks(0, 5.5, 5))
	assert.Equal(t, []float64{-2000, 0, 2000, 4000, 6000}, Ticks(-2500, 7500, 5))
	assert.Nil(t, Ticks(1, 1, 5))
	assert.Nil(t, Ticks(0, 1, 0))
}

func TestTimeTicksDropNegative(t *testing.T) {
	assert.Equal(t, []float64{0, 2000, 4000, 6000}, TimeTicks(-2500, 7500, 5))
	assert.Empty(t, TimeTicks(-9000, -1000, 4))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "2.5", FormatValue(2.5))
	assert.Equal(t, "1", FormatValue(1.0000001))
	assert.Equal(t, "0.25", FormatValue(0.25))
}

func TestPlaceLabels(t *testing.T) {
	line := placeLabels(20, []int{0, 10, 12, 19}, []string{"0.000", "5.000", "6.000", "9"})
	assert.Equal(t, "0.000   5.000      9", line)
	assert.Equal(t, "  ", placeLabels(2, []int{1}, []string{"long"}))
}
