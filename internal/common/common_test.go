package common

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbs(t *testing.T) {
	assert.Equal(t, 5, Abs(-5))
	assert.Equal(t, 5, Abs(5))
	assert.Equal(t, 0, Abs(0))
}

func TestClampAndRound(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3, -1, 1))
	assert.Equal(t, -1.0, Clamp(-3, -1, 1))
	assert.Equal(t, 0.25, Clamp(0.25, -1, 1))

	assert.Equal(t, 0.73, Round(0.729, 2))
	assert.Equal(t, -0.5, Round(-0.4999999, 3))
}

func TestSampleEvery(t *testing.T) {
	tests := []struct {
		name     string
		total, n int
		expected int
	}{
		{"fewer items than samples", 10, 20, 1},
		{"exact", 100, 20, 5},
		{"rounds down", 250, 20, 12},
		{"no samples requested", 100, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SampleEvery(tt.total, tt.n))
		})
	}
}

func TestValidation(t *testing.T) {
	assert.True(t, IsProbability(0))
	assert.True(t, IsProbability(1))
	assert.False(t, IsProbability(1.01))
	assert.False(t, IsProbability(math.NaN()))

	assert.False(t, IsRate(0))
	assert.True(t, IsRate(1))
	assert.True(t, IsRate(0.5))
	assert.False(t, IsRate(-0.1))

	assert.True(t, IsValidPort(50051))
	assert.False(t, IsValidPort(0))
	assert.False(t, IsValidPort(70000))

	assert.True(t, IsValidCoordinate(0, 0, 3, 2))
	assert.False(t, IsValidCoordinate(3, 0, 3, 2))
	assert.False(t, IsValidCoordinate(0, -1, 3, 2))
}

func TestValueColor(t *testing.T) {
	assert.Equal(t, NeutralColor, ValueColor(0, 1))
	assert.Equal(t, PositiveColor, ValueColor(5, 1), "values beyond the scale saturate")
	assert.Equal(t, NegativeColor, ValueColor(-1, 1))
	assert.Equal(t, NeutralColor, ValueColor(1, 0))

	half := ValueColor(0.5, 1)
	assert.Equal(t, color.RGBA{85, 160, 85, 255}, half)
}

func TestSeriesColorAndHex(t *testing.T) {
	assert.Equal(t, SeriesColors[0], SeriesColor(len(SeriesColors)))
	assert.Equal(t, "#3264c8", Hex(SeriesColor(0)))
	assert.Equal(t, "#787878", Hex(NeutralColor))
}
